package status

import (
	"log"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// hostReader reads host load; fields are swapped out in tests
type hostReader struct {
	cpuPercent func() (float64, error)
	memPercent func() (float64, error)
}

func systemReader() hostReader {
	return hostReader{
		cpuPercent: func() (float64, error) {
			// Zero interval compares against the previous call
			p, err := cpu.Percent(0, false)
			if err != nil || len(p) == 0 {
				return 0, err
			}
			return p[0], nil
		},
		memPercent: func() (float64, error) {
			vm, err := mem.VirtualMemory()
			if err != nil {
				return 0, err
			}
			return vm.UsedPercent, nil
		},
	}
}

// hostSampler publishes host.cpu_percent and host.mem_percent
type hostSampler struct {
	reader hostReader
	cpu    *AtomicFloat
	mem    *AtomicFloat
	failed bool
}

func newHostSampler(r *Registry, p hostReader) *hostSampler {
	return &hostSampler{
		reader: p,
		cpu:    r.Floats.Get("host.cpu_percent"),
		mem:    r.Floats.Get("host.mem_percent"),
	}
}

// sample takes one reading; the first failure is logged, later ones are silent
func (h *hostSampler) sample() {
	c, errC := h.reader.cpuPercent()
	m, errM := h.reader.memPercent()
	if errC == nil {
		h.cpu.Set(c)
	}
	if errM == nil {
		h.mem.Set(m)
	}
	if (errC != nil || errM != nil) && !h.failed {
		h.failed = true
		log.Printf("[status] host sample: cpu=%v mem=%v", errC, errM)
	}
}

// run samples every interval until stop closes
func (h *hostSampler) run(interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	h.sample()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			h.sample()
		}
	}
}
