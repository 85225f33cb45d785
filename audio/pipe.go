package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/core"
)

// PipeOutput streams s16le stereo to a CLI player over stdin
// Used when no speaker device can be opened (headless, containers)
type PipeOutput struct {
	rate   int
	player string // explicit command line, overrides detection

	backend *BackendConfig
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	ossFile *os.File // For direct OSS writes

	running  atomic.Bool
	stopChan chan struct{}
	errChan  chan error
	wg       sync.WaitGroup
}

// NewPipeOutput creates a pipe output at rate
// A non-empty player replaces backend detection
func NewPipeOutput(rate int, player string) *PipeOutput {
	return &PipeOutput{rate: rate, player: player}
}

// Name implements Output
func (p *PipeOutput) Name() string { return BackendPipe }

// Backend returns the detected CLI backend, nil before Start
func (p *PipeOutput) Backend() *BackendConfig { return p.backend }

// Errors returns channel for pipe errors
func (p *PipeOutput) Errors() <-chan error { return p.errChan }

// Start launches the backend process and the writer loop
func (p *PipeOutput) Start(src beep.Streamer) error {
	if p.running.Load() {
		return fmt.Errorf("pipe output already running")
	}

	var backend *BackendConfig
	var err error
	if p.player != "" {
		backend, err = ParsePlayer(p.player, exec.LookPath)
	} else {
		backend, err = DetectBackend(p.rate)
	}
	if err != nil {
		return err
	}

	var writer io.Writer
	if backend.Type == BackendOSS {
		f, err := os.OpenFile(backend.Path, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("open %s: %w", backend.Path, err)
		}
		p.ossFile = f
		writer = f
	} else {
		cmd := exec.Command(backend.Path, backend.Args...)
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return fmt.Errorf("%s stdin: %w", backend.Name, err)
		}
		if err := cmd.Start(); err != nil {
			stdin.Close()
			return fmt.Errorf("start %s: %w", backend.Name, err)
		}
		p.cmd = cmd
		p.stdin = stdin
		writer = stdin
	}

	p.backend = backend
	p.stopChan = make(chan struct{})
	p.errChan = make(chan error, 1)
	p.running.Store(true)

	if p.cmd != nil {
		p.wg.Add(1)
		core.Go(p.monitorProcess)
	}
	p.wg.Add(1)
	core.Go(func() { p.loop(src, writer) })
	return nil
}

// monitorProcess watches for subprocess exit
func (p *PipeOutput) monitorProcess() {
	defer p.wg.Done()

	if err := p.cmd.Wait(); err != nil && p.running.Load() {
		log.Printf("[audio] %s exited: %v", p.backend.Name, err)
	}
}

// loop pulls one buffer per tick from src and writes it to the pipe
func (p *PipeOutput) loop(src beep.Streamer, w io.Writer) {
	defer p.wg.Done()

	interval := constant.AudioBufferDuration
	samples := p.rate * int(interval/time.Millisecond) / 1000
	frames := make([][2]float64, samples)
	out := make([]byte, samples*constant.AudioBytesPerFrame)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			n, _ := src.Stream(frames)
			clear(frames[n:])
			floatToBytes(frames, out)

			if _, err := w.Write(out); err != nil {
				select {
				case p.errChan <- fmt.Errorf("%w: %v", ErrPipeClosed, err):
				default:
				}
				log.Printf("[audio] pipe write failed: %v", err)
				return
			}
		}
	}
}

// Stop terminates the writer and the backend process
func (p *PipeOutput) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}

	close(p.stopChan)

	if p.stdin != nil {
		p.stdin.Close()
	}
	if p.ossFile != nil {
		p.ossFile.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}

	p.wg.Wait()
}

// floatToBytes converts float64 stereo frames to interleaved int16 LE bytes
// Applies soft limiting before hard clip
func floatToBytes(in [][2]float64, out []byte) {
	for i, frame := range in {
		for ch, v := range frame {
			// Soft limiter (tanh-style)
			if v > 0.8 {
				v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
			} else if v < -0.8 {
				v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
			}

			// Hard clip
			if v > 1.0 {
				v = 1.0
			} else if v < -1.0 {
				v = -1.0
			}

			binary.LittleEndian.PutUint16(out[i*4+ch*2:], uint16(int16(v*32767)))
		}
	}
}
