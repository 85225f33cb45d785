package audio

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/google/shlex"
)

// player describes one CLI program able to play raw s16le stereo from stdin
type player struct {
	typ  BackendType
	name string
	bin  string
	args func(rate string) []string
}

// players is the detection order
var players = []player{
	{BackendPulse, "pacat", "pacat", func(r string) []string {
		return []string{"--raw", "--format=s16le", "--rate=" + r, "--channels=2", "--latency-msec=50", "--playback"}
	}},
	{BackendPipeWire, "pw-cat", "pw-cat", func(r string) []string {
		return []string{"--playback", "--format=s16", "--rate=" + r, "--channels=2", "--latency=50ms", "-"}
	}},
	{BackendALSA, "aplay", "aplay", func(r string) []string {
		return []string{"-t", "raw", "-f", "S16_LE", "-r", r, "-c", "2", "-q"}
	}},
	{BackendSoX, "sox", "play", func(r string) []string {
		return []string{"-t", "raw", "-e", "signed", "-b", "16", "-c", "2", "-r", r, "-", "-d", "-q"}
	}},
	{BackendFFplay, "ffplay", "ffplay", func(r string) []string {
		return []string{"-nodisp", "-autoexit", "-f", "s16le", "-ac", "2", "-ar", r,
			"-probesize", "32", "-analyzeduration", "0", "-i", "pipe:0", "-loglevel", "quiet"}
	}},
}

const ossDevice = "/dev/dsp"

// hostEnv abstracts the host lookups made during detection
type hostEnv struct {
	lookPath func(string) (string, error)
	exists   func(string) bool
	goos     string
}

func currentHost() hostEnv {
	return hostEnv{
		lookPath: exec.LookPath,
		exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
		goos: runtime.GOOS,
	}
}

// DetectBackend finds a CLI player for s16le stereo at rate
// Order: pacat, pw-cat, aplay, sox, ffplay, then the FreeBSD OSS device
func DetectBackend(rate int) (*BackendConfig, error) {
	return detect(rate, currentHost())
}

func detect(rate int, p hostEnv) (*BackendConfig, error) {
	sr := strconv.Itoa(rate)
	for _, pl := range players {
		path, err := p.lookPath(pl.bin)
		if err != nil {
			continue
		}
		return &BackendConfig{Type: pl.typ, Name: pl.name, Path: path, Args: pl.args(sr)}, nil
	}

	// OSS takes raw writes on the device node
	if p.goos == "freebsd" && p.exists(ossDevice) {
		return &BackendConfig{Type: BackendOSS, Name: "oss", Path: ossDevice}, nil
	}
	return nil, ErrNoAudioBackend
}

// ParsePlayer builds a backend from a shell-quoted command line
// The program must accept raw s16le stereo on stdin
func ParsePlayer(cmdline string, lookPath func(string) (string, error)) (*BackendConfig, error) {
	words, err := shlex.Split(cmdline)
	if err != nil {
		return nil, fmt.Errorf("player %q: %w", cmdline, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty player command", ErrNoAudioBackend)
	}
	path, err := lookPath(words[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAudioBackend, err)
	}
	return &BackendConfig{
		Type: BackendCustom,
		Name: filepath.Base(words[0]),
		Path: path,
		Args: words[1:],
	}, nil
}
