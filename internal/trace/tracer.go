package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives the events of a run. Implementations must be safe for
// concurrent use: the loader emits from its worker goroutines.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled is false only for LevelOff.
	Enabled() bool
}

// StorageMode selects where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // пишем сразу
	ModeRing                          // только в память, дамп в конце
	ModeBoth                          // поток и кольцо
)

func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	}
	return "unknown"
}

// ParseMode reads the value of --trace-mode.
func ParseMode(s string) (StorageMode, error) {
	for _, m := range []StorageMode{ModeStream, ModeRing, ModeBoth} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config mirrors the --trace* flags of the CLI.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "-" or "" is stderr
	RingSize   int
}

// New builds the tracer described by cfg. LevelOff gives Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	switch cfg.Mode {
	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level, nil), nil
	case ModeStream, ModeBoth:
	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}

	w := cfg.Output
	if w == nil {
		var err error
		if w, err = openOutput(cfg.OutputPath); err != nil {
			return nil, err
		}
	}
	stream := NewStreamTracer(w, cfg.Level, formatFor(cfg.Format, cfg.OutputPath))
	if cfg.Mode == ModeStream {
		return stream, nil
	}
	return NewRingTracer(cfg.RingSize, cfg.Level, stream), nil
}

func openOutput(path string) (io.Writer, error) {
	if path == "" || path == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(path) // #nosec G304 -- path comes from --trace
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}
