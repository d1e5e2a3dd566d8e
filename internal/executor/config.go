package executor

import (
	"strings"
	"time"

	"enricher/internal/common"
	"enricher/internal/errs"
)

// Mode selects how executions are dispatched.
type Mode int

const (
	ModeDisordered Mode = iota
	ModeOrdered
	ModeConcurrent
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeDisordered:
		return "disordered"
	case ModeOrdered:
		return "ordered"
	case ModeConcurrent:
		return "concurrent"
	default:
		return common.UnknownStr
	}
}

// ParseMode parses a mode name. The empty string selects ModeDisordered.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "disordered", "unordered":
		return ModeDisordered, nil
	case "ordered":
		return ModeOrdered, nil
	case "concurrent", "parallel":
		return ModeConcurrent, nil
	default:
		return 0, errs.ErrConfiguration.WithMsg("unknown executor mode %q", s)
	}
}

// Config holds executor settings.
type Config struct {
	// BatchSize splits the targets of one execution into batches of at most
	// BatchSize objects. Values below 2 disable splitting.
	BatchSize int
	// MaxDepth bounds disassembly depth; the root targets are depth 1.
	// Zero means unbounded.
	MaxDepth int
	// Parallelism bounds concurrent dispatch in ModeConcurrent.
	// Values below 1 select DefaultParallelism.
	Parallelism int
	// SlowThreshold logs a warning for Execute calls running longer.
	// Zero disables the warning.
	SlowThreshold time.Duration
}

// DefaultParallelism is used by ModeConcurrent when Config.Parallelism is unset.
const DefaultParallelism = 4

// DefaultConfig returns the default executor configuration.
func DefaultConfig() Config {
	return Config{Parallelism: DefaultParallelism}
}
