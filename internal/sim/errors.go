package sim

import (
	"errors"
	"fmt"
)

// ErrInvalidCoordinate is returned by grid operations given an
// out-of-bounds coordinate.
var ErrInvalidCoordinate = errors.New("coordinate out of grid bounds")

// ConfigError describes an invalid run configuration. It is fatal and
// surfaced by NewRun before any tick executes.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// invariantf panics with a descriptive message. Invariant violations
// (agent on a wall, two agents in one cell) indicate a defect in the
// movement-resolution logic, not bad user input; the engine refuses to
// continue rather than run on a corrupted grid.
func invariantf(format string, args ...any) {
	panic(fmt.Sprintf("simulation invariant violated: %s", fmt.Sprintf(format, args...)))
}
