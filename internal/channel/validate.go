package channel

import (
	"fmt"

	"cyre.run/cyre/internal/types"
)

// Validate checks a channel config against the data-definition table:
// non-empty id, non-negative throttle/debounce/delay/interval, repeat is a
// non-negative integer or RepeatInfinite, and throttle+debounce are
// mutually exclusive.
func Validate(cfg types.Config) error {
	if cfg.ID == "" {
		return fmt.Errorf("channel id must not be empty")
	}
	if cfg.ThrottleMs < 0 {
		return fmt.Errorf("channel %q: throttle must be non-negative", cfg.ID)
	}
	if cfg.DebounceMs < 0 {
		return fmt.Errorf("channel %q: debounce must be non-negative", cfg.ID)
	}
	if cfg.MaxWaitMs < 0 {
		return fmt.Errorf("channel %q: maxWait must be non-negative", cfg.ID)
	}
	if cfg.DelayMs != nil && *cfg.DelayMs < 0 {
		return fmt.Errorf("channel %q: delay must be non-negative", cfg.ID)
	}
	if cfg.IntervalMs < 0 {
		return fmt.Errorf("channel %q: interval must be non-negative", cfg.ID)
	}
	if cfg.Repeat < 0 && cfg.Repeat != types.RepeatInfinite {
		return fmt.Errorf("channel %q: repeat must be non-negative or infinite", cfg.ID)
	}
	if cfg.ThrottleMs > 0 && cfg.DebounceMs > 0 {
		return fmt.Errorf("channel %q: throttle and debounce are mutually exclusive", cfg.ID)
	}
	if !cfg.Priority.Validate() {
		return fmt.Errorf("channel %q: unrecognized priority %q", cfg.ID, cfg.Priority)
	}
	return nil
}
