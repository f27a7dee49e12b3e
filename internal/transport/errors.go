package transport

import (
	"errors"
	"fmt"
)

// Recorded error labels are stable: the bug analyzer pattern-matches
// them, so the Error() strings below must not change.
var (
	// ErrNotFound means the bot identifier resolved to nothing.
	ErrNotFound = errors.New("bot not found")

	// ErrNotAuthorized means the user session is missing or expired.
	ErrNotAuthorized = errors.New("not authorized: run botprobe onboard first")

	// ErrMessageIDInvalid means the clicked message no longer exists.
	ErrMessageIDInvalid = errors.New("MessageIdInvalidError")

	// ErrDataInvalid means the bot rejected the callback payload.
	ErrDataInvalid = errors.New("DataInvalidError")
)

// FloodWaitError is the platform rate-limit signal. It aborts the
// active drain loop but never the whole run.
type FloodWaitError struct {
	Seconds int
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("FloodWaitError: wait %ds", e.Seconds)
}

// IsFloodWait reports whether err carries a rate-limit signal.
func IsFloodWait(err error) (int, bool) {
	var fw *FloodWaitError
	if errors.As(err, &fw) {
		return fw.Seconds, true
	}
	return 0, false
}
