package timeline

import (
	"errors"
	"fmt"
)

var (
	// ErrTimelineActive is returned by Begin while another frame of the
	// same Timeline has not ended.
	ErrTimelineActive = errors.New("timeline: frame already active")

	// ErrUnbalanced is wrapped by every MisuseError.
	ErrUnbalanced = errors.New("timeline: unbalanced begin/end")
)

// MisuseError reports a widget call made out of order, for example a clip
// outside a track or an EndClip with no open clip. The first misuse of a
// frame is kept and returned by End.
type MisuseError struct {
	Op     string
	Reason string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("timeline: %s: %s", e.Op, e.Reason)
}

// Unwrap makes MisuseError match ErrUnbalanced.
func (e *MisuseError) Unwrap() error {
	return ErrUnbalanced
}

// IsMisuse reports whether err is a MisuseError.
func IsMisuse(err error) bool {
	var me *MisuseError
	return errors.As(err, &me)
}
