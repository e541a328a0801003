package types

import "time"

// Toast represents a notification message
type Toast struct {
	Level   ToastLevel
	Message string
	Expires time.Time
}

// ToastLevel indicates the severity of a toast
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// Duration returns how long a toast of this level stays on screen.
func (l ToastLevel) Duration() time.Duration {
	switch l {
	case ToastError:
		return 8 * time.Second
	case ToastWarning:
		return 6 * time.Second
	default:
		return 3 * time.Second
	}
}

// Expired reports whether the toast should be dropped at now.
func (t Toast) Expired(now time.Time) bool {
	return !t.Expires.After(now)
}
