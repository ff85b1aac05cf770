package location

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	CodeUnknown ErrorCode = iota
	PermissionDenied
	PositionUnavailable
	Timeout
	Unsupported
)

func (c ErrorCode) String() string {
	switch c {
	case PermissionDenied:
		return "permission_denied"
	case PositionUnavailable:
		return "position_unavailable"
	case Timeout:
		return "timeout"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

const (
	MsgUnsupported         = "Geolocation is not supported by your browser"
	MsgPermissionDenied    = "Location permission denied. Please enable location access."
	MsgPositionUnavailable = "Location information is unavailable."
	MsgTimeout             = "Location request timed out."
	MsgUnknown             = "An unknown error occurred."
)

// PositionError is the failure reported by a Locator.
type PositionError struct {
	Code ErrorCode
	Err  error
}

func (e *PositionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("locate: %s", e.Code)
	}

	return fmt.Sprintf("locate: %s: %s", e.Code, e.Err.Error())
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the failure reason of err. Errors that are not a
// PositionError are unknown.
func CodeOf(err error) ErrorCode {
	var perr *PositionError
	if errors.As(err, &perr) {
		return perr.Code
	}

	return CodeUnknown
}

// Message maps err onto the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	switch CodeOf(err) {
	case PermissionDenied:
		return MsgPermissionDenied
	case PositionUnavailable:
		return MsgPositionUnavailable
	case Timeout:
		return MsgTimeout
	case Unsupported:
		return MsgUnsupported
	default:
		return MsgUnknown
	}
}
