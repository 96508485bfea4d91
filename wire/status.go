package wire

import (
	"errors"
	"fmt"
)

// Status is the numeric outcome of a service call. Zero is success, all
// failures are negative. Values beyond the ones named here are
// service-specific and are passed through to callers verbatim.
type Status int32

const (
	StatusSuccess Status = 0

	StatusProgrammerError      Status = -129
	StatusConnectionRefused    Status = -130
	StatusConnectionBusy       Status = -131
	StatusGenericError         Status = -132
	StatusNotPermitted         Status = -133
	StatusNotSupported         Status = -134
	StatusInvalidArgument      Status = -135
	StatusInvalidHandle        Status = -136
	StatusBadState             Status = -137
	StatusBufferTooSmall       Status = -138
	StatusAlreadyExists        Status = -139
	StatusDoesNotExist         Status = -140
	StatusInsufficientMemory   Status = -141
	StatusInsufficientStorage  Status = -142
	StatusInsufficientData     Status = -143
	StatusServiceFailure       Status = -144
	StatusCommunicationFailure Status = -145
	StatusStorageFailure       Status = -146
	StatusHardwareFailure      Status = -147
	StatusInvalidSignature     Status = -149
	StatusInvalidPadding       Status = -150
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusProgrammerError:
		return "programmer error"
	case StatusConnectionRefused:
		return "connection refused"
	case StatusConnectionBusy:
		return "connection busy"
	case StatusGenericError:
		return "generic error"
	case StatusNotPermitted:
		return "not permitted"
	case StatusNotSupported:
		return "not supported"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusInvalidHandle:
		return "invalid handle"
	case StatusBadState:
		return "bad state"
	case StatusBufferTooSmall:
		return "buffer too small"
	case StatusAlreadyExists:
		return "already exists"
	case StatusDoesNotExist:
		return "does not exist"
	case StatusInsufficientMemory:
		return "insufficient memory"
	case StatusInsufficientStorage:
		return "insufficient storage"
	case StatusInsufficientData:
		return "insufficient data"
	case StatusServiceFailure:
		return "service failure"
	case StatusCommunicationFailure:
		return "communication failure"
	case StatusStorageFailure:
		return "storage failure"
	case StatusHardwareFailure:
		return "hardware failure"
	case StatusInvalidSignature:
		return "invalid signature"
	case StatusInvalidPadding:
		return "invalid padding"
	default:
		return fmt.Sprintf("status %d", int32(s))
	}
}

// Error wraps a non-success Status as a Go error. The raw status is kept
// verbatim so that service-specific codes survive the trip to the caller.
//
// Message strings are for humans; branch on Status or use errors.Is with
// the sentinel values below.
type Error struct {
	Status Status
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "psacall: " + e.Status.String()
}

// Is makes errors.Is(err, ErrBadState) and friends work by comparing the
// underlying status values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t.Status == e.Status
}

// Sentinel errors for the statuses this layer produces or branches on.
var (
	ErrProgrammerError      = &Error{StatusProgrammerError}
	ErrConnectionRefused    = &Error{StatusConnectionRefused}
	ErrConnectionBusy       = &Error{StatusConnectionBusy}
	ErrNotSupported         = &Error{StatusNotSupported}
	ErrInvalidArgument      = &Error{StatusInvalidArgument}
	ErrInvalidHandle        = &Error{StatusInvalidHandle}
	ErrBadState             = &Error{StatusBadState}
	ErrBufferTooSmall       = &Error{StatusBufferTooSmall}
	ErrDoesNotExist         = &Error{StatusDoesNotExist}
	ErrCommunicationFailure = &Error{StatusCommunicationFailure}
	ErrInvalidSignature     = &Error{StatusInvalidSignature}
	ErrInvalidPadding       = &Error{StatusInvalidPadding}
)

// Err converts a status to an error: nil on success, *Error otherwise.
func (s Status) Err() error {
	if s == StatusSuccess {
		return nil
	}
	return &Error{Status: s}
}

// StatusOf recovers the Status carried by err. A nil error is success;
// errors that do not wrap a *Error map to StatusGenericError.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return StatusGenericError
}
