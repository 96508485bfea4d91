package grpcchan

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/psacall/wire"
)

// mapRPC folds a transport-level failure into the channel status space.
func mapRPC(err error) wire.Status {
	st, ok := status.FromError(err)
	if !ok {
		return wire.StatusCommunicationFailure
	}

	switch st.Code() {
	case codes.Unavailable:
		return wire.StatusConnectionRefused
	case codes.ResourceExhausted:
		return wire.StatusConnectionBusy
	case codes.InvalidArgument:
		// Server rejects frames it cannot decode.
		return wire.StatusProgrammerError
	default:
		return wire.StatusCommunicationFailure
	}
}
