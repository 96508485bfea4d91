package grpcchan

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/psacall/channel"
	"xdao.co/psacall/wire"
)

// Server exposes a channel.Channel over the Channel gRPC service.
// Service-level statuses ride inside the reply frame; only transport and
// framing problems become gRPC errors.
type Server struct {
	UnimplementedChannelServer
	Channel channel.Channel
}

func (s *Server) Call(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Channel == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing channel")
	}
	sel, cin, cout, err := wire.DecodeCall(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed call frame")
	}
	st := s.Channel.Call(sel, cin, cout)
	return wrapperspb.Bytes(wire.EncodeReply(st, cout)), nil
}
