package grpcchan

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ChannelServer is the server API for the Channel gRPC service. One
// unary method carries a whole framed call and brings back the framed
// reply.
//
// We intentionally use protobuf well-known wrapper types so this package
// does not require a protoc/codegen toolchain.
//
// Proto definition: channel.proto.
type ChannelServer interface {
	Call(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedChannelServer can be embedded to have forward compatible implementations.
type UnimplementedChannelServer struct{}

func (UnimplementedChannelServer) Call(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Call not implemented")
}

// RegisterChannelServer registers the Channel service on a gRPC server.
func RegisterChannelServer(s grpc.ServiceRegistrar, srv ChannelServer) {
	s.RegisterService(&Channel_ServiceDesc, srv)
}

// ChannelClient is the client API for the Channel gRPC service.
type ChannelClient interface {
	Call(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type channelClient struct{ cc grpc.ClientConnInterface }

func NewChannelClient(cc grpc.ClientConnInterface) ChannelClient { return &channelClient{cc: cc} }

func (c *channelClient) Call(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/xdao.psacall.grpcchan.v1.Channel/Call", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _Channel_Call_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChannelServer).Call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/xdao.psacall.grpcchan.v1.Channel/Call"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChannelServer).Call(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Channel_ServiceDesc is the grpc.ServiceDesc for Channel service.
var Channel_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "xdao.psacall.grpcchan.v1.Channel",
	HandlerType: (*ChannelServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Call", Handler: _Channel_Call_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "channel.proto",
}
