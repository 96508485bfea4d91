package grpcchan

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/psacall/wire"
)

// Client implements channel.Channel over the Channel gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client ChannelClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewChannelClient(cc), Timeout: 0}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// Call frames the vectors, runs the RPC, and unpacks the reply into the
// caller's output descriptors. Transport failures surface as channel
// statuses, never as panics or Go errors.
func (c *Client) Call(sel wire.Selector, in, out []wire.Vec) wire.Status {
	if c == nil || c.client == nil {
		return wire.StatusConnectionRefused
	}
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Call(ctx, wrapperspb.Bytes(wire.EncodeCall(sel, in, out)))
	if err != nil {
		return mapRPC(err)
	}
	st, err := wire.DecodeReply(reply.GetValue(), out)
	if err != nil {
		return wire.StatusCommunicationFailure
	}
	return st
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}
