package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"xdao.co/psacall/grpcchan"
	"xdao.co/psacall/softserv"
)

func main() {
	fs := flag.NewFlagSet("psacall-servd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7878", "listen address")
	maxMsg := fs.Int("max-msg-bytes", 0, "max gRPC message size in bytes (0 = default)")

	_ = fs.Parse(os.Args[1:])

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	var opts []grpc.ServerOption
	if *maxMsg > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(*maxMsg),
			grpc.MaxSendMsgSize(*maxMsg),
		)
	}

	s := grpc.NewServer(opts...)
	grpcchan.RegisterChannelServer(s, &grpcchan.Server{Channel: softserv.New()})

	fmt.Fprintf(os.Stderr, "psacall-servd listening on %s\n", lis.Addr().String())
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
