package grpcchan

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/psacall/client"
	"xdao.co/psacall/softserv"
	"xdao.co/psacall/wire"
)

func dialTestServer(t *testing.T) *Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterChannelServer(srv, &Server{Channel: softserv.New()})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { cc.Close() })

	return &Client{cc: cc, client: NewChannelClient(cc), Timeout: 2 * time.Second}
}

func TestGRPCChannel_SoftServ_RoundTrip(t *testing.T) {
	c := client.New(dialTestServer(t))

	payload := []byte("hello grpcchan")
	digest := make([]byte, sha256.Size)
	n, err := c.HashCompute(softserv.AlgSHA256, payload, digest)
	if err != nil {
		t.Fatalf("HashCompute: %v", err)
	}
	want := sha256.Sum256(payload)
	if n != sha256.Size || !bytes.Equal(digest, want[:]) {
		t.Fatalf("digest mismatch over the wire")
	}
}

func TestGRPCChannel_StatusSurvivesWire(t *testing.T) {
	c := client.New(dialTestServer(t))

	// Failure statuses travel inside the reply frame, not as RPC errors.
	err := c.HashCompare(softserv.AlgSHA256, []byte("x"), make([]byte, sha256.Size))
	if !errors.Is(err, wire.ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
	_, err = c.HashCompute(99, []byte("x"), make([]byte, sha256.Size))
	if !errors.Is(err, wire.ErrNotSupported) {
		t.Fatalf("err = %v, want ErrNotSupported", err)
	}
}

func TestGRPCChannel_StreamingOverWire(t *testing.T) {
	c := client.New(dialTestServer(t))

	var op client.HashOperation
	if err := c.HashSetup(&op, softserv.AlgSHA256); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := c.HashUpdate(&op, []byte("split ")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := c.HashUpdate(&op, []byte("input")); err != nil {
		t.Fatalf("update: %v", err)
	}
	digest := make([]byte, sha256.Size)
	if _, err := c.HashFinish(&op, digest); err != nil {
		t.Fatalf("finish: %v", err)
	}
	want := sha256.Sum256([]byte("split input"))
	if !bytes.Equal(digest, want[:]) {
		t.Fatalf("streamed digest mismatch over the wire")
	}
	if op.Handle != 0 {
		t.Fatalf("handle not released after finish")
	}
}

func TestGRPCChannel_NilClientRefused(t *testing.T) {
	var c *Client
	if st := c.Call(wire.SelGenerateRandom, nil, nil); st != wire.StatusConnectionRefused {
		t.Fatalf("status = %v, want connection refused", st)
	}
}
