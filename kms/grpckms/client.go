package grpckms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/keyring/primitive"
	"xdao.co/keyring/registry"
)

// URIPrefix is the default scheme for keys served by this KMS.
const URIPrefix = "grpc-kms://"

// Client implements registry.KMSClient over the KMS gRPC service.
//
// Supports is answered locally by uri prefix so registry lookups never
// block on the network; the server re-checks the uri on every call.
type Client struct {
	cc     *grpc.ClientConn
	client KMSClient
	prefix string

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

var _ registry.KMSClient = (*Client)(nil)

type DialOptions struct {
	// URIPrefix overrides the uri scheme this client claims; empty
	// means URIPrefix.
	URIPrefix string

	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

// Dial connects to a KMS service and returns a client ready to be
// handed to registry.RegisterKMSClient.
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
	pfx := opts.URIPrefix
	if pfx == "" {
		pfx = URIPrefix
	}
	return &Client{cc: cc, client: NewKMSClient(cc), prefix: pfx}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Supports(keyURI string) bool {
	return c != nil && strings.HasPrefix(keyURI, c.prefix)
}

// AEAD returns the remote primitive for keyURI. The key stays in the
// KMS; every Seal/Open is an RPC.
func (c *Client) AEAD(keyURI string) (primitive.AEAD, error) {
	if !c.Supports(keyURI) {
		return nil, fmt.Errorf("grpckms: unsupported key uri")
	}
	return &remoteAEAD{client: c, uri: keyURI}, nil
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.Timeout)
	}
	return context.Background(), func() {}
}

type remoteAEAD struct {
	client *Client
	uri    string
}

func (r *remoteAEAD) Seal(plaintext, associatedData []byte) ([]byte, error) {
	ctx, cancel := r.client.ctx()
	defer cancel()

	reply, err := r.client.client.Encrypt(ctx,
		wrapperspb.Bytes(marshalFrame(r.uri, plaintext, associatedData)))
	if err != nil {
		return nil, fmt.Errorf("grpckms: encrypt: %w", mapRPC(err))
	}
	return reply.GetValue(), nil
}

func (r *remoteAEAD) Open(ciphertext, associatedData []byte) ([]byte, error) {
	ctx, cancel := r.client.ctx()
	defer cancel()

	reply, err := r.client.client.Decrypt(ctx,
		wrapperspb.Bytes(marshalFrame(r.uri, ciphertext, associatedData)))
	if err != nil {
		// Collapse transport and decrypt failures alike: the consume
		// path carries exactly one error.
		return nil, primitive.ErrAuthentication
	}
	return reply.GetValue(), nil
}
