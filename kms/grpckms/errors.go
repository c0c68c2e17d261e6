package grpckms

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/keyring/registry"
)

// mapRPC translates administrative-path RPC failures into the library's
// error taxonomy. The decrypt path never goes through here; it
// collapses to the authentication-failure sentinel unconditionally.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return registry.ErrNotRegistered
	case codes.InvalidArgument:
		return registry.ErrInvalidKey
	default:
		return err
	}
}
