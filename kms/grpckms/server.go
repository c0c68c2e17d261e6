package grpckms

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/keyring/primitive"
)

// Server serves a fixed set of named keys over the KMS gRPC service.
// Keys maps a full key uri to the AEAD that owns it.
type Server struct {
	UnimplementedKMSServer
	Keys map[string]primitive.AEAD
}

func (s *Server) Supports(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	_ = ctx
	if s == nil || s.Keys == nil {
		return nil, status.Error(codes.FailedPrecondition, "no keys configured")
	}
	_, ok := s.Keys[in.GetValue()]
	return wrapperspb.Bool(ok), nil
}

func (s *Server) Encrypt(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	a, payload, associatedData, err := s.dispatch(in.GetValue())
	if err != nil {
		return nil, err
	}
	ct, err := a.Seal(payload, associatedData)
	if err != nil {
		return nil, status.Error(codes.Internal, "encryption failed")
	}
	return wrapperspb.Bytes(ct), nil
}

func (s *Server) Decrypt(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	a, payload, associatedData, err := s.dispatch(in.GetValue())
	if err != nil {
		return nil, err
	}
	pt, err := a.Open(payload, associatedData)
	if err != nil {
		// One undifferentiated code for every decrypt failure; the
		// client maps it back to the authentication-failure sentinel.
		return nil, status.Error(codes.InvalidArgument, "decryption failed")
	}
	return wrapperspb.Bytes(pt), nil
}

func (s *Server) dispatch(frame []byte) (primitive.AEAD, []byte, []byte, error) {
	if s == nil || s.Keys == nil {
		return nil, nil, nil, status.Error(codes.FailedPrecondition, "no keys configured")
	}
	uri, payload, associatedData, err := parseFrame(frame)
	if err != nil {
		if errors.Is(err, errMalformedFrame) {
			return nil, nil, nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, nil, nil, status.Error(codes.Internal, "parsing request")
	}
	a, ok := s.Keys[uri]
	if !ok {
		return nil, nil, nil, status.Error(codes.NotFound, "unknown key uri")
	}
	return a, payload, associatedData, nil
}
