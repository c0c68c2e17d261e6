// Package grpckms exposes a key-management service over gRPC and a
// registry.KMSClient that consumes one, so a keyset can reference keys
// whose cryptography happens out of process.
package grpckms

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// KMSServer is the server API for the KMS gRPC service.
//
// We intentionally use protobuf well-known wrapper types so this package
// does not require a protoc/codegen toolchain. Encrypt/Decrypt requests
// carry a protowire frame (key uri, payload, associated data) inside a
// BytesValue; see frame.go.
//
// Proto definition: kms.proto.
type KMSServer interface {
	Supports(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	Encrypt(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Decrypt(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedKMSServer can be embedded to have forward compatible implementations.
type UnimplementedKMSServer struct{}

func (UnimplementedKMSServer) Supports(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Supports not implemented")
}
func (UnimplementedKMSServer) Encrypt(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Encrypt not implemented")
}
func (UnimplementedKMSServer) Decrypt(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Decrypt not implemented")
}

// RegisterKMSServer registers the KMS service on a gRPC server.
func RegisterKMSServer(s grpc.ServiceRegistrar, srv KMSServer) {
	s.RegisterService(&KMS_ServiceDesc, srv)
}

// KMSClient is the client API for the KMS gRPC service.
type KMSClient interface {
	Supports(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	Encrypt(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Decrypt(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type kmsClient struct{ cc grpc.ClientConnInterface }

// NewKMSClient returns the raw RPC client; most callers want Dial.
func NewKMSClient(cc grpc.ClientConnInterface) KMSClient { return &kmsClient{cc: cc} }

func (c *kmsClient) Supports(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	err := c.cc.Invoke(ctx, "/xdao.keyring.kms.v1.KMS/Supports", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *kmsClient) Encrypt(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/xdao.keyring.kms.v1.KMS/Encrypt", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *kmsClient) Decrypt(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/xdao.keyring.kms.v1.KMS/Decrypt", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _KMS_Supports_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(KMSServer).Supports(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/xdao.keyring.kms.v1.KMS/Supports",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(KMSServer).Supports(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _KMS_Encrypt_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(KMSServer).Encrypt(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/xdao.keyring.kms.v1.KMS/Encrypt",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(KMSServer).Encrypt(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _KMS_Decrypt_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(KMSServer).Decrypt(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/xdao.keyring.kms.v1.KMS/Decrypt",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(KMSServer).Decrypt(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// KMS_ServiceDesc is the grpc.ServiceDesc for the KMS service.
var KMS_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "xdao.keyring.kms.v1.KMS",
	HandlerType: (*KMSServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Supports",
			Handler:    _KMS_Supports_Handler,
		},
		{
			MethodName: "Encrypt",
			Handler:    _KMS_Encrypt_Handler,
		},
		{
			MethodName: "Decrypt",
			Handler:    _KMS_Decrypt_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kms.proto",
}
