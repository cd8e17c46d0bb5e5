// Package rpc exposes the model registry over gRPC. Requests and responses
// are google.protobuf.Struct messages, so no generated stubs are needed.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "lineprofile.v1.ModelService"

const (
	describeMethod = "/" + ServiceName + "/Describe"
	evaluateMethod = "/" + ServiceName + "/Evaluate"
)

// ModelServiceServer is the server API for ModelService.
type ModelServiceServer interface {
	Describe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc is the grpc.ServiceDesc for ModelService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ModelServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Describe", Handler: describeHandler},
		{MethodName: "Evaluate", Handler: evaluateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lineprofile/v1/model.proto",
}

// RegisterModelServiceServer registers srv on s.
func RegisterModelServiceServer(s grpc.ServiceRegistrar, srv ModelServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func describeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ModelServiceServer).Describe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: describeMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ModelServiceServer).Describe(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func evaluateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ModelServiceServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ModelServiceServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client is a thin ModelService client.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Describe calls ModelService.Describe.
func (c *Client) Describe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, describeMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate calls ModelService.Evaluate.
func (c *Client) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, evaluateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
