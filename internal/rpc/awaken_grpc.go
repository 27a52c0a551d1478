package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "awaken.v1.Awaken"

const (
	SimulateMethod = "/" + serviceName + "/Simulate"
	CompareMethod  = "/" + serviceName + "/Compare"
)

// AwakenServer is the server API for the Awaken service. Requests and
// responses are google.protobuf.Struct documents.
type AwakenServer interface {
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Compare(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterAwakenServer(s grpc.ServiceRegistrar, srv AwakenServer) {
	s.RegisterService(&AwakenServiceDesc, srv)
}

func simulateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AwakenServer).Simulate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SimulateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AwakenServer).Simulate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func compareHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AwakenServer).Compare(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CompareMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AwakenServer).Compare(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// AwakenServiceDesc is the grpc.ServiceDesc for the Awaken service.
var AwakenServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AwakenServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Simulate", Handler: simulateHandler},
		{MethodName: "Compare", Handler: compareHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// Client is the client API for the Awaken service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Simulate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SimulateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Compare(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CompareMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
