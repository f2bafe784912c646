package protohost

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/funvibe/dynrt/internal/config"
	"github.com/funvibe/dynrt/internal/resolver"
)

// Serve registers impl as the implementation of sd on server. Each unary RPC
// resolves the member of impl named after the method and invokes it with the
// request message; the member may return a message of the output type or a
// field map. Streaming methods are skipped.
func Serve(server grpc.ServiceRegistrar, sd *desc.ServiceDescriptor, impl any, res *resolver.Resolver) {
	h := &serviceHandler{impl: impl, resolver: res}
	gd := &grpc.ServiceDesc{
		ServiceName: sd.GetFullyQualifiedName(),
		HandlerType: (*any)(nil),
		Methods:     []grpc.MethodDesc{},
		Streams:     []grpc.StreamDesc{},
		Metadata:    sd.GetFile().GetName(),
	}
	for _, method := range sd.GetMethods() {
		if method.IsClientStreaming() || method.IsServerStreaming() {
			continue
		}
		md := method
		gd.Methods = append(gd.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := dynamic.NewMessage(md.GetInputType())
				if err := dec(in); err != nil {
					return nil, err
				}
				h := srv.(*serviceHandler)
				if interceptor == nil {
					return h.handle(ctx, md, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPath(md)}
				return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
					return h.handle(ctx, md, req.(*dynamic.Message))
				})
			},
		})
	}
	server.RegisterService(gd, h)
}

type serviceHandler struct {
	impl     any
	resolver *resolver.Resolver
}

func (h *serviceHandler) handle(_ context.Context, md *desc.MethodDescriptor, in *dynamic.Message) (any, error) {
	bm, ok := h.resolver.ResolveMethod(h.impl, md.GetName())
	if !ok {
		return nil, status.Errorf(codes.Unimplemented, "method %s not found in implementation", md.GetName())
	}
	result := bm.Invoke(in)
	if !result.OK() {
		if result.Err != nil {
			return nil, status.Error(codes.Internal, result.Err.Error())
		}
		return nil, status.Errorf(codes.Internal, "%s: %s", md.GetName(), result.State)
	}
	out, err := ToMessage(md.GetOutputType(), result.Value)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("%s %v", config.MsgProtoConversionError, err))
	}
	return out, nil
}
