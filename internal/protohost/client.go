package protohost

import (
	"context"
	"fmt"
	"time"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DefaultTimeout bounds an RPC made through a resolved client method.
const DefaultTimeout = 30 * time.Second

// ServiceClient is a resolvable stub for one gRPC service.
type ServiceClient struct {
	conn    grpc.ClientConnInterface
	service *desc.ServiceDescriptor
	timeout time.Duration
}

// NewServiceClient binds sd to conn. A non-positive timeout means DefaultTimeout.
func NewServiceClient(conn grpc.ClientConnInterface, sd *desc.ServiceDescriptor, timeout time.Duration) *ServiceClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ServiceClient{conn: conn, service: sd, timeout: timeout}
}

// Dial opens an insecure client connection to target.
func Dial(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	return conn, nil
}

func (c *ServiceClient) Service() *desc.ServiceDescriptor { return c.service }

func (c *ServiceClient) String() string {
	return "<grpc client " + c.service.GetFullyQualifiedName() + ">"
}

// Invoke calls the named unary method. req is a message of the input type or
// a field map.
func (c *ServiceClient) Invoke(ctx context.Context, method string, req any) (*dynamic.Message, error) {
	md := c.service.FindMethodByName(method)
	if md == nil {
		return nil, fmt.Errorf("method %q not found in %s", method, c.service.GetFullyQualifiedName())
	}
	return c.invoke(ctx, md, req)
}

func (c *ServiceClient) call(md *desc.MethodDescriptor, req any) (*dynamic.Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.invoke(ctx, md, req)
}

func (c *ServiceClient) invoke(ctx context.Context, md *desc.MethodDescriptor, req any) (*dynamic.Message, error) {
	if md.IsClientStreaming() || md.IsServerStreaming() {
		return nil, fmt.Errorf("%s is a streaming method", md.GetName())
	}
	in, err := ToMessage(md.GetInputType(), req)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	out := dynamic.NewMessage(md.GetOutputType())
	if err := c.conn.Invoke(ctx, methodPath(md), in, out); err != nil {
		return nil, fmt.Errorf("RPC failed: %w", err)
	}
	return out, nil
}
