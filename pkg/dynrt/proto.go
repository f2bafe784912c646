package dynrt

import (
	"time"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/grpc"

	"github.com/funvibe/dynrt/internal/protohost"
)

// Protobuf and gRPC targets. Register the provider with WithProtobuf (or
// WithProvider(NewProtoProvider())) so messages, message types and service
// clients resolve by name.
type ProtoCatalog = protohost.Catalog
type ProtoProvider = protohost.Provider
type MessageType = protohost.MessageType
type ServiceClient = protohost.ServiceClient

var (
	NewProtoCatalog  = protohost.NewCatalog
	NewProtoProvider = protohost.NewProvider
	DialGRPC         = protohost.Dial
)

// WithProtobuf adds a protobuf member provider.
func WithProtobuf() Option {
	return WithProvider(protohost.NewProvider())
}

// NewServiceClient binds a service descriptor to a connection.
func NewServiceClient(conn grpc.ClientConnInterface, sd *desc.ServiceDescriptor, timeout time.Duration) *ServiceClient {
	return protohost.NewServiceClient(conn, sd, timeout)
}

// ServeGRPC registers impl as the implementation of sd on server. Each RPC
// resolves and invokes the member of impl named after the method through rt.
func (rt *Runtime) ServeGRPC(server grpc.ServiceRegistrar, sd *desc.ServiceDescriptor, impl any) {
	protohost.Serve(server, sd, impl, rt.resolver)
}
