package protohost

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"

	"github.com/funvibe/dynrt/internal/config"
	"github.com/funvibe/dynrt/internal/registry"
)

var (
	messageType = reflect.TypeFor[*dynamic.Message]()
	staticType  = reflect.TypeFor[MessageType]()
	clientType  = reflect.TypeFor[*ServiceClient]()
)

// Provider supplies members for dynamic messages, message types and service
// clients. Type infos are built once per descriptor.
type Provider struct {
	mu       sync.Mutex
	messages map[string]*registry.TypeInfo
	statics  map[string]*registry.TypeInfo
	services map[string]*registry.TypeInfo
}

func NewProvider() *Provider {
	return &Provider{
		messages: make(map[string]*registry.TypeInfo),
		statics:  make(map[string]*registry.TypeInfo),
		services: make(map[string]*registry.TypeInfo),
	}
}

// Members implements registry.Provider.
func (p *Provider) Members(target any) (*registry.TypeInfo, registry.Scope, bool) {
	switch t := target.(type) {
	case *dynamic.Message:
		if t == nil {
			return nil, 0, false
		}
		return p.messageInfo(t.GetMessageDescriptor()), registry.ScopeInstance, true
	case MessageType:
		if t.Descriptor == nil {
			return nil, 0, false
		}
		return p.staticInfo(t.Descriptor), registry.ScopeStatic, true
	case *ServiceClient:
		if t == nil || t.service == nil {
			return nil, 0, false
		}
		return p.serviceInfo(t.service), registry.ScopeInstance, true
	}
	return nil, 0, false
}

func (p *Provider) messageInfo(md *desc.MessageDescriptor) *registry.TypeInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	name := md.GetFullyQualifiedName()
	if ti, ok := p.messages[name]; ok {
		return ti
	}
	ti := registry.NewNamedTypeInfo(name, messageType)
	for _, fd := range md.GetFields() {
		ti.AddField(fd.GetName(), fieldGetter(fd))
	}
	p.messages[name] = ti
	return ti
}

func fieldGetter(fd *desc.FieldDescriptor) registry.Getter {
	return func(target any) (any, bool) {
		msg, ok := target.(*dynamic.Message)
		if !ok || msg == nil {
			return nil, false
		}
		v, err := msg.TryGetField(fd)
		if err != nil {
			return nil, false
		}
		return FromProto(v), true
	}
}

func (p *Provider) staticInfo(md *desc.MessageDescriptor) *registry.TypeInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	name := md.GetFullyQualifiedName()
	if ti, ok := p.statics[name]; ok {
		return ti
	}
	ti := registry.NewNamedTypeInfo(name, staticType).
		AddStatic(config.ProtoNewMember, 0, func(any, []any) (any, error) {
			return dynamic.NewMessage(md), nil
		}).
		AddStatic(config.ProtoNewMember, 1, func(_ any, args []any) (any, error) {
			return ToMessage(md, args[0])
		})
	p.statics[name] = ti
	return ti
}

func (p *Provider) serviceInfo(sd *desc.ServiceDescriptor) *registry.TypeInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	name := sd.GetFullyQualifiedName()
	if ti, ok := p.services[name]; ok {
		return ti
	}
	ti := registry.NewNamedTypeInfo(name, clientType)
	for _, md := range sd.GetMethods() {
		if md.IsClientStreaming() || md.IsServerStreaming() {
			continue
		}
		ti.AddMethod(md.GetName(), 1, rpcInvoker(md))
	}
	p.services[name] = ti
	return ti
}

func rpcInvoker(md *desc.MethodDescriptor) registry.Invoker {
	return func(target any, args []any) (any, error) {
		client, err := registry.Receiver[*ServiceClient](target)
		if err != nil {
			return nil, err
		}
		if err := registry.CheckArity(args, 1); err != nil {
			return nil, fmt.Errorf("%s: %w", md.GetName(), err)
		}
		return client.call(md, args[0])
	}
}
