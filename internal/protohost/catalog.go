// Package protohost makes protobuf messages and gRPC services resolvable
// targets. Messages expose their fields by proto name, message types expose
// a static "new", and service clients expose one method per unary RPC.
package protohost

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

// Catalog holds parsed .proto files.
type Catalog struct {
	mu    sync.RWMutex
	files map[string]*desc.FileDescriptor
}

func NewCatalog() *Catalog {
	return &Catalog{files: make(map[string]*desc.FileDescriptor)}
}

// Load parses files found under importPaths. An empty importPaths means the
// current directory.
func (c *Catalog) Load(importPaths []string, files ...string) error {
	if len(importPaths) == 0 {
		importPaths = []string{"."}
	}
	return c.parse(protoparse.Parser{ImportPaths: importPaths}, files)
}

// LoadSources parses files whose contents are given in memory, keyed by file name.
func (c *Catalog) LoadSources(sources map[string]string, files ...string) error {
	return c.parse(protoparse.Parser{Accessor: protoparse.FileContentsFromMap(sources)}, files)
}

func (c *Catalog) parse(parser protoparse.Parser, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("no proto files given")
	}
	fds, err := parser.ParseFiles(files...)
	if err != nil {
		return fmt.Errorf("failed to parse proto: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, fd := range fds {
		c.add(fd)
	}
	return nil
}

func (c *Catalog) add(fd *desc.FileDescriptor) {
	if _, ok := c.files[fd.GetName()]; ok {
		return
	}
	c.files[fd.GetName()] = fd
	for _, dep := range fd.GetDependencies() {
		c.add(dep)
	}
}

// Files returns the names of every loaded file, dependencies included.
func (c *Catalog) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.files))
	for name := range c.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindMessage looks a message up by fully qualified name.
func (c *Catalog) FindMessage(name string) (*desc.MessageDescriptor, error) {
	name = strings.TrimPrefix(name, ".")
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, fd := range c.files {
		if md := fd.FindMessage(name); md != nil {
			return md, nil
		}
	}
	return nil, fmt.Errorf("message type %q not found", name)
}

// FindService looks a service up by fully qualified or simple name.
func (c *Catalog) FindService(name string) (*desc.ServiceDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, fd := range c.files {
		if sd := fd.FindService(name); sd != nil {
			return sd, nil
		}
		for _, sd := range fd.GetServices() {
			if sd.GetName() == name {
				return sd, nil
			}
		}
	}
	return nil, fmt.Errorf("service %q not found", name)
}

// FindMethod resolves "package.Service/Method", with or without a leading slash.
func (c *Catalog) FindMethod(path string) (*desc.MethodDescriptor, error) {
	path = strings.TrimPrefix(path, "/")
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return nil, fmt.Errorf("invalid method path %q, expected 'package.Service/Method'", path)
	}
	sd, err := c.FindService(path[:i])
	if err != nil {
		return nil, err
	}
	md := sd.FindMethodByName(path[i+1:])
	if md == nil {
		return nil, fmt.Errorf("method %q not found", path)
	}
	return md, nil
}

// MessageType returns the type value for a message, through which "new" resolves.
func (c *Catalog) MessageType(name string) (MessageType, error) {
	md, err := c.FindMessage(name)
	if err != nil {
		return MessageType{}, err
	}
	return MessageType{Descriptor: md}, nil
}

// MessageType is the static target of a message: resolving "new" on it
// yields a constructor.
type MessageType struct {
	Descriptor *desc.MessageDescriptor
}

func (t MessageType) String() string {
	if t.Descriptor == nil {
		return "<message type>"
	}
	return "<message type " + t.Descriptor.GetFullyQualifiedName() + ">"
}

// methodPath is the wire path grpc expects, "/package.Service/Method".
func methodPath(md *desc.MethodDescriptor) string {
	return "/" + md.GetService().GetFullyQualifiedName() + "/" + md.GetName()
}
