package protohost

import (
	"context"
	"errors"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/funvibe/dynrt/internal/diagnostics"
	"github.com/funvibe/dynrt/internal/dispatch"
	"github.com/funvibe/dynrt/internal/registry"
	"github.com/funvibe/dynrt/internal/resolver"
)

const greeterProto = `
syntax = "proto3";
package demo;

enum Mood {
  NEUTRAL = 0;
  HAPPY = 1;
}

message HelloRequest {
  string name = 1;
  int32 times = 2;
  repeated string tags = 3;
  Mood mood = 4;
}

message HelloReply {
  string message = 1;
}

service Greeter {
  rpc SayHello(HelloRequest) returns (HelloReply);
  rpc Fail(HelloRequest) returns (HelloReply);
  rpc Watch(HelloRequest) returns (stream HelloReply);
}
`

func loadCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	if err := c.LoadSources(map[string]string{"greeter.proto": greeterProto}, "greeter.proto"); err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	return c
}

func newResolver(rec *diagnostics.Recorder) *resolver.Resolver {
	reg := registry.New(registry.WithProvider(NewProvider()))
	return resolver.New(reg, rec)
}

type greeter struct{}

func (greeter) SayHello(req *dynamic.Message) map[string]any {
	return map[string]any{"message": "hello " + req.GetFieldByName("name").(string)}
}

func (greeter) Fail(*dynamic.Message) (map[string]any, error) {
	return nil, errors.New("nope")
}

func TestCatalogLookup(t *testing.T) {
	c := loadCatalog(t)
	if got := c.Files(); !reflect.DeepEqual(got, []string{"greeter.proto"}) {
		t.Errorf("Files() = %v", got)
	}
	if _, err := c.FindMessage("demo.HelloRequest"); err != nil {
		t.Errorf("FindMessage: %v", err)
	}
	if _, err := c.FindMessage("demo.Missing"); err == nil {
		t.Error("expected error for unknown message")
	}
	if _, err := c.FindService("Greeter"); err != nil {
		t.Errorf("FindService by simple name: %v", err)
	}
	md, err := c.FindMethod("/demo.Greeter/SayHello")
	if err != nil {
		t.Fatalf("FindMethod: %v", err)
	}
	if got := methodPath(md); got != "/demo.Greeter/SayHello" {
		t.Errorf("methodPath = %q", got)
	}
	if _, err := c.FindMethod("SayHello"); err == nil {
		t.Error("expected error for path without service")
	}
	if err := c.LoadSources(map[string]string{"bad.proto": "syntax = \"proto3\"; message {"}, "bad.proto"); err == nil {
		t.Error("expected parse error")
	}
}

func TestMessageConversion(t *testing.T) {
	c := loadCatalog(t)
	md, _ := c.FindMessage("demo.HelloRequest")

	msg, err := NewMessage(md, map[string]any{
		"name":  "ada",
		"times": int64(3),
		"tags":  []string{"a", "b"},
		"mood":  "HAPPY",
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	want := map[string]any{"name": "ada", "times": 3, "tags": []any{"a", "b"}, "mood": 1}
	if got := Fields(msg); !reflect.DeepEqual(got, want) {
		t.Errorf("Fields = %#v, want %#v", got, want)
	}

	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"unknown field", map[string]any{"nickname": "x"}},
		{"wrong scalar", map[string]any{"times": "three"}},
		{"not a slice", map[string]any{"tags": "a"}},
		{"unknown enum", map[string]any{"mood": "SAD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMessage(md, tt.fields); !errors.Is(err, ErrConversion) {
				t.Errorf("err = %v, want ErrConversion", err)
			}
		})
	}

	reply, _ := c.FindMessage("demo.HelloReply")
	if _, err := ToMessage(reply, msg); !errors.Is(err, ErrConversion) {
		t.Errorf("ToMessage with wrong message type: %v", err)
	}
}

func TestProviderMessageMembers(t *testing.T) {
	c := loadCatalog(t)
	rec := diagnostics.NewRecorder()
	r := newResolver(rec)

	mt, err := c.MessageType("demo.HelloRequest")
	if err != nil {
		t.Fatal(err)
	}
	bm, ok := r.ResolveMethod(mt, "new")
	if !ok {
		t.Fatal("new not found on message type")
	}
	if len(bm.Candidates()) != 2 {
		t.Errorf("new should have two overloads, got %d", len(bm.Candidates()))
	}
	empty := bm.Invoke()
	if _, ok := empty.Value.(*dynamic.Message); !ok {
		t.Fatalf("new() = %+v", empty)
	}
	res := bm.Invoke(map[string]any{"name": "bob", "times": 2})
	msg, ok := res.Value.(*dynamic.Message)
	if !ok {
		t.Fatalf("new(fields) = %+v", res)
	}

	if got := r.Resolve(msg, "name"); !got.Found || got.Value != "bob" {
		t.Errorf("name = %v", got)
	}
	if got := r.Resolve(msg, "times"); got.Value != 2 {
		t.Errorf("times = %v (%T)", got.Value, got.Value)
	}
	if got := r.Resolve(msg, "tags"); !got.Found {
		t.Errorf("unset repeated field should still resolve: %v", got)
	}
	if got := r.Resolve(msg, "missing"); got.Found {
		t.Errorf("missing = %v", got)
	}

	if res := bm.Invoke(map[string]any{"bogus": 1}); res.State != dispatch.Fault {
		t.Errorf("new(bogus) = %+v", res)
	}
	if !rec.Contains("Error when invoking:") {
		t.Errorf("conversion fault not logged: %v", rec.Lines())
	}
}

func TestProviderCachesTypeInfo(t *testing.T) {
	c := loadCatalog(t)
	md, _ := c.FindMessage("demo.HelloRequest")
	p := NewProvider()
	a, scope, ok := p.Members(dynamic.NewMessage(md))
	b, _, _ := p.Members(dynamic.NewMessage(md))
	if !ok || scope != registry.ScopeInstance || a != b {
		t.Error("message type info should be built once")
	}
	if _, _, ok := p.Members("not a message"); ok {
		t.Error("provider should ignore foreign targets")
	}
	if _, _, ok := p.Members((*dynamic.Message)(nil)); ok {
		t.Error("provider should ignore nil messages")
	}
}

func startServer(t *testing.T, c *Catalog) *ServiceClient {
	t.Helper()
	sd, err := c.FindService("demo.Greeter")
	if err != nil {
		t.Fatal(err)
	}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	Serve(srv, sd, greeter{}, newResolver(diagnostics.NewRecorder()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewServiceClient(conn, sd, 5*time.Second)
}

func TestServiceClientOverBufconn(t *testing.T) {
	c := loadCatalog(t)
	rec := diagnostics.NewRecorder()
	client := startServer(t, c)
	r := newResolver(rec)

	got := r.Resolve(client, "SayHello")
	bm, ok := got.Value.(*dispatch.BoundMethod)
	if !ok {
		t.Fatalf("SayHello = %v", got)
	}
	res := bm.Invoke(map[string]any{"name": "ada"})
	reply, ok := res.Value.(*dynamic.Message)
	if !ok {
		t.Fatalf("SayHello(ada) = %+v, diagnostics %v", res, rec.Lines())
	}
	if msg := r.Resolve(reply, "message"); msg.Value != "hello ada" {
		t.Errorf("reply message = %v", msg)
	}

	if _, ok := r.ResolveMethod(client, "Watch"); ok {
		t.Error("streaming methods should not resolve")
	}

	fail, _ := r.ResolveMethod(client, "Fail")
	if res := fail.Invoke(map[string]any{"name": "x"}); res.State != dispatch.Fault {
		t.Errorf("Fail = %+v", res)
	}
	if !rec.Contains("nope") {
		t.Errorf("server error not reported: %v", rec.Lines())
	}
}

func TestServiceClientInvoke(t *testing.T) {
	c := loadCatalog(t)
	client := startServer(t, c)

	reply, err := client.Invoke(context.Background(), "SayHello", map[string]any{"name": "bob"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := reply.GetFieldByName("message"); got != "hello bob" {
		t.Errorf("message = %v", got)
	}
	if _, err := client.Invoke(context.Background(), "Missing", nil); err == nil {
		t.Error("expected error for unknown method")
	}
	if _, err := client.Invoke(context.Background(), "Watch", nil); err == nil {
		t.Error("expected error for streaming method")
	}
	if _, err := client.Invoke(context.Background(), "SayHello", 42); !errors.Is(err, ErrConversion) {
		t.Errorf("bad request err = %v", err)
	}
}
