package dynrt

import (
	"testing"

	"github.com/funvibe/dynrt/internal/diagnostics"
)

const userProto = `
syntax = "proto3";
package accounts;

message User {
  string name = 1;
  int64 age = 2;
}
`

func TestProtobufMessages(t *testing.T) {
	catalog := NewProtoCatalog()
	if err := catalog.LoadSources(map[string]string{"user.proto": userProto}, "user.proto"); err != nil {
		t.Fatal(err)
	}
	mt, err := catalog.MessageType("accounts.User")
	if err != nil {
		t.Fatal(err)
	}

	rt := New(WithSink(diagnostics.Discard), WithProtobuf())
	user := rt.Invoke(rt.Resolve(mt, "new"), map[string]any{"name": "ada", "age": 36})
	if IsNoResult(user) {
		t.Fatal("new(fields) failed")
	}
	if got := rt.Resolve(user, "name"); got != "ada" {
		t.Errorf("name = %v", got)
	}
	if got := rt.Add(rt.Resolve(user, "age"), 1); got != 37 {
		t.Errorf("age + 1 = %v (%T)", got, got)
	}
	if got := rt.Resolve(user, "email"); !IsNoResult(got) {
		t.Errorf("email = %v", got)
	}
}
