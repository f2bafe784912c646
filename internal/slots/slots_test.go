package slots

import "testing"

func TestEveryOperationIsUnimplemented(t *testing.T) {
	tests := []struct {
		op  string
		got Result
	}{
		{"_import", Import(nil, "mod")},
		{"access", Access(1)},
		{"getSlot", GetSlot(struct{}{}, "x")},
		{"setSlot", SetSlot(struct{}{}, "x")},
		{"respondsTo", RespondsTo(struct{}{}, "x")},
		{"respond", Respond(struct{}{}, "x", []any{1})},
	}
	for _, tt := range tests {
		if tt.got.Op != tt.op || tt.got.State != Unimplemented {
			t.Errorf("%s = %+v", tt.op, tt.got)
		}
	}
	if s := Access(nil).String(); s != "<access unimplemented>" {
		t.Errorf("String() = %q", s)
	}
}
