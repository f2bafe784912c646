package bindgen

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func requireGo(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping package loading in short mode")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}
}

func shapesConfig(t *testing.T, yaml string) *Config {
	t.Helper()
	cfg, err := ParseConfig([]byte(yaml), "dynrt.yaml")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	return cfg
}

func TestInspect_Shapes(t *testing.T) {
	requireGo(t)
	cfg := shapesConfig(t, `
package: bindings
types:
  - pkg: ./testdata/shapes
    type: Point
    exclude_methods: [Split]
    overloads:
      scale: [Scale, ScaleXY]
    statics:
      - func: NewPoint
      - func: Origin
        as: origin
`)

	ins := NewInspector(".")
	result, err := ins.Inspect(cfg)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(result.Types) != 1 {
		t.Fatalf("expected 1 type, got %d", len(result.Types))
	}
	tb := result.Types[0]
	if !tb.IsStruct {
		t.Error("Point should be a struct")
	}

	var fields []string
	for _, f := range tb.Fields {
		fields = append(fields, f.GoName)
	}
	if got := strings.Join(fields, ","); got != "X,Y" {
		t.Errorf("fields = %s, want X,Y (unexported label skipped)", got)
	}

	methods := make(map[string]*MethodInfo)
	var order []string
	for _, m := range tb.Methods {
		methods[m.GoName] = m
		order = append(order, m.Member+"/"+m.GoName)
	}
	if _, ok := methods["Split"]; ok {
		t.Error("Split should be excluded")
	}
	if _, ok := methods["reset"]; ok {
		t.Error("unexported methods must not be bound")
	}
	if m := methods["Move"]; m == nil || !m.HasPointerReceiver || Arity(m.Signature) != 2 {
		t.Errorf("Move = %+v", m)
	}
	if m := methods["Sum"]; m == nil || m.HasPointerReceiver {
		t.Errorf("Sum = %+v", m)
	}
	if m := methods["ScaleXY"]; m == nil || m.Member != "scale" {
		t.Errorf("ScaleXY = %+v", m)
	}
	want := "Labels/Labels,Move/Move,Sum/Sum,scale/Scale,scale/ScaleXY"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("method order = %s, want %s", got, want)
	}

	if len(tb.Statics) != 2 || tb.Statics[0].Member != "newPoint" || tb.Statics[1].Member != "origin" {
		t.Errorf("statics = %+v", tb.Statics)
	}

	file, err := NewCodeGenerator(cfg).Generate(result, cfg.Output)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{
		`shapes "github.com/funvibe/dynrt/internal/bindgen/testdata/shapes"`,
		`AddMethod("scale", 1,`,
		`AddMethod("scale", 2,`,
		`AddStatic("origin", 0,`,
		`return shapes.Origin(), nil`,
	} {
		if !strings.Contains(file.Content, want) {
			t.Errorf("generated code missing %q\n%s", want, file.Content)
		}
	}
}

func TestInspect_Errors(t *testing.T) {
	requireGo(t)
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown type",
			yaml:    "package: p\ntypes:\n  - pkg: ./testdata/shapes\n    type: Circle\n",
			wantErr: `type "Circle" not found`,
		},
		{
			name:    "interface",
			yaml:    "package: p\ntypes:\n  - pkg: ./testdata/shapes\n    type: Shape\n",
			wantErr: "is an interface",
		},
		{
			name:    "func is not a type",
			yaml:    "package: p\ntypes:\n  - pkg: ./testdata/shapes\n    type: NewPoint\n",
			wantErr: "is not a type",
		},
		{
			name:    "unknown overload method",
			yaml:    "package: p\ntypes:\n  - pkg: ./testdata/shapes\n    type: Point\n    overloads:\n      grow: [Grow]\n",
			wantErr: "method Grow not found",
		},
		{
			name:    "unknown whitelisted method",
			yaml:    "package: p\ntypes:\n  - pkg: ./testdata/shapes\n    type: Point\n    methods: [Grow]\n",
			wantErr: "method Grow not found",
		},
		{
			name:    "unknown static",
			yaml:    "package: p\ntypes:\n  - pkg: ./testdata/shapes\n    type: Point\n    statics:\n      - func: Make\n",
			wantErr: `function "Make" not found`,
		},
		{
			name:    "missing package",
			yaml:    "package: p\ntypes:\n  - pkg: ./testdata/nowhere\n    type: Point\n",
			wantErr: "loading packages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInspector(".").Inspect(shapesConfig(t, tt.yaml))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestWrite_UpToDate(t *testing.T) {
	requireGo(t)
	out := filepath.Join(t.TempDir(), "gen", "shapes_bindings.go")
	cfg := shapesConfig(t, "package: bindings\ntypes:\n  - pkg: ./testdata/shapes\n    type: Point\n")

	path, changed, err := Write(cfg, "dynrt.yaml", out)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != out || !changed {
		t.Fatalf("first Write = %s, %v", path, changed)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output not written: %v", err)
	}

	_, changed, err = Write(cfg, "dynrt.yaml", "")
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if changed {
		t.Error("identical output should not be rewritten")
	}
}
