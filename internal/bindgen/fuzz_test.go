package bindgen

import (
	"fmt"
	"go/parser"
	"go/token"
	"go/types"
	"testing"
)

// FuzzParseConfig checks that ParseConfig never panics on arbitrary input.
func FuzzParseConfig(f *testing.F) {
	f.Add([]byte("package: p\ntypes:\n  - pkg: example.com/a\n    type: T\n"))
	f.Add([]byte("package: p\ntypes:\n  - pkg: a\n    type: T\n    overloads:\n      run: [Run, RunWith]\n"))
	f.Add([]byte("package: p\ntypes:\n  - pkg: a\n    type: T\n    statics:\n      - func: New\n        as: create\n"))
	f.Add([]byte(""))
	f.Add([]byte("{}"))
	f.Add([]byte("null"))
	f.Add([]byte("types: [1, 2, 3]"))

	f.Fuzz(func(t *testing.T, data []byte) {
		cfg, err := ParseConfig(data, "fuzz.yaml")
		if err != nil {
			return
		}
		if cfg.Output == "" || cfg.Runtime == "" {
			t.Errorf("defaults not applied: %+v", cfg)
		}
	})
}

var fuzzTypes = []types.Type{
	types.Typ[types.Int],
	types.Typ[types.String],
	types.Typ[types.Float64],
	types.Typ[types.Bool],
	types.NewSlice(types.Typ[types.Byte]),
	types.NewMap(types.Typ[types.String], types.Typ[types.Int]),
	types.Universe.Lookup("error").Type(),
	types.NewInterfaceType(nil, nil),
}

// FuzzCodegen builds bindings from raw bytes and checks that generation
// either fails cleanly or produces Go that parses.
func FuzzCodegen(f *testing.F) {
	f.Add([]byte{0, 0, 0})
	f.Add([]byte{1, 2, 3, 4, 5})
	f.Add([]byte{3, 3, 3, 4, 5, 6, 7, 8})
	f.Add([]byte{255, 128, 64, 32, 16, 8, 4, 2, 1, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) < 3 {
			return
		}
		tb := fuzzBinding(data)
		file, err := NewCodeGenerator(&Config{Package: "fuzz"}).Generate(&InspectResult{Types: []*TypeBinding{tb}}, "fuzz.go")
		if err != nil {
			return
		}
		if _, err := parser.ParseFile(token.NewFileSet(), file.Filename, file.Content, parser.AllErrors); err != nil {
			t.Errorf("generated code is not valid Go:\n%s\nerror: %v", file.Content, err)
		}
	})
}

func fuzzBinding(data []byte) *TypeBinding {
	pkg := types.NewPackage("github.com/fuzz/pkg", "pkg")
	obj := types.NewTypeName(token.NoPos, pkg, "FuzzType", nil)
	named := types.NewNamed(obj, types.NewStruct(nil, nil), nil)
	tb := &TypeBinding{Spec: TypeSpec{Pkg: pkg.Path(), Type: "FuzzType"}, Named: named, IsStruct: true}

	pick := func(b byte) types.Type { return fuzzTypes[int(b)%len(fuzzTypes)] }
	param := func(i int, t types.Type) *types.Var {
		return types.NewParam(token.NoPos, pkg, fmt.Sprintf("p%d", i), t)
	}

	i := 0
	for n := 0; i+2 < len(data) && n < 6; n++ {
		kind := data[i] % 3
		paramCount := int(data[i+1] % 4)
		resultCount := int(data[i+2] % 3)
		i += 3

		var params, results []*types.Var
		for p := 0; p < paramCount && i < len(data); p++ {
			params = append(params, param(p, pick(data[i])))
			i++
		}
		for r := 0; r < resultCount && i < len(data); r++ {
			results = append(results, param(r, pick(data[i])))
			i++
		}
		variadic := false
		if len(params) > 0 {
			if _, ok := params[len(params)-1].Type().(*types.Slice); ok && kind == 2 {
				variadic = true
			}
		}

		switch kind {
		case 0:
			tb.Fields = append(tb.Fields, &FieldInfo{GoName: fmt.Sprintf("F%d", n), Type: pick(byte(paramCount))})
		case 1:
			recv := param(0, types.NewPointer(named))
			sig := types.NewSignatureType(recv, nil, nil, types.NewTuple(params...), types.NewTuple(results...), variadic)
			tb.Methods = append(tb.Methods, &MethodInfo{
				GoName:             fmt.Sprintf("M%d", n),
				Member:             fmt.Sprintf("m%d", n%2),
				Signature:          sig,
				HasPointerReceiver: data[i-1]%2 == 0,
			})
		case 2:
			sig := types.NewSignatureType(nil, nil, nil, types.NewTuple(params...), types.NewTuple(results...), variadic)
			tb.Statics = append(tb.Statics, &StaticInfo{GoName: fmt.Sprintf("New%d", n), Member: fmt.Sprintf("new%d", n), Signature: sig})
		}
	}
	return tb
}
