package bindgen

import (
	"fmt"
	"go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// InspectResult holds the type information code generation needs.
type InspectResult struct {
	// Types is ordered as in dynrt.yaml.
	Types []*TypeBinding
}

// TypeBinding is a bound Go type resolved against its package.
type TypeBinding struct {
	Spec TypeSpec

	// Named is the bound type.
	Named *types.Named

	// IsStruct is true if the underlying type is a struct.
	IsStruct bool

	Fields  []*FieldInfo
	Methods []*MethodInfo
	Statics []*StaticInfo
}

// FieldInfo describes an exported struct field.
type FieldInfo struct {
	GoName string
	Type   types.Type
}

// MethodInfo describes one bound method.
type MethodInfo struct {
	// GoName is the Go method name.
	GoName string

	// Member is the name the method resolves under.
	Member string

	Signature *types.Signature

	// HasPointerReceiver is true if the method is only in the method set of *T.
	HasPointerReceiver bool
}

// StaticInfo describes a package-level function bound as a static member.
type StaticInfo struct {
	GoName    string
	Member    string
	Signature *types.Signature
}

// Arity is the member arity of a signature: its parameter count, with a
// variadic parameter counted once.
func Arity(sig *types.Signature) int {
	return sig.Params().Len()
}

// Inspector loads Go packages and resolves bound types.
type Inspector struct {
	// dir is the directory packages are loaded from (the directory of dynrt.yaml).
	dir string

	// loaded caches packages by the pattern they were loaded with.
	loaded map[string]*packages.Package
}

// NewInspector creates an Inspector that loads packages relative to dir.
func NewInspector(dir string) *Inspector {
	return &Inspector{
		dir:    dir,
		loaded: make(map[string]*packages.Package),
	}
}

// Inspect loads every package referenced in cfg and resolves each type.
func (ins *Inspector) Inspect(cfg *Config) (*InspectResult, error) {
	for _, ts := range cfg.Types {
		if _, err := ins.load(ts.Pkg); err != nil {
			return nil, fmt.Errorf("loading packages: %w", err)
		}
	}

	result := &InspectResult{}
	for _, ts := range cfg.Types {
		tb, err := ins.resolveType(ts)
		if err != nil {
			return nil, fmt.Errorf("resolving %s.%s: %w", ts.Pkg, ts.Type, err)
		}
		result.Types = append(result.Types, tb)
	}
	return result, nil
}

// load loads a single package pattern using go/packages.
func (ins *Inspector) load(pattern string) (*packages.Package, error) {
	if pkg, ok := ins.loaded[pattern]; ok {
		return pkg, nil
	}

	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedImports |
			packages.NeedDeps,
		Dir: ins.dir,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", pattern, err)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("pattern %s matched %d packages, want 1", pattern, len(pkgs))
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		var errs []string
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}

	ins.loaded[pattern] = pkg
	return pkg, nil
}

func (ins *Inspector) resolveType(ts TypeSpec) (*TypeBinding, error) {
	pkg := ins.loaded[ts.Pkg]
	scope := pkg.Types.Scope()

	obj := scope.Lookup(ts.Type)
	if obj == nil {
		return nil, fmt.Errorf("type %q not found in package %s", ts.Type, pkg.PkgPath)
	}
	typeName, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("%q is not a type in package %s", ts.Type, pkg.PkgPath)
	}
	named, ok := typeName.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("%q is not a named type in package %s", ts.Type, pkg.PkgPath)
	}
	if named.TypeParams().Len() > 0 {
		return nil, fmt.Errorf("generic type %s cannot be bound", ts.Type)
	}

	underlying := named.Underlying()
	if _, ok := underlying.(*types.Interface); ok {
		return nil, fmt.Errorf("%s is an interface; bind its concrete types", ts.Type)
	}

	tb := &TypeBinding{Spec: ts, Named: named}

	if st, ok := underlying.(*types.Struct); ok {
		tb.IsStruct = true
		if !ts.NoFields {
			for i := 0; i < st.NumFields(); i++ {
				field := st.Field(i)
				if !field.Exported() {
					continue
				}
				tb.Fields = append(tb.Fields, &FieldInfo{GoName: field.Name(), Type: field.Type()})
			}
		}
	}

	// The method set of *T holds both receiver kinds.
	valueSet := types.NewMethodSet(named)
	ptrSet := types.NewMethodSet(types.NewPointer(named))
	found := make(map[string]bool)
	for i := 0; i < ptrSet.Len(); i++ {
		method := ptrSet.At(i).Obj().(*types.Func)
		if !method.Exported() {
			continue
		}
		found[method.Name()] = true
		if !ts.includes(method.Name()) {
			continue
		}
		tb.Methods = append(tb.Methods, &MethodInfo{
			GoName:             method.Name(),
			Member:             ts.MemberFor(method.Name()),
			Signature:          method.Type().(*types.Signature),
			HasPointerReceiver: valueSet.Lookup(method.Pkg(), method.Name()) == nil,
		})
	}

	for member, methods := range ts.Overloads {
		for _, m := range methods {
			if !found[m] {
				return nil, fmt.Errorf("overloads[%s]: method %s not found on %s", member, m, ts.Type)
			}
		}
	}
	for _, m := range ts.Methods {
		if !found[m] {
			return nil, fmt.Errorf("method %s not found on %s", m, ts.Type)
		}
	}

	// Member order first, then Go name, so overloads keep a stable order.
	sort.SliceStable(tb.Methods, func(i, j int) bool {
		if tb.Methods[i].Member != tb.Methods[j].Member {
			return tb.Methods[i].Member < tb.Methods[j].Member
		}
		return tb.Methods[i].GoName < tb.Methods[j].GoName
	})

	for _, st := range ts.Statics {
		fn, ok := scope.Lookup(st.Func).(*types.Func)
		if !ok {
			return nil, fmt.Errorf("function %q not found in package %s", st.Func, pkg.PkgPath)
		}
		sig := fn.Type().(*types.Signature)
		if sig.TypeParams().Len() > 0 {
			return nil, fmt.Errorf("generic function %s cannot be bound", st.Func)
		}
		tb.Statics = append(tb.Statics, &StaticInfo{GoName: st.Func, Member: st.memberName(), Signature: sig})
	}

	return tb, nil
}
