package bindgen

import (
	"fmt"
	"go/format"
	"go/types"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/funvibe/dynrt/internal/config"
)

// CodeGenerator renders the registration file for an InspectResult.
type CodeGenerator struct {
	pkgName     string
	importPath  string
	runtimePath string
}

// NewCodeGenerator creates a generator for the package and runtime named in cfg.
func NewCodeGenerator(cfg *Config) *CodeGenerator {
	runtime := cfg.Runtime
	if runtime == "" {
		runtime = DefaultRuntimePath
	}
	return &CodeGenerator{
		pkgName:     cfg.Package,
		importPath:  cfg.ImportPath,
		runtimePath: runtime,
	}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the base name of the file.
	Filename string

	// Content is the formatted Go source code.
	Content string
}

// Generate produces the registration file. filename is only recorded in the result.
func (cg *CodeGenerator) Generate(result *InspectResult, filename string) (GeneratedFile, error) {
	ctx := &fileContext{
		importPath: cg.importPath,
		imports:    make(map[string]string),
		taken:      make(map[string]bool),
	}

	for _, tb := range result.Types {
		ctx.addBinding(tb)
	}
	if len(ctx.registrations) == 0 {
		return GeneratedFile{}, fmt.Errorf("nothing to register: every bound type is empty")
	}

	src, err := ctx.render(cg.pkgName, cg.runtimePath)
	if err != nil {
		return GeneratedFile{}, err
	}
	formatted, err := format.Source([]byte(src))
	if err != nil {
		return GeneratedFile{}, fmt.Errorf("formatting generated code: %w\n%s", err, src)
	}
	return GeneratedFile{Filename: filename, Content: string(formatted)}, nil
}

// fileContext accumulates the imports and registrations of one file.
type fileContext struct {
	importPath    string
	imports       map[string]string // path → alias
	taken         map[string]bool   // aliases in use
	registrations []registration
}

// registration is one NewTypeInfo chain.
type registration struct {
	Recv    string
	Entries []string
}

// qualifier returns the alias for pkg, importing it on first use.
func (ctx *fileContext) qualifier(pkg *types.Package) string {
	if pkg.Path() == ctx.importPath {
		return ""
	}
	if alias, ok := ctx.imports[pkg.Path()]; ok {
		return alias
	}
	alias := ImportAlias(pkg.Path())
	base := alias
	for n := 2; ctx.taken[alias]; n++ {
		alias = fmt.Sprintf("%s%d", base, n)
	}
	ctx.imports[pkg.Path()] = alias
	ctx.taken[alias] = true
	return alias
}

func (ctx *fileContext) typeString(t types.Type) string {
	return types.TypeString(t, ctx.qualifier)
}

// addBinding registers T with its fields, value-receiver methods and statics,
// and *T with its fields and every method.
func (ctx *fileContext) addBinding(tb *TypeBinding) {
	valueType := ctx.typeString(tb.Named)
	ptrType := "*" + valueType

	value := registration{Recv: valueType}
	ptr := registration{Recv: ptrType}

	for _, f := range tb.Fields {
		value.Entries = append(value.Entries, fieldGetter(valueType, f, false))
		ptr.Entries = append(ptr.Entries, fieldGetter(ptrType, f, true))
	}
	for _, m := range tb.Methods {
		if !m.HasPointerReceiver {
			value.Entries = append(value.Entries, ctx.methodInvoker(valueType, m))
		}
		ptr.Entries = append(ptr.Entries, ctx.methodInvoker(ptrType, m))
	}
	for _, s := range tb.Statics {
		value.Entries = append(value.Entries, ctx.staticInvoker(tb.Named.Obj().Pkg(), s))
	}

	for _, r := range []registration{value, ptr} {
		if len(r.Entries) > 0 {
			ctx.registrations = append(ctx.registrations, r)
		}
	}
}

func fieldGetter(recvType string, f *FieldInfo, pointer bool) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "AddField(%q, func(target any) (any, bool) {\n", f.GoName)
	fmt.Fprintf(&buf, "recv, err := dynrt.Receiver[%s](target)\n", recvType)
	if pointer {
		buf.WriteString("if err != nil || recv == nil {\n")
	} else {
		buf.WriteString("if err != nil {\n")
	}
	buf.WriteString("return nil, false\n}\n")
	fmt.Fprintf(&buf, "return recv.%s, true\n})", f.GoName)
	return buf.String()
}

func (ctx *fileContext) methodInvoker(recvType string, m *MethodInfo) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "AddMethod(%q, %d, func(target any, args []any) (any, error) {\n", m.Member, Arity(m.Signature))
	fmt.Fprintf(&buf, "recv, err := dynrt.Receiver[%s](target)\n", recvType)
	buf.WriteString("if err != nil {\nreturn nil, err\n}\n")
	ctx.writeCall(&buf, "recv."+m.GoName, m.Signature)
	buf.WriteString("})")
	return buf.String()
}

func (ctx *fileContext) staticInvoker(pkg *types.Package, s *StaticInfo) string {
	fn := s.GoName
	if q := ctx.qualifier(pkg); q != "" {
		fn = q + "." + fn
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "AddStatic(%q, %d, func(_ any, args []any) (any, error) {\n", s.Member, Arity(s.Signature))
	ctx.writeCall(&buf, fn, s.Signature)
	buf.WriteString("})")
	return buf.String()
}

// writeCall binds args to the parameters of sig, calls fn, and returns its
// results the way reflected calls do: a trailing error becomes the error,
// several remaining results become []any.
func (ctx *fileContext) writeCall(buf *strings.Builder, fn string, sig *types.Signature) {
	params := sig.Params()
	n := params.Len()
	fixed := n
	if sig.Variadic() {
		fixed = n - 1
	} else {
		fmt.Fprintf(buf, "if err := dynrt.CheckArity(args, %d); err != nil {\nreturn nil, err\n}\n", n)
	}

	var callArgs []string
	for i := 0; i < fixed; i++ {
		fmt.Fprintf(buf, "a%d, err := dynrt.Arg[%s](args, %d)\n", i, ctx.typeString(params.At(i).Type()), i)
		buf.WriteString("if err != nil {\nreturn nil, err\n}\n")
		callArgs = append(callArgs, fmt.Sprintf("a%d", i))
	}
	if sig.Variadic() {
		elem := ctx.typeString(params.At(n - 1).Type().(*types.Slice).Elem())
		fmt.Fprintf(buf, "var rest []%s\n", elem)
		fmt.Fprintf(buf, "for i := %d; i < len(args); i++ {\n", fixed)
		fmt.Fprintf(buf, "v, err := dynrt.Arg[%s](args, i)\n", elem)
		buf.WriteString("if err != nil {\nreturn nil, err\n}\nrest = append(rest, v)\n}\n")
		callArgs = append(callArgs, "rest...")
	}
	call := fn + "(" + strings.Join(callArgs, ", ") + ")"

	results := sig.Results()
	count := results.Len()
	hasErr := count > 0 && isErrorType(results.At(count-1).Type())
	values := count
	if hasErr {
		values--
	}

	var names []string
	for i := 0; i < values; i++ {
		names = append(names, fmt.Sprintf("r%d", i))
	}

	switch {
	case count == 0:
		fmt.Fprintf(buf, "%s\nreturn nil, nil\n", call)
	case hasErr && values == 0:
		fmt.Fprintf(buf, "return nil, %s\n", call)
	case !hasErr && values == 1:
		fmt.Fprintf(buf, "return %s, nil\n", call)
	default:
		lhs := append([]string{}, names...)
		if hasErr {
			lhs = append(lhs, "err")
		}
		fmt.Fprintf(buf, "%s := %s\n", strings.Join(lhs, ", "), call)
		if hasErr {
			buf.WriteString("if err != nil {\nreturn nil, err\n}\n")
		}
		if values == 1 {
			buf.WriteString("return r0, nil\n")
		} else {
			fmt.Fprintf(buf, "return []any{%s}, nil\n", strings.Join(names, ", "))
		}
	}
}

func isErrorType(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

type importEntry struct {
	Path  string
	Alias string
}

func (ctx *fileContext) sortedImports() []importEntry {
	entries := make([]importEntry, 0, len(ctx.imports))
	for path, alias := range ctx.imports {
		entries = append(entries, importEntry{Path: path, Alias: alias})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}

func (ctx *fileContext) render(pkgName, runtimePath string) (string, error) {
	tmpl, err := template.New("bindings").Parse(bindingsTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	data := struct {
		Header        string
		Package       string
		RuntimePath   string
		Imports       []importEntry
		Registrations []registration
	}{
		Header:        config.GeneratedHeader,
		Package:       pkgName,
		RuntimePath:   runtimePath,
		Imports:       ctx.sortedImports(),
		Registrations: ctx.registrations,
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// goReservedWords are Go keywords that cannot be used as import aliases.
var goReservedWords = map[string]bool{
	"break": true, "default": true, "func": true, "interface": true, "select": true,
	"case": true, "defer": true, "go": true, "map": true, "struct": true,
	"chan": true, "else": true, "goto": true, "package": true, "switch": true,
	"const": true, "fallthrough": true, "if": true, "range": true, "type": true,
	"continue": true, "for": true, "import": true, "return": true, "var": true,
	// Generated code uses these identifiers, so avoid them as aliases
	"reflect": true, "dynrt": true, "init": true, "target": true, "args": true,
	"recv": true, "err": true, "rest": true, "v": true, "i": true,
}

// ImportAlias returns a valid Go identifier for an import path.
// Handles hyphens (go-redis → goredis), versioned paths (v9 → parent),
// and reserved words (go → pkgGo).
func ImportAlias(pkgPath string) string {
	parts := strings.Split(pkgPath, "/")
	last := parts[len(parts)-1]
	if len(last) > 0 && last[0] == 'v' && len(parts) > 1 {
		allDigits := true
		for _, c := range last[1:] {
			if c < '0' || c > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			last = parts[len(parts)-2]
		}
	}

	alias := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, last)

	if alias == "" {
		alias = "pkg"
	}
	if unicode.IsDigit(rune(alias[0])) {
		alias = "pkg" + alias
	}
	if goReservedWords[alias] {
		alias = "pkg" + strings.ToUpper(alias[:1]) + alias[1:]
	}
	return alias
}

const bindingsTemplate = `{{.Header}}

package {{.Package}}

import (
	"reflect"

	dynrt "{{.RuntimePath}}"
{{- range .Imports}}
	{{.Alias}} "{{.Path}}"
{{- end}}
)

func init() {
{{- range .Registrations}}
	dynrt.Register(dynrt.NewTypeInfo(reflect.TypeFor[{{.Recv}}]()){{range .Entries}}.
		{{.}}{{end}})
{{- end}}
}
`
