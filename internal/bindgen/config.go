// Package bindgen generates registration code for the dynrt runtime.
//
// A dynrt.yaml manifest names the Go types that generated code will resolve
// members on. bindgen loads those types with go/packages and writes one Go
// file whose init function registers every bound field, method and static
// function with typed invokers, so resolution never needs reflection.
//
// The bindgen package handles:
//   - Parsing and validating dynrt.yaml
//   - Introspecting Go packages via go/packages
//   - Rendering the registration file
package bindgen

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/dynrt/internal/config"
)

// DefaultRuntimePath is the import path generated code registers through.
const DefaultRuntimePath = "github.com/funvibe/dynrt/pkg/dynrt"

// Config represents the top-level dynrt.yaml configuration.
type Config struct {
	// Package is the package clause of the generated file.
	Package string `yaml:"package"`

	// ImportPath is the import path of the generated package. Types bound from
	// this path are referenced unqualified.
	ImportPath string `yaml:"import_path,omitempty"`

	// Output is the generated file, relative to dynrt.yaml.
	// Defaults to dynrt_bindings.go.
	Output string `yaml:"output,omitempty"`

	// Runtime overrides the import path of the dynrt package.
	Runtime string `yaml:"runtime,omitempty"`

	// Types lists the Go types to register.
	Types []TypeSpec `yaml:"types"`
}

// TypeSpec describes one bound Go type.
type TypeSpec struct {
	// Pkg is the Go import path (or a path relative to dynrt.yaml, starting with "./").
	Pkg string `yaml:"pkg"`

	// Type is the Go type name. It must be a named non-interface type.
	Type string `yaml:"type"`

	// Methods is an optional whitelist of Go method names to bind.
	Methods []string `yaml:"methods,omitempty"`

	// ExcludeMethods is an optional blacklist. Mutually exclusive with Methods.
	ExcludeMethods []string `yaml:"exclude_methods,omitempty"`

	// NoFields skips exported struct fields.
	NoFields bool `yaml:"no_fields,omitempty"`

	// Overloads groups several Go methods under one member name, so calls
	// dispatch among them by argument count. Example:
	//
	//   overloads:
	//     resize: [Resize, ResizeTo]
	Overloads map[string][]string `yaml:"overloads,omitempty"`

	// Statics binds package-level functions as static members of the type.
	Statics []StaticSpec `yaml:"statics,omitempty"`
}

// StaticSpec binds one package-level function.
type StaticSpec struct {
	// Func is the Go function name.
	Func string `yaml:"func"`

	// As is the member name. Defaults to Func with a lower-case first letter.
	As string `yaml:"as,omitempty"`
}

// LoadConfig reads and parses a dynrt.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses dynrt.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for dynrt.yaml starting from dir and walking up to
// parent directories. It returns "" and a nil error when none is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range config.ManifestFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.Package == "" {
		return fmt.Errorf("%s: package is required", path)
	}
	if !token.IsIdentifier(c.Package) {
		return fmt.Errorf("%s: package %q is not a valid identifier", path, c.Package)
	}
	if len(c.Types) == 0 {
		return fmt.Errorf("%s: no types defined", path)
	}

	seenTypes := make(map[string]int)

	for i, ts := range c.Types {
		if ts.Pkg == "" {
			return fmt.Errorf("%s: types[%d]: pkg is required", path, i)
		}
		if ts.Type == "" {
			return fmt.Errorf("%s: types[%d] (%s): type is required", path, i, ts.Pkg)
		}
		if !token.IsExported(ts.Type) {
			return fmt.Errorf("%s: types[%d] (%s): type %q is not exported", path, i, ts.Pkg, ts.Type)
		}

		key := ts.Pkg + "." + ts.Type
		if prev, ok := seenTypes[key]; ok {
			return fmt.Errorf("%s: types[%d]: %s is already bound by types[%d]", path, i, key, prev)
		}
		seenTypes[key] = i

		if len(ts.Methods) > 0 && len(ts.ExcludeMethods) > 0 {
			return fmt.Errorf("%s: types[%d] (%s): methods and exclude_methods are mutually exclusive", path, i, key)
		}

		grouped := make(map[string]string)
		for member, methods := range ts.Overloads {
			if !token.IsIdentifier(member) {
				return fmt.Errorf("%s: types[%d].overloads (%s): %q is not a valid member name", path, i, key, member)
			}
			if len(methods) == 0 {
				return fmt.Errorf("%s: types[%d].overloads[%s] (%s): at least one method is required", path, i, member, key)
			}
			for _, m := range methods {
				if prev, ok := grouped[m]; ok {
					return fmt.Errorf("%s: types[%d].overloads (%s): method %s is listed under both %s and %s",
						path, i, key, m, prev, member)
				}
				grouped[m] = member
			}
		}

		seenStatics := make(map[string]bool)
		for j, st := range ts.Statics {
			if st.Func == "" {
				return fmt.Errorf("%s: types[%d].statics[%d] (%s): func is required", path, i, j, key)
			}
			if !token.IsExported(st.Func) {
				return fmt.Errorf("%s: types[%d].statics[%d] (%s): func %q is not exported", path, i, j, key, st.Func)
			}
			if st.As != "" && !token.IsIdentifier(st.As) {
				return fmt.Errorf("%s: types[%d].statics[%d] (%s): %q is not a valid member name", path, i, j, key, st.As)
			}
			name := st.memberName()
			if seenStatics[name] {
				return fmt.Errorf("%s: types[%d].statics[%d] (%s): static member %q is bound twice", path, i, j, key, name)
			}
			seenStatics[name] = true
		}
	}

	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Output == "" {
		c.Output = config.DefaultGeneratedFile
	}
	if c.Runtime == "" {
		c.Runtime = DefaultRuntimePath
	}
	for i := range c.Types {
		for j := range c.Types[i].Statics {
			c.Types[i].Statics[j].As = c.Types[i].Statics[j].memberName()
		}
	}
}

func (s StaticSpec) memberName() string {
	if s.As != "" {
		return s.As
	}
	return lcFirst(s.Func)
}

// OutputPath returns the generated file's path, resolved against configDir.
func (c *Config) OutputPath(configDir string) string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}
	return filepath.Join(configDir, c.Output)
}

// MemberFor returns the member name a Go method is registered under.
func (ts *TypeSpec) MemberFor(method string) string {
	for member, methods := range ts.Overloads {
		for _, m := range methods {
			if m == method {
				return member
			}
		}
	}
	return method
}

// includes reports whether the method filter admits a Go method.
// Methods named in overloads are always admitted.
func (ts *TypeSpec) includes(method string) bool {
	for _, methods := range ts.Overloads {
		for _, m := range methods {
			if m == method {
				return true
			}
		}
	}
	if len(ts.Methods) > 0 {
		for _, m := range ts.Methods {
			if m == method {
				return true
			}
		}
		return false
	}
	for _, m := range ts.ExcludeMethods {
		if m == method {
			return false
		}
	}
	return true
}

func lcFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
