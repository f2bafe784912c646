// Command dynrt-bindgen writes the registration file for the types listed in dynrt.yaml.
//
// Usage:
//
//	dynrt-bindgen [generate|check|list] [--config path] [--dir dir] [--out file]
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/funvibe/dynrt/internal/bindgen"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	command    string
	configPath string
	dir        string
	out        string
}

func parseArgs(args []string) (*options, error) {
	opts := &options{command: "generate", dir: "."}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--config", "--dir", "--out":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			i++
			switch arg {
			case "--config":
				opts.configPath = args[i]
			case "--dir":
				opts.dir = args[i]
			case "--out":
				opts.out = args[i]
			}
		case "generate", "check", "list":
			opts.command = arg
		case "-h", "-help", "--help", "help":
			opts.command = "help"
		default:
			return nil, fmt.Errorf("unknown argument: %s", arg)
		}
	}
	return opts, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dynrt-bindgen [generate|check|list] [--config path] [--dir dir] [--out file]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  generate  write the registration file (default)")
	fmt.Fprintln(w, "  check     load the bound types and report what would be registered")
	fmt.Fprintln(w, "  list      print the types named in dynrt.yaml")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  --config  path to dynrt.yaml (default: searched upward from --dir)")
	fmt.Fprintln(w, "  --dir     directory to start the search from (default: .)")
	fmt.Fprintln(w, "  --out     override the output file")
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printUsage(stderr)
		return 2
	}
	if opts.command == "help" {
		printUsage(stdout)
		return 0
	}

	configPath := opts.configPath
	if configPath == "" {
		found, err := bindgen.FindConfig(opts.dir)
		if err != nil || found == "" {
			fmt.Fprintf(stderr, "Error: dynrt.yaml not found (or use --config)\n")
			return 1
		}
		configPath = found
	}

	cfg, err := bindgen.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	switch opts.command {
	case "list":
		listTypes(stdout, cfg)
	case "check":
		result, err := bindgen.Inspect(cfg, configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Inspection error: %v\n", err)
			return 1
		}
		printCheck(stdout, configPath, result)
	default:
		path, changed, err := bindgen.Write(cfg, configPath, opts.out)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if !changed {
			fmt.Fprintf(stdout, "%s is up to date\n", path)
			break
		}
		fmt.Fprintf(stdout, "Wrote %s\n", path)
	}
	return 0
}

func listTypes(w io.Writer, cfg *bindgen.Config) {
	fmt.Fprintf(w, "Package: %s\n", cfg.Package)
	fmt.Fprintf(w, "Output: %s\n", cfg.Output)
	for _, ts := range cfg.Types {
		fmt.Fprintf(w, "  %s.%s\n", ts.Pkg, ts.Type)
		members := make([]string, 0, len(ts.Overloads))
		for member := range ts.Overloads {
			members = append(members, member)
		}
		sort.Strings(members)
		for _, member := range members {
			fmt.Fprintf(w, "    %s → %v\n", member, ts.Overloads[member])
		}
		for _, st := range ts.Statics {
			fmt.Fprintf(w, "    static %s as %s\n", st.Func, st.As)
		}
	}
}

func printCheck(w io.Writer, configPath string, result *bindgen.InspectResult) {
	fmt.Fprintf(w, "Config: %s\n", configPath)
	for _, tb := range result.Types {
		fmt.Fprintf(w, "  type %s: %d fields, %d methods, %d statics\n",
			tb.Named.String(), len(tb.Fields), len(tb.Methods), len(tb.Statics))
		for _, m := range tb.Methods {
			fmt.Fprintf(w, "    %s/%d ← %s\n", m.Member, bindgen.Arity(m.Signature), m.GoName)
		}
		for _, s := range tb.Statics {
			fmt.Fprintf(w, "    static %s/%d ← %s\n", s.Member, bindgen.Arity(s.Signature), s.GoName)
		}
	}
	fmt.Fprintln(w, "All checks passed")
}
