package bindgen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Inspect loads the packages of cfg relative to the directory of configPath.
func Inspect(cfg *Config, configPath string) (*InspectResult, error) {
	return NewInspector(filepath.Dir(configPath)).Inspect(cfg)
}

// Write generates the registration file for cfg and writes it. A non-empty
// output overrides cfg.Output; relative paths resolve against the directory
// of configPath. It returns the output path and whether the file changed;
// an existing file with identical content is left untouched.
func Write(cfg *Config, configPath, output string) (string, bool, error) {
	if output != "" {
		cfg.Output = output
	}
	configDir := filepath.Dir(configPath)

	result, err := Inspect(cfg, configPath)
	if err != nil {
		return "", false, err
	}

	path := cfg.OutputPath(configDir)
	file, err := NewCodeGenerator(cfg).Generate(result, filepath.Base(path))
	if err != nil {
		return "", false, fmt.Errorf("generating %s: %w", path, err)
	}
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, []byte(file.Content)) {
		return path, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
		return "", false, fmt.Errorf("writing %s: %w", path, err)
	}
	return path, true, nil
}
