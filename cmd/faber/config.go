package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configName is the per-project defaults file, looked up in the working
// directory.
const configName = ".faber.yaml"

// fileConfig mirrors .faber.yaml. The file only supplies defaults;
// explicitly set flags always win.
type fileConfig struct {
	Schema    string `yaml:"schema,omitempty"`
	Out       string `yaml:"out,omitempty"`
	Dialect   string `yaml:"dialect,omitempty"`
	Module    string `yaml:"module,omitempty"`
	Stubs     string `yaml:"stubs,omitempty"`
	API       bool   `yaml:"api,omitempty"`
	Factory   bool   `yaml:"factory,omitempty"`
	Collision string `yaml:"collision,omitempty"`
}

// loadFileConfig reads .faber.yaml from dir. A missing file is not an
// error; it loads as an empty config.
func loadFileConfig(dir string) (*fileConfig, error) {
	cfg := &fileConfig{}
	data, err := os.ReadFile(filepath.Join(dir, configName))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", configName, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configName, err)
	}
	return cfg, nil
}

// fillString applies the file value to target unless the flag was set on
// the command line.
func fillString(cmd *cobra.Command, flag string, target *string, value string) {
	if value != "" && !cmd.Flags().Changed(flag) {
		*target = value
	}
}

// fillBool applies the file value to target unless the flag was set on
// the command line.
func fillBool(cmd *cobra.Command, flag string, target *bool, value bool) {
	if value && !cmd.Flags().Changed(flag) {
		*target = true
	}
}
