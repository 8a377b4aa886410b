package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/veridoc/pdftext"
)

// cliConfig is the on-disk shape for -config: the error-sink policy the
// accuracy/bounds modes run under, plus a worker count that loadCLIConfig
// returns; none of the CLI modes uses it.
type cliConfig struct {
	Policy    string `yaml:"policy"`
	MaxErrors int    `yaml:"max_errors"`
	Workers   int    `yaml:"workers"`
}

func loadCLIConfig(path string) (pdf.ErrorConfig, int, error) {
	cfg := pdf.DefaultErrorConfig()
	if path == "" {
		return cfg, 0, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, 0, err
	}
	var raw cliConfig
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return cfg, 0, err
	}
	if raw.Policy != "" {
		cfg.Policy = pdf.ErrorPolicy(raw.Policy)
	}
	if raw.MaxErrors > 0 {
		cfg.MaxErrors = raw.MaxErrors
	}
	if err := cfg.Validate(); err != nil {
		return cfg, 0, err
	}
	return cfg, raw.Workers, nil
}
