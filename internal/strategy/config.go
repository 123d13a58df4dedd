package strategy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// BindingConfig binds kinds to published strategies. Entries apply in file
// order, which is also their registration order for kinds without a mapper.
//
//	bindings:
//	  - family: type
//	    kind: WatchProduct
//	    strategy: watch.product
type BindingConfig struct {
	Bindings []BindingEntry `yaml:"bindings"`
}

type BindingEntry struct {
	Family   string `yaml:"family"`
	Kind     string `yaml:"kind"`
	Strategy string `yaml:"strategy"`
}

func ParseBindingConfig(raw []byte) (*BindingConfig, error) {
	cfg := &BindingConfig{}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse strategy bindings: %w", err)
	}
	for i := range cfg.Bindings {
		e := &cfg.Bindings[i]
		e.Family = strings.ToLower(strings.TrimSpace(e.Family))
		e.Kind = strings.TrimSpace(e.Kind)
		e.Strategy = strings.TrimSpace(e.Strategy)
		if e.Kind == "" || e.Strategy == "" {
			return nil, fmt.Errorf("strategy binding %d: kind and strategy are required", i)
		}
	}
	return cfg, nil
}

func LoadBindingConfig(path string) (*BindingConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategy bindings: %w", err)
	}
	return ParseBindingConfig(raw)
}
