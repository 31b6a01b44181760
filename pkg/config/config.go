// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"slices"
	"time"

	"github.com/pkg/errors"
	"go.githedgehog.com/rangemerge/pkg/ranges"
	"go.githedgehog.com/rangemerge/pkg/render"
	kmetav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

const (
	DefaultDomain         = "general"
	DefaultParallel       = 4
	DefaultListen         = "127.0.0.1:8080"
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = 1 << 20

	MaxParallel = 256
)

type Config struct {
	Domain         string            `json:"domain,omitempty"`
	Output         render.OutputType `json:"output,omitempty"`
	Parallel       int               `json:"parallel,omitempty"`
	Listen         string            `json:"listen,omitempty"`
	RequestTimeout kmetav1.Duration  `json:"requestTimeout,omitempty"`
	MaxBodyBytes   int64             `json:"maxBodyBytes,omitempty"`
}

func Default() *Config {
	return &Config{
		Domain:         DefaultDomain,
		Output:         render.OutputTypeText,
		Parallel:       DefaultParallel,
		Listen:         DefaultListen,
		RequestTimeout: kmetav1.Duration{Duration: DefaultRequestTimeout},
		MaxBodyBytes:   DefaultMaxBodyBytes,
	}
}

// Load reads the config from path, unset fields keep default values. Empty
// path means defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "validating config %s", path)
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.Domain == "" {
		return errors.Errorf("config: domain is required")
	}
	if _, ok := ranges.Lookup(cfg.Domain); !ok {
		return errors.Errorf("config: domain must be one of %v", ranges.Names())
	}

	if !slices.Contains(render.OutputTypes, cfg.Output) {
		return errors.Errorf("config: output must be one of %v", render.OutputTypes)
	}

	if cfg.Parallel < 1 || cfg.Parallel > MaxParallel {
		return errors.Errorf("config: parallel must be between 1 and %d, got %d", MaxParallel, cfg.Parallel)
	}

	if cfg.Listen == "" {
		return errors.Errorf("config: listen is required")
	}
	if cfg.RequestTimeout.Duration <= 0 {
		return errors.Errorf("config: requestTimeout must be positive")
	}
	if cfg.MaxBodyBytes < 1 {
		return errors.Errorf("config: maxBodyBytes must be at least 1")
	}

	return nil
}
