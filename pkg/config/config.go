// Package config loads the proxy's static configuration from a JSON or YAML
// file and layers environment-variable overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// NodeConfig is one configured upstream proxy node.
type NodeConfig struct {
	ID   string `json:"id" yaml:"id"`
	Addr string `json:"addr" yaml:"addr"`
}

// RuleConfig is one ordered classifier entry.
type RuleConfig struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Verdict string `json:"verdict" yaml:"verdict"` // "direct" | "proxy" | "reject"
}

// Config is the fully resolved configuration for one proxy process.
type Config struct {
	HTTPListen  string        `json:"http_listen" yaml:"http_listen"`
	SocksListen string        `json:"socks_listen" yaml:"socks_listen"`
	Nodes       []NodeConfig  `json:"nodes" yaml:"nodes"`
	Rules       []RuleConfig  `json:"rules" yaml:"rules"`
	DefaultRule string        `json:"default_rule" yaml:"default_rule"`
	DialTimeout time.Duration `json:"-" yaml:"-"`
	Interface   string        `json:"interface" yaml:"interface"`
	LogLevel    string        `json:"log_level" yaml:"log_level"`
	LogFormat   string        `json:"log_format" yaml:"log_format"`

	DialTimeoutMS int `json:"dial_timeout_ms" yaml:"dial_timeout_ms"`
}

// envOverrides mirrors the subset of Config an operator may want to tweak
// per-process without editing the checked-in file, following the same
// struct-tag convention the rest of this corpus uses for env overlays.
type envOverrides struct {
	HTTPListen  string `envconfig:"TOLLGATE_HTTP_LISTEN"`
	SocksListen string `envconfig:"TOLLGATE_SOCKS_LISTEN"`
	Interface   string `envconfig:"TOLLGATE_INTERFACE"`
	LogLevel    string `envconfig:"TOLLGATE_LOG_LEVEL"`
	LogFormat   string `envconfig:"TOLLGATE_LOG_FORMAT"`
	DialTimeout int    `envconfig:"TOLLGATE_DIAL_TIMEOUT_MS"`
}

// legacyAliases tolerates the field renames this config format has been
// through: "upstreams" was renamed to "nodes", and "bind_iface" to
// "interface".
type legacyAliases struct {
	UpstreamsLegacy []NodeConfig `json:"upstreams" yaml:"upstreams"`
	BindIfaceLegacy string       `json:"bind_iface" yaml:"bind_iface"`
}

// Load reads path (JSON or YAML, detected by extension) and applies
// environment overrides. Defaults: http_listen ":8080", socks_listen
// ":1080", dial_timeout_ms 1000, default_rule "direct".
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPListen:    ":8080",
		SocksListen:   ":1080",
		DefaultRule:   "direct",
		DialTimeoutMS: 1000,
		LogLevel:      "info",
		LogFormat:     "text",
	}

	var alias legacyAliases
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
		_ = yaml.Unmarshal(data, &alias)
	case ".json", "":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse json: %w", err)
		}
		_ = json.Unmarshal(data, &alias)
	default:
		return nil, fmt.Errorf("config: unrecognized extension %q", ext)
	}

	if len(cfg.Nodes) == 0 && len(alias.UpstreamsLegacy) > 0 {
		cfg.Nodes = alias.UpstreamsLegacy
	}
	if cfg.Interface == "" && alias.BindIfaceLegacy != "" {
		cfg.Interface = alias.BindIfaceLegacy
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("config: env overrides: %w", err)
	}
	if env.HTTPListen != "" {
		cfg.HTTPListen = env.HTTPListen
	}
	if env.SocksListen != "" {
		cfg.SocksListen = env.SocksListen
	}
	if env.Interface != "" {
		cfg.Interface = env.Interface
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.LogFormat = env.LogFormat
	}
	if env.DialTimeout != 0 {
		cfg.DialTimeoutMS = env.DialTimeout
	}

	cfg.DialTimeout = time.Duration(cfg.DialTimeoutMS) * time.Millisecond

	return cfg, nil
}
