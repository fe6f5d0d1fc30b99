package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/lifeflow/bloodlink/core/metrics"
	"github.com/lifeflow/bloodlink/infra/notify"
	"github.com/lifeflow/bloodlink/infra/sms"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Store    StoreConfig    `json:"store"`
	Hospital HospitalConfig `json:"hospital"`
	SMS      sms.Config     `json:"sms"`
	Notify   notify.Config  `json:"notify"`
	Metrics  metrics.Config `json:"metrics"`
}

// ServerConfig defines the HTTP API settings.
type ServerConfig struct {
	Addr string `json:"addr"`
	// AuthToken protects the hospital-facing endpoints. Empty disables auth.
	AuthToken string `json:"auth_token"`
	// LinkBaseURL is the public prefix of the token response links sent to
	// donors.
	LinkBaseURL string `json:"link_base_url"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.LinkBaseURL == "" {
		c.LinkBaseURL = "http://localhost:8080"
	}
}

// StoreConfig defines the SQLite database location.
type StoreConfig struct {
	Path string `json:"path"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "bloodlink.db"
	}
}

// HospitalConfig is the fixed reference coordinate distances are computed
// against.
type HospitalConfig struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks the coordinate is plausible.
func (c HospitalConfig) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("hospital latitude out of range: %v", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("hospital longitude out of range: %v", c.Lng)
	}
	return nil
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("BL_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "bl_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Server.SetDefaults()
	cfg.Store.SetDefaults()
	cfg.Notify.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Hospital.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
