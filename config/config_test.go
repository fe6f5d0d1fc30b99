package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `server:
  addr: ":8081"
  auth_token: "secret"
  link_base_url: "https://donate.example.org"
store:
  path: "/var/lib/bloodlink/bloodlink.db"
hospital:
  lat: 28.6139
  lng: 77.2090
sms:
  url: "https://sms.example.org/send"
  api_key: "k1"
notify:
  enabled: true
  broker: "tcp://localhost:1883"
  topic: "bloodlink/notifications"
metrics:
  prometheus_enabled: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.addr", cfg.Server.Addr, ":8081"},
		{"server.auth_token", cfg.Server.AuthToken, "secret"},
		{"server.link_base_url", cfg.Server.LinkBaseURL, "https://donate.example.org"},
		{"store.path", cfg.Store.Path, "/var/lib/bloodlink/bloodlink.db"},
		{"hospital.lat", cfg.Hospital.Lat, 28.6139},
		{"hospital.lng", cfg.Hospital.Lng, 77.2090},
		{"sms.url", cfg.SMS.URL, "https://sms.example.org/send"},
		{"notify.enabled", cfg.Notify.Enabled, true},
		{"notify.broker", cfg.Notify.Broker, "tcp://localhost:1883"},
		{"metrics.prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.prometheus_addr_default", cfg.Metrics.PrometheusAddr, ":9090"},
		{"notify.client_id_default", cfg.Notify.ClientID, "bloodlink-notify"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("hospital:\n  lat: 0\n  lng: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Store.Path != "bloodlink.db" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadCoordinate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("hospital:\n  lat: 123.0\n  lng: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for latitude 123")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected unsupported format error")
	}
}
