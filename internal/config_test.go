package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/pastebin/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestRemoteConfig_RequiresURL(t *testing.T) {
	cfg := RemoteConfig{BaseURL: "", Timeout: time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("empty base url should fail")
	}
	cfg.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Error("malformed base url should fail")
	}
	cfg.BaseURL = "https://paste.example.com"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid remote should pass: %v", err)
	}
}

func TestRemoteConfig_RequiresTimeout(t *testing.T) {
	cfg := RemoteConfig{BaseURL: "http://localhost:7777"}
	if err := cfg.Validate(); err == nil {
		t.Error("zero timeout should fail")
	}
}

func TestServerConfig_KeyLengthBounds(t *testing.T) {
	cfg := NewDefaultConfig().Server
	for _, n := range []int{3, 65} {
		cfg.KeyLength = n
		if err := cfg.Validate(); err == nil {
			t.Errorf("key length %d should fail", n)
		}
	}
	cfg.KeyLength = 64
	if err := cfg.Validate(); err != nil {
		t.Errorf("key length 64 should pass: %v", err)
	}
}

func TestServerConfig_PortRange(t *testing.T) {
	cfg := NewDefaultConfig().Server
	cfg.HTTP.Port = 70000
	err := cfg.Validate()
	if err == nil {
		t.Fatal("out-of-range port should fail")
	}
	if !strings.Contains(err.Error(), "http") {
		t.Errorf("error should name the http section: %v", err)
	}
}

func TestFullConfig_SectionErrorsNamed(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = ""
	err := cfg.Validate()
	if err == nil || !strings.HasPrefix(err.Error(), "sqlite:") {
		t.Fatalf("err = %v, want sqlite section error", err)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	t.Setenv("PASTEBIN_TEST_URL", "https://paste.example.com")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
app:
  log_level: debug
remote:
  base_url: ${PASTEBIN_TEST_URL}
  timeout: 5s
server:
  http:
    port: 9000
  key_length: 12
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.Remote.BaseURL != "https://paste.example.com" || cfg.Remote.Timeout != 5*time.Second {
		t.Errorf("remote = %+v", cfg.Remote)
	}
	if cfg.Server.HTTP.Port != 9000 || cfg.Server.KeyLength != 12 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.MaxLength != NewDefaultConfig().Server.MaxLength {
		t.Error("unset fields should keep defaults")
	}
}

func TestLoadOptionalMissingFileKeepsDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), cfg); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Remote.BaseURL != NewDefaultConfig().Remote.BaseURL {
		t.Errorf("base url = %q", cfg.Remote.BaseURL)
	}
}
