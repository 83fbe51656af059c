package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadEnvLayersFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articledesk.yaml")
	doc := `
app_addr: ":9090"
jwt_secret: from-file
max_upload_mb: 5
processing_interval: 30s
db:
  host: db.internal
  name: reviews
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if env.AppAddr != ":9090" || env.MaxUploadMB != 5 || env.ProcessingInterval != 30*time.Second {
		t.Fatalf("file values not applied: %+v", env)
	}
	if env.JWTSecret != "from-env" {
		t.Fatalf("env should override file, got %q", env.JWTSecret)
	}
	if len(env.CORSOrigins) != 2 || env.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins = %v", env.CORSOrigins)
	}
	if env.DB.Host != "db.internal" || env.DB.Port != "3306" {
		t.Fatalf("db config = %+v", env.DB)
	}
	if env.MaxUploadBytes() != 5<<20 {
		t.Fatalf("max upload bytes = %d", env.MaxUploadBytes())
	}
}

func TestValidate(t *testing.T) {
	env := defaults()
	env.GinMode = "release"
	if err := env.Validate(); err != ErrMissingJWTSecret {
		t.Fatalf("release with default secret: %v", err)
	}
	env = defaults()
	env.MaxUploadMB = 0
	if err := env.Validate(); err != ErrInvalidUpload {
		t.Fatalf("zero upload limit: %v", err)
	}
	env = defaults()
	env.CORSOrigins = []string{"localhost:4200"}
	if err := env.Validate(); !errors.Is(err, ErrInvalidOrigin) {
		t.Fatalf("origin without scheme: %v", err)
	}
}

func TestConnString(t *testing.T) {
	c := defaults().DB
	dsn := c.ConnString()
	for _, want := range []string{"tcp(127.0.0.1:3306)/articledesk", "parseTime=true", "clientFoundRows=true"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("dsn %q missing %q", dsn, want)
		}
	}
	c.DSN = "u:p@tcp(x:1)/y"
	if c.ConnString() != "u:p@tcp(x:1)/y" {
		t.Fatalf("explicit DSN not used")
	}
}
