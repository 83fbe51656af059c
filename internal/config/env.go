package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingJWTSecret = errors.New("jwt_secret is required when gin_mode is release")
	ErrInvalidUpload    = errors.New("max_upload_mb must be at least 1")
	ErrInvalidInterval  = errors.New("processing_interval must be positive")
	ErrInvalidOrigin    = errors.New("cors_allowed_origins entries must start with http:// or https://")
)

type Env struct {
	AppAddr string `yaml:"app_addr"`
	GinMode string `yaml:"gin_mode"`

	DB DBConfig `yaml:"db"`

	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	UploadDir   string `yaml:"upload_dir"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`

	CORSOrigins []string `yaml:"cors_allowed_origins"`

	ProcessingInterval time.Duration `yaml:"processing_interval"`
	ProcessingBatch    int           `yaml:"processing_batch"`
	// ProcessingLease of zero means three intervals.
	ProcessingLease time.Duration `yaml:"processing_lease"`
}

type DBConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

func defaults() Env {
	return Env{
		AppAddr: ":8080",
		DB: DBConfig{
			Host: "127.0.0.1",
			Port: "3306",
			User: "root",
			Name: "articledesk",
		},
		JWTSecret:   "dev-secret-change-me",
		TokenTTL:    24 * time.Hour,
		UploadDir:   "uploads/articles",
		MaxUploadMB: 25,
		CORSOrigins: []string{
			"http://localhost:4200",
			"http://127.0.0.1:4200",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		ProcessingInterval: 5 * time.Second,
		ProcessingBatch:    10,
	}
}

// LoadEnv builds the server configuration: defaults, then the YAML file
// named by CONFIG_FILE, then environment variables.
func LoadEnv() (Env, error) {
	env := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := LoadFile(path, &env); err != nil {
			return env, err
		}
	}
	if err := applyEnv(&env); err != nil {
		return env, err
	}
	return env, env.Validate()
}

// LoadFile overlays the YAML document at path onto env.
func LoadFile(path string, env *Env) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, env); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func applyEnv(env *Env) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	str("APP_ADDR", &env.AppAddr)
	str("GIN_MODE", &env.GinMode)
	str("DB_DSN", &env.DB.DSN)
	str("DB_HOST", &env.DB.Host)
	str("DB_PORT", &env.DB.Port)
	str("DB_USER", &env.DB.User)
	str("DB_PASSWORD", &env.DB.Password)
	str("DB_NAME", &env.DB.Name)
	str("JWT_SECRET", &env.JWTSecret)
	str("UPLOAD_DIR", &env.UploadDir)

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		env.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSOrigins = append(env.CORSOrigins, o)
			}
		}
	}

	for key, dst := range map[string]*time.Duration{
		"TOKEN_TTL":           &env.TokenTTL,
		"PROCESSING_INTERVAL": &env.ProcessingInterval,
		"PROCESSING_LEASE":    &env.ProcessingLease,
	} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_UPLOAD_MB")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_MB: %w", err)
		}
		env.MaxUploadMB = n
	}
	return nil
}

func (e Env) Validate() error {
	if e.GinMode == "release" && (e.JWTSecret == "" || e.JWTSecret == defaults().JWTSecret) {
		return ErrMissingJWTSecret
	}
	if e.MaxUploadMB < 1 {
		return ErrInvalidUpload
	}
	if e.ProcessingInterval <= 0 {
		return ErrInvalidInterval
	}
	for _, o := range e.CORSOrigins {
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("%w: %q", ErrInvalidOrigin, o)
		}
	}
	return nil
}

func (e Env) MaxUploadBytes() int64 {
	return e.MaxUploadMB << 20
}
