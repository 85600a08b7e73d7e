package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`

	// Instructor gate: a bcrypt hash wins over the plaintext code; the
	// plaintext default matches the reference deployment.
	InstructorCode     string `yaml:"instructor_code"`
	InstructorCodeHash string `yaml:"instructor_code_hash"`

	AuthSecret string `yaml:"auth_secret"`

	CORSOrigins []string `yaml:"cors_origins"`
}

// FromEnv builds the config from environment variables with dev defaults.
func FromEnv() Config {
	return Config{
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		InstructorCode:     envOr("INSTRUCTOR_CODE", "1234"),
		InstructorCodeHash: envOr("INSTRUCTOR_CODE_HASH", ""),
		AuthSecret:         envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		CORSOrigins:        csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

// Load layers an optional YAML file over the env config. A missing file is
// not an error; explicit file values win.
func Load(path string) (Config, error) {
	cfg := FromEnv()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, err
	}
	merge(&cfg, file)
	return cfg, nil
}

func merge(dst *Config, src Config) {
	if src.HTTPAddr != "" {
		dst.HTTPAddr = src.HTTPAddr
	}
	if src.DBDriver != "" {
		dst.DBDriver = src.DBDriver
	}
	if src.DBDSN != "" {
		dst.DBDSN = src.DBDSN
	}
	if src.InstructorCode != "" {
		dst.InstructorCode = src.InstructorCode
	}
	if src.InstructorCodeHash != "" {
		dst.InstructorCodeHash = src.InstructorCodeHash
	}
	if src.AuthSecret != "" {
		dst.AuthSecret = src.AuthSecret
	}
	if len(src.CORSOrigins) > 0 {
		dst.CORSOrigins = src.CORSOrigins
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
