// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strings"
	"time"
)

// Cloudinary holds provider-A credentials. The provider is active only when
// the full credential group is present.
type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

func (c Cloudinary) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Drive holds provider-B service-account credentials. All of email, key and
// folder id are required together; anything less means Drive is unconfigured.
type Drive struct {
	ClientEmail     string
	PrivateKey      string
	ImpersonateUser string
	FolderID        string
}

func (d Drive) Configured() bool {
	return d.ClientEmail != "" && d.PrivateKey != "" && d.FolderID != ""
}

// Config is the full service configuration.
type Config struct {
	Port        string
	RendererURL string
	OutDir      string
	FFProbePath string

	Cloudinary Cloudinary
	Drive      Drive

	// Optional backends. Empty means the feature is disabled.
	DatabaseURL   string
	RedisAddr     string
	ProbeCacheTTL time.Duration

	CORSOrigins []string
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Port:        Env("PORT", "8080"),
		RendererURL: Env("RENDERER_URL", "http://localhost:3333"),
		OutDir:      Env("OUT_DIR", "out"),
		FFProbePath: Env("FFPROBE_PATH", "ffprobe"),

		Cloudinary: Cloudinary{
			CloudName: Env("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    Env("CLOUDINARY_API_KEY", ""),
			APISecret: Env("CLOUDINARY_API_SECRET", ""),
			Folder:    Env("CLOUDINARY_FOLDER", "ai-video"),
		},

		Drive: Drive{
			ClientEmail: Env("GOOGLE_CLIENT_EMAIL", ""),
			// Keys arrive newline-escaped from most env tooling.
			PrivateKey:      unescapeNewlines(Env("GOOGLE_PRIVATE_KEY", "")),
			ImpersonateUser: Env("GOOGLE_IMPERSONATE_USER", ""),
			FolderID:        Env("DRIVE_FOLDER_ID", ""),
		},

		DatabaseURL:   Env("DATABASE_URL", ""),
		RedisAddr:     Env("REDIS_ADDR", ""),
		ProbeCacheTTL: durationEnv("PROBE_CACHE_TTL", time.Hour),

		CORSOrigins: csvEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// Env reads an environment variable with a default value.
func Env(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func durationEnv(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func csvEnv(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
