package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "HCMS_"

const (
	StoreMemory = "memory"
	StoreJSON   = "json"
	StoreRedis  = "redis"
)

var (
	errNoBackendURL  = errors.New("backend base url is required")
	errInvalidPort   = errors.New("server port must be positive")
	errUnknownStore  = errors.New("unknown session store")
	errInvalidLimits = errors.New("login rate limit must be positive")
)

// Path locates the YAML config file. A missing file leaves the defaults in place.
type Path string

type Config struct {
	Server    Server    `yaml:"server" envPrefix:"SERVER_"`
	Backend   Backend   `yaml:"backend" envPrefix:"BACKEND_"`
	Session   Session   `yaml:"session" envPrefix:"SESSION_"`
	Redis     Redis     `yaml:"redis" envPrefix:"REDIS_"`
	CORS      CORS      `yaml:"cors" envPrefix:"CORS_"`
	RateLimit RateLimit `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Log       Log       `yaml:"log" envPrefix:"LOG_"`
}

type Server struct {
	Address   string     `yaml:"address" env:"ADDRESS"`
	Port      int        `yaml:"port" env:"PORT"`
	StaticDir string     `yaml:"static_dir" env:"STATIC_DIR"`
	TLS       KeyPairRaw `yaml:"tls"`
}

func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

type Backend struct {
	BaseURL        string        `yaml:"base_url" env:"BASE_URL"`
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	DoctorCacheTTL time.Duration `yaml:"doctor_cache_ttl" env:"DOCTOR_CACHE_TTL"`
}

type Session struct {
	Lifetime     time.Duration `yaml:"lifetime" env:"LIFETIME"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	CookieName   string        `yaml:"cookie_name" env:"COOKIE_NAME"`
	SecureCookie bool          `yaml:"secure_cookie" env:"SECURE_COOKIE"`
	Store        string        `yaml:"store" env:"STORE"`
	JSONPath     string        `yaml:"json_path" env:"JSON_PATH"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

type RateLimit struct {
	LoginPerMinute int `yaml:"login_per_minute" env:"LOGIN_PER_MINUTE"`
}

type Log struct {
	Level       string `yaml:"level" env:"LEVEL"`
	Development bool   `yaml:"development" env:"DEVELOPMENT"`
}

func Default() *Config {
	return &Config{
		Server: Server{
			Address:   "localhost",
			Port:      8123,
			StaticDir: "web/static",
		},
		Backend: Backend{
			BaseURL:        "http://localhost:8080",
			Timeout:        10 * time.Second,
			DoctorCacheTTL: 30 * time.Second,
		},
		Session: Session{
			Lifetime:    24 * time.Hour,
			IdleTimeout: time.Hour,
			CookieName:  "hcms_session",
			Store:       StoreMemory,
			JSONPath:    "data/sessions.json",
		},
		Redis: Redis{
			Addr: "localhost:6379",
		},
		CORS: CORS{
			AllowedOrigins: []string{"http://localhost:8123"},
		},
		RateLimit: RateLimit{
			LoginPerMinute: 20,
		},
		Log: Log{
			Level:       "info",
			Development: true,
		},
	}
}

// New layers defaults, the YAML file at p, a .env file and HCMS_* environment
// variables, in that order.
func New(p Path) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(string(p)); err != nil {
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errNoBackendURL
	}
	if c.Server.Port <= 0 {
		return errInvalidPort
	}
	if c.RateLimit.LoginPerMinute <= 0 {
		return errInvalidLimits
	}
	switch c.Session.Store {
	case StoreMemory, StoreJSON, StoreRedis:
	default:
		return fmt.Errorf("%w: %q", errUnknownStore, c.Session.Store)
	}
	return nil
}
