package config

import (
	"os"
	"strconv"
	"time"
)

// DBConfig 数据库配置
type DBConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"sslmode"`
	MaxConns           int32         `yaml:"max_conns"`
	MinConns           int32         `yaml:"min_conns"`
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret string `yaml:"secret"`
	// ExpiresIn accepts Go durations plus a day suffix, e.g. "1d".
	ExpiresIn string `yaml:"expires_in"`
}

// TTL parses ExpiresIn. An empty value yields zero.
func (c JWTConfig) TTL() (time.Duration, error) {
	if c.ExpiresIn == "" {
		return 0, nil
	}
	return ParseDuration(c.ExpiresIn)
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr normalizes Port into a listen address.
func (c ServerConfig) Addr() string {
	if c.Port == "" || c.Port[0] == ':' {
		return c.Port
	}
	for _, r := range c.Port {
		if r < '0' || r > '9' {
			return c.Port
		}
	}
	return ":" + c.Port
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigin string `yaml:"allowed_origin"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
}

// RateLimitConfig 限流配置；RPS 为 0 时关闭
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// OverrideDBFromEnv 从环境变量覆盖数据库配置
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
	if mode := os.Getenv("DB_SSLMODE"); mode != "" {
		cfg.SSLMode = mode
	}
	if maxConns := os.Getenv("DB_MAX_CONNS"); maxConns != "" {
		if n, err := strconv.ParseInt(maxConns, 10, 32); err == nil {
			cfg.MaxConns = int32(n)
		}
	}
}

// OverrideJWTFromEnv 从环境变量覆盖JWT配置
func OverrideJWTFromEnv(cfg *JWTConfig) {
	cfg.Secret = GetEnv("JWT_SECRET", cfg.Secret)
	cfg.ExpiresIn = GetEnv("JWT_EXPIRES_IN", cfg.ExpiresIn)
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置；SERVER_PORT 优先于 PORT
func OverrideServerFromEnv(cfg *ServerConfig) {
	cfg.Port = GetEnv("SERVER_PORT", GetEnv("PORT", cfg.Port))
}

// OverrideCORSFromEnv 从环境变量覆盖跨域配置
func OverrideCORSFromEnv(cfg *CORSConfig) {
	cfg.AllowedOrigin = GetEnv("CLIENT_URL", cfg.AllowedOrigin)
}

func OverrideLogFromEnv(cfg *LogConfig) {
	cfg.Level = GetEnv("LOG_LEVEL", cfg.Level)
}

func OverrideRateLimitFromEnv(cfg *RateLimitConfig) {
	if rps := os.Getenv("AUTH_RATE_LIMIT_RPS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RPS = v
		}
	}
	if burst := os.Getenv("AUTH_RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.Burst = v
		}
	}
}
