package config

import (
	"errors"
	"fmt"
	"time"

	"taskmanager/pkg/config"
)

type Config struct {
	Server    config.ServerConfig    `yaml:"server"`
	DB        config.DBConfig        `yaml:"db"`
	JWT       config.JWTConfig       `yaml:"jwt"`
	CORS      config.CORSConfig      `yaml:"cors"`
	Log       config.LogConfig       `yaml:"log"`
	RateLimit config.RateLimitConfig `yaml:"rate_limit"`
}

// Defaults returns the configuration used when neither the YAML file nor the
// environment sets a value.
func Defaults() Config {
	return Config{
		Server: config.ServerConfig{
			Port:            ":4000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		DB: config.DBConfig{
			Host:               "localhost",
			Port:               5432,
			User:               "postgres",
			Name:               "taskmanager",
			SSLMode:            "disable",
			MaxConns:           10,
			MinConns:           2,
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		JWT: config.JWTConfig{
			ExpiresIn: "24h",
		},
		CORS: config.CORSConfig{
			AllowedOrigin: "http://localhost:5173",
		},
		Log: config.LogConfig{
			Level: "info",
		},
		RateLimit: config.RateLimitConfig{
			Burst: 10,
		},
	}
}

// Load 按 默认值 < config.yaml < 环境变量 的顺序加载配置。
// 配置文件不存在时只使用默认值和环境变量。Load does not validate; the
// serve command calls Validate, dbcheck only needs the DB section.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := config.LoadYAMLFile(path, &cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideCORSFromEnv(&cfg.CORS)
	config.OverrideLogFromEnv(&cfg.Log)
	config.OverrideRateLimitFromEnv(&cfg.RateLimit)

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret (JWT_SECRET) is required"))
	}
	if _, err := c.JWT.TTL(); err != nil {
		errs = append(errs, fmt.Errorf("jwt.expires_in: %w", err))
	}
	if c.DB.Port <= 0 {
		errs = append(errs, fmt.Errorf("db.port must be positive, got %d", c.DB.Port))
	}
	if c.Server.Addr() == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	return errors.Join(errs...)
}
