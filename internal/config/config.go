package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	RunAddress        string        `env:"RUN_ADDRESS"`
	DatabaseDSN       string        `env:"DATABASE_URI"`
	MigrationsDir     string        `env:"MIGRATIONS_DIR"`
	JWTUserSecret     string        `env:"JWT_USER_SECRET"`
	GatewayAddress    string        `env:"GATEWAY_ADDRESS"`
	GatewaySuccessURL string        `env:"GATEWAY_SUCCESS_URL"`
	GatewayCancelURL  string        `env:"GATEWAY_CANCEL_URL"`
	GatewayTimeout    time.Duration `env:"GATEWAY_TIMEOUT"`
}

func LoadConfig() (*Config, error) {
	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.GatewayAddress == "" {
		return nil, errors.New("payment gateway address is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flag.StringVar(&flagConfig.JWTUserSecret, "s", "secret", "JWT secret key for user tokens")
	flag.StringVar(&flagConfig.GatewayAddress, "g", "", "Payment gateway base address")
	flag.StringVar(&flagConfig.GatewaySuccessURL, "success-url", "/success", "Redirect reference for completed payment")
	flag.StringVar(&flagConfig.GatewayCancelURL, "cancel-url", "/cancel", "Redirect reference for cancelled payment")
	flag.DurationVar(&flagConfig.GatewayTimeout, "gateway-timeout", 10*time.Second, "Payment gateway call timeout")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	timeout := envConfig.GatewayTimeout
	if timeout == 0 {
		timeout = flagsConfig.GatewayTimeout
	}
	return &Config{
		RunAddress:        defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:       defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir:     defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		JWTUserSecret:     defaultIfBlank(envConfig.JWTUserSecret, flagsConfig.JWTUserSecret),
		GatewayAddress:    defaultIfBlank(envConfig.GatewayAddress, flagsConfig.GatewayAddress),
		GatewaySuccessURL: defaultIfBlank(envConfig.GatewaySuccessURL, flagsConfig.GatewaySuccessURL),
		GatewayCancelURL:  defaultIfBlank(envConfig.GatewayCancelURL, flagsConfig.GatewayCancelURL),
		GatewayTimeout:    timeout,
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
