package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Notify NotifyConfig
	Sync   SyncConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AuthConfig points at the external auth provider. Tokens are minted
// there and only verified here, against the shared HS256 secret.
type AuthConfig struct {
	JWTSecret   string
	Audience    string
	GateURL     string
	GateKey     string
	GateTimeout time.Duration
}

// NotifyConfig selects the change notification backend: "redis" by
// default, "postgres" for Redis-less deployments, "memory" for a single
// instance.
type NotifyConfig struct {
	Backend string
}

type SyncConfig struct {
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	gateTimeout, err := time.ParseDuration(viper.GetString("AUTH_GATE_TIMEOUT"))
	if err != nil {
		gateTimeout = 10 * time.Second
	}

	sessionTTL, err := time.ParseDuration(viper.GetString("SYNC_SESSION_TTL"))
	if err != nil {
		sessionTTL = 30 * time.Minute
	}

	sweepInterval, err := time.ParseDuration(viper.GetString("SYNC_SWEEP_INTERVAL"))
	if err != nil {
		sweepInterval = 5 * time.Minute
	}

	backend := viper.GetString("NOTIFY_BACKEND")
	if backend == "" {
		backend = "redis"
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			JWTSecret:   viper.GetString("AUTH_JWT_SECRET"),
			Audience:    viper.GetString("AUTH_AUDIENCE"),
			GateURL:     viper.GetString("AUTH_GATE_URL"),
			GateKey:     viper.GetString("AUTH_GATE_KEY"),
			GateTimeout: gateTimeout,
		},
		Notify: NotifyConfig{
			Backend: backend,
		},
		Sync: SyncConfig{
			SessionTTL:    sessionTTL,
			SweepInterval: sweepInterval,
		},
	}

	return config, nil
}
