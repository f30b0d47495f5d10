package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Cron   CronConfig   `mapstructure:"cron"`
	Game   GameConfig   `mapstructure:"game"`
	Live   LiveConfig   `mapstructure:"live"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type CronConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	CloseVoting string `mapstructure:"close_voting"`
}

type GameConfig struct {
	DefaultTTLHours int           `mapstructure:"default_ttl_hours"`
	MaxTTLHours     int           `mapstructure:"max_ttl_hours"`
	MinTTLHours     int           `mapstructure:"min_ttl_hours"`
	MinQuestionLen  int           `mapstructure:"min_question_len"`
	UserDataTTL     time.Duration `mapstructure:"user_data_ttl"`
	VoteRetries     int           `mapstructure:"vote_retries"`
}

type LiveConfig struct {
	PushInterval time.Duration `mapstructure:"push_interval"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.close_voting", "@every 1h")
	v.SetDefault("game.default_ttl_hours", 24)
	v.SetDefault("game.max_ttl_hours", 168)
	v.SetDefault("game.min_ttl_hours", 1)
	v.SetDefault("game.min_question_len", 10)
	v.SetDefault("game.user_data_ttl", "720h")
	v.SetDefault("game.vote_retries", 3)
	v.SetDefault("live.push_interval", "2s")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
