package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis    Redis         `yaml:"redis"`
	MatchTTL time.Duration `yaml:"match-ttl" env:"MATCH_TTL" env-default:"24h"`

	// AbandonWindow is how long the player to move may stay silent before the
	// match is reported as abandoned. Zero turns the report off.
	AbandonWindow time.Duration `yaml:"abandon-window" env:"ABANDON_WINDOW" env-default:"5m"`

	// SkipSignatureCheck trusts the player field of requests as is. Only for
	// local development behind an authenticating proxy.
	SkipSignatureCheck bool `yaml:"skip-signature-check" env:"SKIP_SIGNATURE_CHECK"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads path and overlays environment variables on top of it.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
