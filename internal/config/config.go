package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

var ErrAddrNotFound = errors.New("redis host or port is empty")

type Config struct {
	LogLevel   string     `yaml:"log-level" env-default:"info"`
	HTTPPort   string     `yaml:"http-port" env-default:"9090"`
	SocketPort string     `yaml:"socket-port" env-default:"8080"`
	Redis      Redis      `yaml:"redis"`
	Player     Player     `yaml:"player"`
	Bot        Bot        `yaml:"bot"`
	Commentary Commentary `yaml:"commentary"`
	Voice      Voice      `yaml:"voice"`
}

type Redis struct {
	Host       string        `yaml:"host" env-default:"localhost"`
	Port       string        `yaml:"port" env-default:"6379"`
	SessionTTL time.Duration `yaml:"session-ttl" env-default:"24h"`
}

type Player struct {
	DefaultName string `yaml:"default-name" env-default:"ADIL"`
}

type Bot struct {
	ThinkDelay time.Duration `yaml:"think-delay" env-default:"700ms"`
}

// Commentary and Voice leave URL empty to use the Gemini API endpoint.
type Commentary struct {
	URL     string        `yaml:"url" env-default:""`
	APIKey  string        `yaml:"api-key" env:"COMMENTARY_API_KEY" env-default:""`
	Model   string        `yaml:"model" env-default:"gemini-3-flash-preview"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

type Voice struct {
	Enabled   bool          `yaml:"enabled" env-default:"false"`
	URL       string        `yaml:"url" env-default:""`
	APIKey    string        `yaml:"api-key" env:"VOICE_API_KEY" env-default:""`
	Model     string        `yaml:"model" env-default:"gemini-2.5-flash-preview-tts"`
	VoiceName string        `yaml:"voice-name" env-default:"Zephyr"`
	Timeout   time.Duration `yaml:"timeout" env-default:"10s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() (string, error) {
	if that.Host == "" || that.Port == "" {
		return "", ErrAddrNotFound
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port), nil
}
