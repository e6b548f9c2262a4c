package zipkit

import (
	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Default compression method for new entries (store, deflate)
	Method string `env:"ZIPKIT_METHOD,default:deflate"`

	// Default deflate compression level (-1 = library default)
	Level int `env:"ZIPKIT_LEVEL,default:-1"`

	// Archive comment written into the end-of-central-directory record
	Comment string `env:"ZIPKIT_COMMENT"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
