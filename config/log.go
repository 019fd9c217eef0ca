package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pomerium/storefront/internal/log"
)

// ConfigureLogging applies the logging options. Debug mode overrides the
// configured level.
func ConfigureLogging(o *Options, debug bool) error {
	if debug {
		log.SetDebugMode()
		return nil
	}
	if o.LogLevel == "" {
		return nil
	}
	level, err := parseLogLevel(o.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}

func parseLogLevel(s string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("config: %q is an invalid log_level", s)
	}
	return level, nil
}
