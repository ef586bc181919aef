package config

import (
	"errors"
	"fmt"
)

// Loading and validation failures. ErrConfigFile and ErrEnvFile are both
// ErrLoadConfig under errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	ErrConfigFile    = fmt.Errorf("%w: config file", ErrLoadConfig)
	ErrEnvFile       = fmt.Errorf("%w: .env file", ErrLoadConfig)
)
