package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/hemantobora/pubsys/internal/models"
)

// Environment variable prefix for pubsys configuration.
const envPrefix = "PUBSYS"

// Loader handles loading configuration from a file and the environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("aws.regions", []string{})
	v.SetDefault("aws.ssm_prefix", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.role", "")
	v.SetDefault("aws.max_attempts", DefaultMaxAttempts)
	v.SetDefault("aws.ssm_requests_per_second", DefaultSSMRequestsPerSecond)

	return &Loader{v: v}
}

// Load reads configFile (DefaultPath when empty) and applies environment
// overrides. A missing file is not an error.
func (l *Loader) Load(configFile string) (*InfraConfig, error) {
	if configFile == "" {
		configFile = DefaultPath
	}

	l.v.SetConfigFile(configFile)
	l.v.SetConfigType("yaml")
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, &models.ConfigError{Setting: configFile, Message: "cannot read config file", Cause: err}
		}
	}

	var cfg InfraConfig
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, &models.ConfigError{Setting: configFile, Message: "cannot decode config", Cause: err}
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags. The first failure is
// returned as a *models.ConfigError naming the config key.
func Validate(cfg *InfraConfig) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &models.ConfigError{Setting: "config", Message: "invalid configuration", Cause: err}
	}
	fe := fieldErrs[0]
	setting := fe.Namespace()
	if _, rest, ok := strings.Cut(setting, "."); ok {
		setting = rest
	}
	return &models.ConfigError{
		Setting: setting,
		Message: fmt.Sprintf("failed '%s' check with value '%v'", fe.ActualTag(), fe.Value()),
	}
}
