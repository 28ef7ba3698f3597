// Package config loads the infrastructure configuration shared by every
// pubsys command.
package config

const (
	// DefaultPath is read when no config file is given
	DefaultPath = "Infra.yaml"

	DefaultMaxAttempts          = 3
	DefaultSSMRequestsPerSecond = 5.0
)

// InfraConfig holds the settings from the infra config file and environment
type InfraConfig struct {
	AWS AWSConfig `mapstructure:"aws" validate:"required"`
}

// AWSConfig holds AWS account and service settings
type AWSConfig struct {
	Regions   []string `mapstructure:"regions" validate:"dive,required"`
	SSMPrefix string   `mapstructure:"ssm_prefix"`
	Profile   string   `mapstructure:"profile"`

	// Role is assumed through STS for every regional client when set
	Role string `mapstructure:"role" validate:"omitempty,startswith=arn:"`

	MaxAttempts          int     `mapstructure:"max_attempts" validate:"gte=1,lte=20"`
	SSMRequestsPerSecond float64 `mapstructure:"ssm_requests_per_second" validate:"gt=0"`
}

// RegionsOr returns override when it is not empty, else the configured regions
func (c AWSConfig) RegionsOr(override []string) []string {
	if len(override) > 0 {
		return override
	}
	return c.Regions
}
