package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemantobora/pubsys/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Infra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
aws:
  regions: [us-west-2, us-east-1]
  ssm_prefix: /pubsys
  role: arn:aws:iam::123456789012:role/publisher
`)
	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"us-west-2", "us-east-1"}, cfg.AWS.Regions)
	assert.Equal(t, "/pubsys", cfg.AWS.SSMPrefix)
	assert.Equal(t, DefaultMaxAttempts, cfg.AWS.MaxAttempts)
	assert.Equal(t, DefaultSSMRequestsPerSecond, cfg.AWS.SSMRequestsPerSecond)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.AWS.Regions)
	assert.Equal(t, DefaultMaxAttempts, cfg.AWS.MaxAttempts)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PUBSYS_AWS_SSM_PREFIX", "/from-env")
	t.Setenv("PUBSYS_AWS_MAX_ATTEMPTS", "7")
	path := writeConfig(t, `
aws:
  ssm_prefix: /from-file
`)
	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from-env", cfg.AWS.SSMPrefix)
	assert.Equal(t, 7, cfg.AWS.MaxAttempts)
}

func TestLoadInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		setting string
	}{
		{"max attempts too high", "aws:\n  max_attempts: 50\n", "aws.max_attempts"},
		{"non-positive rate", "aws:\n  ssm_requests_per_second: 0\n", "aws.ssm_requests_per_second"},
		{"role not an arn", "aws:\n  role: publisher\n", "aws.role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().Load(writeConfig(t, tt.content))
			var cfgErr *models.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.setting, cfgErr.Setting)
		})
	}
}

func TestRegionsOr(t *testing.T) {
	cfg := AWSConfig{Regions: []string{"us-west-2"}}
	assert.Equal(t, []string{"us-west-2"}, cfg.RegionsOr(nil))
	assert.Equal(t, []string{"eu-west-1"}, cfg.RegionsOr([]string{"eu-west-1"}))
}
