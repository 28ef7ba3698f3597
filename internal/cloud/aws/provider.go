// Package aws builds the regional AWS clients used by pubsys.
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/hemantobora/pubsys/internal/ami"
	"github.com/hemantobora/pubsys/internal/models"
	"github.com/hemantobora/pubsys/internal/output"
	"github.com/hemantobora/pubsys/internal/ssm"
)

const sessionName = "pubsys"

// ClientFactory loads one AWS config per region and builds service clients
// from it
type ClientFactory struct {
	profile     string
	role        string
	maxAttempts int

	// baseRegion is used for STS calls that are not tied to a target region
	baseRegion string
	base       aws.Config
	configs    map[string]aws.Config
}

// FactoryOption is a functional option for factory configuration
type FactoryOption func(*ClientFactory)

// WithProfile specifies the AWS profile to use
func WithProfile(profile string) FactoryOption {
	return func(f *ClientFactory) {
		f.profile = profile
	}
}

// WithRole specifies a role to assume for every regional client
func WithRole(role string) FactoryOption {
	return func(f *ClientFactory) {
		f.role = role
	}
}

// WithMaxAttempts sets the SDK retryer's attempt limit
func WithMaxAttempts(n int) FactoryOption {
	return func(f *ClientFactory) {
		f.maxAttempts = n
	}
}

// WithBaseRegion sets the region used for credential calls. It defaults to
// the first region given to NewClientFactory.
func WithBaseRegion(region string) FactoryOption {
	return func(f *ClientFactory) {
		if region != "" {
			f.baseRegion = region
		}
	}
}

// NewClientFactory creates a factory for the given regions
func NewClientFactory(regions []string, options ...FactoryOption) (*ClientFactory, error) {
	if len(regions) == 0 {
		return nil, &models.ConfigError{Setting: "aws.regions", Message: "at least one region is required"}
	}
	f := &ClientFactory{
		baseRegion: regions[0],
		configs:    make(map[string]aws.Config, len(regions)),
	}
	for _, opt := range options {
		opt(f)
	}
	for _, region := range regions {
		f.configs[region] = aws.Config{}
	}
	return f, nil
}

// loadAWSConfig loads AWS configuration for a region with optional profile
// and assumed role
func (f *ClientFactory) loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	optFns := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if f.profile != "" {
		optFns = append(optFns, config.WithSharedConfigProfile(f.profile))
	}
	if f.maxAttempts > 0 {
		optFns = append(optFns, config.WithRetryMaxAttempts(f.maxAttempts))
	}
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, &models.ProviderError{
			Provider:  "aws",
			Operation: "load-config",
			Resource:  fmt.Sprintf("region:%s profile:%s", region, f.profile),
			Cause:     fmt.Errorf("failed to load AWS config: %w", err),
		}
	}

	if f.role != "" {
		// the role is always assumed through the base region's STS endpoint
		stsCfg := cfg.Copy()
		stsCfg.Region = f.baseRegion
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(stsCfg), f.role, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = sessionName
		})
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}
	return cfg, nil
}

// Load resolves the config of every region. It must be called before any
// client is built.
func (f *ClientFactory) Load(ctx context.Context) error {
	base, err := f.loadAWSConfig(ctx, f.baseRegion)
	if err != nil {
		return err
	}
	f.base = base
	for region := range f.configs {
		cfg, err := f.loadAWSConfig(ctx, region)
		if err != nil {
			return err
		}
		f.configs[region] = cfg
	}
	return nil
}

// ValidateCredentials checks that the resolved credentials are accepted by STS
func (f *ClientFactory) ValidateCredentials(ctx context.Context) error {
	cfg := f.base
	if cfg.Credentials == nil {
		return &models.ProviderError{
			Provider:  "aws",
			Operation: "validate-credentials",
			Resource:  f.baseRegion,
			Cause:     errors.New("configuration not loaded"),
		}
	}

	identity, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			output.Debug("STS call failed", "code", apiErr.ErrorCode(), "message", apiErr.ErrorMessage())
		}
		return &models.ProviderError{
			Provider:  "aws",
			Operation: "validate-credentials",
			Resource:  f.baseRegion,
			Cause:     err,
		}
	}
	output.Debug("Using AWS identity", "arn", aws.ToString(identity.Arn), "account", aws.ToString(identity.Account))
	return nil
}

// SSMClients builds a Parameter Store client per region
func (f *ClientFactory) SSMClients() map[string]ssm.API {
	clients := make(map[string]ssm.API, len(f.configs))
	for region, cfg := range f.configs {
		clients[region] = awsssm.NewFromConfig(cfg)
	}
	return clients
}

// EC2Clients builds an EC2 client per region
func (f *ClientFactory) EC2Clients() map[string]ami.API {
	clients := make(map[string]ami.API, len(f.configs))
	for region, cfg := range f.configs {
		clients[region] = ec2.NewFromConfig(cfg)
	}
	return clients
}

// S3Client builds an S3 client in the base region for document storage
func (f *ClientFactory) S3Client() *s3.Client {
	return s3.NewFromConfig(f.base)
}
