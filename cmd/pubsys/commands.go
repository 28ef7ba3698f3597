package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/hemantobora/pubsys/internal/ami"
	awscloud "github.com/hemantobora/pubsys/internal/cloud/aws"
	"github.com/hemantobora/pubsys/internal/cloud/naming"
	"github.com/hemantobora/pubsys/internal/config"
	"github.com/hemantobora/pubsys/internal/models"
	"github.com/hemantobora/pubsys/internal/output"
	"github.com/hemantobora/pubsys/internal/promote"
	"github.com/hemantobora/pubsys/internal/prompts"
	"github.com/hemantobora/pubsys/internal/ssm"
	"github.com/hemantobora/pubsys/internal/state"
)

// fallbackRegion is used for credential and document calls when no region is configured
const fallbackRegion = "us-east-1"

var errValidationFailed = errors.New("validation found incorrect, missing or inaccessible entries")

// environment holds what every command needs before talking to AWS
type environment struct {
	cfg  *config.InfraConfig
	docs *state.Documents
}

func loadEnvironment(c *cli.Context) (*environment, error) {
	output.Info("Parsing infra config", "path", c.String("infra-config"))
	cfg, err := config.NewLoader().Load(c.String("infra-config"))
	if err != nil {
		return nil, err
	}
	if profile := c.String("profile"); profile != "" {
		cfg.AWS.Profile = profile
	}
	output.Debug("Parsed infra config", "regions", cfg.AWS.Regions, "ssm_prefix", cfg.AWS.SSMPrefix, "role", cfg.AWS.Role)

	base, err := newFactory(c.Context, cfg, []string{baseRegion(cfg, nil)})
	if err != nil {
		return nil, err
	}
	return &environment{
		cfg:  cfg,
		docs: state.NewDocuments(state.NewS3Store(base.S3Client())),
	}, nil
}

func baseRegion(cfg *config.InfraConfig, regions []string) string {
	if len(cfg.AWS.Regions) > 0 {
		return cfg.AWS.Regions[0]
	}
	if len(regions) > 0 {
		return regions[0]
	}
	return fallbackRegion
}

// newFactory builds and loads a client factory for regions
func newFactory(ctx context.Context, cfg *config.InfraConfig, regions []string) (*awscloud.ClientFactory, error) {
	factory, err := awscloud.NewClientFactory(regions,
		awscloud.WithBaseRegion(baseRegion(cfg, regions)),
		awscloud.WithProfile(cfg.AWS.Profile),
		awscloud.WithRole(cfg.AWS.Role),
		awscloud.WithMaxAttempts(cfg.AWS.MaxAttempts),
	)
	if err != nil {
		return nil, err
	}
	if err := factory.Load(ctx); err != nil {
		return nil, err
	}
	return factory, nil
}

// promoteSSMCommand copies parameters from the source version to the target version
func promoteSSMCommand(c *cli.Context) error {
	ctx := c.Context
	env, err := loadEnvironment(c)
	if err != nil {
		return err
	}

	arch, err := naming.ParseArch(c.String("arch"))
	if err != nil {
		return err
	}
	regions := env.cfg.AWS.RegionsOr(c.StringSlice("regions"))
	if len(regions) == 0 {
		return &models.ConfigError{Setting: "aws.regions", Message: "no regions configured or given with --regions"}
	}
	if err := naming.ValidateRegions(regions); err != nil {
		return err
	}

	factory, err := newFactory(ctx, env.cfg, regions)
	if err != nil {
		return err
	}
	if err := factory.ValidateCredentials(ctx); err != nil {
		return err
	}

	store := ssm.NewStore(factory.SSMClients(), ssm.WithRequestsPerSecond(env.cfg.AWS.SSMRequestsPerSecond))
	var confirm promote.ConfirmFunc
	if !c.Bool("yes") {
		confirm = prompts.ConfirmWrites
	}

	report, err := promote.NewPromoter(store, env.docs, confirm).Promote(ctx, promote.Options{
		Variant:         c.String("variant"),
		Arch:            arch,
		Source:          c.String("source"),
		Target:          c.String("target"),
		Regions:         regions,
		Prefix:          env.cfg.AWS.SSMPrefix,
		TemplatePath:    c.String("template-path"),
		ParameterOutput: c.String("ssm-parameter-output"),
	})
	if err != nil {
		return err
	}
	if report.Changed() {
		output.Info("Promotion complete", "parameters", len(report.WriteSet))
	}
	return nil
}

// validateAMICommand compares live images with the expected images document
func validateAMICommand(c *cli.Context) error {
	ctx := c.Context
	statuses, err := models.ParseValidationStatuses(c.StringSlice("write-results-filter"))
	if err != nil {
		return err
	}
	env, err := loadEnvironment(c)
	if err != nil {
		return err
	}

	output.Info("Parsing expected ami file", "path", c.String("expected-amis-path"))
	data, err := env.docs.Read(ctx, c.String("expected-amis-path"))
	if err != nil {
		return err
	}
	expected, err := ami.ParseExpectedImages(data)
	if err != nil {
		return &models.DocumentError{Location: c.String("expected-amis-path"), Operation: "parse", Cause: err}
	}

	regions := lo.Keys(expected)
	sort.Strings(regions)
	if len(regions) == 0 {
		return &models.DocumentError{Location: c.String("expected-amis-path"), Operation: "parse", Cause: errors.New("no regions listed")}
	}
	factory, err := newFactory(ctx, env.cfg, regions)
	if err != nil {
		return err
	}
	if err := factory.ValidateCredentials(ctx); err != nil {
		return err
	}

	output.Info("Retrieving EC2 images")
	described := ami.Describe(ctx, factory.EC2Clients(), ami.RequestedIDs(expected), ami.ExpectedPublic(expected))

	output.Info("Validating EC2 images")
	results := ami.Validate(expected, described)
	logRegionErrors(results.Errors())

	if path := c.String("write-results-path"); path != "" {
		if err := writeResults(ctx, env.docs, path, results.ForStatus(statuses...)); err != nil {
			return err
		}
	}
	if err := printResults(c.Bool("json"), results.Summary(), results.Table); err != nil {
		return err
	}
	if results.Failed() {
		return errValidationFailed
	}
	return nil
}

// validateSSMCommand compares live parameters with the expected parameters document
func validateSSMCommand(c *cli.Context) error {
	ctx := c.Context
	statuses, err := models.ParseValidationStatuses(c.StringSlice("write-results-filter"))
	if err != nil {
		return err
	}
	env, err := loadEnvironment(c)
	if err != nil {
		return err
	}

	output.Info("Parsing expected parameters file", "path", c.String("expected-parameters-path"))
	data, err := env.docs.Read(ctx, c.String("expected-parameters-path"))
	if err != nil {
		return err
	}
	expected, err := ssm.ParseRegionalParameters(data)
	if err != nil {
		return &models.DocumentError{Location: c.String("expected-parameters-path"), Operation: "parse", Cause: err}
	}

	regions := lo.Keys(expected)
	sort.Strings(regions)
	if len(regions) == 0 {
		return &models.DocumentError{Location: c.String("expected-parameters-path"), Operation: "parse", Cause: errors.New("no regions listed")}
	}
	factory, err := newFactory(ctx, env.cfg, regions)
	if err != nil {
		return err
	}
	if err := factory.ValidateCredentials(ctx); err != nil {
		return err
	}

	output.Info("Validating SSM parameters")
	store := ssm.NewStore(factory.SSMClients(), ssm.WithRequestsPerSecond(env.cfg.AWS.SSMRequestsPerSecond))
	results := ssm.ValidateParameters(ctx, store, expected)
	logRegionErrors(results.Errors)

	if path := c.String("write-results-path"); path != "" {
		if err := writeResults(ctx, env.docs, path, results.ForStatus(statuses...)); err != nil {
			return err
		}
	}
	if err := printResults(c.Bool("json"), results.Summary(), results.Table); err != nil {
		return err
	}
	if results.Failed() {
		return errValidationFailed
	}
	return nil
}

func logRegionErrors(errs map[string]error) {
	regions := lo.Keys(errs)
	sort.Strings(regions)
	for _, region := range regions {
		output.Error("Region could not be validated", "region", region, "error", errs[region])
	}
}

func writeResults(ctx context.Context, docs *state.Documents, location string, results any) error {
	output.Info("Writing results", "location", location)
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return &models.DocumentError{Location: location, Operation: "serialize", Cause: err}
	}
	return docs.Write(ctx, location, data)
}

func printResults(asJSON bool, summary map[string]models.RegionSummary, table func() string) error {
	if !asJSON {
		output.Println(table())
		return nil
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize results summary: %w", err)
	}
	output.Println(string(data))
	return nil
}
