package ssm

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"github.com/hemantobora/pubsys/internal/models"
	"github.com/hemantobora/pubsys/internal/output"
	"github.com/hemantobora/pubsys/internal/regional"
)

// getParametersBatchSize is the most names GetParameters accepts per call
const getParametersBatchSize = 10

// DefaultRequestsPerSecond throttles PutParameter calls in each region
const DefaultRequestsPerSecond = 5.0

// API is the subset of the SSM client used by Store
type API interface {
	GetParameters(ctx context.Context, params *awsssm.GetParametersInput, optFns ...func(*awsssm.Options)) (*awsssm.GetParametersOutput, error)
	PutParameter(ctx context.Context, params *awsssm.PutParameterInput, optFns ...func(*awsssm.Options)) (*awsssm.PutParameterOutput, error)
}

// Store reads and writes parameters in several regions, one client per region
type Store struct {
	clients           map[string]API
	requestsPerSecond float64
	concurrency       int
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithRequestsPerSecond sets the per-region write rate
func WithRequestsPerSecond(rps float64) StoreOption {
	return func(s *Store) {
		s.requestsPerSecond = rps
	}
}

// NewStore creates a Store over regional clients
func NewStore(clients map[string]API, opts ...StoreOption) *Store {
	s := &Store{
		clients:           clients,
		requestsPerSecond: DefaultRequestsPerSecond,
		concurrency:       regional.DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) client(region string) (API, error) {
	client, ok := s.clients[region]
	if !ok || client == nil {
		return nil, fmt.Errorf("no SSM client configured for region %s", region)
	}
	return client, nil
}

// GetMany fetches the given keys. Names that do not exist are left out of the
// result. Every region is fetched even if another fails; failures come back
// as joined *models.FetchError values alongside whatever was fetched.
func (s *Store) GetMany(ctx context.Context, keys []Key) (Parameters, error) {
	results := s.FetchByRegion(ctx, keys)
	regions := lo.Keys(results)
	sort.Strings(regions)

	found := make(Parameters)
	var errs []error
	for _, region := range regions {
		result := results[region]
		if result.Err != nil {
			errs = append(errs, result.Err)
			continue
		}
		for key, value := range result.Value {
			found[key] = value
		}
	}
	return found, errors.Join(errs...)
}

// FetchByRegion fetches the given keys and keeps each region's outcome
// separate. Failed regions carry a *models.FetchError.
func (s *Store) FetchByRegion(ctx context.Context, keys []Key) map[string]regional.Result[Parameters] {
	byRegion := groupNames(keys)
	regions := lo.Keys(byRegion)
	sort.Strings(regions)

	results := regional.Run(ctx, regions, s.concurrency, func(ctx context.Context, region string) (Parameters, error) {
		client, err := s.client(region)
		if err != nil {
			return nil, &models.FetchError{Region: region, Cause: err}
		}
		params, err := getInRegion(ctx, client, region, byRegion[region])
		if err != nil {
			logAPIError(region, "GetParameters", err)
			return nil, &models.FetchError{Region: region, Cause: err}
		}
		return params, nil
	})
	return results
}

func getInRegion(ctx context.Context, client API, region string, names []string) (Parameters, error) {
	log := output.RegionLogger(region)
	found := make(Parameters, len(names))
	for _, batch := range lo.Chunk(names, getParametersBatchSize) {
		log.Debug("Requesting parameters", "count", len(batch))
		resp, err := client.GetParameters(ctx, &awsssm.GetParametersInput{
			Names: batch,
		})
		if err != nil {
			return nil, err
		}
		for _, p := range resp.Parameters {
			name := aws.ToString(p.Name)
			if name == "" {
				continue
			}
			found[NewKey(region, name)] = aws.ToString(p.Value)
		}
		if len(resp.InvalidParameters) > 0 {
			log.Debug("Parameters not found", "names", resp.InvalidParameters)
		}
	}
	return found, nil
}

// SetMany writes every key of writeSet. Regions are written in parallel and
// names within a region in sorted order under a rate limit. Every key is
// attempted; the ones that failed are listed in a *models.SetError.
func (s *Store) SetMany(ctx context.Context, writeSet Parameters) error {
	byRegion := writeSet.ByRegion()
	regions := lo.Keys(byRegion)
	sort.Strings(regions)

	results := regional.Run(ctx, regions, s.concurrency, func(ctx context.Context, region string) ([]models.KeyFailure, error) {
		client, err := s.client(region)
		if err != nil {
			failures := make([]models.KeyFailure, 0, len(byRegion[region]))
			for _, key := range byRegion[region].Keys() {
				failures = append(failures, models.KeyFailure{Region: region, Name: key.Name, Cause: err})
			}
			return failures, nil
		}
		return s.setInRegion(ctx, client, region, byRegion[region]), nil
	})

	var failures []models.KeyFailure
	for _, region := range regions {
		failures = append(failures, results[region].Value...)
	}
	if len(failures) > 0 {
		return &models.SetError{Failures: failures}
	}
	return nil
}

func (s *Store) setInRegion(ctx context.Context, client API, region string, params Parameters) []models.KeyFailure {
	log := output.RegionLogger(region)
	limiter := rate.NewLimiter(rate.Limit(s.requestsPerSecond), 1)

	var failures []models.KeyFailure
	for _, key := range params.Keys() {
		if err := limiter.Wait(ctx); err != nil {
			failures = append(failures, models.KeyFailure{Region: region, Name: key.Name, Cause: err})
			continue
		}
		_, err := client.PutParameter(ctx, &awsssm.PutParameterInput{
			Name:      aws.String(key.Name),
			Value:     aws.String(params[key]),
			Overwrite: aws.Bool(true),
			Type:      ssmtypes.ParameterTypeString,
		})
		if err != nil {
			logAPIError(region, "PutParameter", err)
			failures = append(failures, models.KeyFailure{Region: region, Name: key.Name, Cause: err})
			continue
		}
		log.Debug("Set parameter", "name", key.Name)
	}
	return failures
}

// ValidateMany re-reads every key of writeSet and reports each one whose live
// value differs from the requested value in a *models.ValidationError.
// Regions that cannot be read contribute a *models.FetchError; mismatches in
// the other regions are still reported alongside it.
func (s *Store) ValidateMany(ctx context.Context, writeSet Parameters) error {
	fetched := s.FetchByRegion(ctx, writeSet.Keys())

	var errs []error
	failed := make(map[string]bool)
	regions := lo.Keys(fetched)
	sort.Strings(regions)
	for _, region := range regions {
		if err := fetched[region].Err; err != nil {
			errs = append(errs, err)
			failed[region] = true
		}
	}

	var mismatches []models.Mismatch
	for _, key := range writeSet.Keys() {
		if failed[key.Region] {
			continue
		}
		expected := writeSet[key]
		actual, ok := fetched[key.Region].Value[key]
		if ok && actual == expected {
			continue
		}
		m := models.Mismatch{Region: key.Region, Name: key.Name, Expected: expected}
		if ok {
			m.Actual = aws.String(actual)
		}
		mismatches = append(mismatches, m)
	}
	if len(mismatches) > 0 {
		errs = append(errs, &models.ValidationError{Mismatches: mismatches})
	}
	return errors.Join(errs...)
}

func logAPIError(region, operation string, err error) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		output.RegionLogger(region).Debug("API call failed",
			"operation", operation,
			"code", apiErr.ErrorCode(),
			"message", apiErr.ErrorMessage())
	}
}
