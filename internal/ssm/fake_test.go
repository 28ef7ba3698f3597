package ssm

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// fakeSSM is an in-memory parameter store for one region
type fakeSSM struct {
	mu         sync.Mutex
	values     map[string]string
	getErr     error
	putErr     map[string]error
	staleReads bool
	getCalls   [][]string
	putCalls   []string
}

func newFakeSSM(values map[string]string) *fakeSSM {
	if values == nil {
		values = map[string]string{}
	}
	return &fakeSSM{values: values, putErr: map[string]error{}}
}

func (f *fakeSSM) GetParameters(_ context.Context, params *awsssm.GetParametersInput, _ ...func(*awsssm.Options)) (*awsssm.GetParametersOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, append([]string(nil), params.Names...))
	if f.getErr != nil {
		return nil, f.getErr
	}
	if len(params.Names) > 10 {
		return nil, errors.New("too many names")
	}
	out := &awsssm.GetParametersOutput{}
	for _, name := range params.Names {
		value, ok := f.values[name]
		if !ok {
			out.InvalidParameters = append(out.InvalidParameters, name)
			continue
		}
		if f.staleReads {
			value = "stale"
		}
		out.Parameters = append(out.Parameters, ssmtypes.Parameter{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}
	return out, nil
}

func (f *fakeSSM) PutParameter(_ context.Context, params *awsssm.PutParameterInput, _ ...func(*awsssm.Options)) (*awsssm.PutParameterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(params.Name)
	f.putCalls = append(f.putCalls, name)
	if err := f.putErr[name]; err != nil {
		return nil, err
	}
	f.values[name] = aws.ToString(params.Value)
	return &awsssm.PutParameterOutput{Version: 1}, nil
}

func clientsOf(fakes map[string]*fakeSSM) map[string]API {
	out := make(map[string]API, len(fakes))
	for region, f := range fakes {
		out[region] = f
	}
	return out
}
