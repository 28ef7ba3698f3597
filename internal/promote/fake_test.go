package promote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hemantobora/pubsys/internal/ssm"
)

// fakeStore is an in-memory ParameterStore that counts calls
type fakeStore struct {
	mu            sync.Mutex
	values        ssm.Parameters
	getCalls      int
	setCalls      int
	validateCalls int
	written       ssm.Parameters
	setErr        error
	validateErr   error
}

func newFakeStore(values ssm.Parameters) *fakeStore {
	if values == nil {
		values = ssm.Parameters{}
	}
	return &fakeStore{values: values, written: ssm.Parameters{}}
}

func (f *fakeStore) GetMany(_ context.Context, keys []ssm.Key) (ssm.Parameters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	out := ssm.Parameters{}
	for _, key := range keys {
		if value, ok := f.values[key]; ok {
			out[key] = value
		}
	}
	return out, nil
}

func (f *fakeStore) SetMany(_ context.Context, writeSet ssm.Parameters) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	for key, value := range writeSet {
		f.values[key] = value
		f.written[key] = value
	}
	return nil
}

func (f *fakeStore) ValidateMany(_ context.Context, writeSet ssm.Parameters) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validateCalls++
	if f.validateErr != nil {
		return f.validateErr
	}
	for key, value := range writeSet {
		if f.values[key] != value {
			return fmt.Errorf("%s in %s does not match", key.Name, key.Region)
		}
	}
	return nil
}

// fakeDocs keeps documents in memory
type fakeDocs struct {
	docs   map[string][]byte
	writes []string
}

func newFakeDocs(docs map[string]string) *fakeDocs {
	f := &fakeDocs{docs: map[string][]byte{}}
	for location, data := range docs {
		f.docs[location] = []byte(data)
	}
	return f
}

func (f *fakeDocs) Read(_ context.Context, location string) ([]byte, error) {
	data, ok := f.docs[location]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (f *fakeDocs) Write(_ context.Context, location string, data []byte) error {
	f.docs[location] = data
	f.writes = append(f.writes, location)
	return nil
}
