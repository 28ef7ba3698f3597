package ssm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemantobora/pubsys/internal/models"
)

func TestValidateRegionParameters(t *testing.T) {
	expected := Parameters{
		NewKey("us-west-2", "/correct"):   "1",
		NewKey("us-west-2", "/incorrect"): "2",
		NewKey("us-west-2", "/missing"):   "3",
	}
	actual := Parameters{
		NewKey("us-west-2", "/correct"):   "1",
		NewKey("us-west-2", "/incorrect"): "two",
		NewKey("us-west-2", "/unexpected"): "x",
	}

	results := ValidateRegionParameters(expected, actual)

	require.Len(t, results, 3)
	byName := map[string]ParameterResult{}
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.Equal(t, models.StatusCorrect, byName["/correct"].Status)
	assert.Equal(t, models.StatusIncorrect, byName["/incorrect"].Status)
	assert.Equal(t, "two", *byName["/incorrect"].ActualValue)
	assert.Equal(t, models.StatusMissing, byName["/missing"].Status)
	assert.Nil(t, byName["/missing"].ActualValue)
}

func TestValidateParametersAcrossRegions(t *testing.T) {
	west := newFakeSSM(map[string]string{"/a": "1"})
	east := newFakeSSM(nil)
	east.getErr = errors.New("no access")
	store := NewStore(clientsOf(map[string]*fakeSSM{"us-west-2": west, "us-east-1": east}))

	expected := map[string]Parameters{
		"us-west-2": {NewKey("us-west-2", "/a"): "1", NewKey("us-west-2", "/b"): "2"},
		"us-east-1": {NewKey("us-east-1", "/a"): "1"},
	}
	results := ValidateParameters(context.Background(), store, expected)

	assert.Len(t, results.Results, 2)
	require.Contains(t, results.Errors, "us-east-1")
	assert.True(t, results.Failed())

	summary := results.Summary()
	assert.Equal(t, models.RegionSummary{Correct: 1, Missing: 1, Accessible: true}, summary["us-west-2"])
	assert.Equal(t, models.RegionSummary{Accessible: false}, summary["us-east-1"])

	missing := results.ForStatus(models.StatusMissing)
	require.Len(t, missing, 1)
	assert.Equal(t, "/b", missing[0].Name)
	assert.Empty(t, results.ForStatus(models.StatusIncorrect))
	assert.Contains(t, results.Table(), "/b")
}

func TestRegionalParametersDocument(t *testing.T) {
	doc := []byte(`{"us-west-2": {"/a": "1", "/b": "2"}, "us-east-1": {"/a": "3"}}`)

	parsed, err := ParseRegionalParameters(doc)
	require.NoError(t, err)
	assert.Equal(t, "3", parsed["us-east-1"][NewKey("us-east-1", "/a")])
	assert.Len(t, Flatten(parsed), 3)

	data, err := MarshalRegionalParameters(parsed)
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(data))
}
