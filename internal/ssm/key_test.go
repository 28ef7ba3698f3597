package ssm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemantobora/pubsys/internal/models"
)

func TestKeyDifferenceIdentical(t *testing.T) {
	a := Parameters{
		NewKey("us-west-2", "/a"): "1",
		NewKey("us-east-1", "/a"): "1",
		NewKey("us-west-2", "/b"): "2",
	}
	assert.Empty(t, KeyDifference(a, a))
}

func TestKeyDifferenceSoundAndMinimal(t *testing.T) {
	want := Parameters{
		NewKey("us-west-2", "/same"):    "v",
		NewKey("us-west-2", "/changed"): "new",
		NewKey("us-west-2", "/missing"): "m",
		NewKey("us-east-1", "/same"):    "v",
	}
	have := Parameters{
		NewKey("us-west-2", "/same"):    "v",
		NewKey("us-west-2", "/changed"): "old",
		NewKey("us-east-1", "/same"):    "v",
		NewKey("us-east-1", "/extra"):   "ignored",
	}

	diff := KeyDifference(want, have)

	assert.Equal(t, Parameters{
		NewKey("us-west-2", "/changed"): "new",
		NewKey("us-west-2", "/missing"): "m",
	}, diff)
	for key, value := range diff {
		require.Contains(t, want, key)
		assert.Equal(t, want[key], value)
		current, ok := have[key]
		assert.True(t, !ok || current != value, "key %v should not be in diff", key)
	}
}

func TestKeyDifferenceSameNameDifferentRegion(t *testing.T) {
	want := Parameters{NewKey("us-west-2", "/a"): "1"}
	have := Parameters{NewKey("us-east-1", "/a"): "1"}
	assert.Equal(t, want, KeyDifference(want, have))
}

func TestKeyDifferenceEmptyWant(t *testing.T) {
	have := Parameters{NewKey("us-west-2", "/a"): "1"}
	assert.Empty(t, KeyDifference(Parameters{}, have))
}

func TestRetarget(t *testing.T) {
	source := Parameters{
		NewKey("us-west-2", "/v1/image_id"): "ami-1",
		NewKey("us-east-1", "/v1/image_id"): "ami-2",
	}
	got, err := Retarget(source, map[string]string{"/v1/image_id": "/v2/image_id"})
	require.NoError(t, err)
	assert.Equal(t, Parameters{
		NewKey("us-west-2", "/v2/image_id"): "ami-1",
		NewKey("us-east-1", "/v2/image_id"): "ami-2",
	}, got)
}

func TestRetargetUnknownName(t *testing.T) {
	source := Parameters{NewKey("us-west-2", "/unknown"): "x"}
	_, err := Retarget(source, map[string]string{})

	var lookupErr *models.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "/unknown", lookupErr.Name)
}

func TestParametersKeysSorted(t *testing.T) {
	p := Parameters{
		NewKey("us-west-2", "/b"): "",
		NewKey("us-east-1", "/z"): "",
		NewKey("us-west-2", "/a"): "",
	}
	assert.Equal(t, []Key{
		NewKey("us-east-1", "/z"),
		NewKey("us-west-2", "/a"),
		NewKey("us-west-2", "/b"),
	}, p.Keys())
}

func TestKeysFor(t *testing.T) {
	keys := KeysFor([]string{"r1", "r2"}, []string{"/a", "/b"})
	assert.ElementsMatch(t, []Key{
		NewKey("r1", "/a"), NewKey("r1", "/b"),
		NewKey("r2", "/a"), NewKey("r2", "/b"),
	}, keys)
}
