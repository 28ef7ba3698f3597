package promote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemantobora/pubsys/internal/models"
	"github.com/hemantobora/pubsys/internal/ssm"
)

func TestMergeAddsPromotedEntries(t *testing.T) {
	persisted := map[string]ssm.Parameters{
		"regionA": {ssm.NewKey("regionA", "keyX"): "v1"},
	}
	writeSet := ssm.Parameters{ssm.NewKey("regionA", "keyX-promoted"): "v1"}
	association := map[string]string{"keyX": "keyX-promoted"}

	merged, err := Merge(persisted, writeSet, association)
	require.NoError(t, err)
	assert.Equal(t, ssm.Parameters{
		ssm.NewKey("regionA", "keyX"):          "v1",
		ssm.NewKey("regionA", "keyX-promoted"): "v1",
	}, merged["regionA"])
	assert.Len(t, merged, 1)

	for _, params := range merged {
		assert.Empty(t, ssm.KeyDifference(params, params))
	}
}

func TestMergeLookupErrors(t *testing.T) {
	persisted := map[string]ssm.Parameters{
		"regionA": {ssm.NewKey("regionA", "keyX"): "v1"},
	}

	t.Run("name missing from association", func(t *testing.T) {
		_, err := Merge(persisted, ssm.Parameters{}, map[string]string{})
		var lookup *models.LookupError
		require.ErrorAs(t, err, &lookup)
		assert.Equal(t, "association", lookup.Source)
	})

	t.Run("target missing from write-set", func(t *testing.T) {
		_, err := Merge(persisted, ssm.Parameters{}, map[string]string{"keyX": "keyY"})
		var lookup *models.LookupError
		require.ErrorAs(t, err, &lookup)
		assert.Equal(t, "write-set", lookup.Source)
		assert.Equal(t, "keyY", lookup.Name)
	})
}
