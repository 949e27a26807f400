package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceOf(t *testing.T) {
	c := Default()

	price, err := c.PriceOf("day")
	require.NoError(t, err)
	assert.Equal(t, int64(700), price)

	price, err = c.PriceOf("season")
	require.NoError(t, err)
	assert.Equal(t, int64(12000), price)

	price, err = c.PriceOf("core")
	require.NoError(t, err)
	assert.Equal(t, int64(70000), price)

	_, err = c.PriceOf("lifetime")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestResalePrice(t *testing.T) {
	c := Default()

	price, err := c.ResalePrice("core", "season")
	require.NoError(t, err)
	assert.Equal(t, int64(4000), price)

	price, err = c.ResalePrice("normal", "day")
	require.NoError(t, err)
	assert.Equal(t, int64(500), price)

	_, err = c.ResalePrice("core", "lifetime")
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = c.ResalePrice("reseller", "day")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSnapshotIsACopy(t *testing.T) {
	c := Default()

	snap := c.Snapshot()
	require.Len(t, snap.Cards, 4)
	require.Len(t, snap.Agents, 3)
	require.Len(t, snap.AgentPrices, 3)

	// Mutating the snapshot must not leak back into the catalog.
	snap.Cards[0].Price = 1
	snap.AgentPrices["core"]["day"] = 1

	price, err := c.PriceOf("day")
	require.NoError(t, err)
	assert.Equal(t, int64(700), price)

	price, err = c.ResalePrice("core", "day")
	require.NoError(t, err)
	assert.Equal(t, int64(300), price)
}
