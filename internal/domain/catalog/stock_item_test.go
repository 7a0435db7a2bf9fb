package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseRate(t *testing.T) {
	t.Run("numeric prefix with trailing text", func(t *testing.T) {
		rate := ParseRate("12.50 (per unit)")
		require.NotNil(t, rate)
		assert.InDelta(t, 12.50, *rate, 1e-9)
	})

	t.Run("rate with unit suffix", func(t *testing.T) {
		rate := ParseRate("450/Nos")
		require.NotNil(t, rate)
		assert.InDelta(t, 450.0, *rate, 1e-9)
	})

	t.Run("repeated dots keep the first decimal", func(t *testing.T) {
		rate := ParseRate("1.2.3")
		require.NotNil(t, rate)
		assert.InDelta(t, 1.2, *rate, 1e-9)
	})

	t.Run("dash has no rate", func(t *testing.T) {
		assert.Nil(t, ParseRate("-"))
	})

	t.Run("empty has no rate", func(t *testing.T) {
		assert.Nil(t, ParseRate(""))
	})

	t.Run("lone dot has no rate", func(t *testing.T) {
		assert.Nil(t, ParseRate("."))
	})
}

func TestNewNormalizedStockItem(t *testing.T) {
	t.Run("defaults parent group", func(t *testing.T) {
		item, err := NewNormalizedStockItem(" Electrode 3.15mm ", "", strPtr("EL-315"), strPtr(" Nos "), nil, nil, nil)

		require.NoError(t, err)
		assert.Equal(t, "Electrode 3.15mm", item.StockItemName)
		assert.Equal(t, DefaultParentGroup, item.ParentGroup)
		assert.Equal(t, "Nos", *item.UOM)
		assert.Nil(t, item.GST)
		assert.Equal(t, "EL-315", item.NaturalKey())
	})

	t.Run("missing code gives empty natural key", func(t *testing.T) {
		item, err := NewNormalizedStockItem("Flux", "Consumables", nil, nil, nil, nil, nil)

		require.NoError(t, err)
		assert.Equal(t, "", item.NaturalKey())
	})

	t.Run("fails without name", func(t *testing.T) {
		item, err := NewNormalizedStockItem("  ", "Consumables", nil, nil, nil, nil, nil)

		assert.Error(t, err)
		assert.Nil(t, item)
	})
}
