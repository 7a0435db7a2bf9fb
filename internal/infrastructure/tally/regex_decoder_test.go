package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegexDecoder_Ledgers(t *testing.T) {
	d := NewRegexDecoder()

	nodes, err := d.Decode(loadFixture(t, "customers.xml"), KindCustomers)
	require.NoError(t, err)
	require.Len(t, nodes, 5)

	customers := ParseCustomers(nodes, zap.NewNop())
	require.Len(t, customers, 3)

	shree := customers[1]
	assert.Equal(t, "Shree Fabricators & Sons", shree.CustomerName)
	assert.Equal(t, "SF-014", shree.NaturalKey())
	assert.Equal(t, "dealer", shree.CustomerType)
	require.NotNil(t, shree.MobileNumber)
	assert.Equal(t, "9825012345", *shree.MobileNumber)
	assert.Equal(t, "Gujarat", shree.State)

	// attribute-bearing tags are outside what the patterns recognise
	assert.Nil(t, customers[0].MobileNumber)
}

func TestRegexDecoder_StockItems(t *testing.T) {
	d := NewRegexDecoder()

	t.Run("extracts item fields", func(t *testing.T) {
		nodes, err := d.Decode(loadFixture(t, "items.xml"), KindItems)
		require.NoError(t, err)

		items := ParseStockItems(nodes, zap.NewNop())
		require.Len(t, items, 3)

		assert.Equal(t, "Electrode E-6013 3.15mm", items[0].StockItemName)
		assert.Equal(t, "EL-6013-315", items[0].NaturalKey())
		require.NotNil(t, items[0].HSN)
		assert.Equal(t, "83111000", *items[0].HSN)
		require.NotNil(t, items[0].Rate)
		assert.InDelta(t, 412.5, *items[0].Rate, 1e-9)

		assert.Equal(t, "FX-100", items[1].NaturalKey())
		assert.Equal(t, "", items[2].NaturalKey())
	})

	t.Run("derives gst from the highest positive rate", func(t *testing.T) {
		raw := []byte(`<STOCKITEM NAME="Rod"><NAME>Rod</NAME>
			<GSTDETAILS.LIST><STATEWISEDETAILS.LIST><RATEDETAILS.LIST><GSTRATE> 9</GSTRATE></RATEDETAILS.LIST>
			<RATEDETAILS.LIST><GSTRATE>18</GSTRATE></RATEDETAILS.LIST>
			<RATEDETAILS.LIST><GSTRATE>0</GSTRATE></RATEDETAILS.LIST></STATEWISEDETAILS.LIST></GSTDETAILS.LIST>
			</STOCKITEM>`)

		nodes, err := d.Decode(raw, KindItems)
		require.NoError(t, err)
		require.Len(t, nodes, 1)

		item, err := ParseStockItem(nodes[0])
		require.NoError(t, err)
		require.NotNil(t, item.GST)
		assert.Equal(t, "18", *item.GST)
	})

	t.Run("zero rates give zero gst", func(t *testing.T) {
		raw := []byte(`<STOCKITEM><NAME>Exempt</NAME><GSTRATE>0</GSTRATE></STOCKITEM>`)

		nodes, err := d.Decode(raw, KindItems)
		require.NoError(t, err)

		item, err := ParseStockItem(nodes[0])
		require.NoError(t, err)
		require.NotNil(t, item.GST)
		assert.Equal(t, "0", *item.GST)
	})

	t.Run("text without records gives nothing", func(t *testing.T) {
		nodes, err := d.Decode([]byte("<RESPONSE>Unknown Request</RESPONSE>"), KindItems)

		assert.NoError(t, err)
		assert.Empty(t, nodes)
	})
}
