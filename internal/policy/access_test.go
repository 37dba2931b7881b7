package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticIdentity struct {
	id string
}

func (s staticIdentity) CurrentClientIdentity() (string, bool) {
	return s.id, s.id != ""
}

func TestParseContext(t *testing.T) {
	for _, in := range []string{"MARKET", "market", " Market "} {
		c, err := ParseContext(in)
		require.NoError(t, err, in)
		assert.Equal(t, ContextMarket, c)
	}

	c, err := ParseContext("client")
	require.NoError(t, err)
	assert.Equal(t, ContextClient, c)

	for _, in := range []string{"", "BOTH", "market;client"} {
		_, err := ParseContext(in)
		assert.Error(t, err, in)
	}
}

func TestMarketDecision(t *testing.T) {
	d, err := HistoryDecision(ContextMarket, staticIdentity{})
	require.NoError(t, err)

	assert.Equal(t, ContextMarket, d.Context)
	assert.Equal(t, LagCap, d.LagMode)
	assert.Empty(t, d.RowRestriction)
	assert.Empty(t, d.RowParams)
	assert.Empty(t, d.ClientID)

	// The anonymized projection must not expose client identifiers or
	// actual sizes.
	assert.NotContains(t, d.Columns, "buy_side")
	assert.NotContains(t, d.Columns, "size_in_MM_actual")
	assert.Contains(t, d.Columns, "counter_party as dealer")
	assert.Contains(t, d.Columns, "size_in_MM_capped_num as size_capped")
}

func TestClientDecision(t *testing.T) {
	d, err := HistoryDecision(ContextClient, staticIdentity{id: "Client 1"})
	require.NoError(t, err)

	assert.Equal(t, ContextClient, d.Context)
	assert.Equal(t, LagNone, d.LagMode)
	assert.Equal(t, "buy_side = ?", d.RowRestriction)
	require.Len(t, d.RowParams, 1)
	assert.Equal(t, "Client 1", d.RowParams[0])
	assert.Equal(t, "Client 1", d.ClientID)

	assert.Contains(t, d.Columns, "size_in_MM_actual as size_actual")
	assert.Contains(t, d.Columns, "mid_price_actual as mid_price")
	assert.NotContains(t, d.Columns, "size_in_MM_capped_num")
}

func TestClientDecisionRequiresIdentity(t *testing.T) {
	_, err := HistoryDecision(ContextClient, staticIdentity{})
	require.ErrorIs(t, err, ErrIdentityRequired)

	_, err = HistoryDecision(ContextClient, nil)
	require.ErrorIs(t, err, ErrIdentityRequired)
}
