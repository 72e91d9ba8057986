package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdash/domain/analysis"
)

func TestPayloadShape(t *testing.T) {
	p := Payload()
	require.NotNil(t, p.NullsByColumn)
	assert.Equal(t, Labels, p.NullsByColumn.Labels)
	assert.Len(t, p.NullsByColumn.Counts, len(Labels))
	assert.Nil(t, p.DuplicatesByColumn)
	require.NotNil(t, p.Legacy)
	assert.Equal(t, []float64{10, 20, 30, 25, 15}, p.Legacy.Values)
}

func TestPayloadIsACopy(t *testing.T) {
	p := Payload()
	p.NullsByColumn.Labels[0] = "changed"
	assert.Equal(t, "A", Payload().NullsByColumn.Labels[0])
	assert.Equal(t, "A", Labels[0])
}

func TestPayloadSurvivesEncoding(t *testing.T) {
	raw, err := analysis.Encode(Payload())
	require.NoError(t, err)
	p, err := analysis.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, Payload(), p)
}
