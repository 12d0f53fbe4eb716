package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecMapMarshalsFlatObject(t *testing.T) {
	m := SpecMap{
		"ISBN":             ScalarSpec("9780141182636"),
		RecommendationsKey: RecommendationSpec([]Recommendation{{Title: "Dune", URL: "/products/dune"}}),
	}

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"ISBN": "9780141182636",
		"Recommendations": [{"title": "Dune", "url": "/products/dune"}]
	}`, string(raw))
}

func TestSpecMapRoundTrip(t *testing.T) {
	m := SpecMap{
		"Publisher":         ScalarSpec("Penguin"),
		RecommendationsKey: RecommendationSpec(nil),
	}

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var got SpecMap
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, "Penguin", got["Publisher"].Text)
	assert.False(t, got["Publisher"].IsList())

	recs, ok := got[RecommendationsKey]
	require.True(t, ok)
	assert.True(t, recs.IsList())
	assert.Empty(t, recs.Recommendations)
}

func TestRecommendationSpecNilBecomesEmptyList(t *testing.T) {
	v := RecommendationSpec(nil)
	assert.True(t, v.IsList())

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
