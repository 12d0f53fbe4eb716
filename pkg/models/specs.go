package models

import "encoding/json"

// RecommendationsKey is the one reserved key in a product's spec map.
// Its value is a list of linked products, not a scalar.
const RecommendationsKey = "Recommendations"

// Recommendation is a link to a related product on the source site.
type Recommendation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SpecValue is a spec-map entry: either a scalar text value (ISBN,
// publisher, ...) or a recommendation list under RecommendationsKey.
// Exactly one of the two fields is set.
type SpecValue struct {
	Text            string
	Recommendations []Recommendation
}

// ScalarSpec wraps a plain text value.
func ScalarSpec(text string) SpecValue {
	return SpecValue{Text: text}
}

// RecommendationSpec wraps a recommendation list. A nil list is stored
// as an empty one so the key always marshals to a JSON array.
func RecommendationSpec(recs []Recommendation) SpecValue {
	if recs == nil {
		recs = []Recommendation{}
	}
	return SpecValue{Recommendations: recs}
}

// IsList reports whether the value holds a recommendation list.
func (v SpecValue) IsList() bool { return v.Recommendations != nil }

func (v SpecValue) MarshalJSON() ([]byte, error) {
	if v.IsList() {
		return json.Marshal(v.Recommendations)
	}
	return json.Marshal(v.Text)
}

func (v *SpecValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = SpecValue{Text: s}
		return nil
	}
	var recs []Recommendation
	if err := json.Unmarshal(b, &recs); err != nil {
		return err
	}
	*v = RecommendationSpec(recs)
	return nil
}

// SpecMap is the open key->value spec structure scraped from product
// pages. It serializes to a flat JSON object.
type SpecMap map[string]SpecValue
