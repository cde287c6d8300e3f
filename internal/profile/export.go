package profile

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/jonathan/news-recommender/internal/schemas"
	"github.com/jonathan/news-recommender/internal/types"
)

// Limits on the exported preference lists.
const (
	ExportedCategories = 5
	ExportedBiasTypes  = 3
)

// Serialized is the persisted form of a profile's content signal.
type Serialized struct {
	Vector            []float64 `json:"vector"`
	Vocabulary        []string  `json:"vocabulary"`
	TotalInteractions int       `json:"totalInteractions"`
}

// serializedSchema describes the blob written by Export.
const serializedSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["vector", "vocabulary", "totalInteractions"],
	"properties": {
		"vector": {"type": "array", "items": {"type": "number"}},
		"vocabulary": {"type": "array", "items": {"type": "string"}},
		"totalInteractions": {"type": "integer", "minimum": 0}
	}
}`

// Export summarizes p for persistence: the top categories and bias types by weight
// and an opaque JSON blob of the interest vector with its vocabulary.
func Export(p *Profile, vocabulary []string) (types.PreferenceSummary, error) {
	if vocabulary == nil {
		vocabulary = []string{}
	}

	blob, err := json.Marshal(Serialized{
		Vector:            p.interestVector,
		Vocabulary:        vocabulary,
		TotalInteractions: p.totalInteractions,
	})
	if err != nil {
		return types.PreferenceSummary{}, fmt.Errorf("failed to serialize profile: %w", err)
	}

	categories := p.TopCategories(ExportedCategories)
	biases := p.TopBiases(ExportedBiasTypes)

	summary := types.PreferenceSummary{
		PreferredCategories: make([]string, len(categories)),
		PreferredBiasTypes:  make([]string, len(biases)),
		SerializedProfile:   string(blob),
	}
	for i, c := range categories {
		summary.PreferredCategories[i] = string(c)
	}
	for i, b := range biases {
		summary.PreferredBiasTypes[i] = string(b)
	}
	return summary, nil
}

// ParseSerialized decodes a blob produced by Export.
func ParseSerialized(blob string) (*Serialized, error) {
	if err := schemas.ValidateJSONString(serializedSchema, blob); err != nil {
		return nil, fmt.Errorf("invalid serialized profile: %w", err)
	}

	var s Serialized
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return nil, fmt.Errorf("failed to parse serialized profile: %w", err)
	}
	if len(s.Vector) != len(s.Vocabulary) {
		return nil, fmt.Errorf("serialized profile has %d weights for %d terms", len(s.Vector), len(s.Vocabulary))
	}
	return &s, nil
}
