package domain

import (
	"encoding/json"
	"fmt"
)

// AlgorithmFamily enumerates the known analysis algorithm families.
type AlgorithmFamily string

const (
	// FamilyFrequencyBaseline compares raw corpus frequency distributions.
	FamilyFrequencyBaseline AlgorithmFamily = "frequency_baseline"
	// FamilyEmbeddingAlignment aligns diachronic embedding spaces.
	FamilyEmbeddingAlignment AlgorithmFamily = "embedding_alignment"
	// FamilyNeighborhoodJaccard compares k-nearest-neighbor sets.
	FamilyNeighborhoodJaccard AlgorithmFamily = "neighborhood_jaccard"
)

// requiredParams lists the keys each family must carry.
var requiredParams = map[AlgorithmFamily][]string{
	FamilyFrequencyBaseline:   {"min_count"},
	FamilyEmbeddingAlignment:  {"dimensions", "window"},
	FamilyNeighborhoodJaccard: {"k"},
}

// AlgorithmParams is the typed, versioned configuration of an analysis
// algorithm. It replaces free-form JSON blobs so malformed parameters are
// caught at the boundary instead of at read time.
type AlgorithmParams struct {
	Family        AlgorithmFamily    `json:"family"`
	SchemaVersion int                `json:"schema_version"`
	Values        map[string]float64 `json:"values,omitempty"`
	Options       map[string]string  `json:"options,omitempty"`
}

// Validate checks the family, schema version and required keys.
func (p AlgorithmParams) Validate() error {
	required, ok := requiredParams[p.Family]
	if !ok {
		return fmt.Errorf("%w: algorithm family %q", ErrInvalidEnum, p.Family)
	}
	if p.SchemaVersion < 1 {
		return fmt.Errorf("%w: params schema version %d", ErrValidation, p.SchemaVersion)
	}
	for _, key := range required {
		if _, present := p.Values[key]; !present {
			return fmt.Errorf("%w: %s params missing %q", ErrValidation, p.Family, key)
		}
	}
	return nil
}

// MarshalParams serializes params for storage; nil marshals to the empty string.
func MarshalParams(p *AlgorithmParams) (string, error) {
	if p == nil {
		return "", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal algorithm params: %w", err)
	}
	return string(data), nil
}

// UnmarshalParams parses stored params; the empty string parses to nil.
func UnmarshalParams(raw string) (*AlgorithmParams, error) {
	if raw == "" {
		return nil, nil
	}
	var p AlgorithmParams
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("unmarshal algorithm params: %w", err)
	}
	return &p, nil
}
