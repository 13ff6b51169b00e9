// Package knowledge persists extracted materials across runs and answers
// similarity lookups against them. Two backends are provided: an embedded
// chromem store (default, no external services) and a Qdrant gRPC store.
package knowledge

import (
	"context"
	"errors"
)

// Match type tags reported by FindSimilar.
const (
	MatchExact = "exact"
	MatchFuzzy = "fuzzy"
)

var (
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("knowledge store unavailable")
	// ErrInvalidConfig is returned for unusable store configuration.
	ErrInvalidConfig = errors.New("invalid knowledge store config")
)

// Item is one registered material.
type Item struct {
	ID           string  `json:"id"`
	MaterialName string  `json:"material_name"`
	PartNumber   string  `json:"part_number"`
	Category     string  `json:"category"`
	WorkflowID   string  `json:"workflow_id"`
	Confidence   float64 `json:"confidence_score"`
}

// Match is a previously registered item returned by a similarity lookup,
// scored against the query.
type Match struct {
	ID           string  `json:"id"`
	MaterialName string  `json:"material_name"`
	PartNumber   string  `json:"part_number"`
	Category     string  `json:"category"`
	WorkflowID   string  `json:"workflow_id"`
	Score        float64 `json:"confidence_score"`
	MatchType    string  `json:"match_type"`
}

// Stats summarizes the store contents.
type Stats struct {
	TotalItems int    `json:"total_items"`
	Backend    string `json:"backend"`
	Collection string `json:"collection"`
}

// Store is the persistence interface the matcher and the HTTP API depend on.
type Store interface {
	// AddItems registers items under the given workflow and returns the
	// assigned document IDs.
	AddItems(ctx context.Context, items []Item, workflowID string) ([]string, error)

	// FindSimilar returns previously registered items ranked by similarity
	// to the given material name and part number, best first. Matches below
	// the minimum score are omitted.
	FindSimilar(ctx context.Context, materialName, partNumber string) ([]Match, error)

	// Stats reports the current store contents.
	Stats(ctx context.Context) (Stats, error)

	// Clear removes all registered items.
	Clear(ctx context.Context) error

	Close() error
}
