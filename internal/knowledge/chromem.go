package knowledge

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// ChromemConfig holds configuration for the embedded chromem-go backend.
type ChromemConfig struct {
	// Path is the directory for persistent storage. Empty means in-memory.
	Path string

	// Compress enables gzip compression for stored data.
	Compress bool

	// Collection is the collection name. Default: "bom_items".
	Collection string

	// VectorSize is the embedding dimension. Default: DefaultVectorSize.
	VectorSize int
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = "bom_items"
	}
	if c.VectorSize == 0 {
		c.VectorSize = DefaultVectorSize
	}
}

// ChromemStore implements Store using chromem-go, an embeddable pure-Go
// vector database with optional gob persistence. No external service is
// required, which makes it the default backend.
type ChromemStore struct {
	db       *chromem.DB
	embedder *HashEmbedder
	config   ChromemConfig
	logger   *zap.Logger

	mu         sync.Mutex
	collection *chromem.Collection
}

var _ Store = (*ChromemStore)(nil)

// NewChromemStore creates a ChromemStore with the given configuration.
func NewChromemStore(config ChromemConfig, logger *zap.Logger) (*ChromemStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()

	var db *chromem.DB
	var err error
	if config.Path == "" {
		db = chromem.NewDB()
	} else {
		if err = os.MkdirAll(config.Path, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", config.Path, err)
		}
		db, err = chromem.NewPersistentDB(config.Path, config.Compress)
		if err != nil {
			return nil, fmt.Errorf("creating chromem DB: %w", err)
		}
	}

	store := &ChromemStore{
		db:       db,
		embedder: NewHashEmbedder(config.VectorSize),
		config:   config,
		logger:   logger,
	}
	if _, err := store.getCollection(); err != nil {
		return nil, err
	}

	logger.Info("chromem knowledge store initialized",
		zap.String("path", config.Path),
		zap.String("collection", config.Collection),
		zap.Int("vector_size", config.VectorSize),
	)
	return store, nil
}

func (s *ChromemStore) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.Embed(ctx, text)
	}
}

func (s *ChromemStore) getCollection() (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collection != nil {
		return s.collection, nil
	}
	collection, err := s.db.GetOrCreateCollection(s.config.Collection, nil, s.embeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("getting/creating collection %s: %w", s.config.Collection, err)
	}
	s.collection = collection
	return collection, nil
}

// AddItems registers items under the given workflow.
func (s *ChromemStore) AddItems(ctx context.Context, items []Item, workflowID string) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}
	collection, err := s.getCollection()
	if err != nil {
		return nil, err
	}

	docs := make([]chromem.Document, len(items))
	ids := make([]string, len(items))
	for i, item := range items {
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id
		docs[i] = chromem.Document{
			ID:      id,
			Content: itemContent(item),
			Metadata: map[string]string{
				"material_name":    item.MaterialName,
				"part_number":      item.PartNumber,
				"category":         item.Category,
				"workflow_id":      workflowID,
				"confidence_score": strconv.FormatFloat(item.Confidence, 'f', -1, 64),
			},
		}
	}

	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return nil, fmt.Errorf("adding documents: %w", err)
	}

	s.logger.Debug("registered items in knowledge store",
		zap.String("workflow_id", workflowID),
		zap.Int("count", len(ids)),
	)
	return ids, nil
}

// FindSimilar returns registered items ranked against the query.
func (s *ChromemStore) FindSimilar(ctx context.Context, materialName, partNumber string) ([]Match, error) {
	query := strings.TrimSpace(materialName + " " + partNumber)
	if query == "" {
		return nil, nil
	}
	collection, err := s.getCollection()
	if err != nil {
		return nil, err
	}

	// chromem requires nResults <= document count.
	k := maxCandidates
	count := collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.config.Collection, err)
	}

	candidates := make([]Match, len(results))
	vectorScores := make([]float64, len(results))
	for i, r := range results {
		candidates[i] = Match{
			ID:           r.ID,
			MaterialName: r.Metadata["material_name"],
			PartNumber:   r.Metadata["part_number"],
			Category:     r.Metadata["category"],
			WorkflowID:   r.Metadata["workflow_id"],
		}
		vectorScores[i] = float64(r.Similarity)
	}
	return rankMatches(materialName, partNumber, candidates, vectorScores), nil
}

// Stats reports the current store contents.
func (s *ChromemStore) Stats(_ context.Context) (Stats, error) {
	collection, err := s.getCollection()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalItems: collection.Count(),
		Backend:    "chromem",
		Collection: s.config.Collection,
	}, nil
}

// Clear removes all registered items by dropping and recreating the
// collection.
func (s *ChromemStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.DeleteCollection(s.config.Collection); err != nil {
		return fmt.Errorf("deleting collection %s: %w", s.config.Collection, err)
	}
	collection, err := s.db.GetOrCreateCollection(s.config.Collection, nil, s.embeddingFunc())
	if err != nil {
		return fmt.Errorf("recreating collection %s: %w", s.config.Collection, err)
	}
	s.collection = collection
	return nil
}

// Close is a no-op: chromem persists on write.
func (s *ChromemStore) Close() error { return nil }

func itemContent(item Item) string {
	return strings.TrimSpace(item.MaterialName + " " + item.PartNumber)
}
