package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// QdrantConfig holds configuration for the Qdrant gRPC backend.
type QdrantConfig struct {
	// Host of the Qdrant server. Default: "localhost".
	Host string

	// Port of the Qdrant gRPC endpoint. Default: 6334.
	Port int

	// UseTLS enables TLS on the gRPC connection.
	UseTLS bool

	// Collection is the collection name. Default: "bom_items".
	Collection string

	// VectorSize is the embedding dimension. Default: DefaultVectorSize.
	VectorSize int
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Collection == "" {
		c.Collection = "bom_items"
	}
	if c.VectorSize == 0 {
		c.VectorSize = DefaultVectorSize
	}
}

// QdrantStore implements Store against an external Qdrant server over gRPC.
type QdrantStore struct {
	client   *qdrant.Client
	embedder *HashEmbedder
	config   QdrantConfig
	logger   *zap.Logger
}

var _ Store = (*QdrantStore)(nil)

// NewQdrantStore connects to Qdrant and ensures the collection exists.
func NewQdrantStore(config QdrantConfig, logger *zap.Logger) (*QdrantStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		UseTLS: config.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	store := &QdrantStore{
		client:   client,
		embedder: NewHashEmbedder(config.VectorSize),
		config:   config,
		logger:   logger,
	}
	if err := store.ensureCollection(context.Background()); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("qdrant knowledge store initialized",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("collection", config.Collection),
	)
	return store, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	_, err := s.client.GetCollectionInfo(ctx, s.config.Collection)
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); !ok || st.Code() != grpccodes.NotFound {
		return fmt.Errorf("checking collection %s: %w", s.config.Collection, err)
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.config.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.config.VectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.config.Collection, err)
	}
	return nil
}

// AddItems registers items under the given workflow.
func (s *QdrantStore) AddItems(ctx context.Context, items []Item, workflowID string) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}

	points := make([]*qdrant.PointStruct, len(items))
	ids := make([]string, len(items))
	for i, item := range items {
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id

		vec, err := s.embedder.Embed(ctx, itemContent(item))
		if err != nil {
			return nil, fmt.Errorf("embedding item %s: %w", id, err)
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(id),
			Vectors: qdrant.NewVectors(vec...),
			Payload: map[string]*qdrant.Value{
				"material_name":    stringValue(item.MaterialName),
				"part_number":      stringValue(item.PartNumber),
				"category":         stringValue(item.Category),
				"workflow_id":      stringValue(workflowID),
				"confidence_score": {Kind: &qdrant.Value_DoubleValue{DoubleValue: item.Confidence}},
			},
		}
	}

	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.config.Collection,
		Points:         points,
	}); err != nil {
		return nil, fmt.Errorf("upserting points: %w", err)
	}

	s.logger.Debug("registered items in knowledge store",
		zap.String("workflow_id", workflowID),
		zap.Int("count", len(ids)),
	)
	return ids, nil
}

// FindSimilar returns registered items ranked against the query.
func (s *QdrantStore) FindSimilar(ctx context.Context, materialName, partNumber string) ([]Match, error) {
	query := strings.TrimSpace(materialName + " " + partNumber)
	if query == "" {
		return nil, nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.config.Collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          qdrant.PtrOf(uint64(maxCandidates)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.config.Collection, err)
	}

	candidates := make([]Match, len(results))
	vectorScores := make([]float64, len(results))
	for i, point := range results {
		candidates[i] = Match{
			ID:           point.GetId().GetUuid(),
			MaterialName: point.GetPayload()["material_name"].GetStringValue(),
			PartNumber:   point.GetPayload()["part_number"].GetStringValue(),
			Category:     point.GetPayload()["category"].GetStringValue(),
			WorkflowID:   point.GetPayload()["workflow_id"].GetStringValue(),
		}
		vectorScores[i] = float64(point.GetScore())
	}
	return rankMatches(materialName, partNumber, candidates, vectorScores), nil
}

// Stats reports the current store contents.
func (s *QdrantStore) Stats(ctx context.Context) (Stats, error) {
	info, err := s.client.GetCollectionInfo(ctx, s.config.Collection)
	if err != nil {
		return Stats{}, fmt.Errorf("getting collection info: %w", err)
	}
	total := 0
	if info.PointsCount != nil {
		total = int(*info.PointsCount)
	}
	return Stats{
		TotalItems: total,
		Backend:    "qdrant",
		Collection: s.config.Collection,
	}, nil
}

// Clear drops and recreates the collection.
func (s *QdrantStore) Clear(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.config.Collection); err != nil {
		return fmt.Errorf("deleting collection %s: %w", s.config.Collection, err)
	}
	return s.ensureCollection(ctx)
}

// Close closes the gRPC connection.
func (s *QdrantStore) Close() error { return s.client.Close() }

func stringValue(v string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
}
