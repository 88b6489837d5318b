package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	"github.com/sirupsen/logrus"
)

type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertResume(ctx context.Context, resumeID uint64, fileName string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, excludeID uint64, limit int) ([]SearchResult, error)
}

type SearchResult struct {
	ResumeID uint64
	Score    float32
	FileName string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	log            logrus.FieldLogger
}

func NewQdrantService(urlStr, apiKey, collectionName string, vectorSize uint64, log logrus.FieldLogger) (QdrantService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		log:            log,
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.log.WithField("collection", q.collectionName).Info("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.WithField("collection", q.collectionName).Info("✅ Qdrant collection created successfully")
	return nil
}

// UpsertResume implements QdrantService. The point id is the resume id, so
// indexing the same resume twice overwrites its point.
func (q *qdrantService) UpsertResume(ctx context.Context, resumeID uint64, fileName string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(resumeID),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"resume_id": int64(resumeID),
			"file_name": fileName,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchSimilar implements QdrantService.
func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, excludeID uint64, limit int) ([]SearchResult, error) {
	filter := &qdrant.Filter{
		MustNot: []*qdrant.Condition{
			qdrant.NewMatchInt("resume_id", int64(excludeID)),
		},
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		result := SearchResult{
			ResumeID: point.GetId().GetNum(),
			Score:    point.GetScore(),
		}

		if name, ok := point.GetPayload()["file_name"]; ok {
			result.FileName = name.GetStringValue()
		}

		results = append(results, result)
	}

	return results, nil
}
