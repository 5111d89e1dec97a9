package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Annotation carries what vision processing learned about an uploaded photo.
// Annotations arrive out of band and are looked up by attachment ID when a
// turn references one.
type Annotation struct {
	Caption          string            `json:"caption"`
	DetectedElements []string          `json:"detected_elements,omitempty"`
	ExtractedInfo    map[string]string `json:"extracted_info,omitempty"`
}

// AnnotationStore stores photo annotations keyed by attachment ID.
type AnnotationStore interface {
	Put(ctx context.Context, attachmentID string, ann Annotation) error
	Get(ctx context.Context, attachmentID string) (*Annotation, error)
}

const annotationTTL = 24 * time.Hour

// RedisAnnotationStore keeps annotations in Redis with a TTL matching the
// session idle window. A missing key returns (nil, nil).
type RedisAnnotationStore struct {
	client *redis.Client
	tracer trace.Tracer
}

func NewRedisAnnotationStore(client *redis.Client) *RedisAnnotationStore {
	return &RedisAnnotationStore{
		client: client,
		tracer: otel.Tracer("intake.annotations"),
	}
}

func annotationKey(attachmentID string) string {
	return "intake:annotation:" + attachmentID
}

func (s *RedisAnnotationStore) Put(ctx context.Context, attachmentID string, ann Annotation) error {
	ctx, span := s.tracer.Start(ctx, "annotations.put",
		trace.WithAttributes(attribute.String("attachment.id", attachmentID)))
	defer span.End()

	payload, err := json.Marshal(ann)
	if err != nil {
		return fmt.Errorf("intake: marshal annotation: %w", err)
	}
	if err := s.client.Set(ctx, annotationKey(attachmentID), payload, annotationTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("intake: store annotation: %w", err)
	}
	return nil
}

func (s *RedisAnnotationStore) Get(ctx context.Context, attachmentID string) (*Annotation, error) {
	ctx, span := s.tracer.Start(ctx, "annotations.get",
		trace.WithAttributes(attribute.String("attachment.id", attachmentID)))
	defer span.End()

	raw, err := s.client.Get(ctx, annotationKey(attachmentID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("intake: load annotation: %w", err)
	}

	var ann Annotation
	if err := json.Unmarshal(raw, &ann); err != nil {
		return nil, fmt.Errorf("intake: decode annotation: %w", err)
	}
	return &ann, nil
}
