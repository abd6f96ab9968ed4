package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/webboost/models"
)

// StatusSuccess is the only status written by the API today; failed audits
// are not persisted.
const StatusSuccess = "success"

// AnonymousSubject is used when no identity accompanies a request.
const AnonymousSubject = "anonymous"

// Record is one persisted audit.
type Record struct {
	ID              string
	Subject         string
	URL             string
	MobileAdDensity int
	HasSchema       bool
	WordCount       int
	Status          string
	CreatedAt       time.Time
}

// NewRecord builds a success record for subject.
func NewRecord(subject, url string, m models.PageMetrics) *Record {
	if subject == "" {
		subject = AnonymousSubject
	}
	return &Record{
		ID:              uuid.NewString(),
		Subject:         subject,
		URL:             url,
		MobileAdDensity: m.MobileAdDensity,
		HasSchema:       m.HasSchema,
		WordCount:       m.WordCount,
		Status:          StatusSuccess,
		CreatedAt:       time.Now().UTC(),
	}
}

// ToModel converts r to its API shape.
func (r *Record) ToModel() models.AuditRecord {
	return models.AuditRecord{
		ID:              r.ID,
		URL:             r.URL,
		MobileAdDensity: r.MobileAdDensity,
		HasSchema:       r.HasSchema,
		WordCount:       r.WordCount,
		Status:          r.Status,
		Timestamp:       r.CreatedAt.UnixMilli(),
	}
}

// Filter selects records for List. Results are newest first.
type Filter struct {
	Subject string
	Limit   int
}

// Backend is an append-only audit log queryable by subject.
type Backend interface {
	Save(ctx context.Context, r *Record) error
	List(ctx context.Context, f Filter) ([]*Record, error)
	Close() error
}

// ensure nopBackend implements Backend
var _ Backend = nopBackend{}

// nopBackend discards everything. Used when persistence is disabled.
type nopBackend struct{}

// NewNop returns a Backend that stores nothing.
func NewNop() Backend { return nopBackend{} }

func (nopBackend) Save(context.Context, *Record) error { return nil }

func (nopBackend) List(context.Context, Filter) ([]*Record, error) { return nil, nil }

func (nopBackend) Close() error { return nil }
