package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/artifig/tehnopal/internal/airtable"
)

// recordAPI is the slice of the record store client the data access layer
// uses. Tests substitute a fake.
type recordAPI interface {
	Select(ctx context.Context, table, formula string, fields ...string) ([]airtable.Record, error)
	SelectActiveByIDs(ctx context.Context, table string, ids []string, fields ...string) ([]airtable.Record, error)
	Find(ctx context.Context, table, id string) (*airtable.Record, error)
	Create(ctx context.Context, table string, fields map[string]interface{}) (*airtable.Record, error)
	Update(ctx context.Context, table, id string, fields map[string]interface{}) (*airtable.Record, error)
}

// Store exposes typed reads and writes per logical table. Reference data
// (company types, categories, questions, answers, recommendations,
// solutions, providers) is read-only; AssessmentResponses is the only
// table it mutates.
type Store struct {
	api recordAPI
	log *zap.Logger
}

// New creates a Store over the given record store client.
func New(api recordAPI, log *zap.Logger) *Store {
	return &Store{api: api, log: log}
}
