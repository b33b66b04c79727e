package airtable

import (
	"context"
	"fmt"
	"strings"

	"github.com/mehanizm/airtable"
	"go.uber.org/zap"

	"github.com/artifig/tehnopal/internal/models"
)

// Table names in the record store base.
const (
	TableCompanyTypes    = "MethodCompanyTypes"
	TableCategories      = "MethodCategories"
	TableQuestions       = "MethodQuestions"
	TableAnswers         = "MethodAnswers"
	TableRecommendations = "MethodRecommendations"
	TableSolutions       = "MethodExampleSolutions"
	TableProviders       = "SolutionProviders"
	TableResponses       = "AssessmentResponses"
)

// idChunkSize bounds how many RECORD_ID() terms go into a single OR()
// formula. Larger id sets are split and the pages merged, since the filter
// travels in the request URL.
const idChunkSize = 50

// Record is one record as returned by the store: its id plus the raw
// field map, decoded further by the models package.
type Record struct {
	ID     string
	Fields models.Fields
}

// Client is the thin wrapper around the hosted record store's REST API.
// All durable state lives behind it; the application never persists
// reference data locally.
type Client struct {
	client *airtable.Client
	baseID string
	log    *zap.Logger
}

// New creates a record store client for one base.
func New(apiKey, baseID string, log *zap.Logger) *Client {
	return &Client{
		client: airtable.NewClient(apiKey),
		baseID: baseID,
		log:    log,
	}
}

func (c *Client) table(name string) *airtable.Table {
	return c.client.GetTable(c.baseID, name)
}

// ActiveFormula filters to records whose isActive checkbox is set.
func ActiveFormula() string {
	return "{isActive} = 1"
}

// activeWithIDs builds one formula per id chunk, each selecting active
// records that are members of that chunk.
func activeWithIDs(ids []string) []string {
	chunks := chunkIDs(ids, idChunkSize)
	formulas := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		terms := make([]string, len(chunk))
		for i, id := range chunk {
			terms[i] = fmt.Sprintf("RECORD_ID() = '%s'", escapeID(id))
		}
		formulas = append(formulas, fmt.Sprintf("AND({isActive} = 1, OR(%s))", strings.Join(terms, ", ")))
	}
	return formulas
}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

// escapeID guards the single-quoted formula literal. Record ids are
// alphanumeric in practice, so this only matters for hostile input.
func escapeID(id string) string {
	return strings.ReplaceAll(id, "'", "\\'")
}

// Select fetches every record matching the formula, following pagination.
func (c *Client) Select(ctx context.Context, tableName, formula string, fields ...string) ([]Record, error) {
	var out []Record
	offset := ""
	for {
		cfg := c.table(tableName).GetRecords().WithFilterFormula(formula)
		if len(fields) > 0 {
			cfg = cfg.ReturnFields(fields...)
		}
		if offset != "" {
			cfg = cfg.WithOffset(offset)
		}

		page, err := cfg.Do()
		if err != nil {
			c.log.Error("Record store select failed",
				zap.String("table", tableName),
				zap.String("formula", formula),
				zap.Error(err),
			)
			return nil, fmt.Errorf("select from %s: %w", tableName, err)
		}

		for _, r := range page.Records {
			out = append(out, Record{ID: r.ID, Fields: models.Fields(r.Fields)})
		}
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}
	return out, nil
}

// SelectActiveByIDs fetches the active records among the given ids,
// batching oversized id sets into multiple formulas.
func (c *Client) SelectActiveByIDs(ctx context.Context, tableName string, ids []string, fields ...string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []Record
	for _, formula := range activeWithIDs(ids) {
		records, err := c.Select(ctx, tableName, formula, fields...)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	return out, nil
}

// Find fetches a single record by id.
func (c *Client) Find(ctx context.Context, tableName, id string) (*Record, error) {
	rec, err := c.table(tableName).GetRecord(id)
	if err != nil {
		c.log.Error("Record store find failed",
			zap.String("table", tableName),
			zap.String("id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("find %s in %s: %w", id, tableName, err)
	}
	return &Record{ID: rec.ID, Fields: models.Fields(rec.Fields)}, nil
}

// Create inserts one record and returns it with its store-assigned id and
// any computed fields (e.g. autonumber responseId).
func (c *Client) Create(ctx context.Context, tableName string, fields map[string]interface{}) (*Record, error) {
	toAdd := &airtable.Records{
		Records: []*airtable.Record{{Fields: fields}},
	}
	created, err := c.table(tableName).AddRecords(toAdd)
	if err != nil {
		c.log.Error("Record store create failed",
			zap.String("table", tableName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create in %s: %w", tableName, err)
	}
	if created == nil || len(created.Records) == 0 {
		return nil, fmt.Errorf("create in %s: store returned no record", tableName)
	}
	rec := created.Records[0]
	return &Record{ID: rec.ID, Fields: models.Fields(rec.Fields)}, nil
}

// Update applies a partial field update to one record.
func (c *Client) Update(ctx context.Context, tableName, id string, fields map[string]interface{}) (*Record, error) {
	rec, err := c.table(tableName).GetRecord(id)
	if err != nil {
		return nil, fmt.Errorf("find %s in %s for update: %w", id, tableName, err)
	}
	updated, err := rec.UpdateRecordPartial(fields)
	if err != nil {
		c.log.Error("Record store update failed",
			zap.String("table", tableName),
			zap.String("id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("update %s in %s: %w", id, tableName, err)
	}
	return &Record{ID: updated.ID, Fields: models.Fields(updated.Fields)}, nil
}
