package store

import (
	"context"

	"github.com/artifig/tehnopal/internal/airtable"
)

// fakeAPI substitutes the record store client in tests. Unset functions
// report an unexpected call by returning nothing, which the assertions
// catch.
type fakeAPI struct {
	selectFn        func(table, formula string, fields ...string) ([]airtable.Record, error)
	selectActiveFn  func(table string, ids []string, fields ...string) ([]airtable.Record, error)
	findFn          func(table, id string) (*airtable.Record, error)
	createFn        func(table string, fields map[string]interface{}) (*airtable.Record, error)
	updateFn        func(table, id string, fields map[string]interface{}) (*airtable.Record, error)
	selectCalls     []string
	updateCalls     []map[string]interface{}
	selectActiveIDs [][]string
}

func (f *fakeAPI) Select(ctx context.Context, table, formula string, fields ...string) ([]airtable.Record, error) {
	f.selectCalls = append(f.selectCalls, formula)
	if f.selectFn == nil {
		return nil, nil
	}
	return f.selectFn(table, formula, fields...)
}

func (f *fakeAPI) SelectActiveByIDs(ctx context.Context, table string, ids []string, fields ...string) ([]airtable.Record, error) {
	f.selectActiveIDs = append(f.selectActiveIDs, ids)
	if f.selectActiveFn == nil {
		return nil, nil
	}
	return f.selectActiveFn(table, ids, fields...)
}

func (f *fakeAPI) Find(ctx context.Context, table, id string) (*airtable.Record, error) {
	return f.findFn(table, id)
}

func (f *fakeAPI) Create(ctx context.Context, table string, fields map[string]interface{}) (*airtable.Record, error) {
	return f.createFn(table, fields)
}

func (f *fakeAPI) Update(ctx context.Context, table, id string, fields map[string]interface{}) (*airtable.Record, error) {
	f.updateCalls = append(f.updateCalls, fields)
	if f.updateFn == nil {
		return &airtable.Record{ID: id, Fields: fields}, nil
	}
	return f.updateFn(table, id, fields)
}
