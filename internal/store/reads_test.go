package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artifig/tehnopal/internal/airtable"
	"github.com/artifig/tehnopal/internal/models"
)

func TestActiveCompanyTypesSkipsMalformed(t *testing.T) {
	api := &fakeAPI{
		selectFn: func(table, formula string, fields ...string) ([]airtable.Record, error) {
			return []airtable.Record{
				{ID: "rec_ct1", Fields: models.Fields{"companyTypeText_et": "Startup", "isActive": true}},
				{ID: "rec_bad", Fields: models.Fields{"isActive": true}},
				{ID: "rec_ct2", Fields: models.Fields{"companyTypeText_et": "SME", "isActive": true}},
			}, nil
		},
	}
	s := New(api, zap.NewNop())

	types, err := s.ActiveCompanyTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "Startup", types[0].Text)
	assert.Equal(t, "SME", types[1].Text)
	require.Len(t, api.selectCalls, 1)
	assert.Equal(t, "{isActive} = 1", api.selectCalls[0])
}

func TestCompanyTypeByText(t *testing.T) {
	api := &fakeAPI{
		selectFn: func(table, formula string, fields ...string) ([]airtable.Record, error) {
			return []airtable.Record{
				{ID: "rec_ct1", Fields: models.Fields{"companyTypeText_et": "Startup", "isActive": true}},
			}, nil
		},
	}
	s := New(api, zap.NewNop())

	ct, err := s.CompanyTypeByText(context.Background(), "Startup")
	require.NoError(t, err)
	assert.Equal(t, "rec_ct1", ct.ID)
	assert.Equal(t, "AND({isActive} = 1, {companyTypeText_et} = 'Startup')", api.selectCalls[0])
}

func TestCompanyTypeByTextNotFound(t *testing.T) {
	s := New(&fakeAPI{}, zap.NewNop())
	_, err := s.CompanyTypeByText(context.Background(), "Conglomerate")
	assert.Error(t, err)
}

func TestCategoriesForCompanyTypeFollowsLinks(t *testing.T) {
	api := &fakeAPI{
		findFn: func(table, id string) (*airtable.Record, error) {
			return &airtable.Record{ID: id, Fields: models.Fields{
				"MethodCategories": []interface{}{"rec_cat1", "rec_cat2"},
			}}, nil
		},
		selectActiveFn: func(table string, ids []string, fields ...string) ([]airtable.Record, error) {
			return []airtable.Record{
				{ID: "rec_cat1", Fields: models.Fields{"categoryText_et": "Strateegia", "isActive": true}},
			}, nil
		},
	}
	s := New(api, zap.NewNop())

	categories, err := s.CategoriesForCompanyType(context.Background(), "rec_ct1")
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Strateegia", categories[0].Text)
	require.Len(t, api.selectActiveIDs, 1)
	assert.Equal(t, []string{"rec_cat1", "rec_cat2"}, api.selectActiveIDs[0])
}

func TestCategoriesForCompanyTypeNoLinks(t *testing.T) {
	api := &fakeAPI{
		findFn: func(table, id string) (*airtable.Record, error) {
			return &airtable.Record{ID: id, Fields: models.Fields{}}, nil
		},
	}
	s := New(api, zap.NewNop())

	categories, err := s.CategoriesForCompanyType(context.Background(), "rec_ct1")
	require.NoError(t, err)
	assert.Empty(t, categories)
	assert.Empty(t, api.selectActiveIDs)
}

func TestQuestionsForCategoriesDeduplicates(t *testing.T) {
	api := &fakeAPI{}
	s := New(api, zap.NewNop())

	_, err := s.QuestionsForCategories(context.Background(), []models.Category{
		{ID: "cat1", Questions: []string{"q1", "q2"}},
		{ID: "cat2", Questions: []string{"q2", "q3"}},
	})
	require.NoError(t, err)
	require.Len(t, api.selectActiveIDs, 1)
	assert.Equal(t, []string{"q1", "q2", "q3"}, api.selectActiveIDs[0])
}

func TestTupleFormula(t *testing.T) {
	got := tupleFormula("rec_cat1", "red", "rec_ct1")
	want := "AND({isActive} = 1, FIND('rec_cat1', ARRAYJOIN({MethodCategories})), {maturityLevel} = 'red', FIND('rec_ct1', ARRAYJOIN({MethodCompanyTypes})))"
	assert.Equal(t, want, got)
}

func TestProvidersForRecommendationFormula(t *testing.T) {
	api := &fakeAPI{}
	s := New(api, zap.NewNop())

	_, err := s.ProvidersForRecommendation(context.Background(), "rec_r1")
	require.NoError(t, err)
	require.Len(t, api.selectCalls, 1)
	assert.Equal(t, "AND({isActive} = 1, FIND('rec_r1', ARRAYJOIN({MethodRecommendations})))", api.selectCalls[0])

	_, err = s.ProvidersForSolution(context.Background(), "rec_s1")
	require.NoError(t, err)
	assert.Equal(t, "AND({isActive} = 1, FIND('rec_s1', ARRAYJOIN({MethodExampleSolutions})))", api.selectCalls[1])
}

func TestSortQuestionsByKey(t *testing.T) {
	questions := []models.Question{
		{ID: "rec_c", Key: "Q10"},
		{ID: "rec_a", Key: "Q2"},
		{ID: "rec_e", Key: ""},
		{ID: "rec_b", Key: "Q1"},
		{ID: "rec_d", Key: "misc"},
	}
	SortQuestionsByKey(questions)

	keys := make([]string, len(questions))
	for i, q := range questions {
		keys[i] = q.Key
	}
	// Numeric keys first in numeric order, keyless questions after, by id.
	assert.Equal(t, []string{"Q1", "Q2", "Q10", "misc", ""}, keys)
}

func TestNumericSuffix(t *testing.T) {
	n, ok := numericSuffix("Q12")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = numericSuffix("")
	assert.False(t, ok)
	_, ok = numericSuffix("QX")
	assert.False(t, ok)
}
