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

func responseRecord(id string, status models.ResponseStatus, content string) *airtable.Record {
	return &airtable.Record{ID: id, Fields: models.Fields{
		"responseId":      "uuid-1",
		"initialGoal":     "grow",
		"responseStatus":  string(status),
		"responseContent": content,
		"isActive":        true,
	}}
}

func apiWithResponse(status models.ResponseStatus, content string) *fakeAPI {
	return &fakeAPI{
		findFn: func(table, id string) (*airtable.Record, error) {
			return responseRecord(id, status, content), nil
		},
	}
}

func TestCreateResponse(t *testing.T) {
	var created map[string]interface{}
	api := &fakeAPI{
		createFn: func(table string, fields map[string]interface{}) (*airtable.Record, error) {
			created = fields
			return responseRecord("rec_r1", models.StatusNew, fields["responseContent"].(string)), nil
		},
	}
	s := New(api, zap.NewNop())

	resp, err := s.CreateResponse(context.Background(), "grow", "rec_ct1")
	require.NoError(t, err)
	assert.Equal(t, "rec_r1", resp.ID)
	assert.Equal(t, models.StatusNew, resp.Status)

	assert.Equal(t, "grow", created["initialGoal"])
	assert.Equal(t, "New", created["responseStatus"])
	assert.Equal(t, true, created["isActive"])
	assert.Equal(t, []string{"rec_ct1"}, created["MethodCompanyTypes"])

	content, err := models.ParseContent(created["responseContent"].(string))
	require.NoError(t, err)
	assert.Equal(t, "rec_ct1", content.Metadata.CompanyType)
	assert.Equal(t, "grow", content.Metadata.Goal)
	assert.Empty(t, content.AnswerMap())
}

func TestUpdateCompanyDetails(t *testing.T) {
	details := CompanyDetails{
		ContactName:   "Mari Maasikas",
		ContactEmail:  "mari@example.com",
		CompanyName:   "Acme OÜ",
		CompanyTypeID: "rec_ct1",
	}

	t.Run("New transitions to In Progress", func(t *testing.T) {
		api := apiWithResponse(models.StatusNew, "{}")
		s := New(api, zap.NewNop())

		require.NoError(t, s.UpdateCompanyDetails(context.Background(), "rec_r1", details))
		require.Len(t, api.updateCalls, 1)
		assert.Equal(t, "In Progress", api.updateCalls[0]["responseStatus"])
		assert.Equal(t, "Mari Maasikas", api.updateCalls[0]["contactName"])
	})

	t.Run("In Progress re-save keeps status", func(t *testing.T) {
		api := apiWithResponse(models.StatusInProgress, "{}")
		s := New(api, zap.NewNop())

		require.NoError(t, s.UpdateCompanyDetails(context.Background(), "rec_r1", details))
		require.Len(t, api.updateCalls, 1)
		_, wroteStatus := api.updateCalls[0]["responseStatus"]
		assert.False(t, wroteStatus)
	})

	t.Run("Completed rejects the write", func(t *testing.T) {
		api := apiWithResponse(models.StatusCompleted, "{}")
		s := New(api, zap.NewNop())

		err := s.UpdateCompanyDetails(context.Background(), "rec_r1", details)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		assert.Empty(t, api.updateCalls)
	})
}

func TestUpdateResults(t *testing.T) {
	content := models.EmptyContent("rec_ct1", "grow")
	content.Categories = []models.ContentCategory{{CategoryID: "rec_cat1", Score: 54}}

	t.Run("In Progress completes", func(t *testing.T) {
		api := apiWithResponse(models.StatusInProgress, "{}")
		api.updateFn = func(table, id string, fields map[string]interface{}) (*airtable.Record, error) {
			return responseRecord(id, models.StatusCompleted, fields["responseContent"].(string)), nil
		}
		s := New(api, zap.NewNop())

		resp, err := s.UpdateResults(context.Background(), "rec_r1", content)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, resp.Status)

		require.Len(t, api.updateCalls, 1)
		assert.Equal(t, "Completed", api.updateCalls[0]["responseStatus"])

		written, err := models.ParseContent(api.updateCalls[0]["responseContent"].(string))
		require.NoError(t, err)
		assert.False(t, written.Metadata.SubmittedAt.IsZero())
		require.Len(t, written.Categories, 1)
		assert.Equal(t, 54, written.Categories[0].Score)
	})

	t.Run("New cannot skip to Completed", func(t *testing.T) {
		api := apiWithResponse(models.StatusNew, "{}")
		s := New(api, zap.NewNop())

		_, err := s.UpdateResults(context.Background(), "rec_r1", content)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		assert.Empty(t, api.updateCalls)
	})

	t.Run("Completed cannot complete twice", func(t *testing.T) {
		api := apiWithResponse(models.StatusCompleted, "{}")
		s := New(api, zap.NewNop())

		_, err := s.UpdateResults(context.Background(), "rec_r1", content)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
	})
}

func TestUpdateStatus(t *testing.T) {
	api := apiWithResponse(models.StatusNew, "{}")
	s := New(api, zap.NewNop())

	require.NoError(t, s.UpdateStatus(context.Background(), "rec_r1", models.StatusInProgress))
	require.Len(t, api.updateCalls, 1)
	assert.Equal(t, "In Progress", api.updateCalls[0]["responseStatus"])

	err := s.UpdateStatus(context.Background(), "rec_r1", models.StatusCompleted)
	// The fake still reports New; skipping a step must fail, not clamp.
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestSyncAnswers(t *testing.T) {
	inProgress := func(answers map[string]string) string {
		content := models.EmptyContent("rec_ct1", "grow")
		content.Answers = answers
		raw, _ := content.Marshal()
		return raw
	}

	t.Run("writes changed answers", func(t *testing.T) {
		api := apiWithResponse(models.StatusInProgress, inProgress(map[string]string{"q1": "a1"}))
		s := New(api, zap.NewNop())

		err := s.SyncAnswers(context.Background(), "rec_r1", map[string]string{"q1": "a1", "q2": "a2"})
		require.NoError(t, err)
		require.Len(t, api.updateCalls, 1)

		written, err := models.ParseContent(api.updateCalls[0]["responseContent"].(string))
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"q1": "a1", "q2": "a2"}, written.Answers)
		// The pinned metadata survives the answer write.
		assert.Equal(t, "rec_ct1", written.Metadata.CompanyType)
	})

	t.Run("identical map is a no-op", func(t *testing.T) {
		api := apiWithResponse(models.StatusInProgress, inProgress(map[string]string{"q1": "a1"}))
		s := New(api, zap.NewNop())

		require.NoError(t, s.SyncAnswers(context.Background(), "rec_r1", map[string]string{"q1": "a1"}))
		assert.Empty(t, api.updateCalls)
	})

	t.Run("completed response is left alone", func(t *testing.T) {
		api := apiWithResponse(models.StatusCompleted, inProgress(nil))
		s := New(api, zap.NewNop())

		require.NoError(t, s.SyncAnswers(context.Background(), "rec_r1", map[string]string{"q1": "a1"}))
		assert.Empty(t, api.updateCalls)
	})

	t.Run("corrupt blob is replaced", func(t *testing.T) {
		api := apiWithResponse(models.StatusInProgress, "{broken")
		s := New(api, zap.NewNop())

		require.NoError(t, s.SyncAnswers(context.Background(), "rec_r1", map[string]string{"q1": "a1"}))
		require.Len(t, api.updateCalls, 1)
		written, err := models.ParseContent(api.updateCalls[0]["responseContent"].(string))
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"q1": "a1"}, written.Answers)
	})
}

func TestAnswerMapsEqual(t *testing.T) {
	assert.True(t, answerMapsEqual(nil, nil))
	assert.True(t, answerMapsEqual(map[string]string{"a": "1"}, map[string]string{"a": "1"}))
	assert.False(t, answerMapsEqual(map[string]string{"a": "1"}, map[string]string{"a": "2"}))
	assert.False(t, answerMapsEqual(map[string]string{"a": "1"}, map[string]string{"a": "1", "b": "2"}))
}
