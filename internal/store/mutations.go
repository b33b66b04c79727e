package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/artifig/tehnopal/internal/airtable"
	"github.com/artifig/tehnopal/internal/models"
)

// CompanyDetails is the contact/profile payload collected on the setup
// step. Writing it moves a fresh response into In Progress.
type CompanyDetails struct {
	ContactName   string `json:"contactName" binding:"required"`
	ContactEmail  string `json:"contactEmail" binding:"required,email"`
	CompanyName   string `json:"companyName" binding:"required"`
	CompanyTypeID string `json:"companyType" binding:"required"`
}

// CreateResponse creates a new assessment response with status New and an
// empty answer blob. The store assigns the record id and the readable
// responseId.
func (s *Store) CreateResponse(ctx context.Context, initialGoal, companyTypeID string) (*models.AssessmentResponse, error) {
	content, err := models.EmptyContent(companyTypeID, initialGoal).Marshal()
	if err != nil {
		return nil, err
	}

	record, err := s.api.Create(ctx, airtable.TableResponses, map[string]interface{}{
		"initialGoal":        initialGoal,
		"responseStatus":     string(models.StatusNew),
		"isActive":           true,
		"MethodCompanyTypes": []string{companyTypeID},
		"responseContent":    content,
	})
	if err != nil {
		return nil, err
	}

	response, err := models.ResponseFromFields(record.ID, record.Fields)
	if err != nil {
		return nil, err
	}
	s.log.Info("Created assessment response",
		zap.String("id", response.ID),
		zap.String("responseId", response.ResponseID),
	)
	return &response, nil
}

// GetResponse fetches one assessment response by record id.
func (s *Store) GetResponse(ctx context.Context, id string) (*models.AssessmentResponse, error) {
	record, err := s.api.Find(ctx, airtable.TableResponses, id)
	if err != nil {
		return nil, err
	}
	response, err := models.ResponseFromFields(record.ID, record.Fields)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// UpdateCompanyDetails writes the contact fields onto the response. A New
// response transitions to In Progress; an In Progress response keeps its
// status (re-saving the form is not a status change); a Completed response
// rejects the write.
func (s *Store) UpdateCompanyDetails(ctx context.Context, id string, details CompanyDetails) error {
	current, err := s.GetResponse(ctx, id)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"contactName":        details.ContactName,
		"contactEmail":       details.ContactEmail,
		"companyName":        details.CompanyName,
		"MethodCompanyTypes": []string{details.CompanyTypeID},
	}
	if current.Status != models.StatusInProgress {
		if err := current.Status.CheckTransition(models.StatusInProgress); err != nil {
			return err
		}
		fields["responseStatus"] = string(models.StatusInProgress)
	}

	_, err = s.api.Update(ctx, airtable.TableResponses, id, fields)
	return err
}

// UpdateResults writes the final scored content and completes the
// response. The transition into Completed is validated; a response cannot
// be completed twice.
func (s *Store) UpdateResults(ctx context.Context, id string, content models.ResponseContent) (*models.AssessmentResponse, error) {
	current, err := s.GetResponse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := current.Status.CheckTransition(models.StatusCompleted); err != nil {
		return nil, err
	}

	content.Metadata.SubmittedAt = time.Now().UTC()
	raw, err := content.Marshal()
	if err != nil {
		return nil, err
	}

	record, err := s.api.Update(ctx, airtable.TableResponses, id, map[string]interface{}{
		"responseContent": raw,
		"responseStatus":  string(models.StatusCompleted),
	})
	if err != nil {
		return nil, err
	}

	response, err := models.ResponseFromFields(record.ID, record.Fields)
	if err != nil {
		return nil, err
	}
	s.log.Info("Completed assessment response", zap.String("id", id))
	return &response, nil
}

// UpdateStatus applies a bare status change, validated against the
// transition table.
func (s *Store) UpdateStatus(ctx context.Context, id string, next models.ResponseStatus) error {
	current, err := s.GetResponse(ctx, id)
	if err != nil {
		return err
	}
	if err := current.Status.CheckTransition(next); err != nil {
		return err
	}
	_, err = s.api.Update(ctx, airtable.TableResponses, id, map[string]interface{}{
		"responseStatus": string(next),
	})
	return err
}

// SyncAnswers pushes the accumulated in-progress answer map into the
// response's content blob. Re-sending an already-synced map is a no-op, as
// is syncing into a completed response whose content is final.
func (s *Store) SyncAnswers(ctx context.Context, id string, answers map[string]string) error {
	current, err := s.GetResponse(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == models.StatusCompleted {
		return nil
	}

	content, err := models.ParseContent(current.Content)
	if err != nil {
		// A blob another writer corrupted should not wedge the sync;
		// start over from the answers we hold.
		s.log.Warn("Replacing unparseable response content", zap.String("id", id), zap.Error(err))
		content = models.EmptyContent("", current.InitialGoal)
	}

	if answerMapsEqual(content.Answers, answers) {
		return nil
	}

	content.Answers = answers
	raw, err := content.Marshal()
	if err != nil {
		return err
	}
	_, err = s.api.Update(ctx, airtable.TableResponses, id, map[string]interface{}{
		"responseContent": raw,
	})
	return err
}

func answerMapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
