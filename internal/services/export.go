package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ExportRequest is the contact-info form payload both export endpoints
// take alongside the assessment id.
type ExportRequest struct {
	Name                  string `json:"name" binding:"required"`
	Email                 string `json:"email" binding:"required,email"`
	OrganisationName      string `json:"organisationName"`
	OrganisationRegNumber string `json:"organisationRegNumber"`
	WantsContact          bool   `json:"wantsContact"`
}

// ExportService forwards export requests to the opaque external PDF and
// email delivery endpoints.
type ExportService struct {
	log           *zap.Logger
	client        *http.Client
	pdfEndpoint   string
	emailEndpoint string
}

// NewExportService creates an ExportService for the configured endpoints.
func NewExportService(log *zap.Logger, pdfEndpoint, emailEndpoint string) *ExportService {
	return &ExportService{
		log:           log,
		client:        http.DefaultClient,
		pdfEndpoint:   pdfEndpoint,
		emailEndpoint: emailEndpoint,
	}
}

type exportPayload struct {
	AssessmentID string        `json:"assessmentId"`
	Contact      ExportRequest `json:"contact"`
}

// DownloadPDF asks the PDF endpoint to render the assessment and returns
// the raw document bytes.
func (s *ExportService) DownloadPDF(ctx context.Context, assessmentID string, req ExportRequest) ([]byte, error) {
	if s.pdfEndpoint == "" {
		return nil, fmt.Errorf("pdf export endpoint is not configured")
	}
	body, err := s.post(ctx, s.pdfEndpoint, assessmentID, req)
	if err != nil {
		return nil, err
	}
	s.log.Info("Exported assessment as PDF",
		zap.String("assessmentId", assessmentID),
		zap.Int("bytes", len(body)),
	)
	return body, nil
}

// SendEmail asks the delivery endpoint to mail the assessment report.
func (s *ExportService) SendEmail(ctx context.Context, assessmentID string, req ExportRequest) error {
	if s.emailEndpoint == "" {
		return fmt.Errorf("email export endpoint is not configured")
	}
	if _, err := s.post(ctx, s.emailEndpoint, assessmentID, req); err != nil {
		return err
	}
	s.log.Info("Sent assessment report email",
		zap.String("assessmentId", assessmentID),
		zap.String("to", req.Email),
	)
	return nil
}

func (s *ExportService) post(ctx context.Context, endpoint, assessmentID string, req ExportRequest) ([]byte, error) {
	payload, err := json.Marshal(exportPayload{AssessmentID: assessmentID, Contact: req})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.log.Error("Export endpoint unreachable", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("export request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		s.log.Error("Export endpoint rejected request",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("export endpoint returned status %d", resp.StatusCode)
	}
	return body, nil
}
