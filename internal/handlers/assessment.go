package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artifig/tehnopal/internal/cache"
	"github.com/artifig/tehnopal/internal/models"
	"github.com/artifig/tehnopal/internal/scoring"
	"github.com/artifig/tehnopal/internal/store"
)

// AssessmentHandler drives the question flow: create a response, collect
// contact details, walk the flattened question list, and finalize into a
// completed record.
type AssessmentHandler struct {
	log      *zap.Logger
	store    *store.Store
	progress *cache.Progress
	syncer   *cache.Syncer
	mapping  *models.CompanyTypeMapping
}

// NewAssessmentHandler creates an AssessmentHandler.
func NewAssessmentHandler(log *zap.Logger, st *store.Store, progress *cache.Progress, syncer *cache.Syncer, mapping *models.CompanyTypeMapping) *AssessmentHandler {
	return &AssessmentHandler{log: log, store: st, progress: progress, syncer: syncer, mapping: mapping}
}

type createRequest struct {
	InitialGoal string `json:"initialGoal" binding:"required"`
	CompanyType string `json:"companyType" binding:"required"`
}

// Create starts a new assessment: a New response record in the store, the
// session bound to it, and the flow reset to the first question.
func (h *AssessmentHandler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "initialGoal and companyType are required", "")
		return
	}

	companyType, err := h.resolveCompanyType(c.Request.Context(), req.CompanyType)
	if err != nil {
		fail(c, http.StatusBadRequest, "unknown company type", setupRedirect)
		return
	}

	response, err := h.store.CreateResponse(c.Request.Context(), req.InitialGoal, companyType.ID)
	if err != nil {
		h.log.Error("Failed to create assessment response", zap.Error(err))
		fail(c, http.StatusBadGateway, errGenericStoreFailure, "")
		return
	}

	sid := sessionID(c)
	session := sessions.Default(c)
	session.Set(sessionKeyAssessment, response.ID)
	session.Set(sessionKeyQuestionIdx, 0)
	if err := session.Save(); err != nil {
		fail(c, http.StatusInternalServerError, "failed to save session", "")
		return
	}
	if err := h.progress.BindResponse(sid, response.ID); err != nil {
		h.log.Warn("Failed to bind response to answer cache", zap.Error(err))
	}

	ok(c, http.StatusCreated, gin.H{
		"id":         response.ID,
		"responseId": response.ResponseID,
		"status":     response.Status,
	})
}

// UpdateDetails saves the contact/company form, moving the response from
// New to In Progress.
func (h *AssessmentHandler) UpdateDetails(c *gin.Context) {
	responseID, found := h.sessionAssessment(c)
	if !found {
		fail(c, http.StatusConflict, errMissingAssessment, setupRedirect)
		return
	}

	var details store.CompanyDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		fail(c, http.StatusBadRequest, "contact details are incomplete", "")
		return
	}
	companyType, err := h.resolveCompanyType(c.Request.Context(), details.CompanyTypeID)
	if err != nil {
		fail(c, http.StatusBadRequest, "unknown company type", setupRedirect)
		return
	}
	details.CompanyTypeID = companyType.ID

	if err := h.store.UpdateCompanyDetails(c.Request.Context(), responseID, details); err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			fail(c, http.StatusConflict, err.Error(), "")
			return
		}
		h.log.Error("Failed to update company details", zap.String("responseID", responseID), zap.Error(err))
		fail(c, http.StatusBadGateway, errGenericStoreFailure, "")
		return
	}
	ok(c, http.StatusOK, nil)
}

// Structure returns the flattened, de-duplicated, key-ordered question
// list for the session's company type, with per-category totals.
func (h *AssessmentHandler) Structure(c *gin.Context) {
	flow, _, done := h.loadFlow(c)
	if done {
		return
	}

	type categoryProgress struct {
		CategoryID string `json:"categoryId"`
		Total      int    `json:"total"`
		Answered   int    `json:"answered"`
	}
	answers, err := h.progress.Answers(sessionID(c))
	if err != nil {
		h.log.Warn("Failed to read answer cache", zap.Error(err))
		answers = map[string]string{}
	}

	var order []string
	totals := make(map[string]*categoryProgress)
	for _, fq := range flow {
		cp, found := totals[fq.CategoryID]
		if !found {
			cp = &categoryProgress{CategoryID: fq.CategoryID}
			totals[fq.CategoryID] = cp
			order = append(order, fq.CategoryID)
		}
		cp.Total++
		if _, answered := answers[fq.Question.ID]; answered {
			cp.Answered++
		}
	}
	categories := make([]categoryProgress, 0, len(order))
	for _, id := range order {
		categories = append(categories, *totals[id])
	}

	ok(c, http.StatusOK, gin.H{
		"questions":  flow,
		"total":      len(flow),
		"categories": categories,
	})
}

// CurrentQuestion returns the question at the session's flow position
// together with the cached selection and overall progress.
func (h *AssessmentHandler) CurrentQuestion(c *gin.Context) {
	flow, _, done := h.loadFlow(c)
	if done {
		return
	}
	if len(flow) == 0 {
		fail(c, http.StatusConflict, "no questions available for this company type", setupRedirect)
		return
	}

	index := h.clampIndex(c, len(flow))
	h.renderQuestion(c, flow, index)
}

type answerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	AnswerID   string `json:"answerId" binding:"required"`
}

// Answer records a selection and auto-advances, except on the last
// question where the position holds so Next can finalize. The cache write
// always succeeds locally; the push to the durable record is deferred to
// the background sync when it fails.
func (h *AssessmentHandler) Answer(c *gin.Context) {
	flow, responseID, done := h.loadFlow(c)
	if done {
		return
	}
	if len(flow) == 0 {
		fail(c, http.StatusConflict, "no questions available for this company type", setupRedirect)
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "questionId and answerId are required", "")
		return
	}

	sid := sessionID(c)
	if _, err := h.progress.SetAnswer(sid, req.QuestionID, req.AnswerID); err != nil {
		h.log.Error("Failed to cache answer", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to save answer", "")
		return
	}

	// Best effort; a failure leaves the map flagged for the retry loop.
	go h.syncer.Sync(context.Background(), sid, responseID)

	index := h.clampIndex(c, len(flow))
	if index < len(flow)-1 {
		index++
		h.saveIndex(c, index)
	}
	h.renderQuestion(c, flow, index)
}

// Next advances the flow. On the last question it requires an answer,
// finalizes the response, and points the client at the results page.
func (h *AssessmentHandler) Next(c *gin.Context) {
	flow, responseID, done := h.loadFlow(c)
	if done {
		return
	}
	if len(flow) == 0 {
		fail(c, http.StatusConflict, "no questions available for this company type", setupRedirect)
		return
	}

	index := h.clampIndex(c, len(flow))
	if index < len(flow)-1 {
		index++
		h.saveIndex(c, index)
		h.renderQuestion(c, flow, index)
		return
	}

	// Last question: the advance is gated on it being answered.
	sid := sessionID(c)
	answers, err := h.progress.Answers(sid)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to read answers", "")
		return
	}
	if _, answered := answers[flow[index].Question.ID]; !answered {
		fail(c, http.StatusBadRequest, "answer the final question before finishing", "")
		return
	}

	h.finalize(c, sid, responseID, answers)
}

// Prev retreats one question; a no-op on the first.
func (h *AssessmentHandler) Prev(c *gin.Context) {
	flow, _, done := h.loadFlow(c)
	if done {
		return
	}
	if len(flow) == 0 {
		fail(c, http.StatusConflict, "no questions available for this company type", setupRedirect)
		return
	}

	index := h.clampIndex(c, len(flow))
	if index > 0 {
		index--
		h.saveIndex(c, index)
	}
	h.renderQuestion(c, flow, index)
}

// Sync pushes the cached answer map to the durable record on demand, e.g.
// when the client regains connectivity.
func (h *AssessmentHandler) Sync(c *gin.Context) {
	responseID, found := h.sessionAssessment(c)
	if !found {
		fail(c, http.StatusConflict, errMissingAssessment, setupRedirect)
		return
	}

	sid := sessionID(c)
	if err := h.syncer.Sync(c.Request.Context(), sid, responseID); err != nil {
		// Local answers are intact; report the deferred state.
		ok(c, http.StatusOK, gin.H{"synced": false})
		return
	}
	ok(c, http.StatusOK, gin.H{"synced": true})
}

// finalize freezes scores into the content blob and completes the
// response. A failed last-moment sync is logged but never blocks the
// navigation to results.
func (h *AssessmentHandler) finalize(c *gin.Context, sid, responseID string, answers map[string]string) {
	if err := h.syncer.Sync(c.Request.Context(), sid, responseID); err != nil {
		h.log.Warn("Final sync failed, continuing to results", zap.String("responseID", responseID), zap.Error(err))
	}

	response, err := h.store.GetResponse(c.Request.Context(), responseID)
	if err != nil {
		fail(c, http.StatusBadGateway, errGenericStoreFailure, "")
		return
	}
	content, err := models.ParseContent(response.Content)
	if err != nil {
		fail(c, http.StatusInternalServerError, "stored response content is unreadable", "")
		return
	}

	categories, questions, allAnswers, err := h.referenceData(c.Request.Context(), content.Metadata.CompanyType)
	if err != nil {
		fail(c, http.StatusBadGateway, errGenericStoreFailure, "")
		return
	}

	final := scoring.BuildContent(response.InitialGoal, content.Metadata.CompanyType, categories, questions, allAnswers, answers)
	if _, err := h.store.UpdateResults(c.Request.Context(), responseID, final); err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			fail(c, http.StatusConflict, err.Error(), "")
			return
		}
		h.log.Error("Failed to complete assessment", zap.String("responseID", responseID), zap.Error(err))
		fail(c, http.StatusBadGateway, errGenericStoreFailure, "")
		return
	}

	if err := h.progress.Clear(sid); err != nil {
		h.log.Warn("Failed to clear answer cache", zap.String("sessionID", sid), zap.Error(err))
	}

	ok(c, http.StatusOK, gin.H{
		"completed":    true,
		"assessmentId": responseID,
		"results":      "/api/assessment/" + responseID + "/results",
	})
}

// --- helpers ---

func (h *AssessmentHandler) resolveCompanyType(ctx context.Context, slugOrName string) (*models.CompanyType, error) {
	name, found := h.mapping.Resolve(slugOrName)
	if !found {
		name = slugOrName
	}
	return h.store.CompanyTypeByText(ctx, name)
}

func (h *AssessmentHandler) sessionAssessment(c *gin.Context) (string, bool) {
	session := sessions.Default(c)
	id, found := session.Get(sessionKeyAssessment).(string)
	return id, found && id != ""
}

func (h *AssessmentHandler) referenceData(ctx context.Context, companyTypeID string) ([]models.Category, []models.Question, []models.Answer, error) {
	categories, err := h.store.CategoriesForCompanyType(ctx, companyTypeID)
	if err != nil {
		return nil, nil, nil, err
	}
	questions, err := h.store.QuestionsForCategories(ctx, categories)
	if err != nil {
		return nil, nil, nil, err
	}
	answers, err := h.store.AnswersForQuestions(ctx, questions)
	if err != nil {
		return nil, nil, nil, err
	}
	return categories, questions, answers, nil
}

// loadFlow loads the session's flattened question list. The bool result
// reports that the request has already been answered with an error.
func (h *AssessmentHandler) loadFlow(c *gin.Context) ([]scoring.FlowQuestion, string, bool) {
	responseID, found := h.sessionAssessment(c)
	if !found {
		fail(c, http.StatusConflict, errMissingAssessment, setupRedirect)
		return nil, "", true
	}

	response, err := h.store.GetResponse(c.Request.Context(), responseID)
	if err != nil {
		fail(c, http.StatusBadGateway, errGenericStoreFailure, "")
		return nil, "", true
	}
	content, err := models.ParseContent(response.Content)
	if err != nil || content.Metadata.CompanyType == "" {
		fail(c, http.StatusConflict, errMissingCompanyType, setupRedirect)
		return nil, "", true
	}

	categories, questions, answers, err := h.referenceData(c.Request.Context(), content.Metadata.CompanyType)
	if err != nil {
		fail(c, http.StatusBadGateway, errGenericStoreFailure, "")
		return nil, "", true
	}

	return scoring.Flatten(categories, questions, answers), responseID, false
}

func (h *AssessmentHandler) clampIndex(c *gin.Context, total int) int {
	session := sessions.Default(c)
	index, _ := session.Get(sessionKeyQuestionIdx).(int)
	if index > total-1 {
		index = total - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}

func (h *AssessmentHandler) saveIndex(c *gin.Context, index int) {
	session := sessions.Default(c)
	session.Set(sessionKeyQuestionIdx, index)
	if err := session.Save(); err != nil {
		h.log.Warn("Failed to persist question index", zap.Error(err))
	}
}

func (h *AssessmentHandler) renderQuestion(c *gin.Context, flow []scoring.FlowQuestion, index int) {
	sid := sessionID(c)
	answers, err := h.progress.Answers(sid)
	if err != nil {
		answers = map[string]string{}
	}
	synced, err := h.progress.Synced(sid)
	if err != nil {
		synced = false
	}

	current := flow[index]
	ok(c, http.StatusOK, gin.H{
		"index":          index,
		"total":          len(flow),
		"isLast":         index == len(flow)-1,
		"question":       current,
		"selectedAnswer": answers[current.Question.ID],
		"answeredCount":  len(answers),
		"synced":         synced,
	})
}
