package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/luyenthi/luyenthi-backend/internal/middleware"
	"github.com/luyenthi/luyenthi-backend/internal/model"
	"github.com/luyenthi/luyenthi-backend/internal/response"
	"github.com/luyenthi/luyenthi-backend/internal/service"
	"github.com/luyenthi/luyenthi-backend/internal/validator"
)

// StudentPortalHandler handles the exam-taking endpoints.
type StudentPortalHandler struct {
	examService    *service.ExamService
	sessionService *service.SessionService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(examService *service.ExamService, sessionService *service.SessionService) *StudentPortalHandler {
	return &StudentPortalHandler{
		examService:    examService,
		sessionService: sessionService,
	}
}

// GetTakeExam godoc
// GET /api/v1/student/exams/:exam_id/take
// Returns the student-facing exam instance without correct answers.
func (h *StudentPortalHandler) GetTakeExam(c *gin.Context) {
	if middleware.GetClaims(c) == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	inst, err := h.examService.Instance(c.Request.Context(), examID)
	if err != nil {
		failSession(c, err)
		return
	}

	questions := make([]gin.H, 0, len(inst.Questions))
	for _, q := range inst.Questions {
		questions = append(questions, gin.H{
			"question": q.Question.ForStudent(),
			"points":   q.Points,
		})
	}

	response.Success(c, http.StatusOK, gin.H{
		"exam_id":          inst.ExamID,
		"title":            inst.Title,
		"kind":             inst.Kind,
		"duration_minutes": inst.DurationMinutes,
		"questions":        questions,
	})
}

// StartSession godoc
// POST /api/v1/student/exams/:exam_id/session
// Opens a session or resumes a saved one.
func (h *StudentPortalHandler) StartSession(c *gin.Context) {
	claims, examID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	view, err := h.sessionService.Start(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// GetSession godoc
// GET /api/v1/student/exams/:exam_id/session
// Returns the current session view, including authoritative remaining time.
func (h *StudentPortalHandler) GetSession(c *gin.Context) {
	claims, examID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	view, err := h.sessionService.State(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// Answer godoc
// PUT /api/v1/student/exams/:exam_id/session/answer
// Records a single-select choice. Persisted before the 200 returns.
func (h *StudentPortalHandler) Answer(c *gin.Context) {
	claims, examID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.SelectAnswer(c.Request.Context(), examID, claims.UserID, req.QuestionID, req.Option); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"saved": true})
}

// ToggleFlag godoc
// PUT /api/v1/student/exams/:exam_id/session/flag/:question_id
func (h *StudentPortalHandler) ToggleFlag(c *gin.Context) {
	claims, examID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	flagged, err := h.sessionService.ToggleFlag(c.Request.Context(), examID, claims.UserID, questionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"flagged": flagged})
}

// Page godoc
// PUT /api/v1/student/exams/:exam_id/session/page
// Moves the pagination cursor (next, prev, or jump to an index).
func (h *StudentPortalHandler) Page(c *gin.Context) {
	claims, examID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	var req model.PageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.sessionService.Page(c.Request.Context(), examID, claims.UserID, req.Op, req.Index)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// BeginReview godoc
// POST /api/v1/student/exams/:exam_id/session/review
// Opens the pre-submit summary (answered/flagged status per question).
func (h *StudentPortalHandler) BeginReview(c *gin.Context) {
	claims, examID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	statuses, err := h.sessionService.BeginReview(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": statuses})
}

// CancelReview godoc
// DELETE /api/v1/student/exams/:exam_id/session/review
func (h *StudentPortalHandler) CancelReview(c *gin.Context) {
	claims, examID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	if err := h.sessionService.CancelReview(c.Request.Context(), examID, claims.UserID); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": model.SessionStateReady})
}

// RequestConfirm godoc
// POST /api/v1/student/exams/:exam_id/session/confirm
// Moves from the review summary to the final confirmation step.
func (h *StudentPortalHandler) RequestConfirm(c *gin.Context) {
	claims, examID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	if err := h.sessionService.RequestConfirm(c.Request.Context(), examID, claims.UserID); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": model.SessionStateConfirming})
}

// DeclineConfirm godoc
// DELETE /api/v1/student/exams/:exam_id/session/confirm
func (h *StudentPortalHandler) DeclineConfirm(c *gin.Context) {
	claims, examID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	if err := h.sessionService.DeclineConfirm(c.Request.Context(), examID, claims.UserID); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": model.SessionStateReady})
}

// Submit godoc
// POST /api/v1/student/exams/:exam_id/session/submit
// Finalizes a confirmed session and returns the scored attempt.
func (h *StudentPortalHandler) Submit(c *gin.Context) {
	claims, examID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	attempt, err := h.sessionService.Finalize(c.Request.Context(), examID, claims.UserID, false)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GetHistory godoc
// GET /api/v1/student/exams/:exam_id/history
func (h *StudentPortalHandler) GetHistory(c *gin.Context) {
	claims, examID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	attempts, err := h.sessionService.History(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// ClearHistory godoc
// DELETE /api/v1/student/exams/:exam_id/history
func (h *StudentPortalHandler) ClearHistory(c *gin.Context) {
	claims, examID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	if err := h.sessionService.ClearHistory(c.Request.Context(), examID, claims.UserID); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}

// sessionScope extracts the common claims + exam id pair, writing the
// error response itself when either is missing.
func (h *StudentPortalHandler) sessionScope(c *gin.Context) (*service.Claims, uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, uuid.Nil, false
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, uuid.Nil, false
	}
	return claims, examID, true
}

// failSession maps session service errors to HTTP responses.
func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrSessionFinalized):
		response.Fail(c, http.StatusConflict, response.ErrSessionFinalized)
	case errors.Is(err, service.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
	case errors.Is(err, service.ErrQuestionNotInExam):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionNotInExam)
	case errors.Is(err, service.ErrInvalidOption):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidOption)
	case errors.Is(err, service.ErrPageOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, service.ErrExamNotPublished):
		response.Fail(c, http.StatusConflict, response.ErrExamNotPublished)
	case errors.Is(err, service.ErrExamLoadFailed):
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrExamLoadFailed, err.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
