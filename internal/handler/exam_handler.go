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

// ExamHandler handles exam authoring endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// GetExam godoc
// GET /api/v1/teacher/exams/:exam_id
func (h *ExamHandler) GetExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		failExam(c, err)
		return
	}
	if exam.AuthorID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrNotExamAuthor)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// UpdateExam godoc
// PATCH /api/v1/teacher/exams/:exam_id
// Updates a draft exam's settings (schedule, duration, display flags).
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.UpdateSettings(c.Request.Context(), examID, claims.UserID, &req)
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// PublishExam godoc
// POST /api/v1/teacher/exams/:exam_id/publish
// Publishes a draft exam and warms its instance cache.
func (h *ExamHandler) PublishExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.Publish(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// ListQuestions godoc
// GET /api/v1/teacher/exams/:exam_id/questions
func (h *ExamHandler) ListQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.examService.ListQuestions(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// GetBank godoc
// GET /api/v1/teacher/exams/:exam_id/bank
// Lists the unassigned question pool the exam may still draw from.
func (h *ExamHandler) GetBank(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	pool, err := h.examService.Bank(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": pool})
}

// BulkAddQuestions godoc
// POST /api/v1/teacher/exams/:exam_id/questions
// Appends hand-picked bank questions to a draft exam.
func (h *ExamHandler) BulkAddQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.BulkAddRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.examService.BulkAdd(c.Request.Context(), examID, claims.UserID, req.QuestionIDs); err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"added": len(req.QuestionIDs)})
}

// RandomAddQuestions godoc
// POST /api/v1/teacher/exams/:exam_id/questions/random
// Draws random questions from the bank. A shortfall returns 409 with the
// draw attached; resubmitting with accept_shortfall=true commits the
// partial draw.
func (h *ExamHandler) RandomAddQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RandomAddRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sel, err := h.examService.RandomAdd(c.Request.Context(), examID, claims.UserID, &req)
	if err != nil {
		if errors.Is(err, service.ErrQuotaShortfall) {
			response.FailWithDetails(c, http.StatusConflict, response.ErrQuotaShortfall, gin.H{
				"requested": sel.Requested,
				"available": sel.Available,
				"shortfall": sel.Shortfall,
			})
			return
		}
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"added":     len(sel.Selected),
		"requested": sel.Requested,
		"available": sel.Available,
		"shortfall": sel.Shortfall,
	})
}

// failExam maps exam service errors to HTTP responses.
func failExam(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotExamAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotExamAuthor)
	case errors.Is(err, service.ErrExamNotDraft):
		response.Fail(c, http.StatusConflict, response.ErrExamNotDraft)
	case errors.Is(err, service.ErrExamNotPublished):
		response.Fail(c, http.StatusConflict, response.ErrExamNotPublished)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
