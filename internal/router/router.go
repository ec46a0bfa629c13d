package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/luyenthi/luyenthi-backend/internal/config"
	"github.com/luyenthi/luyenthi-backend/internal/handler"
	"github.com/luyenthi/luyenthi-backend/internal/middleware"
	"github.com/luyenthi/luyenthi-backend/internal/response"
	"github.com/luyenthi/luyenthi-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam          *handler.ExamHandler
	StudentPortal *handler.StudentPortalHandler
	WS            *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Answer saves arrive on every click; keep the limit generous but
	// bounded so a scripted client cannot flood the store.
	answerLimiter := middleware.NewRateLimiter(120, time.Minute)

	// ─── 1. Student Group (JWT) ────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/exams/:exam_id/take", handlers.StudentPortal.GetTakeExam)

		studentAPI.POST("/exams/:exam_id/session", handlers.StudentPortal.StartSession)
		studentAPI.GET("/exams/:exam_id/session", handlers.StudentPortal.GetSession)
		studentAPI.PUT("/exams/:exam_id/session/answer", answerLimiter.Middleware(), handlers.StudentPortal.Answer)
		studentAPI.PUT("/exams/:exam_id/session/flag/:question_id", answerLimiter.Middleware(), handlers.StudentPortal.ToggleFlag)
		studentAPI.PUT("/exams/:exam_id/session/page", handlers.StudentPortal.Page)
		studentAPI.POST("/exams/:exam_id/session/review", handlers.StudentPortal.BeginReview)
		studentAPI.DELETE("/exams/:exam_id/session/review", handlers.StudentPortal.CancelReview)
		studentAPI.POST("/exams/:exam_id/session/confirm", handlers.StudentPortal.RequestConfirm)
		studentAPI.DELETE("/exams/:exam_id/session/confirm", handlers.StudentPortal.DeclineConfirm)
		studentAPI.POST("/exams/:exam_id/session/submit", handlers.StudentPortal.Submit)

		studentAPI.GET("/exams/:exam_id/history", handlers.StudentPortal.GetHistory)
		studentAPI.DELETE("/exams/:exam_id/history", handlers.StudentPortal.ClearHistory)
	}

	// ─── 2. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/exams/:exam_id/stream", handlers.WS.SessionStream)
	}

	// ─── 3. Teacher Group (JWT) ────────────────────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.GET("/exams/:exam_id", handlers.Exam.GetExam)
		teacherAPI.PATCH("/exams/:exam_id", handlers.Exam.UpdateExam)
		teacherAPI.POST("/exams/:exam_id/publish", handlers.Exam.PublishExam)
		teacherAPI.GET("/exams/:exam_id/questions", handlers.Exam.ListQuestions)
		teacherAPI.GET("/exams/:exam_id/bank", handlers.Exam.GetBank)
		teacherAPI.POST("/exams/:exam_id/questions", handlers.Exam.BulkAddQuestions)
		teacherAPI.POST("/exams/:exam_id/questions/random", handlers.Exam.RandomAddQuestions)
	}

	return router
}
