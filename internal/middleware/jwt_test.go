package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/luyenthi/luyenthi-backend/internal/config"
	"github.com/luyenthi/luyenthi-backend/internal/service"
)

func newAuthFixture(t *testing.T) (*service.AuthService, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	})
	return auth, gin.New()
}

func echoClaims(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		c.String(http.StatusInternalServerError, "no claims")
		return
	}
	c.String(http.StatusOK, "user %d", claims.UserID)
}

func TestRequireStudentJWT(t *testing.T) {
	auth, r := newAuthFixture(t)
	r.GET("/protected", RequireStudentJWT(auth), echoClaims)

	token, err := auth.GenerateToken(7, "student", service.TokenTypeStudent)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != "user 7" {
		t.Fatalf("body = %q, want claims for user 7", got)
	}
}

func TestRequireStudentJWTMissingToken(t *testing.T) {
	auth, r := newAuthFixture(t)
	r.GET("/protected", RequireStudentJWT(auth), echoClaims)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireStudentJWTRejectsGarbage(t *testing.T) {
	auth, r := newAuthFixture(t)
	r.GET("/protected", RequireStudentJWT(auth), echoClaims)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireStudentJWTRejectsTeacherToken(t *testing.T) {
	auth, r := newAuthFixture(t)
	r.GET("/protected", RequireStudentJWT(auth), echoClaims)

	token, err := auth.GenerateToken(3, "teacher", service.TokenTypeTeacher)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestRequireTeacherJWT(t *testing.T) {
	auth, r := newAuthFixture(t)
	r.GET("/teacher", RequireTeacherJWT(auth), echoClaims)

	token, err := auth.GenerateToken(3, "teacher", service.TokenTypeTeacher)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/teacher", nil)
	req.Header.Set("Authorization", "bearer "+token) // scheme is case-insensitive
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}

func TestRequireStudentWSAuthQueryToken(t *testing.T) {
	auth, r := newAuthFixture(t)
	r.GET("/stream", RequireStudentWSAuth(auth), echoClaims)

	token, err := auth.GenerateToken(9, "student", service.TokenTypeStudent)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream?token="+token, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != "user 9" {
		t.Fatalf("body = %q, want claims for user 9", got)
	}
}

func TestRequireStudentWSAuthIgnoresHeader(t *testing.T) {
	auth, r := newAuthFixture(t)
	r.GET("/stream", RequireStudentWSAuth(auth), echoClaims)

	token, err := auth.GenerateToken(9, "student", service.TokenTypeStudent)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	// WebSocket auth only reads the query param.
	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
