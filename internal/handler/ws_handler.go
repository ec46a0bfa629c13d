package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/luyenthi/luyenthi-backend/internal/middleware"
	"github.com/luyenthi/luyenthi-backend/internal/service"
	ws "github.com/luyenthi/luyenthi-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles WebSocket session streaming: low-latency answer and
// flag saves, plus ping/pong that carries the authoritative remaining
// time. Submit stays on the REST confirm flow so the state machine
// guards it.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/student/exams/:exam_id/stream
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	studentID := claims.UserID

	// An open socket requires an active session.
	view, err := h.sessionService.State(context.Background(), examID, studentID)
	if err != nil {
		ws.WriteError(conn, "no active session for this exam")
		return
	}
	if view.State.Terminal() {
		ws.WriteTyped(conn, ws.FinalizedResponse{Event: ws.EventFinalized})
		return
	}

	wsLog := h.log.With().
		Int("student_id", studentID).
		Str("exam_id", examID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	for {
		var env ws.RequestEnvelope
		raw, err := readRaw(conn, &env)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch env.Action {
		case ws.ActionAnswer:
			h.handleAnswer(conn, wsLog, examID, studentID, raw)
		case ws.ActionFlag:
			h.handleFlag(conn, wsLog, examID, studentID, raw)
		case ws.ActionPing:
			h.handlePing(conn, examID, studentID)
		default:
			wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(env.Action))
		}
	}
}

func (h *WSHandler) handleAnswer(conn *websocket.Conn, wsLog zerolog.Logger, examID uuid.UUID, studentID int, raw []byte) {
	var req ws.AnswerRequest
	if err := unmarshalAction(raw, &req); err != nil {
		ws.WriteError(conn, "invalid answer payload")
		return
	}
	questionID, err := uuid.Parse(req.QID)
	if err != nil {
		ws.WriteError(conn, "invalid q_id format")
		return
	}

	err = h.sessionService.SelectAnswer(context.Background(), examID, studentID, questionID, req.Option)
	switch {
	case err == nil:
		ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSaved, QID: req.QID, Status: "saved"})
	case errors.Is(err, service.ErrSessionFinalized):
		ws.WriteTyped(conn, ws.FinalizedResponse{Event: ws.EventFinalized})
	case errors.Is(err, service.ErrQuestionNotInExam), errors.Is(err, service.ErrInvalidOption):
		ws.WriteError(conn, err.Error())
	default:
		wsLog.Error().Err(err).Msg("answer save failed")
		ws.WriteError(conn, "save failed")
	}
}

func (h *WSHandler) handleFlag(conn *websocket.Conn, wsLog zerolog.Logger, examID uuid.UUID, studentID int, raw []byte) {
	var req ws.FlagRequest
	if err := unmarshalAction(raw, &req); err != nil {
		ws.WriteError(conn, "invalid flag payload")
		return
	}
	questionID, err := uuid.Parse(req.QID)
	if err != nil {
		ws.WriteError(conn, "invalid q_id format")
		return
	}

	flagged, err := h.sessionService.ToggleFlag(context.Background(), examID, studentID, questionID)
	switch {
	case err == nil:
		ws.WriteTyped(conn, ws.FlaggedResponse{Event: ws.EventFlagged, QID: req.QID, Flagged: flagged})
	case errors.Is(err, service.ErrSessionFinalized):
		ws.WriteTyped(conn, ws.FinalizedResponse{Event: ws.EventFinalized})
	case errors.Is(err, service.ErrQuestionNotInExam):
		ws.WriteError(conn, err.Error())
	default:
		wsLog.Error().Err(err).Msg("flag toggle failed")
		ws.WriteError(conn, "flag failed")
	}
}

// handlePing answers with the server-computed remaining time so the
// client timer resyncs instead of drifting on its own interval.
func (h *WSHandler) handlePing(conn *websocket.Conn, examID uuid.UUID, studentID int) {
	view, err := h.sessionService.State(context.Background(), examID, studentID)
	if err != nil {
		ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		return
	}
	if view.State.Terminal() {
		ws.WriteTyped(conn, ws.FinalizedResponse{Event: ws.EventFinalized})
		return
	}
	ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong, RemainingSeconds: view.RemainingSeconds})
}

// readRaw reads one message and peeks its action envelope.
func readRaw(conn *websocket.Conn, env *ws.RequestEnvelope) ([]byte, error) {
	raw, err := ws.ReadRaw(conn)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, env); err != nil {
		env.Action = ""
	}
	return raw, nil
}

func unmarshalAction(raw []byte, v interface{}) error {
	return json.Unmarshal(raw, v)
}
