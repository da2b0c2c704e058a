package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

// SessionHandler serves respondents taking a test
type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

type JoinTestRequest struct {
	GuestName string `json:"guest_name"`
}

// JoinTest opens a session on a published test
// @Router /test/join/{code} [post]
func (h *SessionHandler) JoinTest(c *gin.Context) {
	code := c.Param("code")
	h.LogRequest(c, "Joining test", "code", code)

	var req JoinTestRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	identity := auth.IdentityFromContext(c)
	identity.GuestName = req.GuestName

	session, err := h.sessionService.Join(c.Request.Context(), code, identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession returns the session with its questions and answers so far
// @Router /test/session/{uuid} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionUUID := c.Param("uuid")
	h.LogRequest(c, "Getting test session", "session_uuid", sessionUUID)

	session, err := h.sessionService.GetSession(c.Request.Context(), sessionUUID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SubmitAnswer stores or replaces the answer to one question
// @Router /test/response/answer [put]
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	var req services.SubmitAnswerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Submitting answer", "session_id", req.TestSessionID, "question_id", req.QuestionID)

	answer, err := h.sessionService.SubmitAnswer(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// FinishSession scores the session and returns its result
// @Router /test/response/send/{uuid} [put]
func (h *SessionHandler) FinishSession(c *gin.Context) {
	sessionUUID := c.Param("uuid")
	h.LogRequest(c, "Finishing test session", "session_uuid", sessionUUID)

	result, err := h.sessionService.Finish(c.Request.Context(), sessionUUID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResult returns the result of a finished session
// @Router /test/response/{uuid} [get]
func (h *SessionHandler) GetResult(c *gin.Context) {
	sessionUUID := c.Param("uuid")
	h.LogRequest(c, "Getting test result", "session_uuid", sessionUUID)

	result, err := h.sessionService.GetResult(c.Request.Context(), sessionUUID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
