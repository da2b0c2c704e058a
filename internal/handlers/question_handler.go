package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

const maxImportSize = 10 << 20

type QuestionHandler struct {
	BaseHandler
	questionService     services.QuestionService
	importExportService services.ImportExportService
}

func NewQuestionHandler(
	questionService services.QuestionService,
	importExportService services.ImportExportService,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:         NewBaseHandler(logger),
		questionService:     questionService,
		importExportService: importExportService,
	}
}

// CreateQuestion adds a question to a test
// @Router /test/{test_id}/question [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	testID, ok := h.parseIDParam(c, "test_id")
	if !ok {
		return
	}
	var req services.QuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Creating question", "test_id", testID)

	question, err := h.questionService.CreateQuestion(c.Request.Context(), testID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion replaces a question and its options
// @Router /test/{test_id}/question/{id} [patch]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	testID, ok := h.parseIDParam(c, "test_id")
	if !ok {
		return
	}
	questionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.QuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Updating question", "test_id", testID, "question_id", questionID)

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), testID, questionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question from a test
// @Router /test/{test_id}/question/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	testID, ok := h.parseIDParam(c, "test_id")
	if !ok {
		return
	}
	questionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Deleting question", "test_id", testID, "question_id", questionID)

	if err := h.questionService.DeleteQuestion(c.Request.Context(), testID, questionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ImportQuestions appends questions from an uploaded CSV or XLSX file
// @Router /test/{test_id}/question/import [post]
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	testID, ok := h.parseIDParam(c, "test_id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "File is required", err.Error())
		return
	}
	if header.Size > maxImportSize {
		h.RespondWithError(c, http.StatusBadRequest, "File is too large")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Cannot read file", err.Error())
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing questions", "test_id", testID, "filename", header.Filename)

	result, err := h.importExportService.ImportQuestions(c.Request.Context(), testID, file, header.Filename, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
