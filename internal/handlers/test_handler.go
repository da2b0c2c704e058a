package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

// TestHandler serves authors managing their tests
type TestHandler struct {
	BaseHandler
	testService services.TestService
}

func NewTestHandler(testService services.TestService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		testService: testService,
	}
}

// CreateTest creates a draft test, optionally with questions
// @Router /test [post]
func (h *TestHandler) CreateTest(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	var req services.CreateTestRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Creating test", "title", req.Title)

	test, err := h.testService.CreateTest(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// GetTest returns a test with its questions and correct answers
// @Router /test/{test_id} [get]
func (h *TestHandler) GetTest(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "test_id")
	if !ok {
		return
	}

	test, err := h.testService.GetTest(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// ListMyTests lists the caller's tests
// @Router /tests/my [get]
func (h *TestHandler) ListMyTests(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	tests, err := h.testService.ListMyTests(c.Request.Context(), userID, h.parseTestFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// UpdateTestInfo changes title, description, expiry or display flags
// @Router /test/{test_id} [patch]
func (h *TestHandler) UpdateTestInfo(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "test_id")
	if !ok {
		return
	}
	var req services.UpdateTestInfoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Updating test", "test_id", id)

	test, err := h.testService.UpdateTestInfo(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// DeleteTest removes a test with its questions and sessions
// @Router /test/{test_id} [delete]
func (h *TestHandler) DeleteTest(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "test_id")
	if !ok {
		return
	}
	h.LogRequest(c, "Deleting test", "test_id", id)

	if err := h.testService.DeleteTest(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PublishTest issues a join code
// @Router /test/publish/{test_id} [patch]
func (h *TestHandler) PublishTest(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "test_id")
	if !ok {
		return
	}
	var req services.PublishTestRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Publishing test", "test_id", id)

	test, err := h.testService.PublishTest(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

func (h *TestHandler) parseTestFilters(c *gin.Context) repositories.TestFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)
	if page < 1 {
		page = 1
	}

	filters := repositories.TestFilters{
		Search:    c.Query("search"),
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if status := c.Query("status"); status != "" {
		testStatus := models.TestStatus(status)
		filters.Status = &testStatus
	}
	return filters
}
