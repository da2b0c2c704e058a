package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StatisticsHandler struct {
	BaseHandler
	statisticsService   services.StatisticsService
	importExportService services.ImportExportService
}

func NewStatisticsHandler(
	statisticsService services.StatisticsService,
	importExportService services.ImportExportService,
	logger utils.Logger,
) *StatisticsHandler {
	return &StatisticsHandler{
		BaseHandler:         NewBaseHandler(logger),
		statisticsService:   statisticsService,
		importExportService: importExportService,
	}
}

// AuthorStatistics summarizes every test of the caller
// @Router /teacher/test-statistic [get]
func (h *StatisticsHandler) AuthorStatistics(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.statisticsService.AuthorStatistics(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// TestStatistics returns one test with its sessions and aggregates
// @Router /teacher/test-statistic/{test_id} [get]
func (h *StatisticsHandler) TestStatistics(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	testID, ok := h.parseIDParam(c, "test_id")
	if !ok {
		return
	}

	stats, err := h.statisticsService.TestStatistics(c.Request.Context(), testID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportTestResults downloads finished sessions as XLSX
// @Router /teacher/test-statistic/{test_id}/export [get]
func (h *StatisticsHandler) ExportTestResults(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	testID, ok := h.parseIDParam(c, "test_id")
	if !ok {
		return
	}
	h.LogRequest(c, "Exporting test results", "test_id", testID)

	data, err := h.importExportService.ExportTestResults(c.Request.Context(), testID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="test-%d-results.xlsx"`, testID))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// PassedTests lists the caller's finished sessions
// @Router /student/passed-tests [get]
func (h *StatisticsHandler) PassedTests(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	passed, err := h.statisticsService.PassedTests(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, passed)
}
