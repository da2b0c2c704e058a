package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

type HandlerManager struct {
	sessionHandler    *SessionHandler
	testHandler       *TestHandler
	questionHandler   *QuestionHandler
	statisticsHandler *StatisticsHandler
	auth              *auth.Middleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authMiddleware *auth.Middleware,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler:    NewSessionHandler(serviceManager.Session(), logger),
		testHandler:       NewTestHandler(serviceManager.Test(), logger),
		questionHandler:   NewQuestionHandler(serviceManager.Question(), serviceManager.ImportExport(), logger),
		statisticsHandler: NewStatisticsHandler(serviceManager.Statistics(), serviceManager.ImportExport(), logger),
		auth:              authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Respondent routes. Guests take tests without a token.
		respond := v1.Group("/test", hm.auth.OptionalAuth())
		{
			respond.POST("/join/:code", hm.sessionHandler.JoinTest)
			respond.GET("/session/:uuid", hm.sessionHandler.GetSession)
			respond.PUT("/response/answer", hm.sessionHandler.SubmitAnswer)
			respond.PUT("/response/send/:uuid", hm.sessionHandler.FinishSession)
			respond.GET("/response/:uuid", hm.sessionHandler.GetResult)
		}

		// Authoring routes
		authoring := v1.Group("", hm.auth.RequireAuth())
		{
			authoring.POST("/test", hm.testHandler.CreateTest)
			authoring.GET("/test/:test_id", hm.testHandler.GetTest)
			authoring.PATCH("/test/:test_id", hm.testHandler.UpdateTestInfo)
			authoring.DELETE("/test/:test_id", hm.testHandler.DeleteTest)
			authoring.PATCH("/test/publish/:test_id", hm.testHandler.PublishTest)
			authoring.GET("/tests/my", hm.testHandler.ListMyTests)

			authoring.POST("/test/:test_id/question", hm.questionHandler.CreateQuestion)
			authoring.POST("/test/:test_id/question/import", hm.questionHandler.ImportQuestions)
			authoring.PATCH("/test/:test_id/question/:id", hm.questionHandler.UpdateQuestion)
			authoring.DELETE("/test/:test_id/question/:id", hm.questionHandler.DeleteQuestion)

			authoring.GET("/teacher/test-statistic", hm.statisticsHandler.AuthorStatistics)
			authoring.GET("/teacher/test-statistic/:test_id", hm.statisticsHandler.TestStatistics)
			authoring.GET("/teacher/test-statistic/:test_id/export", hm.statisticsHandler.ExportTestResults)

			authoring.GET("/student/passed-tests", hm.statisticsHandler.PassedTests)
		}
	}
}
