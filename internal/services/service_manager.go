package services

import (
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

// ServiceManager hands out the services built over one repository
type ServiceManager interface {
	Session() SessionService
	Result() ResultService
	Test() TestService
	Question() QuestionService
	Statistics() StatisticsService
	ImportExport() ImportExportService
}

type serviceManager struct {
	session      SessionService
	result       ResultService
	test         TestService
	question     QuestionService
	statistics   StatisticsService
	importExport ImportExportService
}

func NewServiceManager(
	repo repositories.Repository,
	quizCache cache.QuizCache,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) ServiceManager {
	eventService := NewEventService(publisher, logger)
	result := NewResultService(repo, quizCache, eventService, logger)

	return &serviceManager{
		session:      NewSessionService(repo, result, quizCache, logger, validator),
		result:       result,
		test:         NewTestService(repo, NewCodeGenerator(repo.Tests(), logger), quizCache, eventService, logger, validator),
		question:     NewQuestionService(repo, quizCache, logger, validator),
		statistics:   NewStatisticsService(repo, logger),
		importExport: NewImportExportService(repo, logger, validator),
	}
}

func (m *serviceManager) Session() SessionService           { return m.session }
func (m *serviceManager) Result() ResultService             { return m.result }
func (m *serviceManager) Test() TestService                 { return m.test }
func (m *serviceManager) Question() QuestionService         { return m.question }
func (m *serviceManager) Statistics() StatisticsService     { return m.statistics }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }
