package services

import (
	"context"
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

const (
	TestCodeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	TestCodeLength      = 8
	MaxTestCodeAttempts = 10
)

type codeGenerator struct {
	tests       repositories.TestRepository
	logger      *slog.Logger
	maxAttempts int
	newCode     func() (string, error)
}

func NewCodeGenerator(tests repositories.TestRepository, logger *slog.Logger) CodeGenerator {
	return &codeGenerator{
		tests:       tests,
		logger:      logger,
		maxAttempts: MaxTestCodeAttempts,
		newCode: func() (string, error) {
			return gonanoid.Generate(TestCodeAlphabet, TestCodeLength)
		},
	}
}

// Generate draws codes until one is unused. After maxAttempts collisions it
// fails with ExhaustedError.
func (g *codeGenerator) Generate(ctx context.Context, tx *gorm.DB) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		code, err := g.newCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate test code: %w", err)
		}

		exists, err := g.tests.ExistsByCode(ctx, tx, code)
		if err != nil {
			return "", classifyRepoError("check test code", ResourceTest, code, err)
		}
		if !exists {
			return code, nil
		}
		g.logger.Debug("Test code collision", "attempt", attempt)
	}

	g.logger.Error("Exhausted test code attempts", "attempts", g.maxAttempts)
	return "", &ExhaustedError{Op: "generate test code", Attempts: g.maxAttempts}
}
