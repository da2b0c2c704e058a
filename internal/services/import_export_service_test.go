package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestImportQuestions_CSV(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	test, err := env.tests.CreateTest(ctx, &CreateTestRequest{Title: "Imported"}, authorID)
	require.NoError(t, err)

	csv := strings.Join([]string{
		"type,text,description,score,options,correct",
		"single,Capital of Italy?,,2,Rome|Milan,1",
		"MULTIPLE,Primes,,3,2|3|4,\"1,2\"",
		"TEXT,Capital of France?,,1,Paris|paris,",
		"SINGLE,Broken,,1,A|B,5",
		"SINGLE,No correct,,1,A|B,",
		"SINGLE,Bad score,,abc,A|B,1",
	}, "\n")

	result, err := env.transfer.ImportQuestions(ctx, test.ID, strings.NewReader(csv), "questions.csv", authorID)
	require.NoError(t, err)
	assert.Equal(t, 6, result.TotalRows)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 3, result.ErrorCount)

	rows := make([]int, 0, len(result.Errors))
	for _, e := range result.Errors {
		rows = append(rows, e.Row)
	}
	assert.Contains(t, rows, 5)
	assert.Contains(t, rows, 6)
	assert.Contains(t, rows, 7)

	full, err := env.tests.GetTest(ctx, test.ID, authorID)
	require.NoError(t, err)
	require.Len(t, full.Questions, 3)
	assert.InDelta(t, 6.0, full.MaxScore(), 1e-9)
	assert.Len(t, full.Questions[1].CorrectOptions(), 2)
	assert.Len(t, full.Questions[2].CorrectOptions(), 2)
}

func TestImportQuestions_Excel(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	test, err := env.tests.CreateTest(ctx, &CreateTestRequest{Title: "Imported"}, authorID)
	require.NoError(t, err)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Type", "Text", "Score", "Options", "Correct"},
		{"SINGLE", "Largest ocean?", 1, "Pacific|Atlantic", "1"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := env.transfer.ImportQuestions(ctx, test.ID, bytes.NewReader(buf.Bytes()), "questions.xlsx", authorID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, "Largest ocean?", result.Questions[0].Text)
}

func TestImportQuestions_Rejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	test, err := env.tests.CreateTest(ctx, &CreateTestRequest{Title: "Imported"}, authorID)
	require.NoError(t, err)

	_, err = env.transfer.ImportQuestions(ctx, test.ID, strings.NewReader("x"), "questions.pdf", authorID)
	assert.True(t, IsValidation(err))

	_, err = env.transfer.ImportQuestions(ctx, test.ID, strings.NewReader("type,text\nSINGLE,Q"), "questions.csv", authorID)
	assert.True(t, IsValidation(err), "options column is required")

	_, err = env.transfer.ImportQuestions(ctx, test.ID, strings.NewReader("type,text,options\n"), "questions.csv", authorID)
	assert.True(t, IsValidation(err))

	_, err = env.transfer.ImportQuestions(ctx, test.ID, strings.NewReader("type,text,options\nTEXT,Q,a"), "questions.csv", "someone-else")
	assert.True(t, IsForbidden(err))
}

func TestExportTestResults(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	test := env.publishSample(t, false, false)

	finished := env.joinAsGuest(t, test, "Ann")
	answerSample(t, env, test, finished)
	_, err := env.sessions.Finish(ctx, finished.UUID)
	require.NoError(t, err)
	env.joinAsGuest(t, test, "Still working")

	data, err := env.transfer.ExportTestResults(ctx, test.ID, authorID)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one finished session")
	assert.Equal(t, "Session", rows[0][0])
	assert.Equal(t, finished.UUID, rows[1][0])
	assert.Equal(t, "Ann", rows[1][1])
	assert.Equal(t, "2", rows[1][4])
	assert.Equal(t, "5", rows[1][8])
	assert.Equal(t, "7", rows[1][9])

	_, err = env.transfer.ExportTestResults(ctx, test.ID, "someone-else")
	assert.True(t, IsForbidden(err))
}
