package services

import (
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// questionView hides correctness unless revealCorrect is set. Accepted answers of
// TEXT questions are options too, so they are dropped entirely when hidden.
func questionView(q models.Question, revealCorrect bool) QuestionView {
	view := QuestionView{
		ID:          q.ID,
		Text:        q.Text,
		Description: q.Description,
		Type:        q.Type,
		Score:       q.Score,
		Options:     make([]OptionView, 0, len(q.Options)),
	}
	if q.Type == models.QuestionText && !revealCorrect {
		return view
	}
	for _, o := range q.Options {
		ov := OptionView{ID: o.ID, Text: o.Text}
		if revealCorrect {
			correct := o.IsCorrect
			ov.IsCorrect = &correct
		}
		view.Options = append(view.Options, ov)
	}
	return view
}

func answerView(a models.Answer, showScore, showStatus bool) AnswerView {
	view := AnswerView{
		ID:              a.ID,
		QuestionID:      a.QuestionID,
		Text:            a.Text,
		SelectedOptions: make([]uint, 0, len(a.SelectedOptions)),
	}
	for _, o := range a.SelectedOptions {
		view.SelectedOptions = append(view.SelectedOptions, o.ID)
	}
	if showScore {
		score := a.Score
		view.Score = &score
	}
	if showStatus && a.Status != nil {
		status := *a.Status
		view.Status = &status
	}
	return view
}

// buildSessionResponse renders a session for its respondent. Answers carry no
// score or status while the session is running.
func buildSessionResponse(session *models.TestSession) *SessionResponse {
	resp := &SessionResponse{
		ID:        session.ID,
		UUID:      session.UUID,
		Status:    session.Status,
		UserID:    session.UserID,
		GuestName: session.GuestName,
		StartedAt: session.StartedAt,
		EndedAt:   session.EndedAt,
		TestID:    session.TestID,
		Questions: make([]QuestionView, 0),
		Answers:   make([]AnswerView, 0, len(session.Answers)),
	}

	if session.Test != nil {
		resp.Title = session.Test.Title
		resp.Description = session.Test.Description
		resp.ExpiresAt = session.Test.ExpiresAt
		for _, q := range session.Test.Questions {
			resp.Questions = append(resp.Questions, questionView(q, false))
		}
	}
	for _, a := range session.Answers {
		resp.Answers = append(resp.Answers, answerView(a, false, false))
	}
	return resp
}

// buildResultResponse renders a finished result. Per-question scores follow
// show_question_score; statuses and option correctness follow show_correct_answers.
func buildResultResponse(result *models.TestResult) *ResultResponse {
	resp := &ResultResponse{
		ID:                 result.ID,
		CountCorrect:       result.CountCorrect,
		CountWrong:         result.CountWrong,
		CountAlmostCorrect: result.CountAlmostCorrect,
		CountSkipped:       result.CountSkipped,
		Score:              result.Score,
		CreatedAt:          result.CreatedAt,
		UserID:             result.UserID,
		Questions:          make([]ResultQuestionView, 0),
	}

	session := result.TestSession
	if session == nil {
		return resp
	}
	resp.SessionUUID = session.UUID
	resp.TestID = session.TestID
	resp.GuestName = session.GuestName
	resp.StartedAt = session.StartedAt
	resp.EndedAt = session.EndedAt

	test := session.Test
	if test == nil {
		return resp
	}
	resp.Title = test.Title
	resp.MaxScore = test.MaxScore()
	resp.ShowCorrectAnswers = test.ShowCorrectAnswers
	resp.ShowQuestionScore = test.ShowQuestionScore

	answers := make(map[uint]models.Answer, len(session.Answers))
	for _, a := range session.Answers {
		answers[a.QuestionID] = a
	}
	for _, q := range test.Questions {
		view := ResultQuestionView{QuestionView: questionView(q, test.ShowCorrectAnswers)}
		if a, ok := answers[q.ID]; ok {
			av := answerView(a, test.ShowQuestionScore, test.ShowCorrectAnswers)
			view.Answer = &av
		}
		resp.Questions = append(resp.Questions, view)
	}
	return resp
}
