package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

// memoryRepository is an in-memory Repository for service tests. Transactions
// are serialized and roll back to a snapshot when fn fails.
type memoryRepository struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data *memoryData

	// failures injected by tests
	failResultCreate error
	failUpdateScore  error
}

type memoryData struct {
	nextID    uint
	tests     map[uint]models.Test
	questions map[uint]models.Question
	options   map[uint]models.Option
	sessions  map[uint]models.TestSession
	answers   map[uint]models.Answer
	selected  map[uint][]uint
	results   map[uint]models.TestResult
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{data: &memoryData{
		tests:     map[uint]models.Test{},
		questions: map[uint]models.Question{},
		options:   map[uint]models.Option{},
		sessions:  map[uint]models.TestSession{},
		answers:   map[uint]models.Answer{},
		selected:  map[uint][]uint{},
		results:   map[uint]models.TestResult{},
	}}
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		nextID:    d.nextID,
		tests:     make(map[uint]models.Test, len(d.tests)),
		questions: make(map[uint]models.Question, len(d.questions)),
		options:   make(map[uint]models.Option, len(d.options)),
		sessions:  make(map[uint]models.TestSession, len(d.sessions)),
		answers:   make(map[uint]models.Answer, len(d.answers)),
		selected:  make(map[uint][]uint, len(d.selected)),
		results:   make(map[uint]models.TestResult, len(d.results)),
	}
	for k, v := range d.tests {
		c.tests[k] = v
	}
	for k, v := range d.questions {
		c.questions[k] = v
	}
	for k, v := range d.options {
		c.options[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	for k, v := range d.answers {
		c.answers[k] = v
	}
	for k, v := range d.selected {
		c.selected[k] = append([]uint(nil), v...)
	}
	for k, v := range d.results {
		c.results[k] = v
	}
	return c
}

func (d *memoryData) id() uint {
	d.nextID++
	return d.nextID
}

func (r *memoryRepository) Tests() repositories.TestRepository         { return &memoryTests{r} }
func (r *memoryRepository) Questions() repositories.QuestionRepository { return &memoryQuestions{r} }
func (r *memoryRepository) Sessions() repositories.SessionRepository   { return &memorySessions{r} }
func (r *memoryRepository) Answers() repositories.AnswerRepository     { return &memoryAnswers{r} }
func (r *memoryRepository) Results() repositories.ResultRepository     { return &memoryResults{r} }

func (r *memoryRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	snapshot := r.data.clone()
	r.mu.Unlock()

	if err := fn(&gorm.DB{}); err != nil {
		r.mu.Lock()
		r.data = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

// ===== HYDRATION =====
// callers hold r.mu

func (r *memoryRepository) optionsOf(questionID uint) []models.Option {
	out := make([]models.Option, 0)
	for _, o := range r.data.options {
		if o.QuestionID == questionID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memoryRepository) question(id uint) models.Question {
	q := r.data.questions[id]
	q.Options = r.optionsOf(id)
	return q
}

func (r *memoryRepository) questionsOf(testID uint) []models.Question {
	ids := make([]uint, 0)
	for id, q := range r.data.questions {
		if q.TestID == testID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.question(id))
	}
	return out
}

func (r *memoryRepository) testWithQuestions(id uint) *models.Test {
	t := r.data.tests[id]
	t.Questions = r.questionsOf(id)
	return &t
}

func (r *memoryRepository) answer(id uint) models.Answer {
	a := r.data.answers[id]
	a.SelectedOptions = make([]models.Option, 0, len(r.data.selected[id]))
	for _, oid := range r.data.selected[id] {
		if o, ok := r.data.options[oid]; ok {
			a.SelectedOptions = append(a.SelectedOptions, o)
		}
	}
	return a
}

func (r *memoryRepository) answersOf(sessionID uint) []models.Answer {
	ids := make([]uint, 0)
	for id, a := range r.data.answers {
		if a.TestSessionID == sessionID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.Answer, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.answer(id))
	}
	return out
}

func (r *memoryRepository) resultOf(sessionID uint) *models.TestResult {
	for _, res := range r.data.results {
		if res.TestSessionID == sessionID {
			res := res
			return &res
		}
	}
	return nil
}

func (r *memoryRepository) sessionGraph(id uint) *models.TestSession {
	s := r.data.sessions[id]
	s.Test = r.testWithQuestions(s.TestID)
	s.Answers = r.answersOf(id)
	return &s
}

func (r *memoryRepository) testWithSessions(id uint) *models.Test {
	t := r.testWithQuestions(id)
	ids := make([]uint, 0)
	for sid, s := range r.data.sessions {
		if s.TestID == id {
			ids = append(ids, sid)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, sid := range ids {
		s := r.data.sessions[sid]
		s.Answers = r.answersOf(sid)
		s.TestResult = r.resultOf(sid)
		t.TestSessions = append(t.TestSessions, s)
	}
	return t
}

func (r *memoryRepository) deleteQuestion(id uint) {
	delete(r.data.questions, id)
	for oid, o := range r.data.options {
		if o.QuestionID == id {
			delete(r.data.options, oid)
		}
	}
}

func (r *memoryRepository) deleteSession(id uint) {
	delete(r.data.sessions, id)
	for aid, a := range r.data.answers {
		if a.TestSessionID == id {
			delete(r.data.answers, aid)
			delete(r.data.selected, aid)
		}
	}
	for rid, res := range r.data.results {
		if res.TestSessionID == id {
			delete(r.data.results, rid)
		}
	}
}

// ===== TESTS =====

type memoryTests struct{ r *memoryRepository }

func (m *memoryTests) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()

	now := time.Now()
	test.ID = m.r.data.id()
	test.CreatedAt, test.UpdatedAt = now, now
	flat := *test
	flat.Questions, flat.TestSessions = nil, nil
	m.r.data.tests[test.ID] = flat

	for i := range test.Questions {
		test.Questions[i].TestID = test.ID
		m.r.createQuestion(&test.Questions[i])
	}
	return nil
}

func (r *memoryRepository) createQuestion(q *models.Question) {
	now := time.Now()
	q.ID = r.data.id()
	q.CreatedAt, q.UpdatedAt = now, now
	for i := range q.Options {
		q.Options[i].ID = r.data.id()
		q.Options[i].QuestionID = q.ID
		r.data.options[q.Options[i].ID] = q.Options[i]
	}
	flat := *q
	flat.Options = nil
	r.data.questions[q.ID] = flat
}

func (m *memoryTests) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	t, ok := m.r.data.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (m *memoryTests) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if _, ok := m.r.data.tests[id]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.r.testWithQuestions(id), nil
}

func (m *memoryTests) GetPublishedByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Test, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	for _, t := range m.r.data.tests {
		if t.Status == models.TestStatusPublished && t.Code != nil && *t.Code == code {
			t := t
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryTests) ListByAuthor(ctx context.Context, tx *gorm.DB, authorID string, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()

	ids := make([]uint, 0)
	for id, t := range m.r.data.tests {
		if t.AuthorID != authorID {
			continue
		}
		if filters.Status != nil && t.Status != *filters.Status {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(filters.Search)) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	total := int64(len(ids))
	start := filters.Offset
	if start > len(ids) {
		start = len(ids)
	}
	end := len(ids)
	if filters.Limit > 0 && start+filters.Limit < end {
		end = start + filters.Limit
	}

	out := make([]*models.Test, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, m.r.testWithQuestions(id))
	}
	return out, total, nil
}

func (m *memoryTests) Update(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	current, ok := m.r.data.tests[test.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if test.Code != nil {
		for id, t := range m.r.data.tests {
			if id != test.ID && t.Code != nil && *t.Code == *test.Code {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	flat := *test
	flat.Questions, flat.TestSessions = nil, nil
	flat.CreatedAt = current.CreatedAt
	flat.UpdatedAt = time.Now()
	m.r.data.tests[test.ID] = flat
	return nil
}

func (m *memoryTests) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if _, ok := m.r.data.tests[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.r.data.tests, id)
	for qid, q := range m.r.data.questions {
		if q.TestID == id {
			m.r.deleteQuestion(qid)
		}
	}
	for sid, s := range m.r.data.sessions {
		if s.TestID == id {
			m.r.deleteSession(sid)
		}
	}
	return nil
}

func (m *memoryTests) ExistsByCode(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	for _, t := range m.r.data.tests {
		if t.Code != nil && *t.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryTests) GetWithSessions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if _, ok := m.r.data.tests[id]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.r.testWithSessions(id), nil
}

func (m *memoryTests) ListWithSessionsByAuthor(ctx context.Context, tx *gorm.DB, authorID string) ([]*models.Test, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	ids := make([]uint, 0)
	for id, t := range m.r.data.tests {
		if t.AuthorID == authorID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	out := make([]*models.Test, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.r.testWithSessions(id))
	}
	return out, nil
}

func (m *memoryTests) GetStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.TestStats, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	t := m.r.testWithSessions(id)
	stats := &repositories.TestStats{TestID: id, MaxScore: t.MaxScore()}

	var sum float64
	var n int
	for _, s := range t.TestSessions {
		stats.TotalSessions++
		if s.IsFinished() {
			stats.FinishedSessions++
		}
		if s.TestResult != nil {
			if n == 0 || s.TestResult.Score > stats.BestScore {
				stats.BestScore = s.TestResult.Score
			}
			sum += s.TestResult.Score
			n++
		}
	}
	if n > 0 {
		stats.AverageScore = sum / float64(n)
	}
	return stats, nil
}

// ===== QUESTIONS =====

type memoryQuestions struct{ r *memoryRepository }

func (m *memoryQuestions) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	m.r.createQuestion(question)
	return nil
}

func (m *memoryQuestions) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if _, ok := m.r.data.questions[id]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	q := m.r.question(id)
	return &q, nil
}

func (m *memoryQuestions) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if _, ok := m.r.data.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	flat := *question
	flat.Options = nil
	flat.UpdatedAt = time.Now()
	m.r.data.questions[question.ID] = flat
	return nil
}

func (m *memoryQuestions) ReplaceOptions(ctx context.Context, tx *gorm.DB, questionID uint, options []models.Option) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()

	keep := make(map[uint]bool, len(options))
	for _, o := range options {
		if o.ID != 0 {
			keep[o.ID] = true
		}
	}
	for id, o := range m.r.data.options {
		if o.QuestionID == questionID && !keep[id] {
			delete(m.r.data.options, id)
		}
	}
	for i := range options {
		options[i].QuestionID = questionID
		if options[i].ID == 0 {
			options[i].ID = m.r.data.id()
		}
		m.r.data.options[options[i].ID] = options[i]
	}
	return nil
}

func (m *memoryQuestions) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if _, ok := m.r.data.questions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.r.deleteQuestion(id)
	return nil
}

// ===== SESSIONS =====

type memorySessions struct{ r *memoryRepository }

func (m *memorySessions) Create(ctx context.Context, tx *gorm.DB, session *models.TestSession) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	now := time.Now()
	session.ID = m.r.data.id()
	session.CreatedAt, session.UpdatedAt = now, now
	flat := *session
	flat.Test, flat.Answers, flat.TestResult = nil, nil, nil
	m.r.data.sessions[session.ID] = flat
	return nil
}

func (m *memorySessions) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestSession, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	s, ok := m.r.data.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (m *memorySessions) LockSharedByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestSession, error) {
	return m.GetByID(ctx, tx, id)
}

func (m *memorySessions) findByUUID(uuid string) (uint, bool) {
	for id, s := range m.r.data.sessions {
		if s.UUID == uuid {
			return id, true
		}
	}
	return 0, false
}

func (m *memorySessions) GetByUUID(ctx context.Context, tx *gorm.DB, uuid string) (*models.TestSession, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	id, ok := m.findByUUID(uuid)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.r.sessionGraph(id), nil
}

func (m *memorySessions) LockByUUID(ctx context.Context, tx *gorm.DB, uuid string) (*models.TestSession, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	id, ok := m.findByUUID(uuid)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s := m.r.data.sessions[id]
	return &s, nil
}

func (m *memorySessions) MarkFinished(ctx context.Context, tx *gorm.DB, id uint, endedAt time.Time) (bool, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	s, ok := m.r.data.sessions[id]
	if !ok || s.Status != models.SessionInProgress {
		return false, nil
	}
	s.Status = models.SessionFinished
	s.EndedAt = &endedAt
	m.r.data.sessions[id] = s
	return true, nil
}

func (m *memorySessions) ListFinishedByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.TestSession, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	out := make([]*models.TestSession, 0)
	for id, s := range m.r.data.sessions {
		if s.UserID == nil || *s.UserID != userID || s.Status != models.SessionFinished {
			continue
		}
		s.Test = m.r.testWithQuestions(s.TestID)
		s.TestResult = m.r.resultOf(id)
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memorySessions) ListUUIDsByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]string, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	out := make([]string, 0)
	for _, s := range m.r.data.sessions {
		if s.TestID == testID {
			out = append(out, s.UUID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ===== ANSWERS =====

type memoryAnswers struct{ r *memoryRepository }

func (m *memoryAnswers) Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer, selected []models.Option) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()

	now := time.Now()
	var existing *models.Answer
	for _, a := range m.r.data.answers {
		if a.TestSessionID == answer.TestSessionID && a.QuestionID == answer.QuestionID {
			a := a
			existing = &a
			break
		}
	}
	if existing != nil {
		existing.Text = answer.Text
		existing.UpdatedAt = now
		m.r.data.answers[existing.ID] = *existing
		answer.ID = existing.ID
	} else {
		answer.ID = m.r.data.id()
		answer.CreatedAt, answer.UpdatedAt = now, now
		flat := *answer
		flat.SelectedOptions = nil
		m.r.data.answers[answer.ID] = flat
	}

	ids := make([]uint, 0, len(selected))
	for _, o := range selected {
		ids = append(ids, o.ID)
	}
	m.r.data.selected[answer.ID] = ids
	answer.SelectedOptions = selected
	return nil
}

func (m *memoryAnswers) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.Answer, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	answers := m.r.answersOf(sessionID)
	out := make([]*models.Answer, 0, len(answers))
	for i := range answers {
		out = append(out, &answers[i])
	}
	return out, nil
}

func (m *memoryAnswers) UpdateScore(ctx context.Context, tx *gorm.DB, id uint, score float64, status models.AnswerStatus) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if m.r.failUpdateScore != nil {
		return m.r.failUpdateScore
	}
	a, ok := m.r.data.answers[id]
	if !ok {
		return nil
	}
	a.Score = score
	a.Status = &status
	m.r.data.answers[id] = a
	return nil
}

// ===== RESULTS =====

type memoryResults struct{ r *memoryRepository }

func (m *memoryResults) Create(ctx context.Context, tx *gorm.DB, result *models.TestResult) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if m.r.failResultCreate != nil {
		return m.r.failResultCreate
	}
	if m.r.resultOf(result.TestSessionID) != nil {
		return gorm.ErrDuplicatedKey
	}
	result.ID = m.r.data.id()
	result.CreatedAt = time.Now()
	flat := *result
	flat.TestSession = nil
	m.r.data.results[result.ID] = flat
	return nil
}

func (m *memoryResults) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uint) (*models.TestResult, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	res := m.r.resultOf(sessionID)
	if res == nil {
		return nil, gorm.ErrRecordNotFound
	}
	res.TestSession = m.r.sessionGraph(sessionID)
	return res, nil
}
