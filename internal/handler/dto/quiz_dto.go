package dto

import (
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/service"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту.
// Правильный вариант и эталонный вывод теста никогда не сериализуются
// для студента; для координатора есть отдельный конструктор.
type QuestionResponse struct {
	ID           uint   `json:"id"`
	QuizID       uint   `json:"quiz_id"`
	QuestionType string `json:"question_type"`
	Text         string `json:"text"`
	OptionA      string `json:"option_a,omitempty"`
	OptionB      string `json:"option_b,omitempty"`
	OptionC      string `json:"option_c,omitempty"`
	OptionD      string `json:"option_d,omitempty"`
	TestInput    string `json:"test_input,omitempty"`
	Marks        int    `json:"marks"`

	// Заполняются только конструктором для координатора
	CorrectOption string `json:"correct_option,omitempty"`
	TestOutput    string `json:"test_output,omitempty"`
}

// QuizResponse представляет квиз в формате для ответа клиенту
type QuizResponse struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Category        string             `json:"category,omitempty"`
	DurationMinutes int                `json:"duration_minutes"`
	TotalMarks      int                `json:"total_marks"`
	StartTime       *time.Time         `json:"start_time,omitempty"`
	Locked          bool               `json:"locked"`
	SecondsLeft     int64              `json:"seconds_left"`
	Questions       []QuestionResponse `json:"questions,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// AttemptResponse представляет попытку в формате для ответа клиенту
type AttemptResponse struct {
	ID                  uint      `json:"id"`
	UserID              uint      `json:"user_id"`
	QuizID              uint      `json:"quiz_id"`
	TotalScore          int       `json:"total_score"`
	Status              string    `json:"status"`
	CertificateApproved bool      `json:"certificate_approved"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ResponseItem представляет сохранённый ответ студента
type ResponseItem struct {
	QuestionID     uint   `json:"question_id"`
	SelectedOption string `json:"selected_option"`
	IsFlagged      bool   `json:"is_flagged"`
}

// ExamSessionResponse — состояние экзамена при входе: попытка,
// перемешанные вопросы без ответов и ранее сохранённый прогресс
type ExamSessionResponse struct {
	Attempt     *AttemptResponse   `json:"attempt"`
	Quiz        *QuizResponse      `json:"quiz"`
	Questions   []QuestionResponse `json:"questions"`
	Responses   []ResponseItem     `json:"responses"`
	SecondsLeft int64              `json:"seconds_left"`
	Resumed     bool               `json:"resumed"`
}

// NewQuestionResponse создает DTO вопроса для студента (без ответов)
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:           q.ID,
		QuizID:       q.QuizID,
		QuestionType: q.QuestionType,
		Text:         q.Text,
		OptionA:      q.OptionA,
		OptionB:      q.OptionB,
		OptionC:      q.OptionC,
		OptionD:      q.OptionD,
		TestInput:    q.TestInput,
		Marks:        q.Marks,
	}
}

// NewQuestionResponseForCoordinator создает DTO вопроса с правильным
// ответом и эталонным выводом (для экранов управления)
func NewQuestionResponseForCoordinator(q *entity.Question) QuestionResponse {
	resp := NewQuestionResponse(q)
	resp.CorrectOption = q.CorrectOption
	resp.TestOutput = q.TestOutput
	return resp
}

// NewQuizResponse создает DTO для квиза
func NewQuizResponse(quiz *entity.Quiz) *QuizResponse {
	if quiz == nil {
		return nil
	}
	now := time.Now()
	return &QuizResponse{
		ID:              quiz.ID,
		Title:           quiz.Title,
		Category:        quiz.Category,
		DurationMinutes: quiz.DurationMinutes,
		TotalMarks:      quiz.TotalMarks,
		StartTime:       quiz.StartTime,
		Locked:          quiz.IsLocked(now),
		SecondsLeft:     quiz.SecondsLeft(now),
		CreatedAt:       quiz.CreatedAt,
	}
}

// NewAttemptResponse создает DTO для попытки
func NewAttemptResponse(attempt *entity.Attempt) *AttemptResponse {
	if attempt == nil {
		return nil
	}
	return &AttemptResponse{
		ID:                  attempt.ID,
		UserID:              attempt.UserID,
		QuizID:              attempt.QuizID,
		TotalScore:          attempt.TotalScore,
		Status:              attempt.Status,
		CertificateApproved: attempt.CertificateApproved,
		CreatedAt:           attempt.CreatedAt,
		UpdatedAt:           attempt.UpdatedAt,
	}
}

// NewExamSessionResponse создает DTO состояния экзамена
func NewExamSessionResponse(session *service.ExamSession) *ExamSessionResponse {
	questions := make([]QuestionResponse, len(session.Questions))
	for i := range session.Questions {
		questions[i] = NewQuestionResponse(&session.Questions[i])
	}
	responses := make([]ResponseItem, len(session.Responses))
	for i, r := range session.Responses {
		responses[i] = ResponseItem{
			QuestionID:     r.QuestionID,
			SelectedOption: r.SelectedOption,
			IsFlagged:      r.IsFlagged,
		}
	}
	return &ExamSessionResponse{
		Attempt:     NewAttemptResponse(session.Attempt),
		Quiz:        NewQuizResponse(session.Quiz),
		Questions:   questions,
		Responses:   responses,
		SecondsLeft: session.SecondsLeft,
		Resumed:     session.Resumed,
	}
}
