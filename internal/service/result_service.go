package service

import (
	"fmt"
	"log"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
)

// AttemptResult — развернутый результат одной попытки:
// счёт плюс разбор ответов по вопросам
type AttemptResult struct {
	Attempt   *entity.Attempt    `json:"attempt"`
	Quiz      *entity.Quiz       `json:"quiz"`
	Breakdown []QuestionOutcome  `json:"breakdown"`
	Correct   int                `json:"correct"`
	Total     int                `json:"total"`
}

// QuestionOutcome — итог по одному вопросу в разборе
type QuestionOutcome struct {
	QuestionID     uint   `json:"question_id"`
	Text           string `json:"text"`
	SelectedOption string `json:"selected_option"`
	CorrectOption  string `json:"correct_option"`
	IsCorrect      bool   `json:"is_correct"`
}

// DashboardStats — сводные цифры для дашборда координатора
type DashboardStats struct {
	QuizCount    int64 `json:"quiz_count"`
	StudentCount int64 `json:"student_count"`
	AttemptCount int   `json:"attempt_count"`
}

// ResultService собирает результаты, победителей и сводную статистику
type ResultService struct {
	quizRepo         repository.QuizRepository
	questionRepo     repository.QuestionRepository
	attemptRepo      repository.AttemptRepository
	responseRepo     repository.ResponseRepository
	announcementRepo repository.AnnouncementRepository
}

// NewResultService создает новый сервис результатов
func NewResultService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	responseRepo repository.ResponseRepository,
	announcementRepo repository.AnnouncementRepository,
) *ResultService {
	return &ResultService{
		quizRepo:         quizRepo,
		questionRepo:     questionRepo,
		attemptRepo:      attemptRepo,
		responseRepo:     responseRepo,
		announcementRepo: announcementRepo,
	}
}

// GetAttemptResult возвращает развернутый результат попытки с разбором
// по каждому вопросу. Правильные ответы раскрываются только здесь,
// после завершения попытки.
func (s *ResultService) GetAttemptResult(attemptID uint) (*AttemptResult, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}

	quiz, err := s.quizRepo.GetByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.GetByQuizID(attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for quiz #%d: %w", attempt.QuizID, err)
	}

	responses, err := s.responseRepo.GetByAttempt(attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses for attempt #%d: %w", attemptID, err)
	}

	selected := make(map[uint]string, len(responses))
	for _, r := range responses {
		selected[r.QuestionID] = r.SelectedOption
	}

	breakdown := make([]QuestionOutcome, 0, len(questions))
	correct := 0
	for _, q := range questions {
		option := selected[q.ID]
		isCorrect := option != "" && q.IsCorrect(option)
		if isCorrect {
			correct++
		}
		breakdown = append(breakdown, QuestionOutcome{
			QuestionID:     q.ID,
			Text:           q.Text,
			SelectedOption: option,
			CorrectOption:  q.CorrectOption,
			IsCorrect:      isCorrect,
		})
	}

	return &AttemptResult{
		Attempt:   attempt,
		Quiz:      quiz,
		Breakdown: breakdown,
		Correct:   correct,
		Total:     len(questions),
	}, nil
}

// ListAllResults возвращает все попытки с данными студентов и квизов,
// отсортированные по убыванию счёта (для дашборда координатора)
func (s *ResultService) ListAllResults() ([]repository.AttemptListItem, error) {
	return s.attemptRepo.ListWithDetails()
}

// ListUserResults возвращает попытки одного студента
func (s *ResultService) ListUserResults(userID uint) ([]repository.AttemptListItem, error) {
	return s.attemptRepo.ListByUser(userID)
}

// ListWinners возвращает завершённые попытки со счётом не ниже порога
func (s *ResultService) ListWinners(minScore int) ([]repository.AttemptListItem, error) {
	items, err := s.attemptRepo.ListWithDetails()
	if err != nil {
		return nil, err
	}
	winners := make([]repository.AttemptListItem, 0)
	for _, item := range items {
		if item.Status == entity.AttemptStatusCompleted && item.TotalScore >= minScore {
			winners = append(winners, item)
		}
	}
	return winners, nil
}

// GetDashboardStats собирает сводные цифры для дашборда
func (s *ResultService) GetDashboardStats() (*DashboardStats, error) {
	quizzes, err := s.quizRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to count quizzes: %w", err)
	}

	studentCount, err := s.attemptRepo.CountDistinctUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}

	attempts, err := s.attemptRepo.ListWithDetails()
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	return &DashboardStats{
		QuizCount:    int64(len(quizzes)),
		StudentCount: studentCount,
		AttemptCount: len(attempts),
	}, nil
}

// GetAnnouncement возвращает текущее объявление (ErrNotFound, если его нет)
func (s *ResultService) GetAnnouncement() (*entity.Announcement, error) {
	return s.announcementRepo.Get()
}

// PublishAnnouncement публикует объявление, заменяя предыдущее
func (s *ResultService) PublishAnnouncement(message string) error {
	if err := s.announcementRepo.Set(message); err != nil {
		return fmt.Errorf("failed to publish announcement: %w", err)
	}
	log.Printf("[ResultService] Опубликовано объявление: %q", message)
	return nil
}

// ClearAnnouncement снимает объявление
func (s *ResultService) ClearAnnouncement() error {
	return s.announcementRepo.Clear()
}
