package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// QuizListItem — квиз, обогащённый вычисленным состоянием замка
// для списков на дашбордах
type QuizListItem struct {
	entity.Quiz
	Locked      bool  `json:"locked"`
	SecondsLeft int64 `json:"seconds_left"`
}

// QuizService предоставляет методы для работы с квизами и вопросами
type QuizService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
}

// NewQuizService создает новый сервис квизов
func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
	}
}

const quizListCacheKey = "quizzes:list"

// CreateQuiz создает новый квиз
func (s *QuizService) CreateQuiz(quiz *entity.Quiz) (*entity.Quiz, error) {
	if quiz.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if quiz.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", apperrors.ErrValidation)
	}

	if err := s.quizRepo.Create(quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}
	s.invalidateListCache()

	log.Printf("[QuizService] Создан квиз #%d (%s)", quiz.ID, quiz.Title)
	return quiz, nil
}

// GetQuizByID возвращает квиз по ID
func (s *QuizService) GetQuizByID(quizID uint) (*entity.Quiz, error) {
	return s.quizRepo.GetByID(quizID)
}

// GetQuizWithQuestions возвращает квиз вместе с вопросами (для координатора)
func (s *QuizService) GetQuizWithQuestions(quizID uint) (*entity.Quiz, error) {
	return s.quizRepo.GetWithQuestions(quizID)
}

// ListQuizzes возвращает все квизы с вычисленным состоянием замка.
// Список кешируется на короткое время; ошибка кеша не фатальна.
func (s *QuizService) ListQuizzes() ([]QuizListItem, error) {
	var quizzes []entity.Quiz

	if err := s.cacheRepo.GetJSON(quizListCacheKey, &quizzes); err != nil {
		quizzes, err = s.quizRepo.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list quizzes: %w", err)
		}
		if cacheErr := s.cacheRepo.SetJSON(quizListCacheKey, quizzes, 30*time.Second); cacheErr != nil {
			log.Printf("[QuizService] Не удалось закешировать список квизов: %v", cacheErr)
		}
	}

	now := time.Now()
	items := make([]QuizListItem, 0, len(quizzes))
	for _, quiz := range quizzes {
		items = append(items, QuizListItem{
			Quiz:        quiz,
			Locked:      quiz.IsLocked(now),
			SecondsLeft: quiz.SecondsLeft(now),
		})
	}
	return items, nil
}

// ListCategories возвращает уникальные категории квизов
func (s *QuizService) ListCategories() ([]string, error) {
	return s.quizRepo.ListCategories()
}

// UpdateQuiz обновляет свойства квиза
func (s *QuizService) UpdateQuiz(quiz *entity.Quiz) error {
	if _, err := s.quizRepo.GetByID(quiz.ID); err != nil {
		return err
	}
	if err := s.quizRepo.Update(quiz); err != nil {
		return fmt.Errorf("failed to update quiz #%d: %w", quiz.ID, err)
	}
	s.invalidateListCache()
	return nil
}

// SetStartTime назначает (или снимает) время открытия квиза.
// До наступления времени экзамен заблокирован для студентов.
func (s *QuizService) SetStartTime(quizID uint, startTime *time.Time) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	quiz.StartTime = startTime
	if err := s.quizRepo.Update(quiz); err != nil {
		return nil, fmt.Errorf("failed to schedule quiz #%d: %w", quizID, err)
	}
	s.invalidateListCache()

	if startTime != nil {
		log.Printf("[QuizService] Квиз #%d откроется в %v", quizID, startTime)
	} else {
		log.Printf("[QuizService] Расписание квиза #%d снято", quizID)
	}
	return quiz, nil
}

// DeleteQuiz удаляет квиз вместе с вопросами
func (s *QuizService) DeleteQuiz(quizID uint) error {
	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return err
	}
	if err := s.quizRepo.Delete(quizID); err != nil {
		return fmt.Errorf("failed to delete quiz #%d: %w", quizID, err)
	}
	s.invalidateListCache()
	return nil
}

// AddQuestion добавляет вопрос к квизу
func (s *QuizService) AddQuestion(quizID uint, question *entity.Question) (*entity.Question, error) {
	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return nil, err
	}
	question.QuizID = quizID
	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := s.questionRepo.Create(question); err != nil {
		return nil, fmt.Errorf("failed to add question to quiz #%d: %w", quizID, err)
	}
	return question, nil
}

// AddQuestions добавляет несколько вопросов одной транзакцией (импорт)
func (s *QuizService) AddQuestions(quizID uint, questions []entity.Question) error {
	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return err
	}
	for i := range questions {
		questions[i].QuizID = quizID
		if err := questions[i].Validate(); err != nil {
			return fmt.Errorf("%w: question %d: %v", apperrors.ErrValidation, i+1, err)
		}
	}
	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return fmt.Errorf("failed to import questions into quiz #%d: %w", quizID, err)
	}
	log.Printf("[QuizService] В квиз #%d импортировано %d вопросов", quizID, len(questions))
	return nil
}

// GetQuestionByID возвращает вопрос по ID
func (s *QuizService) GetQuestionByID(questionID uint) (*entity.Question, error) {
	return s.questionRepo.GetByID(questionID)
}

// UpdateQuestion обновляет вопрос
func (s *QuizService) UpdateQuestion(question *entity.Question) error {
	if _, err := s.questionRepo.GetByID(question.ID); err != nil {
		return err
	}
	if err := question.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return s.questionRepo.Update(question)
}

// DeleteQuestion удаляет вопрос
func (s *QuizService) DeleteQuestion(questionID uint) error {
	if _, err := s.questionRepo.GetByID(questionID); err != nil {
		return err
	}
	return s.questionRepo.Delete(questionID)
}

// DeleteQuestions удаляет вопросы по списку ID, возвращая число удалённых
func (s *QuizService) DeleteQuestions(ids []uint) (int64, error) {
	return s.questionRepo.DeleteBatch(ids)
}

// GetQuestionsByQuiz возвращает вопросы квиза (с ответами, для координатора)
func (s *QuizService) GetQuestionsByQuiz(quizID uint) ([]entity.Question, error) {
	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return nil, err
	}
	return s.questionRepo.GetByQuizID(quizID)
}

func (s *QuizService) invalidateListCache() {
	if err := s.cacheRepo.Delete(quizListCacheKey); err != nil {
		log.Printf("[QuizService] Не удалось сбросить кеш списка квизов: %v", err)
	}
}
