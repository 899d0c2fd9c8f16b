package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// CodeJudge исполняет присланный код во внешнем sandbox-сервисе
// и возвращает stdout программы
type CodeJudge interface {
	Execute(ctx context.Context, language, code, stdin string) (string, error)
}

// ExamSession — состояние попытки, возвращаемое при входе в экзамен:
// попытка, перемешанные вопросы и уже сохранённые ответы для восстановления
type ExamSession struct {
	Attempt     *entity.Attempt   `json:"attempt"`
	Quiz        *entity.Quiz      `json:"quiz"`
	Questions   []entity.Question `json:"questions"`
	Responses   []entity.Response `json:"responses"`
	SecondsLeft int64             `json:"seconds_left"`
	Resumed     bool              `json:"resumed"`
}

// ExamService управляет жизненным циклом попытки: вход, сохранение ответов,
// отправка на подсчет. Инварианты "одна попытка на (user, quiz)" и
// "первая отправка фиксирует счёт" обеспечиваются на уровне хранилища,
// сервис лишь переводит их в доменные ошибки.
type ExamService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	responseRepo repository.ResponseRepository
	judge        CodeJudge
}

// NewExamService создает новый сервис экзаменов
func NewExamService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	responseRepo repository.ResponseRepository,
	judge CodeJudge,
) *ExamService {
	return &ExamService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		responseRepo: responseRepo,
		judge:        judge,
	}
}

// StartOrResumeAttempt открывает экзамен для студента.
// Первый вход создает попытку In-Progress, повторный — возвращает ту же
// попытку с сохранёнными ответами (вкладка закрылась, сеть моргнула).
// Гонка двух одновременных входов разрешается в хранилище: оба вызова
// получают один и тот же attempt ID.
// Вход в уже завершённую попытку возвращает ErrAttemptFinished.
func (s *ExamService) StartOrResumeAttempt(userID, quizID uint) (*ExamSession, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if quiz.IsLocked(now) {
		return nil, fmt.Errorf("%w: quiz #%d opens at %v", apperrors.ErrQuizLocked, quizID, quiz.StartTime)
	}

	attempt, created, err := s.attemptRepo.GetOrCreate(userID, quizID)
	if err != nil {
		return nil, err
	}
	if attempt.IsFinished() {
		return nil, fmt.Errorf("%w: attempt #%d", apperrors.ErrAttemptFinished, attempt.ID)
	}

	questions, err := s.questionRepo.GetByQuizID(quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for quiz #%d: %w", quizID, err)
	}

	// Порядок вопросов перемешивается на каждый вход заново;
	// идентичность ответа — question ID, а не позиция на экране
	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	var responses []entity.Response
	if !created {
		responses, err = s.responseRepo.GetByAttempt(attempt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load saved responses for attempt #%d: %w", attempt.ID, err)
		}
	}

	if created {
		log.Printf("[ExamService] Студент ID=%d начал экзамен #%d, попытка #%d", userID, quizID, attempt.ID)
	} else {
		log.Printf("[ExamService] Студент ID=%d вернулся в экзамен #%d, попытка #%d (%d сохранённых ответов)",
			userID, quizID, attempt.ID, len(responses))
	}

	return &ExamSession{
		Attempt:     attempt,
		Quiz:        quiz,
		Questions:   questions,
		Responses:   responses,
		SecondsLeft: int64(quiz.DurationMinutes) * 60,
		Resumed:     !created,
	}, nil
}

// SaveAnswer сохраняет (или перезаписывает) ответ на вопрос.
// Семантика — last write wins: студент может менять ответ сколько угодно
// раз до отправки. Попытка чужого пользователя отклоняется, завершённая
// попытка — тоже.
func (s *ExamService) SaveAnswer(userID, attemptID, questionID uint, selectedOption string, isFlagged bool) error {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return err
	}
	if attempt.UserID != userID {
		return fmt.Errorf("%w: attempt #%d belongs to another user", apperrors.ErrForbidden, attemptID)
	}
	if attempt.IsFinished() {
		return fmt.Errorf("%w: attempt #%d", apperrors.ErrAttemptFinished, attemptID)
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return err
	}
	if question.QuizID != attempt.QuizID {
		return fmt.Errorf("%w: question #%d is not part of quiz #%d", apperrors.ErrValidation, questionID, attempt.QuizID)
	}
	if !question.IsValidOption(selectedOption) {
		return fmt.Errorf("%w: invalid option %q", apperrors.ErrValidation, selectedOption)
	}

	response := &entity.Response{
		AttemptID:      attemptID,
		QuestionID:     questionID,
		SelectedOption: selectedOption,
		IsFlagged:      isFlagged,
	}
	if err := s.responseRepo.Upsert(response); err != nil {
		return fmt.Errorf("failed to save answer (attempt=%d, question=%d): %w", attemptID, questionID, err)
	}
	return nil
}

// RunCode исполняет решение студента во внешнем sandbox и сравнивает stdout
// с эталонным выводом вопроса. При совпадении ответ фиксируется
// сентинелом CODE_SUCCESS и при подсчете будет засчитан как правильный.
func (s *ExamService) RunCode(ctx context.Context, userID, attemptID, questionID uint, language, code string) (string, bool, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return "", false, err
	}
	if attempt.UserID != userID {
		return "", false, fmt.Errorf("%w: attempt #%d belongs to another user", apperrors.ErrForbidden, attemptID)
	}
	if attempt.IsFinished() {
		return "", false, fmt.Errorf("%w: attempt #%d", apperrors.ErrAttemptFinished, attemptID)
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return "", false, err
	}
	if !question.IsCode() {
		return "", false, fmt.Errorf("%w: question #%d is not a coding question", apperrors.ErrValidation, questionID)
	}

	output, err := s.judge.Execute(ctx, language, code, question.TestInput)
	if err != nil {
		return "", false, fmt.Errorf("code execution failed: %w", err)
	}

	passed := strings.TrimSpace(output) == strings.TrimSpace(question.TestOutput)
	if passed {
		response := &entity.Response{
			AttemptID:      attemptID,
			QuestionID:     questionID,
			SelectedOption: entity.CodeSuccessMarker,
		}
		if err := s.responseRepo.Upsert(response); err != nil {
			return output, true, fmt.Errorf("failed to record passed test (attempt=%d, question=%d): %w", attemptID, questionID, err)
		}
		log.Printf("[ExamService] Попытка #%d: тест вопроса #%d пройден", attemptID, questionID)
	}

	return output, passed, nil
}

// SubmitAttempt завершает попытку и подсчитывает итоговый счёт.
// Подсчет детерминирован: число правильных ответов × PointsPerCorrectAnswer.
// Повторная отправка идемпотентна: условное обновление в хранилище не
// трогает уже зафиксированный счёт, а сервис возвращает ErrAttemptFinished.
func (s *ExamService) SubmitAttempt(userID, attemptID uint) (*entity.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("%w: attempt #%d belongs to another user", apperrors.ErrForbidden, attemptID)
	}

	correct, err := s.responseRepo.CountCorrect(attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to count correct answers for attempt #%d: %w", attemptID, err)
	}
	totalScore := int(correct) * entity.PointsPerCorrectAnswer

	finalized, err := s.attemptRepo.FinalizeScore(attemptID, totalScore)
	if err != nil {
		return nil, err
	}
	if !finalized {
		// Гонка двух отправок или повторный сабмит: счёт уже зафиксирован
		// первой отправкой, перечитываем и сообщаем вызывающему
		existing, readErr := s.attemptRepo.GetByID(attemptID)
		if readErr != nil {
			return nil, readErr
		}
		return existing, fmt.Errorf("%w: attempt #%d already submitted with score %d",
			apperrors.ErrAttemptFinished, attemptID, existing.TotalScore)
	}

	log.Printf("[ExamService] Попытка #%d завершена: %d правильных, счёт %d", attemptID, correct, totalScore)

	return s.attemptRepo.GetByID(attemptID)
}

// GetAttemptForUser возвращает попытку, проверяя владельца
func (s *ExamService) GetAttemptForUser(userID, attemptID uint) (*entity.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("%w: attempt #%d belongs to another user", apperrors.ErrForbidden, attemptID)
	}
	return attempt, nil
}
