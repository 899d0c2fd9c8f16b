package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

func newExamServiceForTest(quizRepo *MockQuizRepo, questionRepo *MockQuestionRepo, attemptRepo *MockAttemptRepo, responseRepo *MockResponseRepo, judge CodeJudge) *ExamService {
	if judge == nil {
		judge = &mockJudge{}
	}
	return NewExamService(quizRepo, questionRepo, attemptRepo, responseRepo, judge)
}

// ============================================================================
// StartOrResumeAttempt
// ============================================================================

func TestStartOrResumeAttempt_CreatesNewAttempt(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepo)
	questionRepo := new(MockQuestionRepo)
	attemptRepo := new(MockAttemptRepo)
	responseRepo := new(MockResponseRepo)

	quiz := &entity.Quiz{ID: 7, Title: "Go Basics", DurationMinutes: 30}
	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	questions := []entity.Question{
		{ID: 1, QuizID: 7, QuestionType: entity.QuestionTypeMCQ, Text: "q1"},
		{ID: 2, QuizID: 7, QuestionType: entity.QuestionTypeMCQ, Text: "q2"},
	}

	quizRepo.On("GetByID", uint(7)).Return(quiz, nil)
	attemptRepo.On("GetOrCreate", uint(42), uint(7)).Return(attempt, true, nil)
	questionRepo.On("GetByQuizID", uint(7)).Return(questions, nil)

	svc := newExamServiceForTest(quizRepo, questionRepo, attemptRepo, responseRepo, nil)

	// Act
	session, err := svc.StartOrResumeAttempt(42, 7)

	// Assert
	require.NoError(t, err)
	assert.False(t, session.Resumed, "Первый вход не является возобновлением")
	assert.Equal(t, uint(1), session.Attempt.ID)
	assert.Len(t, session.Questions, 2)
	assert.Empty(t, session.Responses, "У новой попытки нет сохранённых ответов")
	assert.Equal(t, int64(30*60), session.SecondsLeft)
	responseRepo.AssertNotCalled(t, "GetByAttempt", mock.Anything)
}

func TestStartOrResumeAttempt_ResumesExistingAttempt(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepo)
	questionRepo := new(MockQuestionRepo)
	attemptRepo := new(MockAttemptRepo)
	responseRepo := new(MockResponseRepo)

	quiz := &entity.Quiz{ID: 7, DurationMinutes: 30}
	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	saved := []entity.Response{
		{AttemptID: 1, QuestionID: 1, SelectedOption: "A"},
		{AttemptID: 1, QuestionID: 2, SelectedOption: "C", IsFlagged: true},
	}

	quizRepo.On("GetByID", uint(7)).Return(quiz, nil)
	attemptRepo.On("GetOrCreate", uint(42), uint(7)).Return(attempt, false, nil)
	questionRepo.On("GetByQuizID", uint(7)).Return([]entity.Question{{ID: 1, QuizID: 7}}, nil)
	responseRepo.On("GetByAttempt", uint(1)).Return(saved, nil)

	svc := newExamServiceForTest(quizRepo, questionRepo, attemptRepo, responseRepo, nil)

	// Act
	session, err := svc.StartOrResumeAttempt(42, 7)

	// Assert
	require.NoError(t, err)
	assert.True(t, session.Resumed, "Повторный вход должен быть помечен как возобновление")
	assert.Len(t, session.Responses, 2, "Сохранённый прогресс должен вернуться студенту")
}

func TestStartOrResumeAttempt_LockedQuiz(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepo)
	attemptRepo := new(MockAttemptRepo)

	future := time.Now().Add(2 * time.Hour)
	quiz := &entity.Quiz{ID: 7, StartTime: &future, DurationMinutes: 30}
	quizRepo.On("GetByID", uint(7)).Return(quiz, nil)

	svc := newExamServiceForTest(quizRepo, new(MockQuestionRepo), attemptRepo, new(MockResponseRepo), nil)

	// Act
	session, err := svc.StartOrResumeAttempt(42, 7)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQuizLocked)
	assert.Nil(t, session)
	attemptRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}

func TestStartOrResumeAttempt_FinishedAttempt(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepo)
	attemptRepo := new(MockAttemptRepo)

	quiz := &entity.Quiz{ID: 7, DurationMinutes: 30}
	finished := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusCompleted, TotalScore: 10}

	quizRepo.On("GetByID", uint(7)).Return(quiz, nil)
	attemptRepo.On("GetOrCreate", uint(42), uint(7)).Return(finished, false, nil)

	svc := newExamServiceForTest(quizRepo, new(MockQuestionRepo), attemptRepo, new(MockResponseRepo), nil)

	// Act
	_, err := svc.StartOrResumeAttempt(42, 7)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrAttemptFinished, "Вход в завершённую попытку должен быть отклонен")
}

func TestStartOrResumeAttempt_ShufflesQuestionsWithoutLosingAny(t *testing.T) {
	// Arrange: десять вопросов, чтобы совпадение порядка между входами
	// было практически невозможным
	quizRepo := new(MockQuizRepo)
	questionRepo := new(MockQuestionRepo)
	attemptRepo := new(MockAttemptRepo)

	quiz := &entity.Quiz{ID: 7, DurationMinutes: 30}
	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}

	allIDs := make([]uint, 0, 10)
	questions := make([]entity.Question, 0, 10)
	for i := uint(1); i <= 10; i++ {
		allIDs = append(allIDs, i)
		questions = append(questions, entity.Question{ID: i, QuizID: 7, QuestionType: entity.QuestionTypeMCQ})
	}

	quizRepo.On("GetByID", uint(7)).Return(quiz, nil)
	attemptRepo.On("GetOrCreate", uint(42), uint(7)).Return(attempt, true, nil)
	questionRepo.On("GetByQuizID", uint(7)).Return(questions, nil)

	svc := newExamServiceForTest(quizRepo, questionRepo, attemptRepo, new(MockResponseRepo), nil)

	// Act: десять входов подряд
	orders := make([][]uint, 0, 10)
	for i := 0; i < 10; i++ {
		session, err := svc.StartOrResumeAttempt(42, 7)
		require.NoError(t, err)

		ids := make([]uint, 0, len(session.Questions))
		for _, q := range session.Questions {
			ids = append(ids, q.ID)
		}
		orders = append(orders, ids)
	}

	// Assert: каждый вход возвращает перестановку того же набора,
	// без потерь и дублей, и хотя бы два входа отличаются порядком
	for _, ids := range orders {
		assert.ElementsMatch(t, allIDs, ids, "Перемешивание не должно терять или дублировать вопросы")
	}

	varied := false
	for _, ids := range orders[1:] {
		if !assert.ObjectsAreEqual(orders[0], ids) {
			varied = true
			break
		}
	}
	assert.True(t, varied, "Порядок вопросов должен меняться от входа к входу")
}

// ============================================================================
// SaveAnswer
// ============================================================================

func TestSaveAnswer_UpsertsResponse(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepo)
	questionRepo := new(MockQuestionRepo)
	responseRepo := new(MockResponseRepo)

	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	question := &entity.Question{ID: 3, QuizID: 7, QuestionType: entity.QuestionTypeMCQ, CorrectOption: "B"}

	attemptRepo.On("GetByID", uint(1)).Return(attempt, nil)
	questionRepo.On("GetByID", uint(3)).Return(question, nil)
	responseRepo.On("Upsert", mock.MatchedBy(func(r *entity.Response) bool {
		return r.AttemptID == 1 && r.QuestionID == 3 && r.SelectedOption == "A" && r.IsFlagged
	})).Return(nil)

	svc := newExamServiceForTest(new(MockQuizRepo), questionRepo, attemptRepo, responseRepo, nil)

	// Act
	err := svc.SaveAnswer(42, 1, 3, "A", true)

	// Assert
	require.NoError(t, err)
	responseRepo.AssertExpectations(t)
}

func TestSaveAnswer_ForeignAttempt(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepo)
	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	attemptRepo.On("GetByID", uint(1)).Return(attempt, nil)

	svc := newExamServiceForTest(new(MockQuizRepo), new(MockQuestionRepo), attemptRepo, new(MockResponseRepo), nil)

	// Act: пользователь 99 пытается писать в попытку пользователя 42
	err := svc.SaveAnswer(99, 1, 3, "A", false)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSaveAnswer_FinishedAttempt(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepo)
	responseRepo := new(MockResponseRepo)
	finished := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusCompleted}
	attemptRepo.On("GetByID", uint(1)).Return(finished, nil)

	svc := newExamServiceForTest(new(MockQuizRepo), new(MockQuestionRepo), attemptRepo, responseRepo, nil)

	// Act
	err := svc.SaveAnswer(42, 1, 3, "A", false)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrAttemptFinished, "Запись в завершённую попытку должна быть отклонена")
	responseRepo.AssertNotCalled(t, "Upsert", mock.Anything)
}

func TestSaveAnswer_LosesRaceWithSubmit(t *testing.T) {
	// Arrange: на момент чтения попытка ещё In-Progress, но параллельная
	// отправка успевает завершить её до записи ответа. Условная вставка
	// в хранилище не проходит и возвращает ErrAttemptFinished.
	attemptRepo := new(MockAttemptRepo)
	questionRepo := new(MockQuestionRepo)
	responseRepo := new(MockResponseRepo)

	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	question := &entity.Question{ID: 3, QuizID: 7, QuestionType: entity.QuestionTypeMCQ, CorrectOption: "B"}

	attemptRepo.On("GetByID", uint(1)).Return(attempt, nil)
	questionRepo.On("GetByID", uint(3)).Return(question, nil)
	responseRepo.On("Upsert", mock.Anything).
		Return(fmt.Errorf("%w: attempt #1", apperrors.ErrAttemptFinished))

	svc := newExamServiceForTest(new(MockQuizRepo), questionRepo, attemptRepo, responseRepo, nil)

	// Act
	err := svc.SaveAnswer(42, 1, 3, "A", false)

	// Assert: зафиксированный счёт не разойдется с ответами — поздняя
	// запись отклонена, клиент получит 409
	assert.ErrorIs(t, err, apperrors.ErrAttemptFinished)
}

func TestSaveAnswer_InvalidOption(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepo)
	questionRepo := new(MockQuestionRepo)

	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	question := &entity.Question{ID: 3, QuizID: 7, QuestionType: entity.QuestionTypeMCQ, CorrectOption: "B"}
	attemptRepo.On("GetByID", uint(1)).Return(attempt, nil)
	questionRepo.On("GetByID", uint(3)).Return(question, nil)

	svc := newExamServiceForTest(new(MockQuizRepo), questionRepo, attemptRepo, new(MockResponseRepo), nil)

	// Act: "E" не входит в метки A-D, CODE_SUCCESS снаружи тоже запрещен
	errInvalid := svc.SaveAnswer(42, 1, 3, "E", false)
	errMarker := svc.SaveAnswer(42, 1, 3, entity.CodeSuccessMarker, false)

	// Assert
	assert.ErrorIs(t, errInvalid, apperrors.ErrValidation)
	assert.ErrorIs(t, errMarker, apperrors.ErrValidation, "Сентинел CODE_SUCCESS нельзя сохранить напрямую")
}

func TestSaveAnswer_QuestionFromAnotherQuiz(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepo)
	questionRepo := new(MockQuestionRepo)

	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	foreign := &entity.Question{ID: 3, QuizID: 8, QuestionType: entity.QuestionTypeMCQ, CorrectOption: "A"}
	attemptRepo.On("GetByID", uint(1)).Return(attempt, nil)
	questionRepo.On("GetByID", uint(3)).Return(foreign, nil)

	svc := newExamServiceForTest(new(MockQuizRepo), questionRepo, attemptRepo, new(MockResponseRepo), nil)

	// Act
	err := svc.SaveAnswer(42, 1, 3, "A", false)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// ============================================================================
// SubmitAttempt
// ============================================================================

func TestSubmitAttempt_ComputesScore(t *testing.T) {
	// Arrange: из трёх ответов два правильных → 2 × 5 = 10 баллов
	attemptRepo := new(MockAttemptRepo)
	responseRepo := new(MockResponseRepo)

	inProgress := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	completed := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusCompleted, TotalScore: 10}

	attemptRepo.On("GetByID", uint(1)).Return(inProgress, nil).Once()
	responseRepo.On("CountCorrect", uint(1)).Return(int64(2), nil)
	attemptRepo.On("FinalizeScore", uint(1), 10).Return(true, nil)
	attemptRepo.On("GetByID", uint(1)).Return(completed, nil).Once()

	svc := newExamServiceForTest(new(MockQuizRepo), new(MockQuestionRepo), attemptRepo, responseRepo, nil)

	// Act
	result, err := svc.SubmitAttempt(42, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 10, result.TotalScore)
	assert.Equal(t, entity.AttemptStatusCompleted, result.Status)
	attemptRepo.AssertExpectations(t)
}

func TestSubmitAttempt_Idempotent(t *testing.T) {
	// Arrange: условное обновление не прошло — попытка уже завершена.
	// Повторный сабмит не должен менять зафиксированный счёт.
	attemptRepo := new(MockAttemptRepo)
	responseRepo := new(MockResponseRepo)

	inProgress := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	alreadyDone := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusCompleted, TotalScore: 10}

	attemptRepo.On("GetByID", uint(1)).Return(inProgress, nil).Once()
	responseRepo.On("CountCorrect", uint(1)).Return(int64(3), nil)
	attemptRepo.On("FinalizeScore", uint(1), 15).Return(false, nil)
	attemptRepo.On("GetByID", uint(1)).Return(alreadyDone, nil).Once()

	svc := newExamServiceForTest(new(MockQuizRepo), new(MockQuestionRepo), attemptRepo, responseRepo, nil)

	// Act
	result, err := svc.SubmitAttempt(42, 1)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrAttemptFinished)
	require.NotNil(t, result, "Вызывающему возвращается уже зафиксированный результат")
	assert.Equal(t, 10, result.TotalScore, "Счёт первой отправки не перезаписывается")
}

func TestSubmitAttempt_ForeignAttempt(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepo)
	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	attemptRepo.On("GetByID", uint(1)).Return(attempt, nil)

	svc := newExamServiceForTest(new(MockQuizRepo), new(MockQuestionRepo), attemptRepo, new(MockResponseRepo), nil)

	// Act
	_, err := svc.SubmitAttempt(99, 1)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSubmitAttempt_CountError(t *testing.T) {
	// Arrange: ошибка хранилища при подсчете не должна завершать попытку
	attemptRepo := new(MockAttemptRepo)
	responseRepo := new(MockResponseRepo)

	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	attemptRepo.On("GetByID", uint(1)).Return(attempt, nil)
	responseRepo.On("CountCorrect", uint(1)).Return(int64(0), errors.New("connection refused"))

	svc := newExamServiceForTest(new(MockQuizRepo), new(MockQuestionRepo), attemptRepo, responseRepo, nil)

	// Act
	_, err := svc.SubmitAttempt(42, 1)

	// Assert
	require.Error(t, err)
	attemptRepo.AssertNotCalled(t, "FinalizeScore", mock.Anything, mock.Anything)
}

// ============================================================================
// RunCode
// ============================================================================

func TestRunCode_PassRecordsMarker(t *testing.T) {
	// Arrange: вывод совпадает с эталоном с точностью до пробельных хвостов
	attemptRepo := new(MockAttemptRepo)
	questionRepo := new(MockQuestionRepo)
	responseRepo := new(MockResponseRepo)

	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	question := &entity.Question{ID: 5, QuizID: 7, QuestionType: entity.QuestionTypeCode, TestInput: "2 3", TestOutput: "5"}

	attemptRepo.On("GetByID", uint(1)).Return(attempt, nil)
	questionRepo.On("GetByID", uint(5)).Return(question, nil)
	responseRepo.On("Upsert", mock.MatchedBy(func(r *entity.Response) bool {
		return r.SelectedOption == entity.CodeSuccessMarker
	})).Return(nil)

	svc := newExamServiceForTest(new(MockQuizRepo), questionRepo, attemptRepo, responseRepo, &mockJudge{output: "5\n"})

	// Act
	output, passed, err := svc.RunCode(context.Background(), 42, 1, 5, "python", "print(2+3)")

	// Assert
	require.NoError(t, err)
	assert.True(t, passed)
	assert.Equal(t, "5\n", output)
	responseRepo.AssertExpectations(t)
}

func TestRunCode_FailDoesNotRecord(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepo)
	questionRepo := new(MockQuestionRepo)
	responseRepo := new(MockResponseRepo)

	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	question := &entity.Question{ID: 5, QuizID: 7, QuestionType: entity.QuestionTypeCode, TestOutput: "5"}

	attemptRepo.On("GetByID", uint(1)).Return(attempt, nil)
	questionRepo.On("GetByID", uint(5)).Return(question, nil)

	svc := newExamServiceForTest(new(MockQuizRepo), questionRepo, attemptRepo, responseRepo, &mockJudge{output: "7"})

	// Act
	_, passed, err := svc.RunCode(context.Background(), 42, 1, 5, "python", "print(3+4)")

	// Assert
	require.NoError(t, err)
	assert.False(t, passed)
	responseRepo.AssertNotCalled(t, "Upsert", mock.Anything)
}

func TestRunCode_RejectsMCQQuestion(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepo)
	questionRepo := new(MockQuestionRepo)

	attempt := &entity.Attempt{ID: 1, UserID: 42, QuizID: 7, Status: entity.AttemptStatusInProgress}
	question := &entity.Question{ID: 5, QuizID: 7, QuestionType: entity.QuestionTypeMCQ, CorrectOption: "A"}
	attemptRepo.On("GetByID", uint(1)).Return(attempt, nil)
	questionRepo.On("GetByID", uint(5)).Return(question, nil)

	svc := newExamServiceForTest(new(MockQuizRepo), questionRepo, attemptRepo, new(MockResponseRepo), nil)

	// Act
	_, _, err := svc.RunCode(context.Background(), 42, 1, 5, "python", "print(1)")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
