package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

func TestCreateQuiz_Validation(t *testing.T) {
	// Arrange
	svc := NewQuizService(new(MockQuizRepo), new(MockQuestionRepo), new(MockCacheRepo))

	// Act
	_, errTitle := svc.CreateQuiz(&entity.Quiz{DurationMinutes: 30})
	_, errDuration := svc.CreateQuiz(&entity.Quiz{Title: "Go Basics", DurationMinutes: 0})

	// Assert
	assert.ErrorIs(t, errTitle, apperrors.ErrValidation, "Квиз без названия должен быть отклонен")
	assert.ErrorIs(t, errDuration, apperrors.ErrValidation, "Нулевая длительность должна быть отклонена")
}

func TestCreateQuiz_InvalidatesListCache(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepo)
	cacheRepo := new(MockCacheRepo)

	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Return(nil)
	cacheRepo.On("Delete", quizListCacheKey).Return(nil)

	svc := NewQuizService(quizRepo, new(MockQuestionRepo), cacheRepo)

	// Act
	_, err := svc.CreateQuiz(&entity.Quiz{Title: "Go Basics", DurationMinutes: 30})

	// Assert
	require.NoError(t, err)
	cacheRepo.AssertCalled(t, "Delete", quizListCacheKey)
}

func TestListQuizzes_CacheMiss(t *testing.T) {
	// Arrange: кеш пуст, список читается из БД и кешируется
	quizRepo := new(MockQuizRepo)
	cacheRepo := new(MockCacheRepo)

	future := time.Now().Add(time.Hour)
	quizzes := []entity.Quiz{
		{ID: 1, Title: "Open", DurationMinutes: 30},
		{ID: 2, Title: "Scheduled", DurationMinutes: 30, StartTime: &future},
	}

	cacheRepo.On("GetJSON", quizListCacheKey, mock.Anything).Return(apperrors.ErrNotFound)
	quizRepo.On("List").Return(quizzes, nil)
	cacheRepo.On("SetJSON", quizListCacheKey, quizzes, 30*time.Second).Return(nil)

	svc := NewQuizService(quizRepo, new(MockQuestionRepo), cacheRepo)

	// Act
	items, err := svc.ListQuizzes()

	// Assert
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.False(t, items[0].Locked, "Квиз без расписания открыт")
	assert.True(t, items[1].Locked, "Квиз с будущим start_time заблокирован")
	assert.Positive(t, items[1].SecondsLeft)
	cacheRepo.AssertExpectations(t)
}

func TestListQuizzes_CacheHit(t *testing.T) {
	// Arrange: список берется из кеша, БД не трогается
	quizRepo := new(MockQuizRepo)
	cacheRepo := new(MockCacheRepo)

	cached := []entity.Quiz{{ID: 1, Title: "Cached", DurationMinutes: 30}}
	cacheRepo.On("GetJSON", quizListCacheKey, mock.Anything).Run(func(args mock.Arguments) {
		dest := args.Get(1).(*[]entity.Quiz)
		*dest = cached
	}).Return(nil)

	svc := NewQuizService(quizRepo, new(MockQuestionRepo), cacheRepo)

	// Act
	items, err := svc.ListQuizzes()

	// Assert
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Cached", items[0].Title)
	quizRepo.AssertNotCalled(t, "List")
}

func TestSetStartTime_Schedules(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepo)
	cacheRepo := new(MockCacheRepo)

	quiz := &entity.Quiz{ID: 7, Title: "Go Basics", DurationMinutes: 30}
	start := time.Now().Add(2 * time.Hour)

	quizRepo.On("GetByID", uint(7)).Return(quiz, nil)
	quizRepo.On("Update", mock.MatchedBy(func(q *entity.Quiz) bool {
		return q.ID == 7 && q.StartTime != nil && q.StartTime.Equal(start)
	})).Return(nil)
	cacheRepo.On("Delete", quizListCacheKey).Return(nil)

	svc := NewQuizService(quizRepo, new(MockQuestionRepo), cacheRepo)

	// Act
	updated, err := svc.SetStartTime(7, &start)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, updated.StartTime)
	assert.True(t, updated.IsLocked(time.Now()), "До наступления start_time квиз заблокирован")
}

func TestSetStartTime_Unschedules(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepo)
	cacheRepo := new(MockCacheRepo)

	past := time.Now().Add(time.Hour)
	quiz := &entity.Quiz{ID: 7, Title: "Go Basics", DurationMinutes: 30, StartTime: &past}

	quizRepo.On("GetByID", uint(7)).Return(quiz, nil)
	quizRepo.On("Update", mock.MatchedBy(func(q *entity.Quiz) bool {
		return q.StartTime == nil
	})).Return(nil)
	cacheRepo.On("Delete", quizListCacheKey).Return(nil)

	svc := NewQuizService(quizRepo, new(MockQuestionRepo), cacheRepo)

	// Act
	updated, err := svc.SetStartTime(7, nil)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, updated.StartTime)
	assert.False(t, updated.IsLocked(time.Now()))
}

func TestAddQuestion_SetsQuizID(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepo)
	questionRepo := new(MockQuestionRepo)

	quizRepo.On("GetByID", uint(7)).Return(&entity.Quiz{ID: 7}, nil)
	questionRepo.On("Create", mock.MatchedBy(func(q *entity.Question) bool {
		return q.QuizID == 7
	})).Return(nil)

	svc := NewQuizService(quizRepo, questionRepo, new(MockCacheRepo))
	question := &entity.Question{
		QuestionType:  entity.QuestionTypeMCQ,
		Text:          "2+2?",
		OptionA:       "3",
		OptionB:       "4",
		OptionC:       "5",
		OptionD:       "6",
		CorrectOption: "B",
		Marks:         1,
	}

	// Act
	created, err := svc.AddQuestion(7, question)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(7), created.QuizID)
	questionRepo.AssertExpectations(t)
}

func TestAddQuestion_QuizNotFound(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepo)
	questionRepo := new(MockQuestionRepo)
	quizRepo.On("GetByID", uint(404)).Return(nil, apperrors.ErrNotFound)

	svc := NewQuizService(quizRepo, questionRepo, new(MockCacheRepo))

	// Act
	_, err := svc.AddQuestion(404, &entity.Question{Text: "2+2?"})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	questionRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAddQuestions_ValidatesEach(t *testing.T) {
	// Arrange: второй вопрос без текста — вся пачка отклоняется
	quizRepo := new(MockQuizRepo)
	questionRepo := new(MockQuestionRepo)
	quizRepo.On("GetByID", uint(7)).Return(&entity.Quiz{ID: 7}, nil)

	svc := NewQuizService(quizRepo, questionRepo, new(MockCacheRepo))
	questions := []entity.Question{
		{QuestionType: entity.QuestionTypeMCQ, Text: "ok", OptionA: "1", OptionB: "2", OptionC: "3", OptionD: "4", CorrectOption: "A", Marks: 1},
		{QuestionType: entity.QuestionTypeMCQ, Text: "", Marks: 1},
	}

	// Act
	err := svc.AddQuestions(7, questions)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	questionRepo.AssertNotCalled(t, "CreateBatch", mock.Anything)
}
