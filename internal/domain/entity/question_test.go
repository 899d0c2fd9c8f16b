package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestion_IsCorrect_MCQ(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            1,
		QuizID:        1,
		QuestionType:  QuestionTypeMCQ,
		Text:          "Какой тип используется для строк в Go?",
		OptionA:       "string",
		OptionB:       "str",
		OptionC:       "char[]",
		OptionD:       "text",
		CorrectOption: "A",
		Marks:         5,
	}

	// Act & Assert
	assert.True(t, question.IsCorrect("A"), "IsCorrect должен вернуть true для правильной метки")
	assert.False(t, question.IsCorrect("B"), "IsCorrect должен вернуть false для неправильной метки")
	assert.False(t, question.IsCorrect(""), "IsCorrect должен вернуть false для пустого ответа")
}

func TestQuestion_IsCorrect_CodeSuccessMarker(t *testing.T) {
	// Arrange: CODE-вопрос засчитывается только по сентинелу от судьи
	question := &Question{
		ID:           2,
		QuestionType: QuestionTypeCode,
		Text:         "Выведите сумму двух чисел",
		TestInput:    "2 3",
		TestOutput:   "5",
		Marks:        5,
	}

	// Act & Assert
	assert.True(t, question.IsCorrect(CodeSuccessMarker), "Сентинел CODE_SUCCESS должен засчитываться как правильный ответ")
	assert.False(t, question.IsCorrect("A"), "Метка варианта не засчитывается для CODE-вопроса")
}

func TestQuestion_IsCorrect_MarkerOnMCQ(t *testing.T) {
	// Сентинел судьи засчитывается независимо от типа вопроса:
	// подсчёт на submit не различает источники ответа
	question := &Question{
		QuestionType:  QuestionTypeMCQ,
		CorrectOption: "C",
	}

	assert.True(t, question.IsCorrect(CodeSuccessMarker))
}

func TestQuestion_IsValidOption(t *testing.T) {
	question := &Question{QuestionType: QuestionTypeMCQ}

	// Act & Assert: валидные метки
	for _, label := range []string{"A", "B", "C", "D"} {
		assert.True(t, question.IsValidOption(label), "Метка %s должна быть валидной", label)
	}

	// Assert: невалидные метки
	assert.False(t, question.IsValidOption("E"), "Метка вне диапазона должна быть невалидной")
	assert.False(t, question.IsValidOption("a"), "Метка в нижнем регистре должна быть невалидной")
	assert.False(t, question.IsValidOption(""), "Пустая метка должна быть невалидной")
}

func TestQuestion_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{
			name: "валидный MCQ",
			q: Question{
				QuestionType:  QuestionTypeMCQ,
				Text:          "2+2?",
				OptionA:       "3",
				OptionB:       "4",
				OptionC:       "5",
				OptionD:       "6",
				CorrectOption: "B",
				Marks:         5,
			},
			wantErr: false,
		},
		{
			name: "валидный CODE",
			q: Question{
				QuestionType: QuestionTypeCode,
				Text:         "Выведите hello",
				TestOutput:   "hello",
				Marks:        5,
			},
			wantErr: false,
		},
		{
			name: "MCQ с меткой вне слотов",
			q: Question{
				QuestionType:  QuestionTypeMCQ,
				Text:          "2+2?",
				CorrectOption: "E",
				Marks:         5,
			},
			wantErr: true,
		},
		{
			name: "нулевые marks",
			q: Question{
				QuestionType:  QuestionTypeMCQ,
				Text:          "2+2?",
				CorrectOption: "A",
				Marks:         0,
			},
			wantErr: true,
		},
		{
			name: "CODE без ожидаемого вывода",
			q: Question{
				QuestionType: QuestionTypeCode,
				Text:         "Выведите hello",
				Marks:        5,
			},
			wantErr: true,
		},
		{
			name: "пустой текст вопроса",
			q: Question{
				QuestionType:  QuestionTypeMCQ,
				Text:          "   ",
				CorrectOption: "A",
				Marks:         5,
			},
			wantErr: true,
		},
		{
			name: "неизвестный тип",
			q: Question{
				QuestionType: "ESSAY",
				Text:         "Расскажите о Go",
				Marks:        5,
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuestion_TableName(t *testing.T) {
	question := Question{}
	assert.Equal(t, "questions", question.TableName(), "TableName должен возвращать 'questions'")
}
