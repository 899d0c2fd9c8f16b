package entity

import (
	"fmt"
	"strings"
	"time"
)

// Типы вопросов
const (
	QuestionTypeMCQ  = "MCQ"
	QuestionTypeCode = "CODE"
)

// CodeSuccessMarker — сентинел, который сохраняется в Response.SelectedOption,
// когда внешняя судья-система подтвердила решение CODE-вопроса.
// При подсчёте баллов такой ответ засчитывается как правильный.
const CodeSuccessMarker = "CODE_SUCCESS"

// OptionLabels — допустимые метки вариантов ответа MCQ-вопроса
var OptionLabels = []string{"A", "B", "C", "D"}

// Question представляет вопрос квиза. Вариант над {MCQ, CODE}:
// MCQ несёт четыре варианта ответа и метку правильного,
// CODE — входные данные теста и ожидаемый вывод.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	QuizID        uint      `gorm:"not null;index" json:"quiz_id"`
	QuestionType  string    `gorm:"size:10;not null;default:'MCQ'" json:"question_type"`
	Text          string    `gorm:"size:1000;not null" json:"text"`
	OptionA       string    `gorm:"size:500" json:"option_a,omitempty"`
	OptionB       string    `gorm:"size:500" json:"option_b,omitempty"`
	OptionC       string    `gorm:"size:500" json:"option_c,omitempty"`
	OptionD       string    `gorm:"size:500" json:"option_d,omitempty"`
	CorrectOption string    `gorm:"size:20" json:"-"` // Скрыто от клиента
	TestInput     string    `gorm:"type:text" json:"test_input,omitempty"`
	TestOutput    string    `gorm:"type:text" json:"-"` // Скрыто от клиента
	Marks         int       `gorm:"not null;default:1" json:"marks"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsMCQ проверяет, является ли вопрос вопросом с выбором ответа
func (q *Question) IsMCQ() bool {
	return q.QuestionType == QuestionTypeMCQ
}

// IsCode проверяет, является ли вопрос CODE-вопросом
func (q *Question) IsCode() bool {
	return q.QuestionType == QuestionTypeCode
}

// IsCorrect проверяет, засчитывается ли сохранённый ответ как правильный.
// Для MCQ — совпадение метки с правильным вариантом,
// для CODE — наличие сентинела CodeSuccessMarker.
func (q *Question) IsCorrect(selectedOption string) bool {
	if selectedOption == CodeSuccessMarker {
		return true
	}
	return q.IsMCQ() && selectedOption != "" && selectedOption == q.CorrectOption
}

// IsValidOption проверяет, является ли метка допустимым вариантом ответа
func (q *Question) IsValidOption(label string) bool {
	for _, l := range OptionLabels {
		if label == l {
			return true
		}
	}
	return false
}

// Validate проверяет инварианты вопроса на границе хранилища:
// marks > 0, для MCQ правильный вариант — одна из четырёх меток,
// для CODE задан ожидаемый вывод.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text is required")
	}
	if q.Marks <= 0 {
		return fmt.Errorf("marks must be positive, got %d", q.Marks)
	}
	switch q.QuestionType {
	case QuestionTypeMCQ:
		if !q.IsValidOption(q.CorrectOption) {
			return fmt.Errorf("correct_option %q is not one of %v", q.CorrectOption, OptionLabels)
		}
	case QuestionTypeCode:
		if strings.TrimSpace(q.TestOutput) == "" {
			return fmt.Errorf("test_output is required for CODE questions")
		}
	default:
		return fmt.Errorf("unknown question type %q", q.QuestionType)
	}
	return nil
}
