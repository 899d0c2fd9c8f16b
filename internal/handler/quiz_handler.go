package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/handler/dto"
	"github.com/yourusername/exam-api/internal/handler/helper"
	"github.com/yourusername/exam-api/internal/service"
)

// QuizHandler обрабатывает запросы управления квизами и вопросами
// (экраны координатора)
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик квизов
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// CreateQuizRequest представляет запрос на создание квиза
type CreateQuizRequest struct {
	Title           string     `json:"title" binding:"required,min=3,max=100"`
	Category        string     `json:"category" binding:"omitempty,max=100"`
	DurationMinutes int        `json:"duration_minutes" binding:"required,min=1,max=480"`
	TotalMarks      int        `json:"total_marks" binding:"omitempty,min=0"`
	StartTime       *time.Time `json:"start_time"`
}

// CreateQuiz обрабатывает запрос на создание квиза
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz := &entity.Quiz{
		Title:           req.Title,
		Category:        req.Category,
		DurationMinutes: req.DurationMinutes,
		TotalMarks:      req.TotalMarks,
		StartTime:       req.StartTime,
	}
	quiz, err := h.quizService.CreateQuiz(quiz)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz))
}

// ListQuizzes возвращает все квизы с состоянием замка
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	items, err := h.quizService.ListQuizzes()
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	list := make([]*dto.QuizResponse, len(items))
	for i := range items {
		list[i] = dto.NewQuizResponse(&items[i].Quiz)
	}
	c.JSON(http.StatusOK, list)
}

// ListCategories возвращает уникальные категории квизов
func (h *QuizHandler) ListCategories(c *gin.Context) {
	categories, err := h.quizService.ListCategories()
	if err != nil {
		helper.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetQuiz возвращает квиз с вопросами (включая ответы, для координатора)
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	quiz, err := h.quizService.GetQuizWithQuestions(quizID)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	resp := dto.NewQuizResponse(quiz)
	resp.Questions = make([]dto.QuestionResponse, len(quiz.Questions))
	for i := range quiz.Questions {
		resp.Questions[i] = dto.NewQuestionResponseForCoordinator(&quiz.Questions[i])
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateQuizRequest представляет запрос на изменение квиза
type UpdateQuizRequest struct {
	Title           string     `json:"title" binding:"required,min=3,max=100"`
	Category        string     `json:"category" binding:"omitempty,max=100"`
	DurationMinutes int        `json:"duration_minutes" binding:"required,min=1,max=480"`
	TotalMarks      int        `json:"total_marks" binding:"omitempty,min=0"`
	StartTime       *time.Time `json:"start_time"`
}

// UpdateQuiz обрабатывает изменение квиза
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.GetQuizByID(quizID)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	quiz.Title = req.Title
	quiz.Category = req.Category
	quiz.DurationMinutes = req.DurationMinutes
	quiz.TotalMarks = req.TotalMarks
	quiz.StartTime = req.StartTime

	if err := h.quizService.UpdateQuiz(quiz); err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz))
}

// ScheduleQuizRequest представляет запрос на назначение времени открытия
type ScheduleQuizRequest struct {
	StartTime *time.Time `json:"start_time"`
}

// ScheduleQuiz назначает или снимает время открытия квиза
func (h *QuizHandler) ScheduleQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req ScheduleQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.SetStartTime(quizID, req.StartTime)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz))
}

// DeleteQuiz удаляет квиз вместе с вопросами
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	if err := h.quizService.DeleteQuiz(quizID); err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted"})
}

// QuestionRequest представляет вопрос в запросах создания/изменения
type QuestionRequest struct {
	QuestionType  string `json:"question_type" binding:"omitempty,oneof=MCQ CODE"`
	Text          string `json:"text" binding:"required,min=3"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"correct_option"`
	TestInput     string `json:"test_input"`
	TestOutput    string `json:"test_output"`
	Marks         int    `json:"marks" binding:"omitempty,min=1"`
}

func (r *QuestionRequest) toEntity() entity.Question {
	questionType := r.QuestionType
	if questionType == "" {
		questionType = entity.QuestionTypeMCQ
	}
	marks := r.Marks
	if marks == 0 {
		marks = 1
	}
	return entity.Question{
		QuestionType:  questionType,
		Text:          r.Text,
		OptionA:       r.OptionA,
		OptionB:       r.OptionB,
		OptionC:       r.OptionC,
		OptionD:       r.OptionD,
		CorrectOption: r.CorrectOption,
		TestInput:     r.TestInput,
		TestOutput:    r.TestOutput,
		Marks:         marks,
	}
}

// AddQuestion добавляет один вопрос к квизу
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question := req.toEntity()
	created, err := h.quizService.AddQuestion(quizID, &question)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuestionResponseForCoordinator(created))
}

// AddQuestionsRequest представляет пакетный импорт вопросов
type AddQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// AddQuestions импортирует несколько вопросов одной транзакцией
func (h *QuizHandler) AddQuestions(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions := make([]entity.Question, len(req.Questions))
	for i := range req.Questions {
		questions[i] = req.Questions[i].toEntity()
	}

	if err := h.quizService.AddQuestions(quizID, questions); err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Questions added", "count": len(questions)})
}

// UpdateQuestion обрабатывает изменение вопроса
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.quizService.GetQuestionByID(questionID)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	question := req.toEntity()
	question.ID = questionID
	question.QuizID = existing.QuizID

	if err := h.quizService.UpdateQuestion(&question); err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponseForCoordinator(&question))
}

// DeleteQuestion удаляет вопрос
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.quizService.DeleteQuestion(questionID); err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted"})
}

// BulkDeleteQuestionsRequest представляет массовое удаление вопросов
type BulkDeleteQuestionsRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// DeleteQuestions удаляет несколько вопросов за один запрос
func (h *QuizHandler) DeleteQuestions(c *gin.Context) {
	var req BulkDeleteQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := h.quizService.DeleteQuestions(req.IDs)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Questions deleted", "deleted": deleted})
}
