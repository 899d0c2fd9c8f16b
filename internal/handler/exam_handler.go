package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/handler/dto"
	"github.com/yourusername/exam-api/internal/handler/helper"
	"github.com/yourusername/exam-api/internal/service"
)

// ExamHandler обрабатывает прохождение экзамена студентом:
// вход, сохранение ответов, запуск кода, отправка
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler создает новый обработчик экзаменов
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// StartAttempt открывает экзамен: создает попытку или возвращает
// существующую с сохранённым прогрессом
func (h *ExamHandler) StartAttempt(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	quizID := c.MustGet("quizID").(uint)

	session, err := h.examService.StartOrResumeAttempt(userID, quizID)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewExamSessionResponse(session))
}

// SaveAnswerRequest представляет сохранение ответа на вопрос
type SaveAnswerRequest struct {
	QuestionID     uint   `json:"question_id" binding:"required"`
	SelectedOption string `json:"selected_option" binding:"required"`
	IsFlagged      bool   `json:"is_flagged"`
}

// SaveAnswer сохраняет ответ на вопрос (повторное сохранение перезаписывает)
func (h *ExamHandler) SaveAnswer(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	attemptID := c.MustGet("attemptID").(uint)

	var req SaveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.examService.SaveAnswer(userID, attemptID, req.QuestionID, req.SelectedOption, req.IsFlagged)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer saved"})
}

// RunCodeRequest представляет запуск решения на проверку
type RunCodeRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Language   string `json:"language" binding:"omitempty,max=40"`
	Code       string `json:"code" binding:"required,max=65536"`
}

// RunCode исполняет решение студента и сравнивает вывод с эталоном
func (h *ExamHandler) RunCode(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	attemptID := c.MustGet("attemptID").(uint)

	var req RunCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	output, passed, err := h.examService.RunCode(c.Request.Context(), userID, attemptID, req.QuestionID, req.Language, req.Code)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"output": output, "passed": passed})
}

// SubmitAttempt завершает попытку и возвращает итоговый счёт.
// Повторная отправка отвечает 409 с уже зафиксированным результатом.
func (h *ExamHandler) SubmitAttempt(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	attemptID := c.MustGet("attemptID").(uint)

	attempt, err := h.examService.SubmitAttempt(userID, attemptID)
	if err != nil {
		if attempt != nil {
			// Попытка уже была завершена: отдаем существующий результат
			c.JSON(http.StatusConflict, gin.H{
				"error":      err.Error(),
				"error_type": "attempt_finished",
				"attempt":    dto.NewAttemptResponse(attempt),
			})
			return
		}
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt))
}

// GetAttempt возвращает попытку текущего пользователя
func (h *ExamHandler) GetAttempt(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	attemptID := c.MustGet("attemptID").(uint)

	attempt, err := h.examService.GetAttemptForUser(userID, attemptID)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt))
}
