package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	"github.com/yourusername/exam-api/internal/handler/helper"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/internal/service"
	"github.com/yourusername/exam-api/internal/websocket"
)

// ResultHandler обрабатывает результаты, победителей, объявления
// и выдачу сертификатов
type ResultHandler struct {
	resultService      *service.ResultService
	certificateService *service.CertificateService
	hub                *websocket.Hub
}

// NewResultHandler создает новый обработчик результатов
func NewResultHandler(
	resultService *service.ResultService,
	certificateService *service.CertificateService,
	hub *websocket.Hub,
) *ResultHandler {
	return &ResultHandler{
		resultService:      resultService,
		certificateService: certificateService,
		hub:                hub,
	}
}

// ListResults возвращает все попытки (дашборд координатора)
func (h *ResultHandler) ListResults(c *gin.Context) {
	items, err := h.resultService.ListAllResults()
	if err != nil {
		helper.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListMyResults возвращает попытки текущего студента
func (h *ResultHandler) ListMyResults(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	items, err := h.resultService.ListUserResults(userID)
	if err != nil {
		helper.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetAttemptResult возвращает развернутый разбор попытки.
// Студент видит только свои попытки, координатор — любые.
func (h *ResultHandler) GetAttemptResult(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	role := c.MustGet("role").(string)
	attemptID := c.MustGet("attemptID").(uint)

	result, err := h.resultService.GetAttemptResult(attemptID)
	if err != nil {
		helper.RespondError(c, err)
		return
	}
	if role == entity.RoleStudent && result.Attempt.UserID != userID {
		helper.RespondError(c, fmt.Errorf("%w: attempt #%d belongs to another user", apperrors.ErrForbidden, attemptID))
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListWinners возвращает завершённые попытки со счётом не ниже порога
func (h *ResultHandler) ListWinners(c *gin.Context) {
	minScore, err := strconv.Atoi(c.DefaultQuery("min_score", "0"))
	if err != nil || minScore < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_score"})
		return
	}

	winners, err := h.resultService.ListWinners(minScore)
	if err != nil {
		helper.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, winners)
}

// GetDashboardStats возвращает сводные цифры для дашборда
func (h *ResultHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.resultService.GetDashboardStats()
	if err != nil {
		helper.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportResults выгружает все результаты в CSV или XLSX
func (h *ResultHandler) ExportResults(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	items, err := h.resultService.ListAllResults()
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	filename := fmt.Sprintf("exam_results_%s", time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, items, filename)
	default:
		h.exportCSV(c, items, filename)
	}
}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func (h *ResultHandler) exportCSV(c *gin.Context, items []repository.AttemptListItem, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Студент", "Email", "Экзамен", "Счёт", "Статус", "Сертификат"})

	for _, item := range items {
		certificate := "Нет"
		if item.CertificateApproved {
			certificate = "Да"
		}
		writer.Write([]string{
			sanitizeForExcel(item.FullName),
			sanitizeForExcel(item.Email),
			sanitizeForExcel(item.Title),
			strconv.Itoa(item.TotalScore),
			item.Status,
			certificate,
		})
	}
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *ResultHandler) exportXLSX(c *gin.Context, items []repository.AttemptListItem, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[ResultHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Студент", "Email", "Экзамен", "Счёт", "Статус", "Сертификат"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[ResultHandler] Ошибка записи заголовков: %v", err)
	}

	for i, item := range items {
		rowNum := i + 2
		cell := fmt.Sprintf("A%d", rowNum)

		certificate := "Нет"
		if item.CertificateApproved {
			certificate = "Да"
		}

		row := []interface{}{
			sanitizeForExcel(item.FullName),
			sanitizeForExcel(item.Email),
			sanitizeForExcel(item.Title),
			item.TotalScore,
			item.Status,
			certificate,
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[ResultHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[ResultHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ResultHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// GetAnnouncement возвращает текущее объявление
func (h *ResultHandler) GetAnnouncement(c *gin.Context) {
	announcement, err := h.resultService.GetAnnouncement()
	if err != nil {
		helper.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcement)
}

// AnnouncementRequest представляет публикацию объявления
type AnnouncementRequest struct {
	Message string `json:"message" binding:"required,min=1,max=500"`
}

// PublishAnnouncement публикует объявление и рассылает его по WebSocket
func (h *ResultHandler) PublishAnnouncement(c *gin.Context) {
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resultService.PublishAnnouncement(req.Message); err != nil {
		helper.RespondError(c, err)
		return
	}

	h.hub.Broadcast(websocket.Event{
		Type:    websocket.EventAnnouncement,
		Payload: gin.H{"message": req.Message},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Announcement published"})
}

// ClearAnnouncement снимает объявление
func (h *ResultHandler) ClearAnnouncement(c *gin.Context) {
	if err := h.resultService.ClearAnnouncement(); err != nil {
		helper.RespondError(c, err)
		return
	}

	h.hub.Broadcast(websocket.Event{Type: websocket.EventAnnouncementGone})

	c.JSON(http.StatusOK, gin.H{"message": "Announcement cleared"})
}

// ApproveCertificate одобряет выдачу сертификата по попытке
func (h *ResultHandler) ApproveCertificate(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)

	attempt, err := h.certificateService.Approve(c.Request.Context(), attemptID)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	h.hub.Broadcast(websocket.Event{
		Type:    websocket.EventResultsAvailable,
		Payload: gin.H{"attempt_id": attempt.ID},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Certificate approved", "attempt_id": attempt.ID})
}

// RevokeCertificate снимает одобрение сертификата
func (h *ResultHandler) RevokeCertificate(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)

	attempt, err := h.certificateService.Revoke(attemptID)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Certificate revoked", "attempt_id": attempt.ID})
}

// GetCertificate возвращает сертификат текущего студента по попытке.
// Доступен только для завершённой и одобренной попытки.
func (h *ResultHandler) GetCertificate(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	attemptID := c.MustGet("attemptID").(uint)

	certificate, err := h.certificateService.GetCertificate(userID, attemptID)
	if err != nil {
		helper.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, certificate)
}
