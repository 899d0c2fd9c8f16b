package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// Certificate — данные для выдачи сертификата студенту
type Certificate struct {
	Serial     string    `json:"serial"`
	FullName   string    `json:"full_name"`
	QuizTitle  string    `json:"quiz_title"`
	TotalScore int       `json:"total_score"`
	IssuedAt   time.Time `json:"issued_at"`
}

// CertificateService выдает сертификаты по завершённым попыткам.
// Сертификат доступен только при двух условиях одновременно:
// попытка завершена И координатор явно одобрил выдачу.
type CertificateService struct {
	attemptRepo repository.AttemptRepository
	quizRepo    repository.QuizRepository
	userRepo    repository.UserRepository
	email       EmailService
}

// NewCertificateService создает новый сервис сертификатов
func NewCertificateService(
	attemptRepo repository.AttemptRepository,
	quizRepo repository.QuizRepository,
	userRepo repository.UserRepository,
	email EmailService,
) *CertificateService {
	return &CertificateService{
		attemptRepo: attemptRepo,
		quizRepo:    quizRepo,
		userRepo:    userRepo,
		email:       email,
	}
}

// IsEligible сообщает, доступен ли сертификат по попытке
func (s *CertificateService) IsEligible(attempt *entity.Attempt) bool {
	return attempt.Status == entity.AttemptStatusCompleted && attempt.CertificateApproved
}

// Approve одобряет выдачу сертификата по попытке и уведомляет студента
// по email. Одобрить можно только завершённую попытку.
func (s *CertificateService) Approve(ctx context.Context, attemptID uint) (*entity.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != entity.AttemptStatusCompleted {
		return nil, fmt.Errorf("%w: attempt #%d is not completed", apperrors.ErrValidation, attemptID)
	}

	attempt, err = s.attemptRepo.SetCertificateApproved(attemptID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to approve certificate for attempt #%d: %w", attemptID, err)
	}

	user, err := s.userRepo.GetByID(attempt.UserID)
	if err != nil {
		log.Printf("[CertificateService] Не удалось загрузить студента попытки #%d: %v", attemptID, err)
		return attempt, nil
	}
	quiz, err := s.quizRepo.GetByID(attempt.QuizID)
	if err != nil {
		log.Printf("[CertificateService] Не удалось загрузить квиз попытки #%d: %v", attemptID, err)
		return attempt, nil
	}

	serial := uuid.NewString()
	if err := s.email.SendCertificateApproved(ctx, user.Email, user.FullName, quiz.Title, serial); err != nil {
		// Письмо не критично: одобрение уже зафиксировано в БД
		log.Printf("[CertificateService] Не удалось отправить письмо для попытки #%d: %v", attemptID, err)
	}

	log.Printf("[CertificateService] Сертификат по попытке #%d одобрен", attemptID)
	return attempt, nil
}

// Revoke снимает одобрение сертификата
func (s *CertificateService) Revoke(attemptID uint) (*entity.Attempt, error) {
	return s.attemptRepo.SetCertificateApproved(attemptID, false)
}

// GetCertificate возвращает сертификат по попытке, проверяя владельца
// и оба условия выдачи. Незавершённая или неодобренная попытка
// возвращает ErrForbidden.
func (s *CertificateService) GetCertificate(userID, attemptID uint) (*Certificate, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("%w: attempt #%d belongs to another user", apperrors.ErrForbidden, attemptID)
	}
	if !s.IsEligible(attempt) {
		return nil, fmt.Errorf("%w: certificate for attempt #%d is not available", apperrors.ErrForbidden, attemptID)
	}

	user, err := s.userRepo.GetByID(attempt.UserID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.quizRepo.GetByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	return &Certificate{
		Serial:     uuid.NewString(),
		FullName:   user.FullName,
		QuizTitle:  quiz.Title,
		TotalScore: attempt.TotalScore,
		IssuedAt:   time.Now(),
	}, nil
}
