package service

import (
	"fmt"
	"log"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// UserService — административные операции над пользователями
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListStudents возвращает всех студентов
func (s *UserService) ListStudents() ([]entity.User, error) {
	return s.userRepo.ListByRole(entity.RoleStudent)
}

// ListCoordinators возвращает всех координаторов
func (s *UserService) ListCoordinators() ([]entity.User, error) {
	return s.userRepo.ListByRole(entity.RoleCoordinator)
}

// SetBlocked блокирует или разблокирует пользователя.
// Заблокированный пользователь не может войти в систему.
func (s *UserService) SetBlocked(userID uint, blocked bool) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return nil, fmt.Errorf("%w: admin account cannot be blocked", apperrors.ErrForbidden)
	}

	user.IsBlocked = blocked
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user #%d: %w", userID, err)
	}

	log.Printf("[UserService] Пользователь ID=%d: blocked=%t", userID, blocked)
	return user, nil
}

// UpdateSession сохраняет выбранную студентом сессию (поток обучения)
func (s *UserService) UpdateSession(userID uint, session string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.SelectedSession = session
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user #%d: %w", userID, err)
	}
	return user, nil
}

// DeleteUser удаляет пользователя; его попытки и ответы удаляются каскадом
func (s *UserService) DeleteUser(userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return fmt.Errorf("%w: admin account cannot be deleted", apperrors.ErrForbidden)
	}
	return s.userRepo.Delete(userID)
}
