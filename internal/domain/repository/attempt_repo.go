package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// AttemptListItem — строка сводного списка попыток для дашбордов:
// попытка, обогащённая именем студента и названием квиза.
type AttemptListItem struct {
	entity.Attempt
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Title    string `json:"title"`
}

// AttemptRepository определяет методы для работы с попытками.
// Инвариант "не более одной попытки на (user, quiz)" обеспечивается
// уникальным индексом в БД, а не проверкой перед вставкой.
type AttemptRepository interface {
	// GetOrCreate возвращает попытку для пары (userID, quizID), создавая её
	// со статусом In-Progress при отсутствии. Гонка двух одновременных
	// созданий разрешается через unique violation: проигравшая вставка
	// перечитывает существующую запись. Вторым значением возвращает true,
	// если попытка была создана этим вызовом.
	GetOrCreate(userID, quizID uint) (*entity.Attempt, bool, error)
	GetByID(id uint) (*entity.Attempt, error)
	GetByUserAndQuiz(userID, quizID uint) (*entity.Attempt, error)
	// FinalizeScore записывает итоговый счёт и переводит статус в Completed.
	// Обновление условное (только из In-Progress); возвращает false, если
	// попытка уже была завершена и запись не изменилась.
	FinalizeScore(attemptID uint, totalScore int) (bool, error)
	SetCertificateApproved(attemptID uint, approved bool) (*entity.Attempt, error)
	// ListWithDetails возвращает попытки с именем студента и названием квиза,
	// отсортированные по убыванию счёта.
	ListWithDetails() ([]AttemptListItem, error)
	ListByUser(userID uint) ([]AttemptListItem, error)
	// CountDistinctUsers возвращает число студентов, сдававших хотя бы один экзамен
	CountDistinctUsers() (int64, error)
}
