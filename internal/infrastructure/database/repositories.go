package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/furukawa1020/furukawalabo1/internal/adapter/repository"
	domainRepo "github.com/furukawa1020/furukawalabo1/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Donation domainRepo.DonationRepository
	Question domainRepo.QuestionRepository
	Work     domainRepo.WorkRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Donation: repository.NewDonationRepository(db, logger),
		Question: repository.NewQuestionRepository(db, logger),
		Work:     repository.NewWorkRepository(db, logger),
	}
}
