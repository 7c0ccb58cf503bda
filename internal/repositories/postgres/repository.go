package postgres

import (
	"github.com/kwoncho1001/Jomath/internal/repositories"
	"gorm.io/gorm"
)

type postgresRepository struct {
	question    repositories.QuestionRepository
	transaction repositories.TransactionRepository
	mastery     repositories.MasteryRepository
	settings    repositories.SettingsRepository
}

// NewRepository wires every PostgreSQL store over one gorm connection.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &postgresRepository{
		question:    NewQuestionPostgreSQL(db),
		transaction: NewTransactionPostgreSQL(db),
		mastery:     NewMasteryPostgreSQL(db),
		settings:    NewSettingsPostgreSQL(db),
	}
}

func (r *postgresRepository) Question() repositories.QuestionRepository {
	return r.question
}

func (r *postgresRepository) Transaction() repositories.TransactionRepository {
	return r.transaction
}

func (r *postgresRepository) Mastery() repositories.MasteryRepository {
	return r.mastery
}

func (r *postgresRepository) Settings() repositories.SettingsRepository {
	return r.settings
}
