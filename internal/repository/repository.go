package repository

import (
	"context"
	"database/sql"

	"github.com/NNikoGG/water-quality-monitoring/internal/models"
	"github.com/NNikoGG/water-quality-monitoring/internal/repository/db"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// ReadingRepo is the sensor reading store. Latest returns the most recent n
// readings ordered ascending by timestamp; All streams the full collection
// for bulk export.
type ReadingRepo interface {
	Insert(ctx context.Context, r models.Reading) error
	Latest(ctx context.Context, n int) ([]models.Reading, error)
	All(ctx context.Context) ([]models.Reading, error)
}

type Repository struct {
	Readings ReadingRepo
	Auth     Authorization
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		Readings: NewReadingSQLite(sqlDB),
		Auth:     NewUserRepository(sqlDB),
	}
}

// InitDB opens the SQLite file and applies the schema.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
