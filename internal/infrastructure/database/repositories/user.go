package repositories

import (
	"context"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/domain/repositories"
	"github.com/mufasadev/donation-ledger/pkg/postgresql"
)

type UserRepositoryImpl struct {
	db postgresql.Client
}

func NewUserRepositoryImpl(db postgresql.Client) repositories.UserRepository {
	return &UserRepositoryImpl{
		db: db,
	}
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(
		ctx,
		"SELECT id, name, email FROM users WHERE id = $1",
		id,
	).Scan(&user.ID, &user.Name, &user.Email)

	return noRows(user, err)
}
