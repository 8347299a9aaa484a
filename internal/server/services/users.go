// Package services contains the application services sitting between the
// transport layers and the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/dbx"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/dmitrijs2005/chatrelay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/chatrelay/internal/server/repositories/users"
	"github.com/google/uuid"
)

// UserService implements the user directory: username registration with a
// uniqueness guarantee, listing, and the exists check consumed at connect
// time.
type UserService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, rm: rm}
}

// Register creates a username record. The duplicate check and the insert run
// in one transaction; the unique index on username backs the check up under
// concurrent registrations.
func (s *UserService) Register(ctx context.Context, username string) (*models.User, error) {

	if username == "" {
		return nil, common.ErrorValidation
	}

	var created *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := users.NewPostgresRepository(tx)

		_, err := repo.GetByUsername(ctx, username)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		created, err = repo.Create(ctx, &models.User{ID: uuid.NewString(), Username: username})
		return err
	})

	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return created, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	result, err := s.rm.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return result, nil
}

// Exists reports whether a username record is present in the directory.
func (s *UserService) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.rm.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, common.ErrorInternal
	}
	return true, nil
}
