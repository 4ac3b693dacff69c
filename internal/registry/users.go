package registry

import (
	"context"
	"errors"
	"time"

	"github.com/DevangRnd/fota-backend/internal/fota"
	"github.com/DevangRnd/fota-backend/internal/models"
	"gorm.io/gorm"
)

// CreateUser stores an operator account. passwordHash must already be hashed.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := &models.User{Username: username, Password: passwordHash}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return nil, &fota.ConflictError{Entity: "user", ID: username}
		}
		return nil, err
	}
	return user, nil
}

// UserByUsername loads an operator account.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &fota.NotFoundError{Entity: "user", ID: username}
		}
		return nil, err
	}
	return &user, nil
}

// RecordLogin stamps the last login time.
func (s *Store) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("last_login", at).Error
}
