package store

import (
	"context"

	"gorm.io/gorm"

	"yamdb/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translateError(s.db.WithContext(ctx).Create(u).Error, "user")
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translateError(err, "user")
	}
	return &u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translateError(err, "user")
	}
	return &u, nil
}

// UserByEmailAndUsername matches both fields exactly.
func (s *Store) UserByEmailAndUsername(ctx context.Context, email, username string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND username = ?", email, username).
		First(&u).Error
	if err != nil {
		return nil, translateError(err, "user")
	}
	return &u, nil
}

// EmailTaken reports whether a user other than exceptID owns email.
func (s *Store) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return s.userExists(ctx, "email = ?", email, exceptID)
}

// UsernameTaken reports whether a user other than exceptID owns username.
func (s *Store) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	return s.userExists(ctx, "username = ?", username, exceptID)
}

func (s *Store) userExists(ctx context.Context, cond string, value string, exceptID uint) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.User{}).Where(cond, value)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translateError(err, "user")
	}
	return count > 0, nil
}

// ListUsers filters by a case-insensitive username substring.
func (s *Store) ListUsers(ctx context.Context, search string, page Page) ([]models.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		q = q.Where("LOWER(username) LIKE ? ESCAPE '\\'", contains(search))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "users")
	}

	var users []models.User
	if err := page.apply(q.Order("username ASC")).Find(&users).Error; err != nil {
		return nil, 0, translateError(err, "users")
	}
	return users, total, nil
}

// UpdateUser applies fields and returns the reloaded row.
func (s *Store) UpdateUser(ctx context.Context, id uint, fields map[string]any) (*models.User, error) {
	if len(fields) > 0 {
		res := s.db.WithContext(ctx).Model(&models.User{ID: id}).Updates(fields)
		if res.Error != nil {
			return nil, translateError(res.Error, "user")
		}
	}
	return s.UserByID(ctx, id)
}

// DeleteUser removes the user. Reviews and comments go with it.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return translateError(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return translateError(gormNotFound, "user")
	}
	return nil
}

// SetConfirmationCode replaces any pending code.
func (s *Store) SetConfirmationCode(ctx context.Context, id uint, code string) error {
	res := s.db.WithContext(ctx).Model(&models.User{ID: id}).Update("confirmation_code", code)
	return translateError(res.Error, "user")
}

// ConfirmUser marks the user confirmed and consumes the pending code.
func (s *Store) ConfirmUser(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.User{ID: id}).Updates(map[string]any{
		"is_confirmed":      true,
		"confirmation_code": nil,
	})
	return translateError(res.Error, "user")
}
