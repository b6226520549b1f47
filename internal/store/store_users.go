package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"fleet-backend/internal/model"
)

func (s *gormStore) CreateUser(ctx context.Context, u *model.User, actor Actor) error {
	return s.createAudited(ctx, u, actor, "user", u.ID, u.Username)
}

func (s *gormStore) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *gormStore) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *gormStore) ListUsers(ctx context.Context, q string, page, size int) ([]model.User, int64, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := s.db.WithContext(ctx).Model(&model.User{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := tx.Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *gormStore) DeleteUser(ctx context.Context, id string, actor Actor) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.User{ID: id}).Error; err != nil {
			return err
		}
		return s.auditTx(tx, actor, "delete", "user", id, "")
	})
}

// TouchUserLogin records a successful login using database time, so concurrent
// logins cannot clobber each other's counters.
func (s *gormStore) TouchUserLogin(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
		}).Error
}
