package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-backend/internal/model"
)

// RecordAudit appends a standalone audit entry.
func (s *gormStore) RecordAudit(ctx context.Context, entry model.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

// ListAudit returns audit entries, newest first, optionally filtered by entity.
func (s *gormStore) ListAudit(ctx context.Context, entity string, page, size int) ([]model.AuditLog, int64, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 50
	}

	tx := s.db.WithContext(ctx).Model(&model.AuditLog{})
	if entity = strings.TrimSpace(entity); entity != "" {
		tx = tx.Where("entity = ?", entity)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.AuditLog
	if err := tx.Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// auditTx writes an audit row inside an open transaction.
func (s *gormStore) auditTx(tx *gorm.DB, actor Actor, action, entity, entityID, detail string) error {
	entry := model.AuditLog{
		ID:            uuid.NewString(),
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		Action:        action,
		Entity:        entity,
		EntityID:      entityID,
		Detail:        detail,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// createAudited inserts a record and its audit entry in one transaction.
func (s *gormStore) createAudited(ctx context.Context, record any, actor Actor, entity, entityID, detail string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", entity, err)
		}
		return s.auditTx(tx, actor, "create", entity, entityID, detail)
	})
}

// saveAudited updates a record and its audit entry in one transaction.
func (s *gormStore) saveAudited(ctx context.Context, record any, actor Actor, entity, entityID, detail string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(record).Error; err != nil {
			return fmt.Errorf("failed to update %s: %w", entity, err)
		}
		return s.auditTx(tx, actor, "update", entity, entityID, detail)
	})
}

// archiveAudited flips a record's active flag off and records the deletion.
func (s *gormStore) archiveAudited(ctx context.Context, emptyModel any, actor Actor, entity, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(emptyModel).Where("id = ?", id).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to archive %s %s: %w", entity, id, err)
		}
		return s.auditTx(tx, actor, "delete", entity, id, "")
	})
}
