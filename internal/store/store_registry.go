package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"fleet-backend/internal/model"
)

// Equipment registry: machine types, equipment, sites, suppliers. All writes
// record an audit entry in the same transaction.

func (s *gormStore) ListMachineTypes(ctx context.Context) ([]model.MachineType, error) {
	var types []model.MachineType
	err := s.db.WithContext(ctx).Order("name").Find(&types).Error
	return types, err
}

func (s *gormStore) CreateMachineType(ctx context.Context, mt *model.MachineType, actor Actor) error {
	return s.createAudited(ctx, mt, actor, "machine_type", mt.ID, mt.Name)
}

func (s *gormStore) ListEquipment(ctx context.Context, onlyActive bool) ([]model.Equipment, error) {
	tx := s.db.WithContext(ctx).Preload("MachineType").Preload("Supplier")
	if onlyActive {
		tx = tx.Where("active")
	}
	var equipment []model.Equipment
	err := tx.Order("unit_number").Find(&equipment).Error
	return equipment, err
}

func (s *gormStore) FindEquipmentByID(ctx context.Context, id string) (*model.Equipment, error) {
	var eq model.Equipment
	if err := s.db.WithContext(ctx).Preload("MachineType").Preload("Supplier").
		First(&eq, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

func (s *gormStore) CreateEquipment(ctx context.Context, eq *model.Equipment, actor Actor) error {
	return s.createAudited(ctx, eq, actor, "equipment", eq.ID, eq.UnitNumber)
}

func (s *gormStore) UpdateEquipment(ctx context.Context, eq *model.Equipment, actor Actor) error {
	return s.saveAudited(ctx, eq, actor, "equipment", eq.ID, eq.UnitNumber)
}

// RetireEquipment flags equipment as inactive. History is preserved; identity
// outlives any number of allocation cycles.
func (s *gormStore) RetireEquipment(ctx context.Context, id string, actor Actor) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Equipment{}).Where("id = ?", id).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to retire equipment %s: %w", id, err)
		}
		return s.auditTx(tx, actor, "delete", "equipment", id, "")
	})
}

func (s *gormStore) ListSites(ctx context.Context, onlyActive bool) ([]model.Site, error) {
	tx := s.db.WithContext(ctx)
	if onlyActive {
		tx = tx.Where("active")
	}
	var sites []model.Site
	err := tx.Order("title").Find(&sites).Error
	return sites, err
}

func (s *gormStore) CreateSite(ctx context.Context, site *model.Site, actor Actor) error {
	return s.createAudited(ctx, site, actor, "site", site.ID, site.Title)
}

func (s *gormStore) UpdateSite(ctx context.Context, site *model.Site, actor Actor) error {
	return s.saveAudited(ctx, site, actor, "site", site.ID, site.Title)
}

func (s *gormStore) ArchiveSite(ctx context.Context, id string, actor Actor) error {
	return s.archiveAudited(ctx, &model.Site{}, actor, "site", id)
}

func (s *gormStore) ListSuppliers(ctx context.Context, onlyActive bool) ([]model.Supplier, error) {
	tx := s.db.WithContext(ctx)
	if onlyActive {
		tx = tx.Where("active")
	}
	var suppliers []model.Supplier
	err := tx.Order("name").Find(&suppliers).Error
	return suppliers, err
}

func (s *gormStore) CreateSupplier(ctx context.Context, sup *model.Supplier, actor Actor) error {
	return s.createAudited(ctx, sup, actor, "supplier", sup.ID, sup.Name)
}

func (s *gormStore) UpdateSupplier(ctx context.Context, sup *model.Supplier, actor Actor) error {
	return s.saveAudited(ctx, sup, actor, "supplier", sup.ID, sup.Name)
}

func (s *gormStore) ArchiveSupplier(ctx context.Context, id string, actor Actor) error {
	return s.archiveAudited(ctx, &model.Supplier{}, actor, "supplier", id)
}
