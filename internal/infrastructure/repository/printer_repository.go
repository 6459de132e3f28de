package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/receipt-print-api/internal/domain/entity"
	"github.com/sangkips/receipt-print-api/internal/domain/repository"
	"gorm.io/gorm"
)

type printerRepository struct {
	db *gorm.DB
}

// NewPrinterRepository creates a new printer repository
func NewPrinterRepository(db *gorm.DB) repository.PrinterRepository {
	return &printerRepository{db: db}
}

// List retrieves all printers, oldest first
func (r *printerRepository) List(ctx context.Context) ([]entity.PrinterConfig, error) {
	var printers []entity.PrinterConfig
	err := r.db.WithContext(ctx).Scopes(Oldest).Find(&printers).Error
	return printers, err
}

// SaveAll upserts printers and deletes rows that are no longer present
func (r *printerRepository) SaveAll(ctx context.Context, printers []entity.PrinterConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keep := make([]uuid.UUID, 0, len(printers))
		for i := range printers {
			if err := tx.Save(&printers[i]).Error; err != nil {
				return err
			}
			keep = append(keep, printers[i].ID)
		}
		q := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if len(keep) > 0 {
			q = q.Where("id NOT IN ?", keep)
		}
		return q.Delete(&entity.PrinterConfig{}).Error
	})
}
