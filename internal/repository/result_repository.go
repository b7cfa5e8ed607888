package repository

import (
	"viksit_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Create(result *model.MockResult) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(result).Error
	})
}

func (r *ResultRepository) ListByUser(userID uint) ([]model.MockResult, error) {
	var results []model.MockResult
	err := r.DB.Preload("Mock").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&results).Error
	return results, err
}

func (r *ResultRepository) CountByUserAndMock(userID, mockID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.MockResult{}).
		Where("user_id = ? AND mock_id = ?", userID, mockID).
		Count(&count).Error
	return count, err
}
