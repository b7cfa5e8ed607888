package repository

import (
	"viksit_backend/internal/model"

	"gorm.io/gorm"
)

type MockRepository struct {
	DB *gorm.DB
}

func NewMockRepository(db *gorm.DB) *MockRepository {
	return &MockRepository{DB: db}
}

// List returns mocks newest first. An empty course lists every mock.
func (r *MockRepository) List(course string) ([]model.Mock, error) {
	var mocks []model.Mock
	q := r.DB.Order("id DESC")
	if course != "" {
		q = q.Where("course = ?", course)
	}
	err := q.Find(&mocks).Error
	return mocks, err
}

// FindWithQuestions loads a mock with its questions and their options in
// display order.
func (r *MockRepository) FindWithQuestions(id uint) (*model.Mock, error) {
	var mock model.Mock
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC, questions.id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.position ASC, options.id ASC")
		}).
		First(&mock, id).Error
	return &mock, err
}

// CreateWithQuestions inserts the mock, its questions and options in one
// transaction.
func (r *MockRepository) CreateWithQuestions(mock *model.Mock) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Create(mock).Error
	})
}
