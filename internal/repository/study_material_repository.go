package repository

import (
	"viksit_backend/internal/model"

	"gorm.io/gorm"
)

type StudyMaterialRepository struct {
	DB *gorm.DB
}

func NewStudyMaterialRepository(db *gorm.DB) *StudyMaterialRepository {
	return &StudyMaterialRepository{DB: db}
}

func (r *StudyMaterialRepository) List(course string) ([]model.StudyMaterial, error) {
	var materials []model.StudyMaterial
	q := r.DB.Order("id DESC")
	if course != "" {
		q = q.Where("course = ?", course)
	}
	err := q.Find(&materials).Error
	return materials, err
}

func (r *StudyMaterialRepository) FindWithItems(id uint) (*model.StudyMaterial, error) {
	var material model.StudyMaterial
	err := r.DB.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("study_material_items.position ASC, study_material_items.id ASC")
		}).
		First(&material, id).Error
	return &material, err
}

func (r *StudyMaterialRepository) CreateWithItems(material *model.StudyMaterial) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(material).Error
	})
}

type AuthorRepository struct {
	DB *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) *AuthorRepository {
	return &AuthorRepository{DB: db}
}

func (r *AuthorRepository) List() ([]model.Author, error) {
	var authors []model.Author
	err := r.DB.Order("id ASC").Find(&authors).Error
	return authors, err
}

func (r *AuthorRepository) Create(author *model.Author) error {
	return r.DB.Create(author).Error
}
