package service

import (
	"context"
	"errors"

	"viksit_backend/internal/model"
	"viksit_backend/internal/repository"
	"viksit_backend/internal/util"

	"gorm.io/gorm"
)

type StudyMaterialService struct {
	MaterialRepo *repository.StudyMaterialRepository
	AuthorRepo   *repository.AuthorRepository
	Storage      *StorageService
}

func NewStudyMaterialService(materialRepo *repository.StudyMaterialRepository, authorRepo *repository.AuthorRepository, storage *StorageService) *StudyMaterialService {
	return &StudyMaterialService{
		MaterialRepo: materialRepo,
		AuthorRepo:   authorRepo,
		Storage:      storage,
	}
}

type AuthorView struct {
	model.Author
	ImageURL string
}

type ItemView struct {
	model.StudyMaterialItem
	FileURL string
}

type MaterialDetail struct {
	Material *model.StudyMaterial
	Items    []ItemView
}

// ListMaterials returns materials newest first; an empty course lists all.
func (s *StudyMaterialService) ListMaterials(course string) ([]model.StudyMaterial, error) {
	return s.MaterialRepo.List(course)
}

func (s *StudyMaterialService) GetMaterial(ctx context.Context, id uint) (*MaterialDetail, error) {
	material, err := s.MaterialRepo.FindWithItems(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundf("study material %d", id)
		}
		return nil, err
	}

	detail := &MaterialDetail{Material: material, Items: make([]ItemView, 0, len(material.Items))}
	for _, item := range material.Items {
		detail.Items = append(detail.Items, ItemView{
			StudyMaterialItem: item,
			FileURL:           s.Storage.URL(ctx, item.FileKey),
		})
	}
	return detail, nil
}

func (s *StudyMaterialService) ListAuthors(ctx context.Context) ([]AuthorView, error) {
	authors, err := s.AuthorRepo.List()
	if err != nil {
		return nil, err
	}
	views := make([]AuthorView, 0, len(authors))
	for _, a := range authors {
		views = append(views, AuthorView{Author: a, ImageURL: s.Storage.URL(ctx, a.ImageKey)})
	}
	return views, nil
}
