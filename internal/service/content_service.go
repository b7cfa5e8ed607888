package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"viksit_backend/internal/model"
	"viksit_backend/internal/repository"
	"viksit_backend/internal/util"
	"viksit_backend/pkg/logger"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	portraitSize    = 320
	portraitQuality = 82
	minOptions      = 2
)

// ContentFile is the YAML document accepted by the -import flag. File paths
// are relative to the YAML file.
type ContentFile struct {
	Authors        []AuthorInput   `yaml:"authors" validate:"dive"`
	Mocks          []MockInput     `yaml:"mocks" validate:"dive"`
	StudyMaterials []MaterialInput `yaml:"study_materials" validate:"dive"`
}

type AuthorInput struct {
	Name      string `yaml:"name" validate:"required,max=100"`
	Education string `yaml:"education" validate:"max=200"`
	Image     string `yaml:"image"`
}

type MockInput struct {
	Title      string          `yaml:"title" validate:"required,max=200"`
	Course     string          `yaml:"course" validate:"max=50"`
	Difficulty string          `yaml:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	TimeLimit  int             `yaml:"time_limit" validate:"gte=0"`
	Questions  []QuestionInput `yaml:"questions" validate:"required,min=1,dive"`
}

type QuestionInput struct {
	Text    string        `yaml:"text" validate:"required"`
	Options []OptionInput `yaml:"options" validate:"required,dive"`
}

type OptionInput struct {
	Text    string `yaml:"text" validate:"required,max=500"`
	Correct bool   `yaml:"correct"`
}

type MaterialInput struct {
	Title       string      `yaml:"title" validate:"required,max=200"`
	Course      string      `yaml:"course" validate:"max=50"`
	Description string      `yaml:"description"`
	Items       []ItemInput `yaml:"items" validate:"dive"`
}

type ItemInput struct {
	Title string `yaml:"title" validate:"required,max=200"`
	Body  string `yaml:"body"`
	File  string `yaml:"file"`
}

type ImportReport struct {
	Authors        int
	Mocks          int
	Questions      int
	StudyMaterials int
	Files          int
}

type ContentService struct {
	MockRepo     *repository.MockRepository
	MaterialRepo *repository.StudyMaterialRepository
	AuthorRepo   *repository.AuthorRepository
	Storage      *StorageService

	validate *validator.Validate
	newKey   func() (string, error)
}

func NewContentService(mockRepo *repository.MockRepository, materialRepo *repository.StudyMaterialRepository, authorRepo *repository.AuthorRepository, storage *StorageService) *ContentService {
	return &ContentService{
		MockRepo:     mockRepo,
		MaterialRepo: materialRepo,
		AuthorRepo:   authorRepo,
		Storage:      storage,
		validate:     validator.New(),
		newKey:       func() (string, error) { return gonanoid.New() },
	}
}

// ParseContent decodes and validates a content document. Unknown keys are
// rejected so typos do not silently drop data.
func (s *ContentService) ParseContent(r io.Reader) (*ContentFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file ContentFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, util.NewValidationError("yaml", err.Error())
	}
	if err := s.ValidateContent(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *ContentService) ValidateContent(file *ContentFile) error {
	if err := s.validate.Struct(file); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return util.NewValidationError(fe.Namespace(), fmt.Sprintf("failed %q check", fe.Tag()))
		}
		return err
	}
	for i := range file.Mocks {
		if err := ValidateMock(toMock(&file.Mocks[i])); err != nil {
			return fmt.Errorf("mock %q: %w", file.Mocks[i].Title, err)
		}
	}
	return nil
}

// ValidateMock enforces that every question offers at least two options and
// exactly one of them is correct.
func ValidateMock(mock *model.Mock) error {
	if len(mock.Questions) == 0 {
		return util.NewValidationError("questions", "A mock needs at least one question.")
	}
	for i, q := range mock.Questions {
		if len(q.Options) < minOptions {
			return fmt.Errorf("question %d: %w", i+1,
				util.NewValidationError("options", "Each question needs at least two options."))
		}
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("question %d has %d correct options: %w", i+1, correct, util.ErrInvalidCorrectSet)
		}
	}
	return nil
}

func toMock(in *MockInput) *model.Mock {
	mock := &model.Mock{
		Title:      strings.TrimSpace(in.Title),
		Course:     strings.TrimSpace(in.Course),
		Difficulty: model.Difficulty(in.Difficulty),
		TimeLimit:  in.TimeLimit,
	}
	if mock.Difficulty == "" {
		mock.Difficulty = model.DifficultyMedium
	}
	if mock.TimeLimit == 0 {
		mock.TimeLimit = 60
	}
	for qi, q := range in.Questions {
		question := model.Question{Text: q.Text, Position: qi + 1}
		for oi, o := range q.Options {
			question.Options = append(question.Options, model.Option{
				Text:      o.Text,
				IsCorrect: o.Correct,
				Position:  oi + 1,
			})
		}
		mock.Questions = append(mock.Questions, question)
	}
	return mock
}

// CreateMock validates and stores a mock with all of its questions in one
// transaction.
func (s *ContentService) CreateMock(mock *model.Mock) error {
	if err := ValidateMock(mock); err != nil {
		return err
	}
	return s.MockRepo.CreateWithQuestions(mock)
}

// Import writes a parsed document. baseDir resolves relative file paths.
// Mocks are written one transaction each; a failure stops the import and
// reports what was already written.
func (s *ContentService) Import(ctx context.Context, file *ContentFile, baseDir string) (*ImportReport, error) {
	report := &ImportReport{}

	for _, in := range file.Authors {
		author := &model.Author{Name: in.Name, Education: in.Education}
		if in.Image != "" {
			key, err := s.uploadPortrait(ctx, resolvePath(baseDir, in.Image))
			if err != nil {
				return report, fmt.Errorf("author %q: %w", in.Name, err)
			}
			author.ImageKey = key
		}
		if err := s.AuthorRepo.Create(author); err != nil {
			s.discard(ctx, author.ImageKey)
			return report, err
		}
		if author.ImageKey != "" {
			report.Files++
		}
		report.Authors++
	}

	for i := range file.Mocks {
		mock := toMock(&file.Mocks[i])
		if err := s.CreateMock(mock); err != nil {
			return report, fmt.Errorf("mock %q: %w", mock.Title, err)
		}
		report.Mocks++
		report.Questions += len(mock.Questions)
	}

	for _, in := range file.StudyMaterials {
		material := &model.StudyMaterial{Title: in.Title, Course: in.Course, Description: in.Description}
		var uploaded []string
		for pos, item := range in.Items {
			row := model.StudyMaterialItem{Title: item.Title, Body: item.Body, Position: pos + 1}
			if item.File != "" {
				key, err := s.uploadItemFile(ctx, resolvePath(baseDir, item.File))
				if err != nil {
					s.discard(ctx, uploaded...)
					return report, fmt.Errorf("study material %q item %q: %w", in.Title, item.Title, err)
				}
				row.FileKey = key
				uploaded = append(uploaded, key)
			}
			material.Items = append(material.Items, row)
		}
		if err := s.MaterialRepo.CreateWithItems(material); err != nil {
			s.discard(ctx, uploaded...)
			return report, err
		}
		report.Files += len(uploaded)
		report.StudyMaterials++
	}

	logger.Log.Info("Content imported",
		zap.Int("authors", report.Authors),
		zap.Int("mocks", report.Mocks),
		zap.Int("questions", report.Questions),
		zap.Int("studyMaterials", report.StudyMaterials),
		zap.Int("files", report.Files),
	)
	return report, nil
}

// discard removes objects whose database rows were never written.
func (s *ContentService) discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.Storage.Delete(ctx, key); err != nil {
			logger.Log.Warn("Failed to remove orphaned object", zap.String("key", key), zap.Error(err))
		}
	}
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// uploadPortrait crops the image to a square thumbnail and stores it as WebP.
func (s *ContentService) uploadPortrait(ctx context.Context, path string) (string, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", util.NewValidationError("image", err.Error())
	}
	thumb := imaging.Fill(src, portraitSize, portraitSize, imaging.Center, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, thumb, &webp.Options{Quality: portraitQuality}); err != nil {
		return "", err
	}

	id, err := s.newKey()
	if err != nil {
		return "", err
	}
	key := "authors/" + id + ".webp"
	if err := s.Storage.Upload(ctx, key, buf, int64(buf.Len()), "image/webp"); err != nil {
		return "", err
	}
	return key, nil
}

func (s *ContentService) uploadItemFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	mimeType, err := util.ValidateMimeType(f, util.AllowedItemFileTypes)
	if err != nil {
		return "", util.NewValidationError("file", err.Error())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	id, err := s.newKey()
	if err != nil {
		return "", err
	}
	key := "materials/" + id + strings.ToLower(filepath.Ext(path))
	if err := s.Storage.Upload(ctx, key, f, info.Size(), mimeType); err != nil {
		return "", err
	}
	return key, nil
}
