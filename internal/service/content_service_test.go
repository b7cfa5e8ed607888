package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"viksit_backend/internal/config"
	"viksit_backend/internal/model"
	"viksit_backend/internal/repository"
	"viksit_backend/internal/util"

	"gorm.io/gorm"
)

func newContentService(t *testing.T) (*ContentService, *gorm.DB, string) {
	t.Helper()
	db := newTestDB(t)
	root := t.TempDir()
	storage, err := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: filepath.Join(root, "uploads")})
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	svc := NewContentService(
		repository.NewMockRepository(db),
		repository.NewStudyMaterialRepository(db),
		repository.NewAuthorRepository(db),
		storage,
	)
	return svc, db, root
}

const sampleContent = `
authors:
  - name: Dr. Kavya Rao
    education: PhD Agronomy
    image: portrait.png
mocks:
  - title: Math Test
    course: cuet_ug_icar
    difficulty: easy
    time_limit: 30
    questions:
      - text: "2 + 2 = ?"
        options:
          - text: "3"
          - text: "4"
            correct: true
study_materials:
  - title: Soil Science
    course: agri_quota
    items:
      - title: Notes
        body: Soil texture basics
        file: notes.txt
`

func writeFixtures(t *testing.T, dir string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for x := 0; x < 640; x++ {
		img.Set(x, x%480, color.RGBA{R: 200, A: 255})
	}
	f, err := os.Create(filepath.Join(dir, "portrait.png"))
	if err != nil {
		t.Fatalf("create portrait: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode portrait: %v", err)
	}
	f.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("Loam holds water.\n"), 0644); err != nil {
		t.Fatalf("write notes: %v", err)
	}
}

func TestImportContent(t *testing.T) {
	svc, db, root := newContentService(t)
	writeFixtures(t, root)

	file, err := svc.ParseContent(strings.NewReader(sampleContent))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	report, err := svc.Import(context.Background(), file, root)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Authors != 1 || report.Mocks != 1 || report.Questions != 1 || report.StudyMaterials != 1 || report.Files != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	var author model.Author
	if err := db.First(&author).Error; err != nil {
		t.Fatalf("author: %v", err)
	}
	if !strings.HasPrefix(author.ImageKey, "authors/") || !strings.HasSuffix(author.ImageKey, ".webp") {
		t.Fatalf("unexpected image key %q", author.ImageKey)
	}
	if _, err := os.Stat(filepath.Join(root, "uploads", author.ImageKey)); err != nil {
		t.Fatalf("portrait not stored: %v", err)
	}

	var mock model.Mock
	if err := db.Preload("Questions.Options").First(&mock).Error; err != nil {
		t.Fatalf("mock: %v", err)
	}
	if mock.Difficulty != model.DifficultyEasy || mock.TimeLimit != 30 || len(mock.Questions) != 1 {
		t.Fatalf("unexpected mock %+v", mock)
	}
	if c := mock.Questions[0].CorrectOption(); c == nil || c.Text != "4" {
		t.Fatalf("unexpected correct option %+v", c)
	}

	var item model.StudyMaterialItem
	if err := db.First(&item).Error; err != nil {
		t.Fatalf("item: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "uploads", item.FileKey))
	if err != nil || string(data) != "Loam holds water.\n" {
		t.Fatalf("item file not stored: %q %v", data, err)
	}
}

func TestParseContentRejectsBadMocks(t *testing.T) {
	svc, _, _ := newContentService(t)

	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"two correct", `
mocks:
  - title: Broken
    questions:
      - text: q
        options:
          - {text: a, correct: true}
          - {text: b, correct: true}
`, util.ErrInvalidCorrectSet},
		{"no correct", `
mocks:
  - title: Broken
    questions:
      - text: q
        options:
          - {text: a}
          - {text: b}
`, util.ErrInvalidCorrectSet},
		{"single option", `
mocks:
  - title: Broken
    questions:
      - text: q
        options:
          - {text: a, correct: true}
`, util.ErrValidation},
		{"no questions", `
mocks:
  - title: Empty
`, util.ErrValidation},
		{"bad difficulty", `
mocks:
  - title: Broken
    difficulty: brutal
    questions:
      - text: q
        options:
          - {text: a, correct: true}
          - {text: b}
`, util.ErrValidation},
		{"unknown key", `
mocks:
  - title: Typo
    questshuns: []
`, util.ErrValidation},
	}
	for _, c := range cases {
		_, err := svc.ParseContent(strings.NewReader(c.doc))
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, err, c.want)
		}
	}
}

func TestImportRejectsDisallowedItemFile(t *testing.T) {
	svc, db, root := newContentService(t)
	if err := os.WriteFile(filepath.Join(root, "tool.bin"), []byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0, 0, 0}, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	file := &ContentFile{StudyMaterials: []MaterialInput{{
		Title: "Bad",
		Items: []ItemInput{{Title: "binary", File: "tool.bin"}},
	}}}

	if _, err := svc.Import(context.Background(), file, root); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var n int64
	db.Model(&model.StudyMaterial{}).Count(&n)
	if n != 0 {
		t.Fatalf("material should not be stored, found %d", n)
	}
}

func TestCreateMockValidates(t *testing.T) {
	svc, _, _ := newContentService(t)
	mock := &model.Mock{Title: "x", Questions: []model.Question{{
		Text:    "q",
		Options: []model.Option{{Text: "a"}, {Text: "b"}},
	}}}
	if err := svc.CreateMock(mock); !errors.Is(err, util.ErrInvalidCorrectSet) {
		t.Fatalf("expected invalid correct set, got %v", err)
	}
	if mock.ID != 0 {
		t.Fatalf("invalid mock should not be stored")
	}
}
