// Validates a content YAML file without touching the database.
//
// Usage: go run scripts/check_content.go configs/content.example.yaml

package main

import (
	"log"
	"os"

	"viksit_backend/internal/service"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <content.yaml>", os.Args[0])
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("cannot open content file: %v", err)
	}
	defer f.Close()

	content, err := service.NewContentService(nil, nil, nil, nil).ParseContent(f)
	if err != nil {
		log.Fatalf("invalid content: %v", err)
	}

	questions := 0
	for _, m := range content.Mocks {
		questions += len(m.Questions)
	}
	log.Printf("OK: %d authors, %d mocks (%d questions), %d study materials",
		len(content.Authors), len(content.Mocks), questions, len(content.StudyMaterials))
}
