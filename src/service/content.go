package service

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/adventofai/backend/src/domain"
)

// ContentService reads challenge markdown named dayN.md from a directory tree
type ContentService struct {
	fsys fs.FS
}

func NewContentService(fsys fs.FS) *ContentService {
	return &ContentService{fsys: fsys}
}

func (s *ContentService) Load(day int) (string, error) {
	raw, err := fs.ReadFile(s.fsys, fmt.Sprintf("day%d.md", day))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrContentNotFound
		}
		return "", fmt.Errorf("failed to read content for day %d: %w", day, err)
	}
	return string(raw), nil
}
