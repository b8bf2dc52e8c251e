package media

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/google/uuid"
)

// Store persists uploaded files under a single directory that is served
// statically at /uploads. Stored references are forward-slash relative
// paths like "uploads/image-<uuid>.jpg".
type Store struct {
	dir    string
	policy Policy
	logger *slog.Logger
}

func NewStore(dir string, policy Policy, logger *slog.Logger) *Store {
	return &Store{dir: dir, policy: policy, logger: logger}
}

// Dir returns the root directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// SaveImage validates and persists a complaint image.
func (s *Store) SaveImage(fh *multipart.FileHeader) (string, error) {
	return s.save(fh, KindImage, "", "image")
}

// SaveVoiceNote validates and persists an optional voice note.
func (s *Store) SaveVoiceNote(fh *multipart.FileHeader) (string, error) {
	return s.save(fh, KindAudio, "", "voiceNote")
}

// SaveResolutionImage validates and persists a department's resolution photo.
func (s *Store) SaveResolutionImage(fh *multipart.FileHeader) (string, error) {
	return s.save(fh, KindImage, "resolutions", "resolution")
}

func (s *Store) save(fh *multipart.FileHeader, kind Kind, subdir, prefix string) (string, error) {
	if err := s.policy.Check(fh, kind); err != nil {
		return "", err
	}

	targetDir := s.dir
	if subdir != "" {
		targetDir = filepath.Join(s.dir, subdir)
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", internal.NewInternalError("failed to prepare upload directory", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := fmt.Sprintf("%s-%s%s", prefix, uuid.NewString(), ext)
	targetPath := filepath.Join(targetDir, name)

	src, err := fh.Open()
	if err != nil {
		return "", internal.NewInternalError("failed to read upload", err)
	}
	defer src.Close()

	dst, err := os.Create(targetPath)
	if err != nil {
		return "", internal.NewInternalError("failed to store upload", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(targetPath)
		return "", internal.NewInternalError("failed to store upload", err)
	}

	s.logger.Debug("upload stored", "path", targetPath, "size", fh.Size)

	return filepath.ToSlash(targetPath), nil
}
