package media

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/frahmantamala/civic-complaints/internal"
)

// Kind distinguishes the two upload categories the API accepts.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

const DefaultMaxUploadBytes = 10 * 1024 * 1024

var allowedContentTypes = map[Kind][]string{
	KindImage: {"image/jpeg", "image/jpg", "image/png", "image/gif"},
	KindAudio: {"audio/webm", "audio/mpeg"},
}

var extensionContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webm": "audio/webm",
	".mp3":  "audio/mpeg",
	".mpeg": "audio/mpeg",
}

// Policy validates uploaded files against the allowed types and size limit.
type Policy struct {
	MaxBytes int64
}

func NewPolicy(maxBytes int64) Policy {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return Policy{MaxBytes: maxBytes}
}

// Check validates one multipart file against the policy for its kind.
func (p Policy) Check(fh *multipart.FileHeader, kind Kind) *internal.AppError {
	if fh.Size > p.MaxBytes {
		return internal.NewMediaError(
			fmt.Sprintf("File too large. Maximum size is %d MB.", p.MaxBytes/(1024*1024)),
			internal.ErrCodeFileTooLarge,
		)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = extensionContentTypes[strings.ToLower(filepath.Ext(fh.Filename))]
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	for _, allowed := range allowedContentTypes[kind] {
		if contentType == allowed {
			return nil
		}
	}

	return internal.NewMediaError(
		"Invalid file type. Only images and audio are allowed.",
		internal.ErrCodeInvalidFileType,
	)
}
