package validation

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/templui/calldesk/internal/model"
)

var ErrFileTooLarge = errors.New("file too large")

// ValidateAttachment checks the upload limit. Any file type is accepted.
func ValidateAttachment(header *multipart.FileHeader) error {
	if header == nil {
		return errors.New("no file uploaded")
	}

	if header.Size > model.MaxAttachmentSize {
		maxMB := model.MaxAttachmentSize / (1 << 20)
		return fmt.Errorf("%w: maximum size is %d MB", ErrFileTooLarge, maxMB)
	}

	return nil
}

// DetectMimeType returns the declared part Content-Type, or sniffs the first
// 512 bytes when the client did not send one. The file is rewound afterwards.
func DetectMimeType(file multipart.File, header *multipart.FileHeader) (string, error) {
	declared := header.Header.Get("Content-Type")
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}

	// http.DetectContentType reads max 512 bytes to determine MIME type
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return "", fmt.Errorf("failed to reset file pointer: %w", err)
	}

	return http.DetectContentType(buffer[:n]), nil
}
