package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
)

var ErrFileTooLarge = errors.New("file exceeds the upload limit")

// ReadUploadedFile reads a multipart upload fully into memory, refusing
// anything larger than maxBytes.
func ReadUploadedFile(file *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 && file.Size > maxBytes {
		return nil, ErrFileTooLarge
	}

	// Open the uploaded file
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	r := io.Reader(src)
	if maxBytes > 0 {
		r = io.LimitReader(src, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
