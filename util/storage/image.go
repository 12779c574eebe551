package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrImageTooLarge   = errors.New("image is too large")
	ErrUnsupportedType = errors.New("image must be a jpeg, png or webp file")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// ReadImage reads at most maxBytes from r and checks the content is an
// accepted image type. It returns the bytes and the detected MIME type.
func ReadImage(r io.Reader, maxBytes int64) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", ErrImageTooLarge
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, mtype.String(), ErrUnsupportedType
	}
	return data, mtype.String(), nil
}

// Reader wraps image bytes for upload.
func Reader(data []byte) io.Reader {
	return bytes.NewReader(data)
}
