package validation

import (
	"fmt"
	"io"
	"net/http"
)

// ImageType is an accepted avatar format
type ImageType struct {
	ContentType string
	Ext         string
}

var avatarTypes = map[string]ImageType{
	"image/jpeg": {ContentType: "image/jpeg", Ext: "jpg"},
	"image/png":  {ContentType: "image/png", Ext: "png"},
	"image/gif":  {ContentType: "image/gif", Ext: "gif"},
	"image/webp": {ContentType: "image/webp", Ext: "webp"},
}

// ValidateImage sniffs the content of an avatar upload and enforces the size cap.
// The declared Content-Type is ignored; magic numbers decide.
func ValidateImage(r io.ReadSeeker, size, maxSize int64) (ImageType, error) {
	if size > maxSize {
		return ImageType{}, fmt.Errorf("image too large: maximum size is %d MB", maxSize>>20)
	}

	buffer := make([]byte, 512)
	n, err := r.Read(buffer)
	if err != nil && err != io.EOF {
		return ImageType{}, fmt.Errorf("failed to read file: %w", err)
	}

	_, err = r.Seek(0, io.SeekStart)
	if err != nil {
		return ImageType{}, fmt.Errorf("failed to reset file pointer: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	t, ok := avatarTypes[detected]
	if !ok {
		return ImageType{}, fmt.Errorf("invalid file type (detected: %s)", detected)
	}

	return t, nil
}
