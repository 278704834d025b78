package utils

import (
	"fmt"
	"net/http"
	"strings"
)

// MediaValidator accepts image and video uploads up to a size limit. The
// content type is sniffed from the bytes, never taken from the client.
type MediaValidator struct {
	maxSize     int64
	allowVideos bool
}

func NewMediaValidator(maxSize int64) *MediaValidator {
	return &MediaValidator{maxSize: maxSize, allowVideos: true}
}

// ImagesOnly returns a copy that rejects videos.
func (v *MediaValidator) ImagesOnly() *MediaValidator {
	return &MediaValidator{maxSize: v.maxSize}
}

func (v *MediaValidator) MaxSize() int64 {
	return v.maxSize
}

// Validate checks one uploaded file and returns its detected MIME type.
func (v *MediaValidator) Validate(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%s is empty", filename)
	}
	if int64(len(data)) > v.maxSize {
		return "", fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detected := strings.ToLower(http.DetectContentType(head))
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}
	switch {
	case strings.HasPrefix(detected, "image/"):
		return detected, nil
	case v.allowVideos && strings.HasPrefix(detected, "video/"):
		return detected, nil
	}
	return "", fmt.Errorf("invalid file type")
}
