package media

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrNotDataURI = errors.New("not a data URI")

// IsDataURI reports whether a field value carries an inline embedded
// payload rather than an already-durable URL.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURI decodes a "data:<type>;base64,<payload>" string into its
// content type and raw bytes.
func ParseDataURI(s string) (string, []byte, error) {
	if !IsDataURI(s) {
		return "", nil, ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return "", nil, errors.New("data URI missing payload")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return contentType, data, nil
}

func extFromContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/svg+xml":
		return "svg"
	}
	return "bin"
}
