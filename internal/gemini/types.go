package gemini

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"regexp"
	"strings"
)

// ImageInput is an inline image as sent by the browser: raw base64 without
// the data URL prefix.
type ImageInput struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

func (img ImageInput) Bytes() ([]byte, error) {
	data := stripDataURLPrefix(strings.TrimSpace(img.Data))
	if data == "" {
		return nil, errors.New("image data is empty")
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode image base64: %w", err)
	}
	return raw, nil
}

// PNG returns the image bytes as PNG. Other formats (Imagen answers with
// JPEG) are decoded and re-encoded.
func (img ImageInput) PNG() ([]byte, error) {
	raw, err := img.Bytes()
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(img.MimeType, "image/png") {
		return raw, nil
	}
	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", img.MimeType, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (img ImageInput) DataURL() string {
	return DataURL(img.MimeType, img.Data)
}

func DataURL(mimeType, base64Data string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64Data)
}

var dataURLRegex = regexp.MustCompile(`^data:([^;,]+)(;[^,]*)?,`)

// ParseDataURL splits a data URL into an ImageInput. A bare base64 string is
// accepted with fallbackMime.
func ParseDataURL(value string, fallbackMime string) (ImageInput, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ImageInput{}, errors.New("empty data url")
	}

	mime := fallbackMime
	if strings.HasPrefix(value, "data:") {
		matches := dataURLRegex.FindStringSubmatch(value)
		if len(matches) < 2 {
			return ImageInput{}, errors.New("invalid data url")
		}
		mime = matches[1]
	}

	data := stripDataURLPrefix(value)
	if data == "" {
		return ImageInput{}, errors.New("invalid data url")
	}
	return ImageInput{MimeType: mime, Data: data}, nil
}

func stripDataURLPrefix(value string) string {
	if !strings.HasPrefix(value, "data:") {
		return value
	}
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		return value[idx+1:]
	}
	return ""
}
