package face

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeImage は base64 文字列、または data:<mime>;base64,<payload> 形式の data URL を画像バイト列に変換します。
func DecodeImage(raw string) ([]byte, error) {
	payload := strings.TrimSpace(raw)
	if payload == "" {
		return nil, ErrInvalidImage
	}

	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("unsupported data url: %w", ErrInvalidImage)
		}
		payload = body
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("decode base64: %w", ErrInvalidImage)
		}
	}
	if len(decoded) == 0 {
		return nil, ErrInvalidImage
	}
	return decoded, nil
}
