package face

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeImage(t *testing.T) {
	t.Parallel()

	want := []byte{0xff, 0xd8, 0xff, 0xe0}

	cases := map[string]string{
		"raw":      "/9j/4A==",
		"data url": "data:image/jpeg;base64,/9j/4A==",
		"unpadded": "/9j/4A",
		"spaces":   "  data:image/png;base64,/9j/4A==\n",
	}
	for name, input := range cases {
		got, err := DecodeImage(input)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("%s: expected %v, got %v", name, want, got)
		}
	}
}

func TestDecodeImage_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "data:image/png,abc", "!!!not-base64!!!"} {
		if _, err := DecodeImage(input); !errors.Is(err, ErrInvalidImage) {
			t.Fatalf("expected ErrInvalidImage for %q, got %v", input, err)
		}
	}
}
