package nutrition

import (
	"encoding/base64"
	"errors"
	"strings"
)

// DecodeImageDataURL strips the data-URL scheme from an uploaded image and
// returns the raw bytes plus the declared MIME type. The binary payload is
// the substring after the first comma. The MIME type falls back to
// image/jpeg when the prefix does not declare an image type, which matches
// what the capture path produces.
func DecodeImageDataURL(dataURL string) ([]byte, string, error) {
	idx := strings.IndexByte(dataURL, ',')
	if idx < 0 {
		return nil, "", NewError(ErrorInvalidRequest, "malformed_data_url", errors.New("image is not a data URL"))
	}

	mimeType := "image/jpeg"
	if rest, ok := strings.CutPrefix(dataURL[:idx], "data:"); ok {
		if mt, _, _ := strings.Cut(rest, ";"); strings.HasPrefix(mt, "image/") {
			mimeType = mt
		}
	}

	raw, err := base64.StdEncoding.DecodeString(dataURL[idx+1:])
	if err != nil {
		return nil, "", NewError(ErrorInvalidRequest, "invalid_base64", err)
	}
	return raw, mimeType, nil
}
