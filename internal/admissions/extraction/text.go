package extraction

import (
	"strings"
	"unicode/utf8"
)

// TextFromUpload derives the raw text handed to extraction from an uploaded
// file. Plain-text content is used as-is; PDF and image payloads need the
// external OCR/text-extraction collaborator, so they yield an empty string
// here and extraction proceeds with whatever the remote extractor or manual
// review can do.
func TextFromUpload(data []byte, mimeType string) string {
	if strings.HasPrefix(mimeType, "text/") {
		return string(data)
	}

	if looksLikeText(data) {
		return string(data)
	}

	return ""
}

// looksLikeText reports whether the payload is valid UTF-8 without NUL
// bytes, i.e. safe to treat as raw document text.
func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return false
	}
	for _, b := range data {
		if b == 0 {
			return false
		}
	}
	return true
}
