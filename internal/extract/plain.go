package extract

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"
)

// errBinaryContent rejects files whose extension promises text but whose bytes do not.
var errBinaryContent = errors.New("content looks binary")

// extractPlain returns content as trimmed text without a UTF-8 byte order mark. Content
// holding NUL bytes is rejected; other invalid UTF-8 sequences become U+FFFD.
func extractPlain(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if bytes.IndexByte(content, 0) >= 0 {
		return "", errBinaryContent
	}
	if !utf8.Valid(content) {
		content = []byte(strings.ToValidUTF8(string(content), "\ufffd"))
	}
	return strings.TrimSpace(string(content)), nil
}
