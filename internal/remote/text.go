package remote

import (
	"fmt"
	"strings"
)

// sniffLen matches how far git looks for a NUL byte before calling a blob
// binary.
const sniffLen = 8000

// decodeText turns a fetched payload into prompt text. Payloads with a NUL
// byte near the start are rejected as binary; invalid UTF-8 sequences are
// replaced with U+FFFD, the way a browser TextDecoder would.
func decodeText(path, raw string) (string, error) {
	head := raw
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if strings.IndexByte(head, 0) >= 0 {
		return "", fmt.Errorf("decode %s: %w: binary content", path, ErrDecode)
	}
	return strings.ToValidUTF8(raw, "�"), nil
}
