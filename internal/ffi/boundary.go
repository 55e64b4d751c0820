package ffi

import (
	"strings"

	"github.com/postalkit/postalkit/pkg/errors"
)

// maxErrorMessage bounds the stored initialization failure message.
const maxErrorMessage = 256

// checkNulBytes rejects strings that cannot cross the C boundary. The check
// runs before any native call is made.
func checkNulBytes(field, s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return errors.Newf(errors.ErrCodeBoundaryNulByte,
			"%s contains an embedded null byte", field).WithComponent("ffi")
	}
	return nil
}

// lossy replaces invalid UTF-8 sequences with the replacement character.
// Native output is decoded permissively: malformed bytes are substituted,
// never rejected.
func lossy(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateMessage caps a failure message at maxErrorMessage bytes without
// splitting a UTF-8 sequence.
func truncateMessage(s string) string {
	if len(s) <= maxErrorMessage {
		return s
	}
	return strings.ToValidUTF8(s[:maxErrorMessage], "")
}
