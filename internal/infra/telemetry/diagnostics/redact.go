package diagnostics

import (
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const mask = "***"

// Header names containing any of these fragments never reach a log line.
var secretFragments = []string{"api-key", "apikey", "api_key", "authorization", "cookie", "secret", "token"}

// IsSecret reports whether a header or field name carries a credential.
func IsSecret(name string) bool {
	lower := strings.ToLower(name)
	for _, fragment := range secretFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Mask returns value, or the mask when name is secret and value is set.
func Mask(name, value string) string {
	if value != "" && IsSecret(name) {
		return mask
	}
	return value
}

// HeaderField logs header under key with credential values masked.
func HeaderField(key string, header http.Header) zap.Field {
	return zap.Object(key, maskedHeader(header))
}

type maskedHeader http.Header

func (h maskedHeader) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		enc.AddString(name, Mask(name, strings.Join(h[name], ",")))
	}
	return nil
}
