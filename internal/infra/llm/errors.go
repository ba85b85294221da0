package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrorKind is the vendor-independent class of a backend failure.
type ErrorKind string

const (
	KindModelNotFound    ErrorKind = "model_not_found"
	KindAuthInvalid      ErrorKind = "auth_invalid"
	KindQuotaExceeded    ErrorKind = "quota_exceeded"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindUnavailable      ErrorKind = "unavailable"
	KindUnknown          ErrorKind = "unknown"
)

// ErrEmptyResponse is wrapped when a vendor answers without any text.
var ErrEmptyResponse = errors.New("empty response from provider")

// Error is a classified vendor failure.
type Error struct {
	Provider   string
	Model      string
	Kind       ErrorKind
	StatusCode int // 0 when the vendor gave none
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %s (status %d): %v", e.Provider, e.Model, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Model, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the classification carried by err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusOf returns the vendor status code carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// statusInMessage finds an HTTP status embedded in client error text, e.g.
// "API returned unexpected status code: 429: ..." or "googleapi: Error 404: ...".
var statusInMessage = regexp.MustCompile(`(?i)(?:status code:?|error|status)\s+(\d{3})\b`)

func statusFromMessage(msg string) int {
	m := statusInMessage.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return code
}

// kindFromStatus maps an HTTP status to a kind; ok is false for statuses with
// no specific meaning.
func kindFromStatus(code int) (ErrorKind, bool) {
	switch code {
	case 404:
		return KindModelNotFound, true
	case 401:
		return KindAuthInvalid, true
	case 402, 429:
		return KindQuotaExceeded, true
	case 403:
		return KindPermissionDenied, true
	case 500, 502, 503, 504:
		return KindUnavailable, true
	default:
		return "", false
	}
}

// keywordRule maps vendor message fragments to a kind. Rules are checked in
// order; the first match wins.
type keywordRule struct {
	kind  ErrorKind
	match func(lower string) bool
}

func containsAll(parts ...string) func(string) bool {
	return func(s string) bool {
		for _, p := range parts {
			if !strings.Contains(s, p) {
				return false
			}
		}
		return true
	}
}

func containsAny(parts ...string) func(string) bool {
	return func(s string) bool {
		for _, p := range parts {
			if strings.Contains(s, p) {
				return true
			}
		}
		return false
	}
}

func kindFromKeywords(msg string, rules []keywordRule) ErrorKind {
	lower := strings.ToLower(msg)
	for _, r := range rules {
		if r.match(lower) {
			return r.kind
		}
	}
	return KindUnknown
}
