package llm

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassifyOpenAIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		msg        string
		wantKind   ErrorKind
		wantStatus int
	}{
		{"unauthorized", "API returned unexpected status code: 401: Incorrect API key provided", KindAuthInvalid, 401},
		{"rate limited", "API returned unexpected status code: 429: Rate limit reached", KindQuotaExceeded, 429},
		{"payment required", "API returned unexpected status code: 402: billing", KindQuotaExceeded, 402},
		{"forbidden", "API returned unexpected status code: 403: Country not supported", KindPermissionDenied, 403},
		{"missing model", "API returned unexpected status code: 404: The model `gpt-9` does not exist", KindModelNotFound, 404},
		{"unavailable", "API returned unexpected status code: 503: overloaded", KindUnavailable, 503},
		{"keyword only", "insufficient_quota: You exceeded your current quota", KindQuotaExceeded, 0},
		{"model keyword", "The model `gpt-9` does not exist or you do not have access to it", KindModelNotFound, 0},
		{"network", "dial tcp: lookup api.openai.com: no such host", KindUnknown, 0},
		{"bad request", "API returned unexpected status code: 400: bad", KindUnknown, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			kind, st := classifyOpenAIError(errors.New(tt.msg))
			if kind != tt.wantKind || st != tt.wantStatus {
				t.Errorf("classifyOpenAIError(%q) = (%q, %d); want (%q, %d)", tt.msg, kind, st, tt.wantKind, tt.wantStatus)
			}
		})
	}
}

type restError struct {
	code int
	msg  string
}

func (e *restError) Error() string { return e.msg }
func (e *restError) HTTPCode() int { return e.code }

func TestClassifyGeminiError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
	}{
		{"grpc not found", status.Error(codes.NotFound, "models/gemini-1.5-flash is not found"), KindModelNotFound},
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "bad credentials"), KindAuthInvalid},
		{"grpc invalid api key", status.Error(codes.InvalidArgument, "API key not valid. Please pass a valid API key."), KindAuthInvalid},
		{"grpc exhausted", status.Error(codes.ResourceExhausted, "Resource has been exhausted"), KindQuotaExceeded},
		{"grpc permission", status.Error(codes.PermissionDenied, "caller lacks permission"), KindPermissionDenied},
		{"grpc unavailable", status.Error(codes.Unavailable, "try later"), KindUnavailable},
		{"wrapped grpc", fmt.Errorf("googleai: %w", status.Error(codes.NotFound, "gone")), KindModelNotFound},
		{"rest 404", &restError{code: 404, msg: "googleapi: Error 404: models/x is not found"}, KindModelNotFound},
		{"rest 429", &restError{code: 429, msg: "googleapi: Error 429: quota"}, KindQuotaExceeded},
		{"message 404", errors.New("googleapi: Error 404: Requested entity was not found."), KindModelNotFound},
		{"message api key", errors.New("API_KEY_INVALID"), KindAuthInvalid},
		{"message quota", errors.New("you exceeded your quota"), KindQuotaExceeded},
		{"message model", errors.New("model gemini-x not found for this plan"), KindModelNotFound},
		{"message permission", errors.New("permission missing on project"), KindPermissionDenied},
		{"unknown", errors.New("connection reset by peer"), KindUnknown},
		{"grpc invalid other", status.Error(codes.InvalidArgument, "bad temperature"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if kind, _ := classifyGeminiError(tt.err); kind != tt.wantKind {
				t.Errorf("classifyGeminiError(%v) = %q; want %q", tt.err, kind, tt.wantKind)
			}
		})
	}
}

func TestError_WrapsAndReports(t *testing.T) {
	t.Parallel()

	root := errors.New("boom")
	err := fmt.Errorf("call: %w", &Error{Provider: "gemini", Model: "m", Kind: KindQuotaExceeded, StatusCode: 429, Err: root})

	if !errors.Is(err, root) {
		t.Error("expected Unwrap chain to reach the root error")
	}
	if KindOf(err) != KindQuotaExceeded || StatusOf(err) != 429 {
		t.Errorf("unexpected kind/status %q/%d", KindOf(err), StatusOf(err))
	}
	if KindOf(root) != KindUnknown || StatusOf(root) != 0 {
		t.Error("plain errors must classify as unknown with no status")
	}
}
