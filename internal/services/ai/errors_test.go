package ai

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestFailureReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"malformed", fmt.Errorf("decode: %w", ErrMalformedResponse), "malformed"},
		{"quota", &APIError{StatusCode: 429, Code: "insufficient_quota", IsPermanent: true}, "quota"},
		{"rate limit", &APIError{StatusCode: 429}, "rate_limited"},
		{"transport", errors.New("dial tcp: connection refused"), "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := failureReason(tt.err); got != tt.want {
				t.Errorf("failureReason = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractAPIError_RawMessage(t *testing.T) {
	t.Parallel()

	err := errors.New(`POST "chat/completions": 429 Too Many Requests {"message":"no credit","type":"insufficient_quota","code":"insufficient_quota"}`)
	apiErr := ExtractAPIError(err)
	if apiErr == nil {
		t.Fatal("expected APIError")
	}
	if !apiErr.IsPermanent || apiErr.Code != "insufficient_quota" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if apiErr.RetryAfter == nil || *apiErr.RetryAfter != time.Hour {
		t.Errorf("RetryAfter = %v", apiErr.RetryAfter)
	}

	if ExtractAPIError(errors.New("boom")) != nil {
		t.Error("plain errors carry no API details")
	}
}

func TestGetRetryDelay(t *testing.T) {
	t.Parallel()

	plain := errors.New("db unavailable")
	if got := GetRetryDelay(plain, 0); got != 5*time.Second {
		t.Errorf("attempt 0 = %v", got)
	}
	if got := GetRetryDelay(plain, 2); got != 20*time.Second {
		t.Errorf("attempt 2 = %v", got)
	}
	if got := GetRetryDelay(plain, 50); got != 5*time.Minute {
		t.Errorf("capped delay = %v", got)
	}
	if got := GetRetryDelay(&APIError{StatusCode: 429}, 0); got != time.Minute {
		t.Errorf("rate limit delay = %v", got)
	}
	if got := GetRetryDelay(&APIError{StatusCode: 429, IsPermanent: true}, 0); got != time.Hour {
		t.Errorf("quota delay = %v", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	var v struct {
		A string `json:"a"`
	}
	if err := decodeJSON(`{"a":"x"}`, &v); err != nil || v.A != "x" {
		t.Errorf("plain JSON: %v %+v", err, v)
	}
	if err := decodeJSON("Resposta: {\"a\":\"y\"} fim", &v); err != nil || v.A != "y" {
		t.Errorf("wrapped JSON: %v %+v", err, v)
	}
	for _, bad := range []string{"", "   ", "sem json", "{quebrado"} {
		if err := decodeJSON(bad, &v); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("decodeJSON(%q) err = %v", bad, err)
		}
	}
}

func TestSanitizeHelpers(t *testing.T) {
	t.Parallel()

	if got := SanitizeAPIKey("sk-1234567890abcd"); got != "sk-1"+RedactedValue+"abcd" {
		t.Errorf("SanitizeAPIKey = %s", got)
	}
	if got := SanitizeAPIKey("short"); got != RedactedValue {
		t.Errorf("SanitizeAPIKey(short) = %s", got)
	}
	if got := SanitizePrompt("linha\x00um", false); got != "linhaum" {
		t.Errorf("SanitizePrompt = %q", got)
	}
	if got := TruncateString("ééé", 3); got != "é..." {
		t.Errorf("TruncateString = %q", got)
	}
	if HashDeviceID("abc") == HashDeviceID("abd") || len(HashDeviceID("abc")) != 16 {
		t.Error("HashDeviceID should be a 16 char distinct hash")
	}
}
