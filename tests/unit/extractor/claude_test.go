package extractor_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"bookingflow/internal/config"
	"bookingflow/internal/extractor"
	"bookingflow/internal/extractor/claude"
	"bookingflow/internal/port"
)

func testExtractorConfig() *config.ExtractorConfig {
	return &config.ExtractorConfig{
		Provider:     "claude",
		APIKey:       "test-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  5,
	}
}

func messagesResponse(fieldsJSON string) string {
	body := map[string]interface{}{
		"model": "claude-sonnet-4-20250514",
		"content": []map[string]string{
			{"type": "text", "text": fieldsJSON},
		},
		"stop_reason": "end_turn",
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func TestClaudeAnalyzer_Success(t *testing.T) {
	var gotAuth, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messagesResponse(
			`{"fields": {"carrier_name": {"value": "Maersk", "confidence": 0.93}, "eta": {"value": "2026-10-02", "confidence": 0.7}}}`)))
	}))
	defer srv.Close()

	a := claude.NewAnalyzerWithEndpoint(testExtractorConfig(), srv.URL)
	out, err := a.Analyze(context.Background(), port.AnalyzeInput{
		PageBytes:   []byte("%PDF-1.4 fake page"),
		ContentType: "application/pdf",
	})

	assert.NoError(t, err)
	assert.Equal(t, "test-key", gotAuth)
	assert.NotEmpty(t, gotVersion)
	assert.Len(t, out.Fields, 2)
	assert.Equal(t, "Maersk", out.Fields["carrier_name"].Value)
	assert.InDelta(t, 0.93, out.Fields["carrier_name"].Confidence, 1e-9)
	assert.Equal(t, "claude-sonnet-4-20250514", out.ModelVersion)
	assert.GreaterOrEqual(t, out.ProcessingDurationMs, int64(0))
}

func TestClaudeAnalyzer_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"type": "rate_limit_error"}}`))
	}))
	defer srv.Close()

	a := claude.NewAnalyzerWithEndpoint(testExtractorConfig(), srv.URL)
	_, err := a.Analyze(context.Background(), port.AnalyzeInput{PageBytes: []byte("x")})

	assert.Error(t, err)
	assert.True(t, extractor.IsRetryable(err))

	var rlErr *extractor.RateLimitError
	assert.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 7.0, rlErr.RetryAfter.Seconds())
}

func TestClaudeAnalyzer_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := claude.NewAnalyzerWithEndpoint(testExtractorConfig(), srv.URL)
	_, err := a.Analyze(context.Background(), port.AnalyzeInput{PageBytes: []byte("x")})

	assert.Error(t, err)
	var tErr *extractor.TransientError
	assert.ErrorAs(t, err, &tErr)
}

func TestClaudeAnalyzer_BadRequestIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	a := claude.NewAnalyzerWithEndpoint(testExtractorConfig(), srv.URL)
	_, err := a.Analyze(context.Background(), port.AnalyzeInput{PageBytes: []byte("x")})

	assert.Error(t, err)
	assert.False(t, extractor.IsRetryable(err))
}

func TestClaudeAnalyzer_MalformedModelOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(messagesResponse("here is your JSON: not actually json")))
	}))
	defer srv.Close()

	a := claude.NewAnalyzerWithEndpoint(testExtractorConfig(), srv.URL)
	_, err := a.Analyze(context.Background(), port.AnalyzeInput{PageBytes: []byte("x")})

	assert.Error(t, err)
	assert.False(t, extractor.IsRetryable(err))
}

func TestClaudeAnalyzer_RejectsNonPDFContentType(t *testing.T) {
	a := claude.NewAnalyzerWithEndpoint(testExtractorConfig(), "http://unused.invalid")
	_, err := a.Analyze(context.Background(), port.AnalyzeInput{
		PageBytes:   []byte("x"),
		ContentType: "image/png",
	})
	assert.Error(t, err)
}
