package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generateRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

// stubGemini serves generateContent with a fixed answer and records the prompt.
func stubGemini(t *testing.T, answer string, prompt *atomic.Value) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && prompt != nil {
			if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
				prompt.Store(req.Contents[0].Parts[0].Text)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{map[string]any{"text": answer}},
					},
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newStubClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), Config{
		APIKey:  "test-key",
		BaseURL: baseURL + "/",
	})
	require.NoError(t, err)
	return c
}

func TestAnalyze_ReturnsModelText(t *testing.T) {
	var prompt atomic.Value
	srv := stubGemini(t, "C", &prompt)
	c := newStubClient(t, srv.URL)

	got, err := c.Analyze(context.Background(), "A", "B")
	require.NoError(t, err)
	assert.Equal(t, "C", got)

	sent, _ := prompt.Load().(string)
	assert.Equal(t, BuildPrompt("A", "B"), sent)
}

func TestAnalyze_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newStubClient(t, url)
	_, err := c.Analyze(context.Background(), "A", "B")
	assert.ErrorIs(t, err, ErrCommunication)
}

func TestAnalyze_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	c := newStubClient(t, srv.URL)
	_, err := c.Analyze(context.Background(), "A", "B")
	require.ErrorIs(t, err, ErrCommunication)
	assert.NotContains(t, err.Error(), "API key not valid", "cause stays in the logs")
}

func TestAnalyze_EmptyAnswer(t *testing.T) {
	srv := stubGemini(t, "", nil)
	c := newStubClient(t, srv.URL)

	_, err := c.Analyze(context.Background(), "A", "B")
	assert.ErrorIs(t, err, ErrCommunication)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	c := NewWithGenerator(fakeGenerator{text: "never"}, "")
	for _, tc := range []struct{ content, question string }{
		{"", "question"},
		{"content", ""},
		{"content", "   \n"},
	} {
		_, err := c.Analyze(context.Background(), tc.content, tc.question)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
}

func TestAnalyze_MissingAPIKey(t *testing.T) {
	c, err := NewClient(context.Background(), Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.Model())

	_, err = c.Analyze(context.Background(), "A", "B")
	assert.ErrorIs(t, err, ErrCommunication)
}

type fakeGenerator struct {
	text  string
	err   error
	model *string
}

func (f fakeGenerator) Generate(_ context.Context, model, _ string) (string, error) {
	if f.model != nil {
		*f.model = model
	}
	return f.text, f.err
}

func TestAnalyze_GeneratorError(t *testing.T) {
	c := NewWithGenerator(fakeGenerator{err: errors.New("quota exceeded")}, "")
	_, err := c.Analyze(context.Background(), "A", "B")
	assert.Equal(t, ErrCommunication, err)
}

func TestNewWithGenerator_Model(t *testing.T) {
	var model string
	c := NewWithGenerator(fakeGenerator{text: "ok", model: &model}, "gemini-custom")
	_, err := c.Analyze(context.Background(), "A", "B")
	require.NoError(t, err)
	assert.Equal(t, "gemini-custom", model)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("line one\nline two", "What is this?")
	assert.True(t, strings.HasPrefix(p, "You are an expert file analyst."))
	assert.Contains(t, p, "--- FILE CONTENT ---\nline one\nline two\n--- END FILE CONTENT ---")
	assert.Contains(t, p, `USER QUESTION: "What is this?"`)
	assert.True(t, strings.HasSuffix(p, "Your Analysis:"))
}
