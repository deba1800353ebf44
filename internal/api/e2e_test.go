package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhite7112/woodpantry-pickle/internal/clients"
	"github.com/mwhite7112/woodpantry-pickle/internal/metrics"
	"github.com/mwhite7112/woodpantry-pickle/internal/service"
)

// fakeProvider answers chat completions with a canned reply per item and
// counts the calls it receives.
func fakeProvider(t *testing.T, status int, replies map[string]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Messages) != 2 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte("upstream exploded")) //nolint:errcheck
			return
		}

		reply := "No."
		for item, text := range replies {
			if strings.Contains(body.Messages[1].Content, "'"+item+"'") {
				reply = text
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":     "chatcmpl-e2e",
			"object": "chat.completion",
			"model":  "gpt-3.5-turbo",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func newE2ERouter(t *testing.T, providerURL string) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	m := metrics.New()
	completer := clients.NewOpenAIClient(providerURL, "sk-test", "gpt-3.5-turbo", clients.NewHTTPClient(0))
	checker := service.NewPickleChecker(completer, service.WithRecorder(m), service.WithLogger(logger))
	return NewRouter(checker, m, logger)
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) service.CheckResult {
	t.Helper()

	require.Equal(t, http.StatusOK, rec.Code)
	var result service.CheckResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestE2E_Cucumber(t *testing.T) {
	t.Parallel()

	provider, calls := fakeProvider(t, http.StatusOK, map[string]string{
		"cucumber": "Yes, cucumbers are classically pickled.",
	})
	router := newE2ERouter(t, provider.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/pickle/can-pickle", strings.NewReader(`{"item":"cucumber"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	result := decodeResult(t, rec)
	assert.True(t, result.CanPickle)
	assert.Equal(t, "Yes, cucumbers are classically pickled.", result.Reason)
	assert.EqualValues(t, 1, calls.Load())
}

func TestE2E_Smartphone(t *testing.T) {
	t.Parallel()

	provider, calls := fakeProvider(t, http.StatusOK, map[string]string{
		"smartphone": "No, electronics cannot be safely pickled.",
	})
	router := newE2ERouter(t, provider.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/pickle/can-pickle?item=smartphone", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	result := decodeResult(t, rec)
	assert.False(t, result.CanPickle)
	assert.Equal(t, "No, electronics cannot be safely pickled.", result.Reason)
	assert.EqualValues(t, 1, calls.Load())
}

func TestE2E_UpstreamErrorIsStill200(t *testing.T) {
	t.Parallel()

	provider, _ := fakeProvider(t, http.StatusInternalServerError, nil)
	router := newE2ERouter(t, provider.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/pickle/can-pickle?item=garlic", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	result := decodeResult(t, rec)
	assert.Equal(t, service.CheckResult{CanPickle: false, Reason: service.ReasonAPIError}, result)
}

func TestE2E_BlankItemNeverReachesProvider(t *testing.T) {
	t.Parallel()

	provider, calls := fakeProvider(t, http.StatusOK, nil)
	router := newE2ERouter(t, provider.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/pickle/can-pickle", strings.NewReader(`{"item":"  "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.EqualValues(t, 0, calls.Load())
}
