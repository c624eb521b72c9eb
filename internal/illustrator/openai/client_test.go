package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"
)

func TestClient_GenerateImage(t *testing.T) {
	tests := []struct {
		name              string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantURL         string
		wantError       bool
		wantErrorString string
	}{
		{
			name: "Success",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/images/generations", r.URL.Path)

				var reqBody ImageGenerationRequest
				err := json.NewDecoder(r.Body).Decode(&reqBody)
				require.NoError(t, err)
				assert.Equal(t, "dall-e-3", reqBody.Model)
				assert.Equal(t, `"A dog sitting on a table."`, reqBody.Prompt)
				assert.Equal(t, 1, reqBody.N)
				assert.Equal(t, "url", reqBody.ResponseFormat)

				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(ImageGenerationResponse{
					Created: 1700000000,
					Data: []struct {
						URL           string `json:"url"`
						RevisedPrompt string `json:"revised_prompt"`
					}{
						{URL: "https://images.example.com/generated.png"},
					},
				}))
			},
			wantURL: "https://images.example.com/generated.png",
		},
		{
			name: "Empty data",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"created": 1700000000, "data": []}`))
			},
			wantError:       true,
			wantErrorString: "empty response data",
		},
		{
			name: "Content policy rejection is not retried",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error": {"message": "content policy violation"}}`))
			},
			wantError:       true,
			wantErrorString: "response error 400",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := &Client{
				httpClient:       resty.New().SetBaseURL(server.URL),
				maxRetryAttempts: 1,
			}

			gotURL, gotErr := client.GenerateImage(context.Background(), `"A dog sitting on a table."`)
			if tt.wantError {
				require.Error(t, gotErr)
				assert.Contains(t, gotErr.Error(), tt.wantErrorString)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.wantURL, gotURL)
		})
	}
}

func TestClient_GenerateImage_retriesServerErrors(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created": 1700000000, "data": [{"url": "https://images.example.com/ok.png"}]}`))
	}))
	defer server.Close()

	client := &Client{
		httpClient:       resty.New().SetBaseURL(server.URL),
		maxRetryAttempts: 2,
	}

	gotURL, err := client.GenerateImage(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/ok.png", gotURL)
	assert.Equal(t, int32(2), requests.Load())
}

func TestClient_waitForRateLimit(t *testing.T) {
	client := NewClient("test-key", 0, 50*time.Millisecond)
	t.Cleanup(func() {
		assert.NoError(t, client.Close())
	})

	start := time.Now()
	require.NoError(t, client.waitForRateLimit(context.Background()))
	require.NoError(t, client.waitForRateLimit(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, client.waitForRateLimit(ctx), context.Canceled)
	})
}
