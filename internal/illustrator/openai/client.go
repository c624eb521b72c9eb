// Package openai generates illustrations with the OpenAI image API.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"
)

const (
	// Speed-optimized DALL-E 3 settings: smallest size, standard quality,
	// natural style.
	imageModel   = "dall-e-3"
	imageSize    = "1024x1024"
	imageQuality = "standard"
	imageStyle   = "natural"
)

type Client struct {
	httpClient       *resty.Client
	maxRetryAttempts uint

	// minInterval spaces out generation calls to stay under the API's
	// rate limit.
	minInterval time.Duration
	mu          sync.Mutex
	lastCall    time.Time
}

func NewClient(apiKey string, retryAttempts uint, minInterval time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		maxRetryAttempts: retryAttempts,
		minInterval:      minInterval,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

type ImageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	Style          string `json:"style"`
	ResponseFormat string `json:"response_format"`
}

type ImageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}
	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}
	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}
	return false
}

// GenerateImage implements the illustrator.ImageAPI interface. It returns
// the URL of a generated image for the prompt.
func (client *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	var result string
	if err := retry.Do(
		func() error {
			url, err := client.generateImage(ctx, prompt)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = url
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return "", err
	}
	return result, nil
}

func (client *Client) generateImage(ctx context.Context, prompt string) (string, error) {
	if err := client.waitForRateLimit(ctx); err != nil {
		return "", err
	}

	requestBody := ImageGenerationRequest{
		Model:          imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           imageSize,
		Quality:        imageQuality,
		Style:          imageStyle,
		ResponseFormat: "url",
	}
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ImageGenerationResponse{}).
		Post("/images/generations")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return "", fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ImageGenerationResponse)
	if responseBody == nil || len(responseBody.Data) == 0 {
		return "", fmt.Errorf("empty response data: %s", response.String())
	}
	url := responseBody.Data[0].URL
	if url == "" {
		return "", fmt.Errorf("empty image url: %s", response.String())
	}
	slog.Default().Debug("generated image", "prompt", prompt, "url", url)
	return url, nil
}

// waitForRateLimit blocks until minInterval has passed since the previous
// generation call.
func (client *Client) waitForRateLimit(ctx context.Context) error {
	client.mu.Lock()
	now := time.Now()
	wait := client.minInterval - now.Sub(client.lastCall)
	if wait < 0 {
		wait = 0
	}
	client.lastCall = now.Add(wait)
	client.mu.Unlock()

	if wait == 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
