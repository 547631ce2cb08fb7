package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/lazos-app/lazos-api/internal/pkg/env"
)

// RemoteValidator calls an external vision model (Cloudflare Workers AI) to
// double-check images the local model flagged. It is optional: when the
// account is not configured the classifier runs on the local model alone.
type RemoteValidator struct {
	endpoint string
	apiToken string
	client   *retryablehttp.Client
}

// NewRemoteValidatorFromEnv builds the validator from CLOUDFLARE_ACCOUNT_ID
// and CLOUDFLARE_API_TOKEN. Returns nil when either is missing.
func NewRemoteValidatorFromEnv() *RemoteValidator {
	accountID := env.GetEnv("CLOUDFLARE_ACCOUNT_ID", "")
	apiToken := env.GetEnv("CLOUDFLARE_API_TOKEN", "")
	if accountID == "" || apiToken == "" {
		return nil
	}

	model := env.GetEnv("CLOUDFLARE_VISION_MODEL", "@cf/llava-hf/llava-1.5-7b-hf")
	endpoint := fmt.Sprintf("https://api.cloudflare.com/client/v4/accounts/%s/ai/run/%s", accountID, model)

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &RemoteValidator{
		endpoint: endpoint,
		apiToken: apiToken,
		client:   client,
	}
}

type remoteRequest struct {
	Image     []int  `json:"image"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type remoteResponse struct {
	Result struct {
		Description string `json:"description"`
	} `json:"result"`
	Success bool `json:"success"`
}

const remotePrompt = "Is this image safe for a general audience, showing an animal, street scene or everyday object with no nudity or explicit content? Answer only SAFE or UNSAFE."

// ValidateImage asks the remote model whether the image is publishable.
// The returned bool is only meaningful when err is nil.
func (v *RemoteValidator) ValidateImage(ctx context.Context, data []byte) (bool, error) {
	pixels := make([]int, len(data))
	for i, b := range data {
		pixels[i] = int(b)
	}

	body, err := json.Marshal(remoteRequest{Image: pixels, Prompt: remotePrompt, MaxTokens: 10})
	if err != nil {
		return false, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+v.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("remote validator returned status %d", resp.StatusCode)
	}

	var parsed remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, err
	}
	if !parsed.Success {
		return false, fmt.Errorf("remote validator reported failure")
	}

	answer := parsed.Result.Description
	return containsWord(answer, "SAFE") && !containsWord(answer, "UNSAFE"), nil
}

func containsWord(s, word string) bool {
	fields := bytes.Fields([]byte(s))
	for _, f := range fields {
		if string(bytes.Trim(f, ".,!:")) == word {
			return true
		}
	}
	return false
}
