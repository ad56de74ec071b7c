package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator calls an OpenAI-compatible image generation endpoint and stores
// the result, returning a durable reference.
type Generator struct {
	baseURL   string
	apiKey    string
	modelName string
	store     *Store
	client    *http.Client
}

func NewGenerator(baseURL, apiKey, modelName string, store *Store) *Generator {
	return &Generator{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		modelName: modelName,
		store:     store,
		client: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

type generationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type generationResponse struct {
	Data []struct {
		URL     string `json:"url,omitempty"`
		B64JSON string `json:"b64_json,omitempty"`
	} `json:"data"`
}

// Synthesize renders one illustration for a candidate solution and uploads
// it. The returned name is the stored object key.
func (g *Generator) Synthesize(ctx context.Context, targetUser, technicalMethod, possibleResults, userType string) (string, string, error) {
	prompt := buildPrompt(targetUser, technicalMethod, possibleResults, userType)

	imageData, err := g.generate(ctx, prompt)
	if err != nil {
		return "", "", err
	}

	name := fmt.Sprintf("solutions/%s.png", uuid.New().String())
	url, err := g.store.Save(ctx, name, imageData, "image/png")
	if err != nil {
		return "", "", fmt.Errorf("store image: %w", err)
	}
	return url, name, nil
}

func buildPrompt(targetUser, technicalMethod, possibleResults, userType string) string {
	var b strings.Builder
	b.WriteString("Concept illustration of a proposed solution.\n")
	fmt.Fprintf(&b, "Target user: %s\n", targetUser)
	fmt.Fprintf(&b, "Technical method: %s\n", technicalMethod)
	fmt.Fprintf(&b, "Expected results: %s\n", possibleResults)
	if userType != "" && userType != "None Type" {
		fmt.Fprintf(&b, "Audience: %s\n", userType)
	}
	b.WriteString("Clean, professional style suitable for a research report.")
	return b.String()
}

func (g *Generator) generate(ctx context.Context, prompt string) ([]byte, error) {
	reqPayload := generationRequest{
		Model:          g.modelName,
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		ResponseFormat: "b64_json",
	}
	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := g.baseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var genResp generationResponse
	if err := json.Unmarshal(bodyBytes, &genResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(genResp.Data) == 0 {
		return nil, fmt.Errorf("empty image response")
	}

	item := genResp.Data[0]
	if item.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		return data, nil
	}
	if item.URL != "" {
		return g.download(ctx, item.URL)
	}
	return nil, fmt.Errorf("image response carries neither url nor data")
}

// download fetches an image from a provider-hosted, usually short-lived URL.
func (g *Generator) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
