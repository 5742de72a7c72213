package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// CohereProvider serves both embeddings and chat through Cohere's v1 REST API.
type CohereProvider struct {
	keyName    string
	apiKey     string
	embedModel string
	chatModel  string
	client     *http.Client
}

func NewCohereProvider(keyName string) *CohereProvider {
	embedModel := os.Getenv("DOCQA_COHERE_EMBED_MODEL")
	if strings.TrimSpace(embedModel) == "" {
		embedModel = "embed-english-v3.0"
	}
	chatModel := os.Getenv("DOCQA_COHERE_CHAT_MODEL")
	if strings.TrimSpace(chatModel) == "" {
		chatModel = "command-r-plus"
	}
	return &CohereProvider{
		keyName:    keyName,
		apiKey:     resolveCohereKey(keyName),
		embedModel: embedModel,
		chatModel:  chatModel,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *CohereProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	info := ProviderInfo{Name: "cohere", Model: c.embedModel, Key: c.keyName}
	if c.apiKey == "" {
		return nil, info, fmt.Errorf("cohere key missing for alias %q: %w", c.keyName, ErrKeyMissing)
	}
	if len(req.Inputs) == 0 {
		return nil, info, fmt.Errorf("no embedding inputs")
	}
	// Cohere distinguishes corpus and query embeddings.
	inputType := "search_document"
	if strings.Contains(strings.ToLower(req.Operation), "query") {
		inputType = "search_query"
	}
	payload, _ := json.Marshal(map[string]any{
		"model":      c.embedModel,
		"texts":      req.Inputs,
		"input_type": inputType,
	})
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.cohere.com/v1/embed", bytes.NewReader(payload))
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, info, fmt.Errorf("cohere embed request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, info, fmt.Errorf("cohere embed error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, info, fmt.Errorf("decode cohere embed response: %w", err)
	}
	if len(parsed.Embeddings) != len(req.Inputs) {
		return nil, info, fmt.Errorf("cohere returned %d embeddings for %d inputs", len(parsed.Embeddings), len(req.Inputs))
	}
	return parsed.Embeddings, info, nil
}

func (c *CohereProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "cohere", Model: c.chatModel, Key: c.keyName}
	if c.apiKey == "" {
		return GenerateResponse{}, info, fmt.Errorf("cohere key missing for alias %q: %w", c.keyName, ErrKeyMissing)
	}
	prompt := req.Prompt
	if len(req.Context) > 0 {
		prompt += "\n\nContext:\n" + strings.Join(req.Context, "\n\n")
	}
	payload, _ := json.Marshal(map[string]any{
		"model":   c.chatModel,
		"message": prompt,
	})
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.cohere.com/v1/chat", bytes.NewReader(payload))
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("cohere chat request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return GenerateResponse{}, info, fmt.Errorf("cohere chat error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return GenerateResponse{}, info, fmt.Errorf("decode cohere chat response: %w", err)
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return GenerateResponse{}, info, fmt.Errorf("cohere returned empty text")
	}
	return GenerateResponse{Text: parsed.Text}, info, nil
}

func (c *CohereProvider) HasKey() bool { return c.apiKey != "" }

func resolveCohereKey(alias string) string {
	if alias != "" {
		if v := os.Getenv("DOCQA_COHERE_KEY_" + strings.ToUpper(alias)); v != "" {
			return v
		}
	}
	return os.Getenv("COHERE_API_KEY")
}
