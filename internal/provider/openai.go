package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIProvider speaks the OpenAI chat-completions dialect, which also
// covers local endpoints like Ollama and vLLM.
type OpenAIProvider struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewOpenAI(name, baseURL, apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *OpenAIProvider) Name() string { return o.name }

func (o *OpenAIProvider) ModelName() string { return o.model }

type oaiRequest struct {
	Model     string   `json:"model"`
	Messages  []oaiMsg `json:"messages"`
	MaxTokens int      `json:"max_tokens,omitempty"`
}

type oaiMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (o *OpenAIProvider) Complete(ctx context.Context, creq Request) (string, error) {
	msgs := []oaiMsg{}
	if creq.System != "" {
		msgs = append(msgs, oaiMsg{Role: "system", Content: creq.System})
	}
	msgs = append(msgs, oaiMsg{Role: "user", Content: creq.Prompt})

	body := oaiRequest{Model: o.model, Messages: msgs, MaxTokens: creq.MaxTokens}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", &Error{Provider: o.name, Message: friendlyProviderError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return "", parseProviderError(o.name, resp.StatusCode, b)
	}

	var out oaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &Error{Provider: o.name, Message: "malformed response: " + err.Error()}
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", &Error{Provider: o.name, Message: "empty response"}
	}
	return out.Choices[0].Message.Content, nil
}
