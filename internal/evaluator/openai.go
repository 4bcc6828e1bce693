package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIClient usa la API de chat completions (o una compatible vía BaseURL)
type OpenAIClient struct {
	opts       Options
	httpClient *http.Client
}

// NewOpenAIClient crea un cliente de OpenAI
func NewOpenAIClient(opts Options) *OpenAIClient {
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	return &OpenAIClient{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	TopP        float64             `json:"top_p"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete envía el prompt como único mensaje de usuario
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(openAIChatRequest{
		Model:       c.opts.Model,
		Messages:    []openAIChatMessage{{Role: "user", Content: prompt}},
		Temperature: c.opts.Temperature,
		TopP:        c.opts.TopP,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error llamando OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &StatusError{Provider: "OpenAI", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var or openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return "", fmt.Errorf("error parseando respuesta OpenAI: %w", err)
	}

	if len(or.Choices) == 0 {
		return "", fmt.Errorf("respuesta vacía de OpenAI")
	}

	return or.Choices[0].Message.Content, nil
}

// NewClient crea el cliente del proveedor indicado
func NewClient(provider string, opts Options) (TextGenerator, error) {
	switch provider {
	case "openai":
		return NewOpenAIClient(opts), nil
	case "gemini":
		return NewGeminiClient(opts), nil
	default:
		return nil, fmt.Errorf("proveedor desconocido: %q", provider)
	}
}
