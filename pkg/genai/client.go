package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-docchat-be/internal/apperror"
)

// GenerationClient is the outbound contract to the generation service.
type GenerationClient interface {
	GenerateChatResponse(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)
}

type Client struct {
	BaseURL string
	Client  *http.Client
}

var _ GenerationClient = &Client{}

// NewClient builds the HTTP client for the external generation service.
// One attempt per turn; the 120s ceiling covers slow model inference.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (wire contract of the generation service) ---

type HistoryMessage struct {
	Role  string        `json:"role"`
	Parts []MessagePart `json:"parts"`
}

type MessagePart struct {
	Text string `json:"text"`
}

type ApiKeys struct {
	Gemini *string `json:"gemini"`
	Grok   *string `json:"grok"`
}

type GenerateRequest struct {
	UserId           string           `json:"user_id"`
	Query            string           `json:"query"`
	ChatHistory      []HistoryMessage `json:"chat_history"`
	LlmProvider      string           `json:"llm_provider"`
	LlmModelName     *string          `json:"llm_model_name"`
	SystemPrompt     string           `json:"system_prompt"`
	PerformRag       bool             `json:"perform_rag"`
	EnableMultiQuery bool             `json:"enable_multi_query"`
	ApiKeys          ApiKeys          `json:"api_keys"`
}

type generateResponse struct {
	Status          string                   `json:"status"`
	LlmResponse     string                   `json:"llm_response"`
	References      []map[string]interface{} `json:"references"`
	ThinkingContent *string                  `json:"thinking_content"`
	Error           string                   `json:"error"`
}

// GenerateResult is the parsed successful reply.
type GenerateResult struct {
	Text       string
	References []map[string]interface{}
	Thinking   *string
}

// GenerateChatResponse posts one turn to the generation service. A body
// whose status discriminator is not "success" fails even when the HTTP
// status is 200.
func (c *Client) GenerateChatResponse(ctx context.Context, genReq *GenerateRequest) (*GenerateResult, error) {
	payloadBytes, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.BaseURL + "/generate_chat_response"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, apperror.NewGenerationService(0, "", fmt.Errorf("ai service request failed: %w", err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.NewGenerationService(0, "", fmt.Errorf("read response: %w", err))
	}

	var genResp generateResponse
	parseErr := json.Unmarshal(bodyBytes, &genResp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := ""
		if parseErr == nil && genResp.Error != "" {
			message = genResp.Error
		}
		return nil, apperror.NewGenerationService(resp.StatusCode, message,
			fmt.Errorf("ai service status %d", resp.StatusCode))
	}

	if parseErr != nil {
		return nil, apperror.NewGenerationService(0, "", fmt.Errorf("unmarshal response: %w", parseErr))
	}

	if genResp.Status != "success" {
		return nil, apperror.NewGenerationService(0, genResp.Error,
			fmt.Errorf("ai service reported status %q", genResp.Status))
	}

	return &GenerateResult{
		Text:       genResp.LlmResponse,
		References: genResp.References,
		Thinking:   genResp.ThinkingContent,
	}, nil
}
