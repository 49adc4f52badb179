package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hqin77/lifepath/internal/domain"
)

// HTTPClient talks to an OpenAI-compatible chat-completions endpoint.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Ensure HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a narrative client for the given endpoint.
func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string                 `json:"model"`
	Messages       []chatMessage          `json:"messages"`
	Temperature    *float64               `json:"temperature,omitempty"`
	MaxTokens      *int                   `json:"max_tokens,omitempty"`
	ResponseFormat map[string]interface{} `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message *chatMessage `json:"message,omitempty"`
	} `json:"choices"`
}

// complete sends one chat completion and returns the assistant content.
func (c *HTTPClient) complete(ctx context.Context, system, user string) (string, error) {
	temp := 0.7
	maxTokens := 900
	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    &temp,
		MaxTokens:      &maxTokens,
		ResponseFormat: map[string]interface{}{"type": "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("narrative request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("narrative provider returned %d: %s", resp.StatusCode, string(msg))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message == nil {
		return "", fmt.Errorf("empty completion")
	}
	return completion.Choices[0].Message.Content, nil
}

func metricsDigest(m domain.Metrics) string {
	return fmt.Sprintf("health=%.0f career=%.0f relationships=%.1fh stress=%.0f freeTime=%.1fh netWorth=%.0f salary=%.0f expenses=%.0f fulfillment=%.0f confidence=%.0f",
		m.Health, m.Career, m.Relationships, m.Stress, m.FreeTime, m.NetWorth, m.Salary, m.MonthlyExpenses, m.Fulfillment, m.Confidence)
}

const planSystemPrompt = `You plan plausible life trajectories. Respond with one JSON object:
{"tone": string, "themes": [string], "recurring_actions": [{"label": string, "details": string}], "milestones": [{"at_step": int, "label": string, "details": string}]}
Keep 3-6 recurring actions and 2-5 milestones. at_step is a 1-based step index.`

// TrajectoryPlan asks the provider for a thematic plan.
func (c *HTTPClient) TrajectoryPlan(ctx context.Context, req PlanRequest) (*TrajectoryPlan, error) {
	user := fmt.Sprintf("Horizon: %s\nTarget outcome: %s\nProfile: %s\nMemory: %s\nCurrent metrics: %s",
		req.HorizonPreset, req.TargetOutcome, req.ProfileDigest, req.MemoryDigest, metricsDigest(req.Metrics))
	content, err := c.complete(ctx, planSystemPrompt, user)
	if err != nil {
		return nil, err
	}
	return parsePlan(content)
}

const storySystemPrompt = `You narrate one day of a simulated life in 2-3 sentences, second person, grounded and concrete. Respond with one JSON object:
{"action_label": string, "story": string}`

// StepStory asks the provider for a short step narrative.
func (c *HTTPClient) StepStory(ctx context.Context, req StoryRequest) (*StoryResult, error) {
	user := fmt.Sprintf("Action: %s\nDetails: %s\nPrevious story: %s\nCurrent metrics: %s",
		req.ActionLabel, req.ActionDetails, req.LatestStory, metricsDigest(req.Metrics))
	content, err := c.complete(ctx, storySystemPrompt, user)
	if err != nil {
		return nil, err
	}
	return parseStory(content)
}

const optionsSystemPrompt = `You propose the next moves in a simulated life. Respond with one JSON object:
{"options": [{"title": string, "description": string}, {"title": string, "description": string}, {"title": string, "description": string}]}
Exactly three options, each a concrete everyday action.`

// NextOptions asks the provider for exactly three candidate actions.
func (c *HTTPClient) NextOptions(ctx context.Context, req OptionsRequest) ([]OptionProposal, error) {
	user := fmt.Sprintf("Profile: %s\nMemory: %s\nLast action: %s\nCurrent metrics: %s",
		req.ProfileDigest, req.MemoryDigest, req.LastAction, metricsDigest(req.Metrics))
	content, err := c.complete(ctx, optionsSystemPrompt, user)
	if err != nil {
		return nil, err
	}
	return parseOptions(content)
}
