// Package labiba implements the chat upstream client.
package labiba

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/albilad-voice/voice-gateway/pkg/core"
	"github.com/albilad-voice/voice-gateway/pkg/core/normalize"
)

const providerName = "labiba"

// Client calls the Labiba chatbot API.
type Client struct {
	baseURL        string
	defaultStoryID string
	httpClient     *http.Client
}

func New(baseURL, defaultStoryID string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		defaultStoryID: defaultStoryID,
		httpClient:     client,
	}
}

type askPayload struct {
	Query   string `json:"query"`
	StoryID string `json:"storyId"`
}

// Ask sends a query to the chatbot and normalizes the reply. The response
// shape varies per deployment; extraction degrades through a fallback chain
// rather than failing, so the caller's answer is never lost.
func (c *Client) Ask(ctx context.Context, query, storyID string) (*core.TextResult, error) {
	if storyID == "" {
		storyID = c.defaultStoryID
	}
	body, err := json.Marshal(askPayload{Query: query, StoryID: storyID})
	if err != nil {
		return nil, fmt.Errorf("marshal ask payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/Chatbot/LabibaMessage", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.NewUpstreamUnreachable(providerName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewUpstreamUnreachable(providerName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.NewUpstreamNonSuccess(providerName, resp.StatusCode, raw)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		doc = nil
	}
	return &core.TextResult{
		Text: normalize.ChatText(doc, string(raw)),
		Raw:  doc,
	}, nil
}
