package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type serpAPI struct {
	client *resty.Client
	apiKey string
}

func newSerpAPI(apiKey, baseURL string, timeout time.Duration) *serpAPI {
	if baseURL == "" {
		baseURL = "https://serpapi.com"
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeoutOrDefault(timeout))
	return &serpAPI{client: client, apiKey: apiKey}
}

func (s *serpAPI) name() string { return "SerpAPISearch" }

func (s *serpAPI) description() string {
	return "Useful for searching the web for news, sentiment analysis, and geopolitical information related to a stock using SerpAPI."
}

type serpResponse struct {
	Error     string `json:"error"`
	AnswerBox *struct {
		Answer                  string   `json:"answer"`
		Snippet                 string   `json:"snippet"`
		SnippetHighlightedWords []string `json:"snippet_highlighted_words"`
	} `json:"answer_box"`
	KnowledgeGraph *struct {
		Description string `json:"description"`
	} `json:"knowledge_graph"`
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

func (s *serpAPI) search(ctx context.Context, query string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":  "google",
			"q":       query,
			"api_key": s.apiKey,
			"gl":      "us",
			"hl":      "en",
		}).
		Get("/search.json")
	if err != nil {
		return "", err
	}

	var payload serpResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		if resp.IsError() {
			return "", fmt.Errorf("serpapi returned status %d", resp.StatusCode())
		}
		return "", fmt.Errorf("decode serpapi response: %w", err)
	}
	return reduceSerpResponse(payload)
}

// reduceSerpResponse picks the most direct answer in the response.
func reduceSerpResponse(payload serpResponse) (string, error) {
	if payload.Error != "" {
		return "", fmt.Errorf("serpapi error: %s", payload.Error)
	}
	if box := payload.AnswerBox; box != nil {
		switch {
		case box.Answer != "":
			return box.Answer, nil
		case box.Snippet != "":
			return box.Snippet, nil
		case len(box.SnippetHighlightedWords) > 0:
			return box.SnippetHighlightedWords[0], nil
		}
	}
	if kg := payload.KnowledgeGraph; kg != nil && kg.Description != "" {
		return kg.Description, nil
	}

	snippets := make([]string, 0, len(payload.OrganicResults))
	for _, result := range payload.OrganicResults {
		if snippet := strings.TrimSpace(result.Snippet); snippet != "" {
			snippets = append(snippets, snippet)
		}
	}
	if len(snippets) > 0 {
		return strings.Join(snippets, "\n"), nil
	}
	return noResultText, nil
}
