package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const googleNewsMaxItems = 8

type rssFeed struct {
	XMLName xml.Name  `xml:"rss"`
	Items   []rssItem `xml:"channel>item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Source      string `xml:"source"`
}

type googleNews struct {
	client *resty.Client
}

func newGoogleNews(baseURL string, timeout time.Duration) *googleNews {
	if baseURL == "" {
		baseURL = "https://news.google.com"
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeoutOrDefault(timeout)).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; stock-advisor/1.0)")
	return &googleNews{client: client}
}

func (g *googleNews) name() string { return "GoogleNewsSearch" }

func (g *googleNews) description() string {
	return "Useful for searching recent news headlines, market sentiment, and geopolitical events related to a stock using Google News."
}

func (g *googleNews) search(ctx context.Context, query string) (string, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":    query,
			"hl":   "en-US",
			"gl":   "US",
			"ceid": "US:en",
		}).
		Get("/rss/search")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("google news returned status %d", resp.StatusCode())
	}

	var feed rssFeed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return "", fmt.Errorf("decode google news feed: %w", err)
	}
	return renderNewsItems(feed.Items), nil
}

func renderNewsItems(items []rssItem) string {
	if len(items) == 0 {
		return noResultText
	}
	if len(items) > googleNewsMaxItems {
		items = items[:googleNewsMaxItems]
	}

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, strings.TrimSpace(item.Title))
		meta := make([]string, 0, 2)
		if source := strings.TrimSpace(item.Source); source != "" {
			meta = append(meta, source)
		}
		if date := strings.TrimSpace(item.PubDate); date != "" {
			meta = append(meta, date)
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(meta, ", "))
		}
		if text := stripHTML(item.Description); text != "" && text != strings.TrimSpace(item.Title) {
			b.WriteString("\n   ")
			b.WriteString(text)
		}
	}
	return b.String()
}

func stripHTML(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
