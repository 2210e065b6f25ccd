package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

// redFlagKeywords are sensitive-topic stems matched case-insensitively
// against comment text. The vocabulary is fixed.
var redFlagKeywords = []string{
	"harass", "threat", "unsafe", "violence", "abuse", "bully",
	"discrim", "cheat", "plagiar", "drugs", "weapon", "suicide",
	"self-harm", "assault", "racist", "sexist", "hate", "stalker",
}

var (
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]*`)
	wordRe     = regexp.MustCompile(`[a-zA-Z']+`)
)

// DetectRedFlags returns the sorted set of vocabulary stems found in the
// text. Empty text yields none.
func DetectRedFlags(text string) []string {
	if text == "" {
		return nil
	}
	t := strings.ToLower(text)
	var found []string
	for _, k := range redFlagKeywords {
		if strings.Contains(t, k) {
			found = append(found, k)
		}
	}
	sort.Strings(found)
	return found
}

// DefaultSummarySentences caps the extractive summary length.
const DefaultSummarySentences = 3

// SimpleSummarize builds a frequency-based extractive summary of the joined
// comments. With maxSentences or fewer sentences the full text is returned;
// otherwise each sentence is scored by the summed global frequency of its
// words and the top sentences are returned in descending score order.
func SimpleSummarize(texts []string, maxSentences int) string {
	fullText := strings.TrimSpace(strings.Join(texts, " "))
	if fullText == "" {
		return ""
	}

	var sentences []string
	for _, s := range sentenceRe.FindAllString(fullText, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) <= maxSentences {
		return fullText
	}

	freq := make(map[string]int)
	for _, w := range wordRe.FindAllString(strings.ToLower(fullText), -1) {
		freq[w]++
	}

	type scored struct {
		score    int
		sentence string
	}
	ranked := make([]scored, 0, len(sentences))
	for _, s := range sentences {
		total := 0
		for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
			total += freq[w]
		}
		ranked = append(ranked, scored{score: total, sentence: s})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	top := make([]string, 0, maxSentences)
	for i := 0; i < maxSentences; i++ {
		top = append(top, ranked[i].sentence)
	}
	return strings.TrimSpace(strings.Join(top, " "))
}

// Summarizer condenses a set of feedback comments for one evaluatee.
type Summarizer interface {
	Summarize(ctx context.Context, texts []string) (string, error)
}

// LocalSummarizer is the extractive fallback; it cannot fail.
type LocalSummarizer struct {
	MaxSentences int
}

func (s LocalSummarizer) Summarize(_ context.Context, texts []string) (string, error) {
	limit := s.MaxSentences
	if limit <= 0 {
		limit = DefaultSummarySentences
	}
	return SimpleSummarize(texts, limit), nil
}

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAISummarizer asks the OpenAI chat completions API for a short
// summary. Any failure — timeout, transport error, bad status, malformed
// body — falls back to the local extractive summarizer, so callers never
// observe the remote failure.
type OpenAISummarizer struct {
	APIKey   string
	Model    string
	Endpoint string
	client   *http.Client
	local    LocalSummarizer
}

// NewOpenAISummarizer constructs an OpenAISummarizer.
func NewOpenAISummarizer(apiKey string, client *http.Client) *OpenAISummarizer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &OpenAISummarizer{
		APIKey:   apiKey,
		Model:    "gpt-3.5-turbo",
		Endpoint: openAIEndpoint,
		client:   client,
		local:    LocalSummarizer{MaxSentences: DefaultSummarySentences},
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, texts []string) (string, error) {
	out, err := s.remoteSummarize(ctx, texts)
	if err != nil {
		log.Printf("remote summarizer failed, using local summary: %v", err)
		return s.local.Summarize(ctx, texts)
	}
	return out, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *OpenAISummarizer) remoteSummarize(ctx context.Context, texts []string) (string, error) {
	payload := chatRequest{
		Model: s.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "Summarize peer feedback succinctly in 3 bullet points."},
			{Role: "user", Content: strings.Join(texts, "\n")},
		},
		Temperature: 0.2,
		MaxTokens:   200,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("summarization API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("summarization API returned no choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("summarization API returned empty content")
	}
	return content, nil
}

// SummarizerFromEnv selects the remote summarizer when OPENAI_API_KEY is
// set, otherwise the local one.
func SummarizerFromEnv() Summarizer {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAISummarizer(key, nil)
	}
	return LocalSummarizer{MaxSentences: DefaultSummarySentences}
}
