package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDetectRedFlags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"clean", "Great teammate, always on time and helpful.", nil},
		{"bullying", "there was bullying on our team", []string{"bully"}},
		{"case insensitive", "He would HARASS people constantly", []string{"harass"}},
		{"multiple sorted", "cheating and harassment and threats", []string{"cheat", "harass", "threat"}},
		{"stem within word", "I suspect plagiarism in the report", []string{"plagiar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectRedFlags(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectRedFlags(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSimpleSummarizeShortText(t *testing.T) {
	texts := []string{"Good work.", "Very reliable."}
	got := SimpleSummarize(texts, 3)
	if got != "Good work. Very reliable." {
		t.Errorf("got %q", got)
	}
}

func TestSimpleSummarizeEmpty(t *testing.T) {
	if got := SimpleSummarize(nil, 3); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestSimpleSummarizePicksFrequentSentences(t *testing.T) {
	texts := []string{
		"Alice writes code. Alice writes tests. Alice writes docs. Nothing here.",
		"Bananas!",
	}
	got := SimpleSummarize(texts, 2)

	sentences := strings.Count(got, ".") + strings.Count(got, "!")
	if sentences > 2 {
		t.Errorf("summary has more than 2 sentences: %q", got)
	}
	// "Alice writes X." sentences share high-frequency words and must win
	// over the one-off sentences.
	if !strings.Contains(got, "Alice writes") {
		t.Errorf("expected high-frequency sentences in summary, got %q", got)
	}
	if strings.Contains(got, "Bananas") {
		t.Errorf("low-frequency sentence should be dropped, got %q", got)
	}
}

func TestLocalSummarizerNeverFails(t *testing.T) {
	s := LocalSummarizer{MaxSentences: 2}
	got, err := s.Summarize(context.Background(), []string{"One. Two. Three. Four."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == "" {
		t.Error("expected non-empty summary")
	}
}

func TestOpenAISummarizerFallsBackOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewOpenAISummarizer("test-key", server.Client())
	s.Endpoint = server.URL

	texts := []string{"Solid teammate. Always prepared."}
	got, err := s.Summarize(context.Background(), texts)
	if err != nil {
		t.Fatalf("fallback must swallow remote errors, got %v", err)
	}
	if got != "Solid teammate. Always prepared." {
		t.Errorf("expected local extractive summary, got %q", got)
	}
}

func TestOpenAISummarizerFallsBackOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	s := NewOpenAISummarizer("test-key", server.Client())
	s.Endpoint = server.URL

	got, err := s.Summarize(context.Background(), []string{"Fine work."})
	if err != nil {
		t.Fatalf("fallback must swallow malformed responses, got %v", err)
	}
	if got != "Fine work." {
		t.Errorf("expected local summary, got %q", got)
	}
}

func TestOpenAISummarizerFallsBackOnTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := &http.Client{Timeout: 10 * time.Millisecond}
	s := NewOpenAISummarizer("test-key", client)
	s.Endpoint = server.URL

	got, err := s.Summarize(context.Background(), []string{"Quick note."})
	if err != nil {
		t.Fatalf("fallback must swallow timeouts, got %v", err)
	}
	if got != "Quick note." {
		t.Errorf("expected local summary, got %q", got)
	}
}

func TestOpenAISummarizerUsesRemoteResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "- good teammate"}}]}`))
	}))
	defer server.Close()

	s := NewOpenAISummarizer("test-key", server.Client())
	s.Endpoint = server.URL

	got, err := s.Summarize(context.Background(), []string{"long feedback here"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "- good teammate" {
		t.Errorf("got %q, want remote content", got)
	}
}
