package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmpocmkp/kptube-go/internal/model"
	"github.com/cmpocmkp/kptube-go/internal/pipeline"
)

func TestParseClassification(t *testing.T) {
	content := `{
		"isKPRelated": true,
		"cmKp": {"sentimentLabel": "positive", "confidence": 0.85, "explanation": "praised the health card"},
		"kpGovernment": {"sentimentLabel": "mixed", "confidence": 0.6, "explanation": "criticized delays"},
		"imranKhan": {"sentimentLabel": "not_mentioned", "confidence": 0.95, "explanation": "not discussed"}
	}`

	got, err := parseClassification(content)
	if err != nil {
		t.Fatalf("parseClassification: %v", err)
	}
	if !got.IsKPRelated {
		t.Error("isKPRelated = false, want true")
	}
	if got.Analysis.CmKp.SentimentLabel != model.SentimentPositive {
		t.Errorf("cmKp label = %s, want positive", got.Analysis.CmKp.SentimentLabel)
	}
	if got.Analysis.KpGovernment.Confidence != 0.6 {
		t.Errorf("kpGovernment confidence = %v, want 0.6", got.Analysis.KpGovernment.Confidence)
	}
	if got.Analysis.ImranKhan.SentimentLabel != model.SentimentNotMentioned {
		t.Errorf("imranKhan label = %s, want not_mentioned", got.Analysis.ImranKhan.SentimentLabel)
	}
}

func TestParseClassification_ClampsAndDefaults(t *testing.T) {
	content := `{
		"isKPRelated": false,
		"cmKp": {"sentimentLabel": "very positive", "confidence": 1.7, "explanation": "x"},
		"kpGovernment": {"sentimentLabel": "negative", "confidence": -0.3, "explanation": "y"},
		"imranKhan": {"sentimentLabel": "neutral", "explanation": "z"}
	}`

	got, err := parseClassification(content)
	if err != nil {
		t.Fatalf("parseClassification: %v", err)
	}

	if got.Analysis.CmKp.SentimentLabel != model.SentimentNeutral {
		t.Errorf("unknown label = %s, want neutral default", got.Analysis.CmKp.SentimentLabel)
	}
	if got.Analysis.CmKp.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", got.Analysis.CmKp.Confidence)
	}
	if got.Analysis.KpGovernment.Confidence != 0 {
		t.Errorf("confidence = %v, want clamped to 0", got.Analysis.KpGovernment.Confidence)
	}
	if got.Analysis.ImranKhan.Confidence != 0.5 {
		t.Errorf("missing confidence = %v, want 0.5", got.Analysis.ImranKhan.Confidence)
	}
}

func TestParseClassification_CodeFences(t *testing.T) {
	content := "```json\n{\"isKPRelated\": true, \"cmKp\": {\"sentimentLabel\": \"neutral\", \"confidence\": 0.5, \"explanation\": \"\"}, \"kpGovernment\": {\"sentimentLabel\": \"neutral\", \"confidence\": 0.5, \"explanation\": \"\"}, \"imranKhan\": {\"sentimentLabel\": \"neutral\", \"confidence\": 0.5, \"explanation\": \"\"}}\n```"

	got, err := parseClassification(content)
	if err != nil {
		t.Fatalf("parseClassification with fences: %v", err)
	}
	if !got.IsKPRelated {
		t.Error("isKPRelated = false, want true")
	}
}

func TestParseClassification_InvalidJSON(t *testing.T) {
	if _, err := parseClassification("I could not analyze this transcript."); err == nil {
		t.Fatal("expected error for non-JSON content")
	}
}

func TestClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		inner := `{\"isKPRelated\": true, \"cmKp\": {\"sentimentLabel\": \"positive\", \"confidence\": 0.8, \"explanation\": \"e\"}, \"kpGovernment\": {\"sentimentLabel\": \"neutral\", \"confidence\": 0.7, \"explanation\": \"e\"}, \"imranKhan\": {\"sentimentLabel\": \"negative\", \"confidence\": 0.9, \"explanation\": \"e\"}}`
		fmt.Fprintf(w, `{"choices":[{"message":{"content":"%s"}}]}`, inner)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)

	got, err := c.Classify(context.Background(), "transcript text", pipeline.ClassifyMetadata{Title: "t", ChannelName: "ch"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Analysis.ImranKhan.SentimentLabel != model.SentimentNegative {
		t.Errorf("imranKhan label = %s, want negative", got.Analysis.ImranKhan.SentimentLabel)
	}
}

func TestClassify_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	if _, err := c.Classify(context.Background(), "x", pipeline.ClassifyMetadata{}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
