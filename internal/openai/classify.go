package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cmpocmkp/kptube-go/internal/model"
	"github.com/cmpocmkp/kptube-go/internal/pipeline"
)

const classifySystemPrompt = `You are an expert political analyst specializing in Pakistani politics, particularly focused on Khyber Pakhtunkhwa (KP) province.

Your task is to analyze video transcripts and determine:
1. Whether the content is KP-related (mentions KP, Khyber Pakhtunkhwa, Chief Minister KP, KP government, or Imran Khan in a KP context)
2. The sentiment toward three specific entities:
   - Chief Minister Khyber Pakhtunkhwa (CM KP)
   - Government of Khyber Pakhtunkhwa (KP Government)
   - Imran Khan

For each entity, provide:
- sentimentLabel: one of "positive", "negative", "neutral", "mixed", or "not_mentioned"
- confidence: a number between 0 and 1 indicating your confidence in the sentiment assessment
- explanation: a brief explanation (2-3 sentences) of why you assigned this sentiment

Return ONLY valid JSON in this exact format:
{
  "isKPRelated": true/false,
  "cmKp": {"sentimentLabel": "...", "confidence": 0.0, "explanation": "..."},
  "kpGovernment": {"sentimentLabel": "...", "confidence": 0.0, "explanation": "..."},
  "imranKhan": {"sentimentLabel": "...", "confidence": 0.0, "explanation": "..."}
}

Be objective and base your analysis solely on the transcript content.`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// entityJudgment is the classifier's raw per-entity output before
// validation. Confidence is a pointer so a missing field is
// distinguishable from zero.
type entityJudgment struct {
	SentimentLabel string   `json:"sentimentLabel"`
	Confidence     *float64 `json:"confidence"`
	Explanation    string   `json:"explanation"`
}

type classifierOutput struct {
	IsKPRelated  bool           `json:"isKPRelated"`
	CmKp         entityJudgment `json:"cmKp"`
	KpGovernment entityJudgment `json:"kpGovernment"`
	ImranKhan    entityJudgment `json:"imranKhan"`
}

// Classify sends the transcript plus video metadata to the chat model and
// returns the validated three-entity sentiment judgment. Out-of-range
// confidences are clamped and unrecognized labels default to neutral
// rather than failing the video.
func (c *Client) Classify(ctx context.Context, transcript string, meta pipeline.ClassifyMetadata) (*pipeline.Classification, error) {
	req := chatRequest{
		Model:       c.chatModel,
		Temperature: 0.3,
		Messages: []chatMessage{
			{Role: "system", Content: classifySystemPrompt},
			{Role: "user", Content: buildUserPrompt(transcript, meta)},
		},
	}
	req.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", "application/json", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openai: empty classification response")
	}

	return parseClassification(resp.Choices[0].Message.Content)
}

func buildUserPrompt(transcript string, meta pipeline.ClassifyMetadata) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Video Title: %s\n", meta.Title)
	fmt.Fprintf(&sb, "Channel: %s\n", meta.ChannelName)
	if !meta.PublishedAt.IsZero() {
		fmt.Fprintf(&sb, "Published: %s\n", meta.PublishedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&sb, "\nTranscript:\n%s\n\n", transcript)
	sb.WriteString("Analyze this transcript and return the JSON response as specified.")
	return sb.String()
}

// parseClassification validates the model's raw JSON output into the
// pipeline's Classification shape.
func parseClassification(content string) (*pipeline.Classification, error) {
	var out classifierOutput
	if err := json.Unmarshal([]byte(stripFences(content)), &out); err != nil {
		return nil, fmt.Errorf("openai: invalid classification JSON: %w", err)
	}

	return &pipeline.Classification{
		IsKPRelated: out.IsKPRelated,
		Analysis: &model.VideoAnalysis{
			CmKp:         sanitizeJudgment("cmKp", out.CmKp),
			KpGovernment: sanitizeJudgment("kpGovernment", out.KpGovernment),
			ImranKhan:    sanitizeJudgment("imranKhan", out.ImranKhan),
		},
	}, nil
}

func sanitizeJudgment(entity string, j entityJudgment) *model.SentimentAnalysis {
	label, ok := model.NormalizeLabel(j.SentimentLabel)
	if !ok {
		log.Printf("openai: %s: unrecognized sentiment label %q, defaulting to neutral", entity, j.SentimentLabel)
	}

	confidence := 0.5
	if j.Confidence != nil {
		confidence = model.ClampConfidence(*j.Confidence)
	}

	return &model.SentimentAnalysis{
		SentimentLabel: label,
		Confidence:     confidence,
		Explanation:    j.Explanation,
	}
}

// stripFences removes markdown code fences some models wrap around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
