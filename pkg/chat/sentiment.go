package chat

import (
	"context"
	"encoding/json"

	"github.com/kaptinlin/jsonrepair"
)

const sentimentPrompt = "Analyze the sentiment of the following text. Return a JSON with 'sentiment' (positive/negative/neutral) and 'score' (0-1)."

// Sentiment is the model's read on a piece of text.
type Sentiment struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// neutralSentiment is the fallback when analysis fails.
func neutralSentiment() Sentiment {
	return Sentiment{Sentiment: "neutral", Score: 0.5}
}

// AnalyzeSentiment classifies text as positive, negative, or neutral.
// Unparseable model output degrades to neutral rather than erroring.
func (s *Service) AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error) {
	out, err := s.completer.Complete(ctx, []Prompt{
		{Role: RoleSystem, Content: sentimentPrompt},
		{Role: RoleUser, Content: text},
	}, Params{Temperature: 0.3, MaxTokens: 100})
	if err != nil {
		return neutralSentiment(), err
	}

	result, err := parseSentiment(out)
	if err != nil {
		s.logger.Warn("sentiment output unparseable", "output", out, "error", err)
		return neutralSentiment(), nil
	}
	return result, nil
}

// parseSentiment decodes the model's JSON, repairing near-JSON (code
// fences, trailing commas) before giving up.
func parseSentiment(out string) (Sentiment, error) {
	var result Sentiment
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(out)
		if rerr != nil {
			return Sentiment{}, err
		}
		if err := json.Unmarshal([]byte(repaired), &result); err != nil {
			return Sentiment{}, err
		}
	}
	if result.Sentiment == "" {
		result = neutralSentiment()
	}
	return result, nil
}
