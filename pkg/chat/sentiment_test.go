package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/morganstate-cs/morganai/pkg/chat"
)

func TestAnalyzeSentiment(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		reply string
		want  chat.Sentiment
	}{
		{
			name:  "clean json",
			reply: `{"sentiment": "positive", "score": 0.92}`,
			want:  chat.Sentiment{Sentiment: "positive", Score: 0.92},
		},
		{
			name:  "fenced json is repaired",
			reply: "```json\n{\"sentiment\": \"negative\", \"score\": 0.8}\n```",
			want:  chat.Sentiment{Sentiment: "negative", Score: 0.8},
		},
		{
			name:  "trailing comma is repaired",
			reply: `{"sentiment": "neutral", "score": 0.5,}`,
			want:  chat.Sentiment{Sentiment: "neutral", Score: 0.5},
		},
		{
			name:  "prose falls back to neutral",
			reply: "The text reads as fairly upbeat overall.",
			want:  chat.Sentiment{Sentiment: "neutral", Score: 0.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeCompleter{reply: tt.reply}
			s := newTestService(t, fc)

			got, err := s.AnalyzeSentiment(ctx, "some student feedback")
			if err != nil {
				t.Fatalf("AnalyzeSentiment: %v", err)
			}
			if got != tt.want {
				t.Errorf("sentiment = %+v, want %+v", got, tt.want)
			}
			if fc.params.Temperature != 0.3 || fc.params.MaxTokens != 100 {
				t.Errorf("params = %+v", fc.params)
			}
		})
	}

	t.Run("model failure surfaces and stays neutral", func(t *testing.T) {
		fc := &fakeCompleter{err: errors.New("down")}
		s := newTestService(t, fc)

		got, err := s.AnalyzeSentiment(ctx, "text")
		if err == nil {
			t.Error("err = nil, want model error")
		}
		if got != (chat.Sentiment{Sentiment: "neutral", Score: 0.5}) {
			t.Errorf("sentiment = %+v, want neutral fallback", got)
		}
	})
}
