package monitor

import (
	"math"
	"testing"
)

func TestAnalyzeTranscription_TalkTimeAt150WPM(t *testing.T) {
	var a CallAnalytics
	analyzeTranscription(&a, "Hi there", "user")

	want := 2.0 / 150 * 60 // 0.8s for two words
	if math.Abs(a.TalkTimeSeconds-want) > 1e-9 {
		t.Fatalf("expected talk time %.3f, got %.3f", want, a.TalkTimeSeconds)
	}
}

func TestAnalyzeTranscription_InterruptionHeuristic(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		speaker string
		want    int
	}{
		{"short assistant question", "Sorry, you said five?", "assistant", 1},
		{"user question not counted", "Could you say that again?", "user", 0},
		{"assistant statement not counted", "Let me check that.", "assistant", 0},
		{"long assistant question not counted", "Could you walk me through exactly what happened there?", "assistant", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var a CallAnalytics
			analyzeTranscription(&a, tc.text, tc.speaker)
			if a.Interruptions != tc.want {
				t.Fatalf("expected %d interruptions, got %d", tc.want, a.Interruptions)
			}
		})
	}
}

func TestAnalyzeTranscription_Accumulates(t *testing.T) {
	var a CallAnalytics
	analyzeTranscription(&a, "one two three", "user")
	analyzeTranscription(&a, "four five six", "user")

	want := 6.0 / 150 * 60
	if math.Abs(a.TalkTimeSeconds-want) > 1e-9 {
		t.Fatalf("expected accumulated talk time %.3f, got %.3f", want, a.TalkTimeSeconds)
	}
}
