package monitor

import "strings"

// Conversational analytics are deliberately rough signals, not telemetry.
// The numbers below are part of the observable contract; do not tune them
// without a requirement.
const (
	// speakingRateWPM models an assumed average speaking rate; talk time is
	// estimated from word count at this rate.
	speakingRateWPM = 150

	// shortUtteranceMax bounds the length of an utterance counted as a
	// clarifying interjection.
	shortUtteranceMax = 30

	speakerAssistant = "assistant"
)

// analyzeTranscription folds one transcription event into the call's
// analytics. An "interruption" is a short assistant utterance ending in a
// question mark: a proxy for a clarifying interjection, not a guarantee that
// anyone was actually interrupted.
func analyzeTranscription(a *CallAnalytics, text, speaker string) {
	words := len(strings.Fields(text))
	a.TalkTimeSeconds += float64(words) / speakingRateWPM * 60

	if speaker == speakerAssistant && strings.HasSuffix(text, "?") && len(text) < shortUtteranceMax {
		a.Interruptions++
	}
}
