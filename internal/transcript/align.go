package transcript

import "github.com/meetscribe/meet-transcriber/internal/models"

const (
	// FallbackSpeaker labels every word when no diarization turns are
	// available (diarization disabled or failed).
	FallbackSpeaker = "SPEAKER_00"

	// UnknownSpeaker labels a word whose midpoint falls inside no turn.
	UnknownSpeaker = "UNKNOWN"
)

// AlignWords assigns a speaker label to each word by testing the word's
// temporal midpoint against the diarization turns. The first turn in list
// order whose interval contains the midpoint wins; overlapping turns and
// boundary ties resolve to whichever turn is tested first. Words are assumed
// time-ordered on input and their order is preserved; turns are not mutated.
func AlignWords(words []models.Word, turns []models.SpeakerTurn) []models.Word {
	if len(turns) == 0 {
		for i := range words {
			words[i].Speaker = FallbackSpeaker
		}
		return words
	}

	for i := range words {
		mid := words[i].Mid()
		words[i].Speaker = UnknownSpeaker
		for _, turn := range turns {
			if turn.Start <= mid && mid <= turn.End {
				words[i].Speaker = turn.Speaker
				break
			}
		}
	}
	return words
}
