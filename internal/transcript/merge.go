package transcript

import (
	"sort"
	"strings"

	"github.com/meetscribe/meet-transcriber/internal/models"
)

// MergeWords collapses a speaker-labeled word sequence into contiguous
// per-speaker segments. A new segment starts at every speaker change,
// including transitions into and out of UNKNOWN; the output segment count
// equals the number of maximal same-speaker runs.
func MergeWords(words []models.Word) []models.TranscriptSegment {
	if len(words) == 0 {
		return nil
	}

	var segments []models.TranscriptSegment
	runStart := 0
	for i := 1; i <= len(words); i++ {
		if i == len(words) || words[i].Speaker != words[runStart].Speaker {
			segments = append(segments, newSegment(words[runStart:i]))
			runStart = i
		}
	}
	return segments
}

func newSegment(run []models.Word) models.TranscriptSegment {
	texts := make([]string, len(run))
	for i, w := range run {
		texts[i] = w.Text
	}
	return models.TranscriptSegment{
		Speaker: run[0].Speaker,
		Start:   run[0].Start,
		End:     run[len(run)-1].End,
		Text:    strings.Join(texts, " "),
		Words:   run,
	}
}

// Speakers returns the sorted set of distinct speaker labels across segments.
func Speakers(segments []models.TranscriptSegment) []string {
	seen := make(map[string]bool, len(segments))
	var speakers []string
	for _, seg := range segments {
		if !seen[seg.Speaker] {
			seen[seg.Speaker] = true
			speakers = append(speakers, seg.Speaker)
		}
	}
	sort.Strings(speakers)
	return speakers
}
