package models

// Word is a single transcribed word with timing information. The speech-to-text
// engine produces text/start/end/confidence; the alignment step fills in Speaker.
type Word struct {
	Text       string   `json:"text"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Confidence *float64 `json:"confidence,omitempty"`
	Speaker    string   `json:"speaker,omitempty"`
}

// Mid returns the temporal midpoint of the word.
func (w Word) Mid() float64 {
	return (w.Start + w.End) / 2
}

// SpeakerTurn is one contiguous interval attributed to a speaker label by the
// diarization engine. Turns may overlap and may leave gaps; no coverage
// invariant is assumed.
type SpeakerTurn struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// TranscriptSegment is a maximal run of consecutive words from one speaker.
// Start/End equal the first/last word's bounds and Text is the space-joined
// word texts. Words is nil when word timestamps were not requested; that is
// distinct from an empty run and must survive serialization.
type TranscriptSegment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Words   []Word  `json:"words,omitempty"`
}

// PipelineResult is the output of one full pipeline run. It is serialized into
// the job record on completion; the same type is decoded by the API side so
// the writer and reader cannot drift.
type PipelineResult struct {
	Text            string              `json:"text"`
	Language        string              `json:"language,omitempty"`
	DurationSeconds float64             `json:"duration_seconds"`
	Speakers        []string            `json:"speakers"`
	Segments        []TranscriptSegment `json:"segments"`
	Words           []Word              `json:"words,omitempty"`
}
