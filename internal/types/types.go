package types

// TranscriptBlock is one timed cue of recognized speech. Times are seconds
// from the start of the media.
type TranscriptBlock struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Segment is a [Start, End) highlight range in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns End-Start.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Valid reports whether 0 <= Start < End.
func (s Segment) Valid() bool { return s.Start >= 0 && s.Start < s.End }

// ScoredSegment is a segment enriched by the classification pass.
type ScoredSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score int     `json:"score"`
	Text  string  `json:"text"`
}

// Segment drops the classification fields.
func (s ScoredSegment) Segment() Segment { return Segment{Start: s.Start, End: s.End} }

// PromptContext is the read-only view substituted into a detection prompt.
type PromptContext struct {
	TranscriptText string
	Duration       float64
}

// Clip is one materialized highlight file.
type Clip struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	File  string  `json:"file"`
}

// Discard records a segment the materializer refused to cut.
type Discard struct {
	Index  int     `json:"index"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Reason string  `json:"reason"`
}

// Stage is a job lifecycle state.
type Stage string

const (
	StageQueued       Stage = "queued"
	StageExtracting   Stage = "extracting"
	StageTranscribing Stage = "transcribing"
	StageDetecting    Stage = "detecting"
	StageClassifying  Stage = "classifying"
	StageCutting      Stage = "cutting"
	StageCleaning     Stage = "cleaning"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s Stage) Terminal() bool { return s == StageDone || s == StageFailed }
