package transcript

// FillerEntry is one filler word or phrase reported by the analysis service.
type FillerEntry struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Token is a slice of the raw transcript. Concatenating every token of a
// tokenized transcript reproduces it exactly.
type Token struct {
	Text     string
	IsFiller bool
}

// WordToken is one word of the cleaned transcript in an edit session.
type WordToken struct {
	ID   int
	Text string
}

// WordDiff reports whether a raw transcript word was removed by cleanup.
type WordDiff struct {
	Text    string
	Removed bool
}

// SyncMode tells which edit surface is authoritative.
type SyncMode int

const (
	// WordDriven means the text is rebuilt from the kept words.
	WordDriven SyncMode = iota
	// Manual means the text was typed directly and the kept mask may be stale.
	Manual
)

func (m SyncMode) String() string {
	switch m {
	case WordDriven:
		return "word-driven"
	case Manual:
		return "manual"
	default:
		return "unknown"
	}
}

// AnalyzeResult is the JSON body returned by the /analyze endpoint.
type AnalyzeResult struct {
	RawTranscript     string        `json:"raw_transcript"`
	CleanedTranscript string        `json:"cleaned_transcript"`
	Fillers           []FillerEntry `json:"fillers"`
	TotalFillers      int           `json:"total_fillers"`
	OriginalWPM       int           `json:"original_wpm"`
	CleanedWPM        int           `json:"cleaned_wpm"`
	AudioURL          string        `json:"audio_url"`
}
