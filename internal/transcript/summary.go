package transcript

import (
	"math"
	"sort"
	"strings"
)

// Summary holds the headline numbers for one analysis.
type Summary struct {
	TotalFillers int
	OriginalWPM  int
	CleanedWPM   int
	RawWords     int
	CleanedWords int
	WordsSaved   int
	// FillerRate is fillers per hundred raw words, rounded. Zero when the raw
	// transcript is empty.
	FillerRate int
	Breakdown  []FillerEntry
}

// Summarize computes the results summary for r. The filler breakdown is
// sorted by count, most frequent first, ties broken by word.
func Summarize(r *AnalyzeResult) Summary {
	s := Summary{
		TotalFillers: r.TotalFillers,
		OriginalWPM:  r.OriginalWPM,
		CleanedWPM:   r.CleanedWPM,
		RawWords:     len(strings.Fields(r.RawTranscript)),
		CleanedWords: len(strings.Fields(r.CleanedTranscript)),
	}
	s.WordsSaved = max(0, s.RawWords-s.CleanedWords)
	if s.RawWords > 0 {
		s.FillerRate = int(math.Round(float64(r.TotalFillers) / float64(s.RawWords) * 100))
	}

	s.Breakdown = append([]FillerEntry(nil), r.Fillers...)
	sort.SliceStable(s.Breakdown, func(i, j int) bool {
		if s.Breakdown[i].Count != s.Breakdown[j].Count {
			return s.Breakdown[i].Count > s.Breakdown[j].Count
		}
		return s.Breakdown[i].Word < s.Breakdown[j].Word
	})
	return s
}
