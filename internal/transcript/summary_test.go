package transcript

import "testing"

func TestSummarize(t *testing.T) {
	r := &AnalyzeResult{
		RawTranscript:     "um so like I think um you know it works",
		CleanedTranscript: "so I think it works",
		Fillers: []FillerEntry{
			{Word: "like", Count: 1},
			{Word: "um", Count: 2},
			{Word: "you know", Count: 1},
		},
		TotalFillers: 4,
		OriginalWPM:  150,
		CleanedWPM:   90,
	}

	s := Summarize(r)

	if s.RawWords != 10 {
		t.Errorf("RawWords = %d, want 10", s.RawWords)
	}
	if s.CleanedWords != 5 {
		t.Errorf("CleanedWords = %d, want 5", s.CleanedWords)
	}
	if s.WordsSaved != 5 {
		t.Errorf("WordsSaved = %d, want 5", s.WordsSaved)
	}
	if s.FillerRate != 40 {
		t.Errorf("FillerRate = %d, want 40", s.FillerRate)
	}
	want := []string{"um", "like", "you know"}
	for i, w := range want {
		if s.Breakdown[i].Word != w {
			t.Errorf("Breakdown[%d] = %q, want %q", i, s.Breakdown[i].Word, w)
		}
	}
	if r.Fillers[0].Word != "like" {
		t.Error("Summarize reordered the caller's filler slice")
	}
}

func TestSummarize_EmptyAndGrowth(t *testing.T) {
	s := Summarize(&AnalyzeResult{CleanedTranscript: "added words here"})
	if s.FillerRate != 0 {
		t.Errorf("FillerRate = %d, want 0", s.FillerRate)
	}
	if s.WordsSaved != 0 {
		t.Errorf("WordsSaved = %d, want 0 when cleaned is longer", s.WordsSaved)
	}
}

func TestSummarize_RoundsRate(t *testing.T) {
	s := Summarize(&AnalyzeResult{
		RawTranscript: "a b c",
		TotalFillers:  1,
	})
	if s.FillerRate != 33 {
		t.Errorf("FillerRate = %d, want 33", s.FillerRate)
	}
}
