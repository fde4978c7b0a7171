package highlights

import (
	"testing"

	"github.com/forPelevin/highcut/internal/types"
)

func TestExtractScore_Table(t *testing.T) {
	tests := []struct {
		reply string
		want  int
	}{
		{"8", 8},
		{"Score: 9/10", 9},
		{"  10\n", 10},
		{"I'd give it a seven", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := ExtractScore(tt.reply); got != tt.want {
			t.Fatalf("ExtractScore(%q)=%d want %d", tt.reply, got, tt.want)
		}
	}
}

func TestFilter_ThresholdAndStrip(t *testing.T) {
	scored := []types.ScoredSegment{
		{Start: 0, End: 10, Score: 6, Text: "meh"},
		{Start: 10, End: 20, Score: 7, Text: "good"},
		{Start: 20, End: 30, Score: 10, Text: "great"},
	}
	got := Filter(scored, 7)
	want := []types.Segment{{Start: 10, End: 20}, {Start: 20, End: 30}}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d: got %+v want %+v", i, got[i], want[i])
		}
	}
	if out := Filter(nil, 7); out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
}
