package highlights

import (
	"testing"

	"github.com/forPelevin/highcut/internal/types"
)

func blocksOf(spans ...[2]float64) []types.TranscriptBlock {
	out := make([]types.TranscriptBlock, 0, len(spans))
	for _, s := range spans {
		out = append(out, types.TranscriptBlock{Start: s[0], End: s[1], Text: "x"})
	}
	return out
}

func TestGroupBlocks_StopsAtMinLen(t *testing.T) {
	blocks := blocksOf([2]float64{0, 2}, [2]float64{2, 5}, [2]float64{5, 9})
	got := GroupBlocks(blocks, 3, 10)
	want := []types.Segment{{Start: 0, End: 5}, {Start: 5, End: 9}}
	if len(got) != len(want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestGroupBlocks_DropsShortWindows(t *testing.T) {
	if got := GroupBlocks(blocksOf([2]float64{0, 1}), 3, 10); len(got) != 0 {
		t.Fatalf("expected no segments, got %+v", got)
	}
}

func TestGroupBlocks_DropsOversizedBlock(t *testing.T) {
	got := GroupBlocks(blocksOf([2]float64{0, 30}, [2]float64{30, 33}, [2]float64{33, 36}), 5, 20)
	if len(got) != 1 || got[0] != (types.Segment{Start: 30, End: 36}) {
		t.Fatalf("got %+v", got)
	}
}

func TestGroupBlocks_InvalidBounds(t *testing.T) {
	blocks := blocksOf([2]float64{0, 5})
	if got := GroupBlocks(blocks, 10, 5); got != nil {
		t.Fatalf("expected nil for max<min, got %+v", got)
	}
	if got := GroupBlocks(blocks, 0, 0); got != nil {
		t.Fatalf("expected nil for max<=0, got %+v", got)
	}
}

func TestGroupBlocks_Properties(t *testing.T) {
	var blocks []types.TranscriptBlock
	t0 := 0.0
	for i := 0; i < 200; i++ {
		d := float64(1 + (i*7)%9)
		if i%13 == 0 {
			d = 45
		}
		blocks = append(blocks, types.TranscriptBlock{Start: t0, End: t0 + d, Text: "w"})
		t0 += d
	}
	for _, bounds := range [][2]float64{{3, 10}, {15, 40}, {0, 5}, {10, 30}} {
		minLen, maxLen := bounds[0], bounds[1]
		segs := GroupBlocks(blocks, minLen, maxLen)
		if len(segs) == 0 {
			t.Fatalf("expected segments for bounds %v", bounds)
		}
		for i, s := range segs {
			if d := s.Duration(); d < minLen || d > maxLen {
				t.Fatalf("bounds %v: segment %+v duration %v out of range", bounds, s, d)
			}
			if i > 0 && s.Start < segs[i-1].End {
				t.Fatalf("bounds %v: segment %+v overlaps %+v", bounds, s, segs[i-1])
			}
		}
	}
}
