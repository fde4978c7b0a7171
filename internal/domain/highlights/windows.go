package highlights

import (
	"github.com/forPelevin/highcut/internal/types"
)

// GroupBlocks builds highlight windows from consecutive transcript blocks.
//
// Each window starts at a block and grows one block at a time while the
// span stays within maxLen. Growth stops at the first block that brings the
// span to minLen, even when a longer window would still fit. Windows that
// never reach minLen are dropped, as is a lone block longer than maxLen.
// Scanning resumes after the last block a window consumed, so emitted
// windows never overlap.
func GroupBlocks(blocks []types.TranscriptBlock, minLen, maxLen float64) []types.Segment {
	if minLen < 0 {
		minLen = 0
	}
	if maxLen <= 0 || maxLen < minLen {
		return nil
	}

	var out []types.Segment
	n := len(blocks)
	for i := 0; i < n; {
		start, end := blocks[i].Start, blocks[i].End
		j := i + 1
		committed := false
		for j < n && blocks[j].End-start <= maxLen {
			end = blocks[j].End
			if end-start >= minLen {
				committed = true
				break
			}
			j++
		}

		if span := end - start; span >= minLen && span <= maxLen {
			out = append(out, types.Segment{Start: start, End: end})
		}

		if committed {
			i = j + 1
		} else {
			i = j
		}
	}
	return out
}
