package highlights

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/highcut/internal/faults"
	"github.com/forPelevin/highcut/internal/types"
)

var reArray = regexp.MustCompile(`(?s)\[.*\]`)

// ParseSegments recovers a list of {start, end} objects from free-form model
// output. It tolerates code fences, prose around the JSON, a {"clips": [...]}
// wrapper and a single bare object. An explicit [] yields an empty, non-nil
// slice. Anything else fails with *faults.UnparseableResponseError.
func ParseSegments(raw string) ([]types.Segment, error) {
	text := stripCodeFence(raw)

	var lastErr error
	for _, candidate := range jsonCandidates(text) {
		segs, err := decodeSegments(candidate)
		if err == nil {
			return segs, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no json found")
	}
	return nil, &faults.UnparseableResponseError{Raw: raw, Err: lastErr}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimLeft(s[3:], "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// jsonCandidates lists substrings worth decoding, most specific first.
func jsonCandidates(text string) []string {
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		for _, existing := range out {
			if existing == s {
				return
			}
		}
		out = append(out, s)
	}
	if m := reArray.FindString(text); m != "" {
		add(m)
	}
	add(text)
	if i, j := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}'); i >= 0 && j > i {
		add(text[i : j+1])
	}
	return out
}

type rawSegment struct {
	Start *flexFloat `json:"start"`
	End   *flexFloat `json:"end"`
}

func decodeSegments(s string) ([]types.Segment, error) {
	data := []byte(s)
	switch firstByte(data) {
	case '[':
		return decodeList(data)
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}
		// Only an array under "clips" is a wrapper.
		if clips, ok := wrapper["clips"]; ok && firstByte(clips) == '[' {
			return decodeList(clips)
		}
		var one rawSegment
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, err
		}
		seg, err := one.segment(0)
		if err != nil {
			return nil, err
		}
		return []types.Segment{seg}, nil
	default:
		return nil, fmt.Errorf("expected json array or object")
	}
}

func decodeList(data []byte) ([]types.Segment, error) {
	var items []rawSegment
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, fmt.Errorf("expected json array")
	}
	out := make([]types.Segment, 0, len(items))
	for i, it := range items {
		seg, err := it.segment(i)
		if err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, nil
}

func (r rawSegment) segment(idx int) (types.Segment, error) {
	if r.Start == nil || r.End == nil {
		return types.Segment{}, fmt.Errorf("item %d: missing start or end", idx)
	}
	return types.Segment{Start: float64(*r.Start), End: float64(*r.End)}, nil
}

func firstByte(b []byte) byte {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

// flexFloat accepts 12.5 as well as "12.5".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
