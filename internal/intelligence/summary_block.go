package intelligence

import (
	"sort"
	"strings"
)

// Summary block delimiters. The responder is instructed to reproduce these
// exactly; they are matched case-insensitively.
const (
	SummaryStartMarker = "SUMMARY_START"
	SummaryEndMarker   = "SUMMARY_END"
)

// ExtractSummaryBlock returns the text between the start and end markers.
// ok is false unless both markers are present with start before end.
func ExtractSummaryBlock(reply string) (string, bool) {
	lower := asciiLower(reply)
	start := strings.Index(lower, asciiLower(SummaryStartMarker))
	if start == -1 {
		return "", false
	}
	bodyStart := start + len(SummaryStartMarker)
	end := strings.Index(lower[bodyStart:], asciiLower(SummaryEndMarker))
	if end == -1 {
		return "", false
	}
	return reply[bodyStart : bodyStart+end], true
}

// StripSummaryBlock removes the delimited block from reply, leaving the
// conversational text around it.
func StripSummaryBlock(reply string) string {
	lower := asciiLower(reply)
	start := strings.Index(lower, asciiLower(SummaryStartMarker))
	if start == -1 {
		return strings.TrimSpace(reply)
	}
	end := strings.Index(lower[start:], asciiLower(SummaryEndMarker))
	if end == -1 {
		return strings.TrimSpace(reply)
	}
	tail := start + end + len(SummaryEndMarker)
	return strings.TrimSpace(strings.TrimSpace(reply[:start]) + "\n\n" + strings.TrimSpace(reply[tail:]))
}

// labelHit is one occurrence of a "<label>:" token inside a block.
type labelHit struct {
	label string
	start int // offset of the label text
	end   int // offset just past the colon
}

// FieldScanner tokenizes a summary block into label positions and slices
// the text between consecutive labels. Every registered label acts as a
// stop boundary for every other, whatever order the responder used.
type FieldScanner struct {
	labels []string
}

// NewFieldScanner creates a scanner for the given field labels.
func NewFieldScanner(labels ...string) *FieldScanner {
	return &FieldScanner{labels: labels}
}

// Scan returns the value of the first occurrence of each label found in raw.
// Labels that never appear are absent from the map; labels with no body map
// to the empty string.
func (s *FieldScanner) Scan(raw string) map[string]string {
	hits := s.hits(raw)
	endMarker := strings.Index(asciiLower(raw), asciiLower(SummaryEndMarker))

	values := make(map[string]string, len(s.labels))
	for i, h := range hits {
		if _, seen := values[h.label]; seen {
			continue
		}
		stop := len(raw)
		for _, next := range hits[i+1:] {
			if next.label != h.label && next.start >= h.end {
				stop = next.start
				break
			}
		}
		if endMarker >= h.end && endMarker < stop {
			stop = endMarker
		}
		values[h.label] = cleanFieldValue(raw[h.end:stop])
	}
	return values
}

// hits finds every "<label>:" occurrence that starts at a word boundary,
// sorted by position. When two labels overlap the longer one wins.
func (s *FieldScanner) hits(raw string) []labelHit {
	lower := asciiLower(raw)
	var hits []labelHit
	for _, label := range s.labels {
		needle := asciiLower(label) + ":"
		for from := 0; from < len(lower); {
			idx := strings.Index(lower[from:], needle)
			if idx == -1 {
				break
			}
			pos := from + idx
			if atWordBoundary(lower, pos) {
				hits = append(hits, labelHit{label: label, start: pos, end: pos + len(needle)})
			}
			from = pos + len(needle)
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].start != hits[j].start {
			return hits[i].start < hits[j].start
		}
		return hits[i].end > hits[j].end
	})

	kept := hits[:0]
	lastEnd := -1
	for _, h := range hits {
		if h.start < lastEnd {
			continue
		}
		kept = append(kept, h)
		lastEnd = h.end
	}
	return kept
}

// ExtractField returns the text labelled field in raw, stopping at the first
// label from others, the end marker, or the end of text. ok is false when
// the label never appears; an adjacent label yields ("", true).
func ExtractField(field string, others []string, raw string) (string, bool) {
	labels := make([]string, 0, len(others)+1)
	labels = append(labels, field)
	for _, o := range others {
		if !strings.EqualFold(o, field) {
			labels = append(labels, o)
		}
	}
	v, ok := NewFieldScanner(labels...).Scan(raw)[field]
	return v, ok
}

func atWordBoundary(s string, pos int) bool {
	if pos == 0 {
		return true
	}
	c := s[pos-1]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c >= 0x80)
}

// cleanFieldValue trims whitespace and the markdown the responder wraps
// around labels (e.g. "**Title:** Foo" or "- Summary: Bar").
func cleanFieldValue(v string) string {
	v = strings.TrimSpace(strings.Trim(strings.TrimSpace(v), "*_"))
	for {
		nl := strings.LastIndexByte(v, '\n')
		if nl == -1 || strings.Trim(v[nl+1:], "*_-#> \t\r") != "" {
			break
		}
		v = strings.TrimSpace(v[:nl])
	}
	if strings.Trim(v, "*_-#> \t\r") == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(v, "*_"))
}

// asciiLower lowercases ASCII letters only, so byte offsets in the result
// line up with the original string.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
