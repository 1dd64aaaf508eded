package asr

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Segment is a timestamped span of the transcription.
type Segment struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"` // seconds
	EndTime   float64 `json:"end_time"`   // seconds
}

// Result is the transcription of one clip.
type Result struct {
	Name     string    `json:"name,omitempty"`     // clip name, when decoding a corpus
	Text     string    `json:"text"`               // full transcription text
	Segments []Segment `json:"segments,omitempty"` // timestamped segments (if available)
	Duration float64   `json:"duration"`           // processing time in seconds
}

// FormatAsText returns the transcription as plain text. Chunked
// decoding carries its text in segments; those are joined one per line
// so chunk boundaries stay readable.
func (r *Result) FormatAsText() string {
	if len(r.Segments) == 0 {
		return r.Text
	}
	parts := make([]string, len(r.Segments))
	for i, seg := range r.Segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, "\n")
}

// FormatAsJSON returns the transcription as indented JSON.
func (r *Result) FormatAsJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// FormatAsSRT returns the transcription in SRT subtitle format.
func (r *Result) FormatAsSRT() string {
	if len(r.Segments) == 0 {
		return formatSRTSegment(1, 0, 0, r.Text)
	}

	var srt string
	for i, seg := range r.Segments {
		srt += formatSRTSegment(i+1, seg.StartTime, seg.EndTime, seg.Text)
		if i < len(r.Segments)-1 {
			srt += "\n"
		}
	}
	return srt
}

func formatSRTSegment(index int, startSec, endSec float64, text string) string {
	return fmt.Sprintf("%d\n%s --> %s\n%s\n",
		index,
		formatSRTTime(startSec),
		formatSRTTime(endSec),
		text,
	)
}

// formatSRTTime converts seconds to the SRT time format (HH:MM:SS,mmm).
func formatSRTTime(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	ms := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
