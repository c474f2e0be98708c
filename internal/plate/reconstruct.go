package plate

import (
	"math"
	"sort"
)

// Config holds every threshold the reconstruction heuristic depends on,
// so tests can probe boundaries without touching internals.
type Config struct {
	// Pre-filter applied to every normalized line before any selection.
	MinLineLen int
	MaxLineLen int

	// Accepted range for a plate read off a single line.
	MinSingleLen int
	MaxSingleLen int

	// Accepted range for two adjacent lines concatenated.
	MinCombinedLen int
	MaxCombinedLen int

	// Two lines whose vertical gap is strictly below this (in normalized
	// image-height units) are treated as one two-line plate.
	MaxLineGap float64
}

// DefaultConfig returns the tuned production thresholds.
func DefaultConfig() Config {
	return Config{
		MinLineLen:     2,
		MaxLineLen:     8,
		MinSingleLen:   4,
		MaxSingleLen:   10,
		MinCombinedLen: 4,
		MaxCombinedLen: 12,
		MaxLineGap:     0.1,
	}
}

type candidate struct {
	text string
	top  float64
}

// Reconstruct picks the best-guess plate string from a set of OCR line
// detections. Single-line plates always win; two-line plates (autorickshaw
// style) are only assembled when no single line qualifies. The second
// return value is false when no acceptable candidate exists, which is the
// defined "not detected" outcome, not an error.
func Reconstruct(lines []TextLine, norm Normalizer, cfg Config) (string, bool) {
	candidates := make([]candidate, 0, len(lines))
	for _, line := range lines {
		if line.Type != DetectionTypeLine {
			continue
		}
		text := norm(line.Text)
		if len(text) < cfg.MinLineLen || len(text) > cfg.MaxLineLen {
			continue
		}
		candidates = append(candidates, candidate{text: text, top: line.Box.Top})
	}

	// Reading order. Stable so equal tops keep their original order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].top < candidates[j].top
	})

	if best, ok := longestInRange(candidates, cfg.MinSingleLen, cfg.MaxSingleLen); ok {
		return best, true
	}

	if len(candidates) < 2 {
		return "", false
	}

	combined := make([]candidate, 0, len(candidates)-1)
	for i := 0; i+1 < len(candidates); i++ {
		gap := math.Abs(candidates[i+1].top - candidates[i].top)
		if gap < cfg.MaxLineGap {
			combined = append(combined, candidate{
				text: candidates[i].text + candidates[i+1].text,
				top:  candidates[i].top,
			})
		}
	}

	return longestInRange(combined, cfg.MinCombinedLen, cfg.MaxCombinedLen)
}

// longestInRange keeps candidates whose length falls in [min, max] and
// returns the longest. The sort is stable, so length ties go to the
// earlier candidate in reading order.
func longestInRange(candidates []candidate, min, max int) (string, bool) {
	eligible := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if len(c.text) >= min && len(c.text) <= max {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return "", false
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return len(eligible[i].text) > len(eligible[j].text)
	})

	return eligible[0].text, true
}
