package plate

// BestInRegion restricts line detections to those overlapping the region an
// upstream object detector already isolated, and picks the longest
// acceptable string. This path deliberately skips both the multi-line
// combination and the OCR-confusion substitutions of Reconstruct; the two
// paths have always diverged and unifying them would change accepted plates.
func BestInRegion(lines []TextLine, region BoundingBox, cfg Config) (string, bool) {
	candidates := make([]candidate, 0, len(lines))
	for _, line := range lines {
		if line.Type != DetectionTypeLine {
			continue
		}
		if !line.Box.Overlaps(region) {
			continue
		}
		text := NormalizeBasic(line.Text)
		candidates = append(candidates, candidate{text: text, top: line.Box.Top})
	}

	return longestInRange(candidates, cfg.MinSingleLen, cfg.MaxSingleLen)
}
