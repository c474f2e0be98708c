package plate

import "testing"

func TestBoundingBoxOverlaps(t *testing.T) {
	region := BoundingBox{Left: 0.05, Top: 0.05, Width: 0.2, Height: 0.2}

	tests := []struct {
		name string
		box  BoundingBox
		want bool
	}{
		{"inside", BoundingBox{Left: 0.1, Top: 0.1, Width: 0.1, Height: 0.05}, true},
		{"entirely to the right", BoundingBox{Left: 0.5, Top: 0.1, Width: 0.1, Height: 0.05}, false},
		{"entirely below", BoundingBox{Left: 0.1, Top: 0.5, Width: 0.1, Height: 0.05}, false},
		{"partial overlap", BoundingBox{Left: 0.2, Top: 0.2, Width: 0.2, Height: 0.2}, true},
		{"touching edge only", BoundingBox{Left: 0.25, Top: 0.1, Width: 0.1, Height: 0.05}, false},
		{"surrounding the region", BoundingBox{Left: 0.0, Top: 0.0, Width: 1.0, Height: 1.0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Overlaps(region); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBestInRegion(t *testing.T) {
	region := BoundingBox{Left: 0.05, Top: 0.05, Width: 0.3, Height: 0.3}
	cfg := DefaultConfig()

	inRegion := func(text string, top float64) TextLine {
		return TextLine{Text: text, Box: BoundingBox{Left: 0.1, Top: top, Width: 0.2, Height: 0.05}, Type: DetectionTypeLine}
	}
	outside := func(text string) TextLine {
		return TextLine{Text: text, Box: BoundingBox{Left: 0.7, Top: 0.7, Width: 0.2, Height: 0.05}, Type: DetectionTypeLine}
	}

	tests := []struct {
		name  string
		lines []TextLine
		want  string
		found bool
	}{
		{
			name:  "longest overlapping line wins",
			lines: []TextLine{inRegion("MH12", 0.1), inRegion("KA01AB", 0.2), outside("DL8CAF5031")},
			want:  "KA01AB",
			found: true,
		},
		{
			name:  "nothing overlaps",
			lines: []TextLine{outside("KA01AB")},
			found: false,
		},
		{
			name:  "no confusion substitution on this path",
			lines: []TextLine{inRegion("OSI2", 0.1)},
			want:  "OSI2",
			found: true,
		},
		{
			name:  "no multi-line combination on this path",
			lines: []TextLine{inRegion("MH1", 0.10), inRegion("234", 0.11)},
			found: false,
		},
		{
			name:  "word detections excluded",
			lines: []TextLine{{Text: "KA01AB", Box: BoundingBox{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.05}, Type: DetectionTypeWord}},
			found: false,
		},
		{
			name:  "too long for the single-line range",
			lines: []TextLine{inRegion("ABCDEFGHJKL", 0.1)},
			found: false,
		},
		{
			name:  "length tie keeps reading order",
			lines: []TextLine{inRegion("AB12", 0.1), inRegion("CD34", 0.2)},
			want:  "AB12",
			found: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestInRegion(tt.lines, region, cfg)
			if ok != tt.found || got != tt.want {
				t.Errorf("BestInRegion() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.found)
			}
		})
	}
}
