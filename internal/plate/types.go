package plate

// BoundingBox describes a detection rectangle in normalized image
// coordinates: every field is a fraction of the image dimension in [0,1].
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Overlaps reports whether two boxes intersect on both axes.
// Half-open interval overlap, touching edges do not count.
func (b BoundingBox) Overlaps(other BoundingBox) bool {
	return b.Left < other.Left+other.Width &&
		b.Left+b.Width > other.Left &&
		b.Top < other.Top+other.Height &&
		b.Top+b.Height > other.Top
}

type DetectionType string

const (
	DetectionTypeLine DetectionType = "LINE"
	DetectionTypeWord DetectionType = "WORD"
)

// TextLine is one raw OCR detection as delivered by the vision service.
// Confidence is on the [0,100] scale, 0 when the engine omitted it.
type TextLine struct {
	Text       string
	Box        BoundingBox
	Confidence float64
	Type       DetectionType
}
