package vision

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"camlytics/internal/plate"
)

// Labels Rekognition uses for license-plate instances.
var plateLabels = map[string]bool{
	"License Plate":              true,
	"Vehicle Registration Plate": true,
}

type Client struct {
	rek *rekognition.Client
}

func New(awsCfg aws.Config) *Client {
	return &Client{rek: rekognition.NewFromConfig(awsCfg)}
}

// DetectTextLines runs Rekognition DetectText over the image and maps the
// result onto plate.TextLine values. Word-level detections are carried
// through with their type tag; the core decides what participates.
func (c *Client) DetectTextLines(ctx context.Context, imageBytes []byte) ([]plate.TextLine, error) {
	out, err := c.rek.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: imageBytes},
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectText: %w", err)
	}

	lines := make([]plate.TextLine, 0, len(out.TextDetections))
	for _, det := range out.TextDetections {
		if det.DetectedText == nil {
			continue
		}

		line := plate.TextLine{Text: *det.DetectedText}

		switch det.Type {
		case types.TextTypesLine:
			line.Type = plate.DetectionTypeLine
		case types.TextTypesWord:
			line.Type = plate.DetectionTypeWord
		default:
			continue
		}

		if det.Confidence != nil {
			line.Confidence = float64(*det.Confidence)
		}
		if det.Geometry != nil && det.Geometry.BoundingBox != nil {
			line.Box = toBox(det.Geometry.BoundingBox)
		}

		lines = append(lines, line)
	}

	return lines, nil
}

// DetectPlateRegion asks Rekognition DetectLabels for a license-plate
// instance and returns its bounding box, or nil when none was located.
// Absence of a region is not an error; the caller falls back to full
// text-line reconstruction.
func (c *Client) DetectPlateRegion(ctx context.Context, imageBytes []byte) (*plate.BoundingBox, error) {
	out, err := c.rek.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: imageBytes},
		MinConfidence: aws.Float32(50),
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectLabels: %w", err)
	}

	var best *plate.BoundingBox
	var bestConf float32
	for _, label := range out.Labels {
		if label.Name == nil || !plateLabels[strings.TrimSpace(*label.Name)] {
			continue
		}
		for _, instance := range label.Instances {
			if instance.BoundingBox == nil {
				continue
			}
			conf := float32(0)
			if instance.Confidence != nil {
				conf = *instance.Confidence
			}
			if best == nil || conf > bestConf {
				box := toBox(instance.BoundingBox)
				best = &box
				bestConf = conf
			}
		}
	}

	return best, nil
}

func toBox(box *types.BoundingBox) plate.BoundingBox {
	out := plate.BoundingBox{}
	if box.Left != nil {
		out.Left = float64(*box.Left)
	}
	if box.Top != nil {
		out.Top = float64(*box.Top)
	}
	if box.Width != nil {
		out.Width = float64(*box.Width)
	}
	if box.Height != nil {
		out.Height = float64(*box.Height)
	}
	return out
}
