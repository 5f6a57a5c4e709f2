//go:build gocv
// +build gocv

package vision

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"aqua-vision/internal/domain/entity"
)

var (
	bubbleColor = color.RGBA{B: 255, A: 255}
	algaeColor  = color.RGBA{R: 255, A: 255}
)

const annotationThickness = 2

// Annotate рисует найденные объекты на копии ROI и вклеивает её в копию исходника.
// Пиксели вне ROI остаются без изменений.
func Annotate(src, cropped gocv.Mat, roi entity.ROI, bubbles []entity.BlobKeypoint, algae []entity.Contour) gocv.Mat {
	overlay := cropped.Clone()
	defer overlay.Close()

	for _, b := range bubbles {
		center := image.Pt(int(b.X), int(b.Y))
		gocv.Circle(&overlay, center, int(b.Size/2), bubbleColor, annotationThickness)
	}

	if len(algae) > 0 {
		pts := make([][]image.Point, 0, len(algae))
		for _, c := range algae {
			pts = append(pts, []image.Point(c))
		}
		contours := gocv.NewPointsVectorFromPoints(pts)
		defer contours.Close()
		gocv.DrawContours(&overlay, contours, -1, algaeColor, annotationThickness)
	}

	out := src.Clone()
	target := out.Region(roi.Rect())
	defer target.Close()
	overlay.CopyTo(&target)

	return out
}
