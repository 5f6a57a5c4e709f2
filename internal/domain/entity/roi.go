package entity

import (
	"image"
	"math"
)

// ROI область интереса внутри исходного изображения.
type ROI struct {
	X      int // смещение по X от левого края
	Y      int // смещение по Y от верхнего края
	Width  int // ширина области в пикселях
	Height int // высота области в пикселях
}

// ComputeROI вычисляет центрированную область по доле fraction от размеров изображения.
func ComputeROI(width, height int, fraction float64) (ROI, error) {
	if math.IsNaN(fraction) || fraction <= 0 || fraction > 1 {
		return ROI{}, &InvalidROIError{Fraction: fraction, ImageWidth: width, ImageHeight: height}
	}

	roiW := int(math.Floor(float64(width) * fraction))
	roiH := int(math.Floor(float64(height) * fraction))
	if roiW <= 0 || roiH <= 0 {
		return ROI{}, &InvalidROIError{Fraction: fraction, ImageWidth: width, ImageHeight: height}
	}

	return ROI{
		X:      (width - roiW) / 2,
		Y:      (height - roiH) / 2,
		Width:  roiW,
		Height: roiH,
	}, nil
}

// Rect возвращает область в координатах исходного изображения.
func (r ROI) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Area площадь области в пикселях
func (r ROI) Area() int {
	return r.Width * r.Height
}
