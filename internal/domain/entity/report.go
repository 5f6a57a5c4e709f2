package entity

import (
	"image"
	"math"
)

// Drinkability итоговая оценка пригодности воды.
type Drinkability string

const (
	Safe   Drinkability = "Safe"
	Unsafe Drinkability = "Unsafe"
)

// BlobKeypoint найденный кандидат в пузырьки.
type BlobKeypoint struct {
	X    float64 // центр по X в координатах ROI
	Y    float64 // центр по Y в координатах ROI
	Size float64 // оценка диаметра
}

// ImpurityReport итог анализа одной пробы.
type ImpurityReport struct {
	BubbleCount     int          `json:"bubble_count"`
	AlgaeCount      int          `json:"algae_count"`
	TotalImpurities int          `json:"total_impurities"`
	PPM             float64      `json:"ppm"`
	Drinkability    Drinkability `json:"drinkability"`
}

// NewImpurityReport сводит счётчики в оценку PPM и классифицирует пробу.
func NewImpurityReport(bubbles, algae int, roi ROI, p AnalysisParams) ImpurityReport {
	total := bubbles + algae

	var ppm float64
	if area := roi.Area(); area > 0 {
		ppm = roundTo2(float64(total) * (p.PPMNormalization / float64(area)))
	}

	drinkability := Unsafe
	if ppm < p.PPMThreshold {
		drinkability = Safe
	}

	return ImpurityReport{
		BubbleCount:     bubbles,
		AlgaeCount:      algae,
		TotalImpurities: total,
		PPM:             ppm,
		Drinkability:    drinkability,
	}
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AnalysisResult полный результат конвейера: отчёт и размеченное изображение.
type AnalysisResult struct {
	Report    ImpurityReport
	ROI       ROI
	Bubbles   []BlobKeypoint
	Algae     []Contour
	Annotated image.Image
}
