package entity

import (
	"errors"
	"fmt"
	"image"
)

// AdaptiveMethod способ вычисления локального порога.
type AdaptiveMethod string

const (
	AdaptiveMean     AdaptiveMethod = "mean"
	AdaptiveGaussian AdaptiveMethod = "gaussian"
)

// AnalysisParams все настраиваемые пороги конвейера анализа пробы.
type AnalysisParams struct {
	ROIFraction float64

	// Сегментация по каналу V (HSV)
	BubbleValueThreshold float64
	AlgaeValueThreshold  float64

	// Подготовка яркостного изображения
	BlurKernel    image.Point
	CLAHEClip     float64
	CLAHETileGrid image.Point
	MedianKernel  int

	// Карта структуры
	AdaptiveMethod    AdaptiveMethod
	AdaptiveBlockSize int
	AdaptiveC         float64
	MorphKernel       image.Point
	MorphIterations   int
	CannyLow          float64
	CannyHigh         float64

	// Пузырьки
	BubbleMinArea        float64
	BubbleMaxArea        float64
	BubbleMinCircularity float64
	BubbleMinInertia     float64
	BubbleBlobColor      int

	// Водоросли
	AlgaeMinArea        float64
	AlgaeMaxArea        float64
	AlgaeMaxCircularity float64

	// Итоговая оценка
	PPMNormalization float64
	PPMThreshold     float64
}

// DefaultAnalysisParams возвращает значения по умолчанию.
func DefaultAnalysisParams() AnalysisParams {
	return AnalysisParams{
		ROIFraction: 0.99,

		BubbleValueThreshold: 190,
		AlgaeValueThreshold:  130,

		BlurKernel:    image.Pt(5, 5),
		CLAHEClip:     4.0,
		CLAHETileGrid: image.Pt(8, 8),
		MedianKernel:  5,

		AdaptiveMethod:    AdaptiveMean,
		AdaptiveBlockSize: 11,
		AdaptiveC:         3,
		MorphKernel:       image.Pt(3, 3),
		MorphIterations:   1,
		CannyLow:          10,
		CannyHigh:         140,

		BubbleMinArea:        150,
		BubbleMaxArea:        99999,
		BubbleMinCircularity: 0.9,
		BubbleMinInertia:     0.2,
		BubbleBlobColor:      255,

		AlgaeMinArea:        100,
		AlgaeMaxArea:        99999,
		AlgaeMaxCircularity: 0.7,

		PPMNormalization: 1000,
		PPMThreshold:     0.05,
	}
}

// Validate проверяет согласованность параметров.
func (p AnalysisParams) Validate() error {
	var errs []error

	if !(p.ROIFraction > 0 && p.ROIFraction <= 1) {
		errs = append(errs, fmt.Errorf("roi fraction must be in (0, 1], got %v", p.ROIFraction))
	}
	if p.BubbleValueThreshold < 0 || p.BubbleValueThreshold > 255 {
		errs = append(errs, fmt.Errorf("bubble value threshold must be in [0, 255], got %v", p.BubbleValueThreshold))
	}
	if p.AlgaeValueThreshold < 0 || p.AlgaeValueThreshold > 255 {
		errs = append(errs, fmt.Errorf("algae value threshold must be in [0, 255], got %v", p.AlgaeValueThreshold))
	}
	if !oddPositive(p.BlurKernel.X) || !oddPositive(p.BlurKernel.Y) {
		errs = append(errs, fmt.Errorf("blur kernel must be odd and positive, got %v", p.BlurKernel))
	}
	if p.CLAHEClip <= 0 || p.CLAHETileGrid.X <= 0 || p.CLAHETileGrid.Y <= 0 {
		errs = append(errs, fmt.Errorf("invalid clahe settings: clip=%v grid=%v", p.CLAHEClip, p.CLAHETileGrid))
	}
	if !oddPositive(p.MedianKernel) || p.MedianKernel < 3 {
		errs = append(errs, fmt.Errorf("median kernel must be odd and >= 3, got %d", p.MedianKernel))
	}
	if p.AdaptiveMethod != AdaptiveMean && p.AdaptiveMethod != AdaptiveGaussian {
		errs = append(errs, fmt.Errorf("unknown adaptive method %q", p.AdaptiveMethod))
	}
	if !oddPositive(p.AdaptiveBlockSize) || p.AdaptiveBlockSize < 3 {
		errs = append(errs, fmt.Errorf("adaptive block size must be odd and >= 3, got %d", p.AdaptiveBlockSize))
	}
	if p.MorphKernel.X <= 0 || p.MorphKernel.Y <= 0 || p.MorphIterations < 1 {
		errs = append(errs, fmt.Errorf("invalid morphology settings: kernel=%v iterations=%d", p.MorphKernel, p.MorphIterations))
	}
	if p.CannyLow < 0 || p.CannyHigh < p.CannyLow {
		errs = append(errs, fmt.Errorf("invalid canny thresholds %v/%v", p.CannyLow, p.CannyHigh))
	}
	if p.BubbleMinArea < 0 || p.BubbleMaxArea <= p.BubbleMinArea {
		errs = append(errs, fmt.Errorf("invalid bubble area bounds %v..%v", p.BubbleMinArea, p.BubbleMaxArea))
	}
	if p.AlgaeMinArea < 0 || p.AlgaeMaxArea <= p.AlgaeMinArea {
		errs = append(errs, fmt.Errorf("invalid algae area bounds %v..%v", p.AlgaeMinArea, p.AlgaeMaxArea))
	}
	if p.BubbleBlobColor != 0 && p.BubbleBlobColor != 255 {
		errs = append(errs, fmt.Errorf("bubble blob color must be 0 or 255, got %d", p.BubbleBlobColor))
	}
	if p.PPMNormalization <= 0 {
		errs = append(errs, fmt.Errorf("ppm normalization must be positive, got %v", p.PPMNormalization))
	}

	return errors.Join(errs...)
}

func oddPositive(v int) bool {
	return v > 0 && v%2 == 1
}
