package entity

import (
	"errors"
	"fmt"
)

// ErrAnalyzerNotConfigured возвращается, когда сервис собран без анализатора.
var ErrAnalyzerNotConfigured = errors.New("analyzer is not configured")

// DecodeError входные байты не удалось разобрать как изображение.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to decode image: %v", e.Cause)
	}
	return "failed to decode image"
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// InvalidROIError доля ROI даёт область нулевой площади.
type InvalidROIError struct {
	Fraction    float64
	ImageWidth  int
	ImageHeight int
}

func (e *InvalidROIError) Error() string {
	return fmt.Sprintf("invalid roi: fraction %v yields an empty region for %dx%d image",
		e.Fraction, e.ImageWidth, e.ImageHeight)
}
