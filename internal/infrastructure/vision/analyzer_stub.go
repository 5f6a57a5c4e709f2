//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"fmt"

	"aqua-vision/internal/domain/entity"
	"aqua-vision/internal/domain/port"
)

// Analyzer заглушка анализатора (без OpenCV).
type Analyzer struct {
	Params entity.AnalysisParams
}

// NewAnalyzer создаёт анализатор-заглушку.
func NewAnalyzer(params entity.AnalysisParams) (*Analyzer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis params: %w", err)
	}
	return &Analyzer{Params: params}, nil
}

// Analyze возвращает ошибку, если сборка без тега gocv.
func (a *Analyzer) Analyze(ctx context.Context, imageData []byte) (*entity.AnalysisResult, error) {
	_ = ctx
	_ = imageData
	return nil, ErrVisionDisabled
}

var _ port.ImpurityAnalyzer = (*Analyzer)(nil)
