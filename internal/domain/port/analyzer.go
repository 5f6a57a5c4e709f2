package port

import (
	"context"

	"aqua-vision/internal/domain/entity"
)

// ImpurityAnalyzer интерфейс анализатора пробы воды
type ImpurityAnalyzer interface {
	// Analyze считает пузырьки и водоросли и возвращает отчёт с размеченным изображением.
	// Входные байты не изменяются.
	Analyze(ctx context.Context, imageData []byte) (*entity.AnalysisResult, error)
}
