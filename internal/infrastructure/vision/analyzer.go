//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"aqua-vision/internal/domain/entity"
	"aqua-vision/internal/domain/port"
)

// Analyzer конвейер анализа пробы воды на OpenCV.
// Не хранит изменяемого состояния, один экземпляр можно вызывать из разных горутин.
type Analyzer struct {
	Params entity.AnalysisParams
}

// NewAnalyzer создаёт анализатор с проверенными параметрами.
func NewAnalyzer(params entity.AnalysisParams) (*Analyzer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis params: %w", err)
	}
	return &Analyzer{Params: params}, nil
}

// Detection результат конвейера над Mat. Annotated нужно закрыть через Close.
type Detection struct {
	ROI       entity.ROI
	Bubbles   []entity.BlobKeypoint
	Algae     []entity.Contour
	Report    entity.ImpurityReport
	Annotated gocv.Mat
}

// Close освобождает размеченное изображение.
func (d *Detection) Close() error {
	return d.Annotated.Close()
}

// Run прогоняет все стадии над src. src не изменяется.
func (a *Analyzer) Run(src gocv.Mat) (*Detection, error) {
	cropped, roi, err := ExtractROI(src, a.Params.ROIFraction)
	if err != nil {
		return nil, err
	}
	defer cropped.Close()

	bubbleMask, algaeMask := SegmentColor(cropped, a.Params)
	defer bubbleMask.Close()
	defer algaeMask.Close()

	denoised := EnhanceGrayscale(cropped, a.Params)
	defer denoised.Close()

	edges := ExtractStructure(denoised, a.Params)
	defer edges.Close()

	bubbles := DetectBubbles(denoised, bubbleMask, a.Params)
	algae := DetectAlgae(edges, algaeMask, a.Params)

	return &Detection{
		ROI:       roi,
		Bubbles:   bubbles,
		Algae:     algae,
		Report:    entity.NewImpurityReport(len(bubbles), len(algae), roi, a.Params),
		Annotated: Annotate(src, cropped, roi, bubbles, algae),
	}, nil
}

// Analyze декодирует изображение и запускает конвейер.
func (a *Analyzer) Analyze(ctx context.Context, imageData []byte) (*entity.AnalysisResult, error) {
	_ = ctx
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	det, err := a.Run(mat)
	if err != nil {
		return nil, err
	}
	defer det.Close()

	img, err := det.Annotated.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert annotated image: %w", err)
	}

	return &entity.AnalysisResult{
		Report:    det.Report,
		ROI:       det.ROI,
		Bubbles:   det.Bubbles,
		Algae:     det.Algae,
		Annotated: img,
	}, nil
}

// Проверка реализации интерфейса
var _ port.ImpurityAnalyzer = (*Analyzer)(nil)
