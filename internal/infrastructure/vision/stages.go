//go:build gocv
// +build gocv

package vision

import (
	"gocv.io/x/gocv"

	"aqua-vision/internal/domain/entity"
)

// ExtractROI вырезает центрированную область. Возвращённый Mat владеет своими данными.
func ExtractROI(src gocv.Mat, fraction float64) (gocv.Mat, entity.ROI, error) {
	roi, err := entity.ComputeROI(src.Cols(), src.Rows(), fraction)
	if err != nil {
		return gocv.NewMat(), entity.ROI{}, err
	}

	view := src.Region(roi.Rect())
	defer view.Close()

	return view.Clone(), roi, nil
}

// SegmentColor строит маски пузырьков и водорослей по каналу V.
// Маски могут пересекаться.
func SegmentColor(roi gocv.Mat, p entity.AnalysisParams) (bubbleMask, algaeMask gocv.Mat) {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(roi, &hsv, gocv.ColorBGRToHSV)

	channels := gocv.Split(hsv)
	for i := range channels {
		defer channels[i].Close()
	}
	value := channels[2]

	// V > 190 -> 255
	bubbleMask = gocv.NewMat()
	gocv.Threshold(value, &bubbleMask, float32(p.BubbleValueThreshold), 255, gocv.ThresholdBinary)

	// сначала V < 130 -> 255, затем инверсия: остаются пиксели с V >= 130
	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(value, &dark, float32(p.AlgaeValueThreshold-1), 255, gocv.ThresholdBinaryInv)

	algaeMask = gocv.NewMat()
	gocv.BitwiseNot(dark, &algaeMask)

	return bubbleMask, algaeMask
}

// EnhanceGrayscale: серый -> размытие по Гауссу -> CLAHE -> медианный фильтр.
func EnhanceGrayscale(roi gocv.Mat, p entity.AnalysisParams) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, p.BlurKernel, 0, 0, gocv.BorderDefault)

	clahe := gocv.NewCLAHEWithParams(p.CLAHEClip, p.CLAHETileGrid)
	defer clahe.Close()

	enhanced := gocv.NewMat()
	defer enhanced.Close()
	clahe.Apply(blur, &enhanced)

	denoised := gocv.NewMat()
	gocv.MedianBlur(enhanced, &denoised, p.MedianKernel)

	return denoised
}

// ExtractStructure строит карту границ: адаптивный порог (инверсный),
// открытие и закрытие, затем Canny.
func ExtractStructure(denoised gocv.Mat, p entity.AnalysisParams) gocv.Mat {
	method := gocv.AdaptiveThresholdMean
	if p.AdaptiveMethod == entity.AdaptiveGaussian {
		method = gocv.AdaptiveThresholdGaussian
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(denoised, &binary, 255, method, gocv.ThresholdBinaryInv,
		p.AdaptiveBlockSize, float32(p.AdaptiveC))

	kernel := gocv.GetStructuringElement(gocv.MorphRect, p.MorphKernel)
	defer kernel.Close()

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyExWithParams(binary, &opened, gocv.MorphOpen, kernel, p.MorphIterations, gocv.BorderConstant)

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyExWithParams(opened, &closed, gocv.MorphClose, kernel, p.MorphIterations, gocv.BorderConstant)

	edges := gocv.NewMat()
	gocv.Canny(closed, &edges, float32(p.CannyLow), float32(p.CannyHigh))

	return edges
}
