//go:build gocv
// +build gocv

package vision

import (
	"gocv.io/x/gocv"

	"aqua-vision/internal/domain/entity"
)

// DetectBubbles ищет компактные почти круглые пятна внутри маски пузырьков.
func DetectBubbles(denoised, bubbleMask gocv.Mat, p entity.AnalysisParams) []entity.BlobKeypoint {
	masked := gocv.NewMat()
	defer masked.Close()
	gocv.BitwiseAndWithMask(denoised, denoised, &masked, bubbleMask)

	params := gocv.NewSimpleBlobDetectorParams()
	params.SetFilterByArea(true)
	params.SetMinArea(p.BubbleMinArea)
	params.SetMaxArea(p.BubbleMaxArea)
	params.SetFilterByCircularity(true)
	params.SetMinCircularity(p.BubbleMinCircularity)
	params.SetFilterByInertia(true)
	params.SetMinInertiaRatio(p.BubbleMinInertia)
	params.SetFilterByColor(true)
	params.SetBlobColor(p.BubbleBlobColor)

	detector := gocv.NewSimpleBlobDetectorWithParams(params)
	defer detector.Close()

	keypoints := detector.Detect(masked)
	bubbles := make([]entity.BlobKeypoint, 0, len(keypoints))
	for _, kp := range keypoints {
		bubbles = append(bubbles, entity.BlobKeypoint{X: kp.X, Y: kp.Y, Size: kp.Size})
	}
	return bubbles
}

// DetectAlgae извлекает внешние контуры карты границ внутри маски водорослей
// и оставляет вытянутые и неправильные формы.
func DetectAlgae(edges, algaeMask gocv.Mat, p entity.AnalysisParams) []entity.Contour {
	masked := gocv.NewMat()
	defer masked.Close()
	gocv.BitwiseAndWithMask(edges, edges, &masked, algaeMask)

	found := gocv.FindContours(masked, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer found.Close()

	contours := make([]entity.Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		contours = append(contours, entity.Contour(found.At(i).ToPoints()))
	}

	return entity.FilterAlgae(contours, p)
}
