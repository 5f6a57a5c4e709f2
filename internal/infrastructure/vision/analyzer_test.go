//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"aqua-vision/internal/domain/entity"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func blackMat(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func diskMat(t *testing.T) gocv.Mat {
	t.Helper()
	m := blackMat(300, 300)
	gocv.Circle(&m, image.Pt(150, 150), 20, white, -1)
	return m
}

func newAnalyzer(t *testing.T, fraction float64) *Analyzer {
	t.Helper()
	p := entity.DefaultAnalysisParams()
	p.ROIFraction = fraction
	a, err := NewAnalyzer(p)
	require.NoError(t, err)
	return a
}

func encodePNG(t *testing.T, m gocv.Mat) []byte {
	t.Helper()
	buf, err := gocv.IMEncode(gocv.PNGFileExt, m)
	require.NoError(t, err)
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...)
}

func TestAnalyzer_BlackImage(t *testing.T) {
	src := blackMat(200, 200)
	defer src.Close()

	det, err := newAnalyzer(t, 0.99).Run(src)
	require.NoError(t, err)
	defer det.Close()

	require.Equal(t, 0, det.Report.BubbleCount)
	require.Equal(t, 0, det.Report.AlgaeCount)
	require.Equal(t, 0, det.Report.TotalImpurities)
	require.Equal(t, 0.0, det.Report.PPM)
	require.Equal(t, entity.Safe, det.Report.Drinkability)
}

func TestSegmentColor_BlackMasksEmpty(t *testing.T) {
	src := blackMat(50, 50)
	defer src.Close()

	bubble, algae := SegmentColor(src, entity.DefaultAnalysisParams())
	defer bubble.Close()
	defer algae.Close()

	require.Zero(t, gocv.CountNonZero(bubble))
	require.Zero(t, gocv.CountNonZero(algae))
}

func TestSegmentColor_ValueThresholds(t *testing.T) {
	// по столбцу x яркость равна x
	src := blackMat(4, 256)
	defer src.Close()
	for x := 0; x < 256; x++ {
		v := uint8(x)
		gocv.Line(&src, image.Pt(x, 0), image.Pt(x, 3), color.RGBA{R: v, G: v, B: v, A: 255}, 1)
	}

	bubble, algae := SegmentColor(src, entity.DefaultAnalysisParams())
	defer bubble.Close()
	defer algae.Close()

	for x := 0; x < 256; x++ {
		b := bubble.GetUCharAt(1, x)
		a := algae.GetUCharAt(1, x)
		require.Contains(t, []uint8{0, 255}, b)
		require.Contains(t, []uint8{0, 255}, a)
		require.Equal(t, x > 190, b == 255, "bubble mask at V=%d", x)
		require.Equal(t, x >= 130, a == 255, "algae mask at V=%d", x)
	}
}

func TestExtractROI(t *testing.T) {
	src := blackMat(80, 100)
	defer src.Close()

	cropped, roi, err := ExtractROI(src, 0.5)
	require.NoError(t, err)
	defer cropped.Close()

	require.Equal(t, entity.ROI{X: 25, Y: 20, Width: 50, Height: 40}, roi)
	require.Equal(t, 50, cropped.Cols())
	require.Equal(t, 40, cropped.Rows())

	// вырезка не делит память с исходником
	cropped.SetTo(gocv.NewScalar(255, 255, 255, 0))
	require.Zero(t, src.GetUCharAt(30, 30*3))
}

func TestExtractROI_Invalid(t *testing.T) {
	src := blackMat(50, 50)
	defer src.Close()

	_, err := newAnalyzer(t, 0.01).Run(src)
	var roiErr *entity.InvalidROIError
	require.True(t, errors.As(err, &roiErr))
}

func TestEnhanceAndStructure_Shapes(t *testing.T) {
	src := diskMat(t)
	defer src.Close()
	p := entity.DefaultAnalysisParams()

	denoised := EnhanceGrayscale(src, p)
	defer denoised.Close()
	require.Equal(t, 1, denoised.Channels())
	require.Equal(t, src.Rows(), denoised.Rows())
	require.Equal(t, src.Cols(), denoised.Cols())

	edges := ExtractStructure(denoised, p)
	defer edges.Close()
	require.Equal(t, 1, edges.Channels())

	data := edges.ToBytes()
	for _, v := range data {
		require.Contains(t, []uint8{0, 255}, v)
	}
}

func TestDetectBubbles_WhiteDisk(t *testing.T) {
	src := diskMat(t)
	defer src.Close()

	det, err := newAnalyzer(t, 1.0).Run(src)
	require.NoError(t, err)
	defer det.Close()

	require.Equal(t, 1, det.Report.BubbleCount)
	require.Len(t, det.Bubbles, 1)
	kp := det.Bubbles[0]
	require.InDelta(t, 150, kp.X, 2)
	require.InDelta(t, 150, kp.Y, 2)
	require.InDelta(t, 40, kp.Size, 4)
}

func TestDetectAlgae_FiltersByShape(t *testing.T) {
	p := entity.DefaultAnalysisParams()

	edges := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 120, gocv.MatTypeCV8U)
	defer edges.Close()
	gocv.Rectangle(&edges, image.Rect(10, 10, 16, 80), white, 1)
	gocv.Circle(&edges, image.Pt(80, 60), 15, white, 1)

	full := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 120, 120, gocv.MatTypeCV8U)
	defer full.Close()

	algae := DetectAlgae(edges, full, p)
	require.Len(t, algae, 1)
	bounds := image.Rectangle{Min: algae[0][0], Max: algae[0][0]}
	for _, pt := range algae[0] {
		bounds = bounds.Union(image.Rectangle{Min: pt, Max: pt.Add(image.Pt(1, 1))})
	}
	require.True(t, bounds.In(image.Rect(9, 9, 18, 82)))

	empty := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 120, gocv.MatTypeCV8U)
	defer empty.Close()
	require.Empty(t, DetectAlgae(edges, empty, p))
}

func TestAnnotate_OutsideROIUntouched(t *testing.T) {
	src := blackMat(120, 160)
	defer src.Close()
	// диск у края ROI, чтобы окружность упёрлась в границу
	gocv.Circle(&src, image.Pt(50, 60), 14, white, -1)
	gocv.Line(&src, image.Pt(0, 0), image.Pt(159, 119), color.RGBA{R: 200, G: 140, B: 90, A: 255}, 1)
	original := src.ToBytes()

	det, err := newAnalyzer(t, 0.5).Run(src)
	require.NoError(t, err)
	defer det.Close()

	require.Equal(t, original, src.ToBytes(), "source must not be modified")

	out := det.Annotated.ToBytes()
	require.Len(t, out, len(original))
	inside := det.ROI.Rect()
	for y := 0; y < src.Rows(); y++ {
		for x := 0; x < src.Cols(); x++ {
			if image.Pt(x, y).In(inside) {
				continue
			}
			i := (y*src.Cols() + x) * 3
			require.Equal(t, original[i:i+3], out[i:i+3], "pixel (%d,%d)", x, y)
		}
	}
}

func TestAnnotate_DrawsInsideROI(t *testing.T) {
	src := blackMat(100, 100)
	defer src.Close()

	roi := entity.ROI{X: 10, Y: 10, Width: 80, Height: 80}
	cropped := src.Region(roi.Rect())
	defer cropped.Close()

	bubbles := []entity.BlobKeypoint{{X: 40, Y: 40, Size: 20}}
	algae := []entity.Contour{{image.Pt(5, 5), image.Pt(10, 5), image.Pt(10, 60), image.Pt(5, 60)}}

	out := Annotate(src, cropped, roi, bubbles, algae)
	defer out.Close()

	// синяя окружность радиуса 10 вокруг (50, 50) в координатах изображения
	require.Equal(t, uint8(255), out.GetUCharAt(50, 60*3))
	// красный контур, канал R в BGR третий
	require.Equal(t, uint8(255), out.GetUCharAt(30, 15*3+2))
	for _, v := range src.ToBytes() {
		require.Zero(t, v)
	}
}

func TestAnalyze_DecodeError(t *testing.T) {
	a := newAnalyzer(t, 0.99)

	for _, data := range [][]byte{nil, []byte("definitely not an image")} {
		_, err := a.Analyze(context.Background(), data)
		var decodeErr *entity.DecodeError
		require.True(t, errors.As(err, &decodeErr))
	}
}

func TestAnalyze_IdempotentOnSameInput(t *testing.T) {
	src := diskMat(t)
	gocv.Rectangle(&src, image.Rect(30, 30, 36, 120), color.RGBA{R: 160, G: 160, B: 160, A: 255}, -1)
	data := encodePNG(t, src)
	src.Close()
	pristine := append([]byte(nil), data...)

	a := newAnalyzer(t, 0.99)
	first, err := a.Analyze(context.Background(), data)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), data)
	require.NoError(t, err)

	require.Equal(t, pristine, data)
	require.Equal(t, first.Report, second.Report)
	require.Equal(t, 300, first.Annotated.Bounds().Dx())
	require.Equal(t, 300, first.Annotated.Bounds().Dy())
}
