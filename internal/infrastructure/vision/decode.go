//go:build gocv
// +build gocv

package vision

import (
	"errors"

	"gocv.io/x/gocv"

	"aqua-vision/internal/domain/entity"
)

// decodeToMat превращает байты изображения в трёхканальный gocv.Mat (BGR).
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	if len(imageData) == 0 {
		return gocv.NewMat(), &entity.DecodeError{Cause: errors.New("empty input")}
	}

	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	if err == nil {
		err = errors.New("unsupported or corrupted image data")
	}
	return gocv.NewMat(), &entity.DecodeError{Cause: err}
}
