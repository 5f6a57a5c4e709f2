package vision

import "errors"

// ErrVisionDisabled возвращается, если сборка без тега gocv.
var ErrVisionDisabled = errors.New("gocv build tag is not enabled")
