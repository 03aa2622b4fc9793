package pipeline

import (
	"fmt"

	"gocv.io/x/gocv"
)

const maxDimension = 32768

func validateMat(mat gocv.Mat, operation string) error {
	if mat.Empty() {
		return fmt.Errorf("mat is empty for operation: %s", operation)
	}
	if err := validateDimensions(mat.Cols(), mat.Rows(), operation); err != nil {
		return err
	}
	return validateMatType(mat.Type(), operation)
}

func validateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}
	if width > maxDimension || height > maxDimension {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}
	return nil
}

// validateMatType accepts the unsigned integer layouts the loader can turn
// into samples.
func validateMatType(matType gocv.MatType, operation string) error {
	switch matType {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4,
		gocv.MatTypeCV16UC1, gocv.MatTypeCV16UC3, gocv.MatTypeCV16UC4:
		return nil
	default:
		return fmt.Errorf("unsupported Mat type %v for operation: %s", matType, operation)
	}
}
