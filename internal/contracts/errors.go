package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrPredictionUnavailable 예측기(LLM) 호출 실패
	ErrPredictionUnavailable = errors.New("prediction unavailable")

	// ErrPriceUnavailable 가격 소스 호출 실패
	ErrPriceUnavailable = errors.New("price unavailable")
)

// ValidationError reports an invalid value at an external boundary.
// 생성 실패는 부수효과 없이 즉시 반환
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Message)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
