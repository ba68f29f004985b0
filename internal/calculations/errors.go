package calculations

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument - общий признак ошибки входных параметров
var ErrInvalidArgument = errors.New("неверный аргумент")

// InvalidArgumentError описывает параметр и нарушенное ограничение
type InvalidArgumentError struct {
	Param      string
	Constraint string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("неверный аргумент %s: %s", e.Param, e.Constraint)
}

// Is позволяет проверять ошибку через errors.Is(err, ErrInvalidArgument)
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArg(param, constraint string) error {
	return &InvalidArgumentError{Param: param, Constraint: constraint}
}
