package review

import (
	"errors"
	"fmt"
)

var (
	// ErrSkipRow la fila no trae evaluación (celda vacía, ausente o "nan")
	ErrSkipRow = errors.New("fila sin evaluación")

	// ErrMalformedJSON la evaluación existe pero no se pudo interpretar
	ErrMalformedJSON = errors.New("evaluación con JSON inválido")
)

// MalformedError conserva el texto original y el error del parser
type MalformedError struct {
	Raw string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%v: %v", ErrMalformedJSON, e.Err)
}

// Unwrap permite errors.Is(err, ErrMalformedJSON) y llegar al error del parser
func (e *MalformedError) Unwrap() []error {
	return []error{ErrMalformedJSON, e.Err}
}
