package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TextGenerator modelo capaz de completar un prompt
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options configuración común de los clientes de modelo
type Options struct {
	APIKey      string
	Model       string
	BaseURL     string // vacío usa la URL pública del proveedor
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

// StatusError respuesta HTTP no exitosa del proveedor
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Retryable indica si vale la pena reintentar: límite de peticiones o fallo del servidor
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// Item ejemplo Alpaca leído de un dataset previo. Output puede ser un
// string o la evaluación estructurada.
type Item struct {
	Instruction string          `json:"instruction"`
	Input       string          `json:"input"`
	Output      json.RawMessage `json:"output"`
}

// Prompt texto enviado al modelo: instrucción seguida del guion
func (it Item) Prompt() string {
	return it.Instruction + it.Input
}

// HumanResult evaluación humana como texto
func (it Item) HumanResult() string {
	raw := bytes.TrimSpace(it.Output)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Result una ronda de generación
type Result struct {
	Prompt      string
	HumanResult string
	LLMResult   string
}

// RunStats resumen de una ejecución del generador
type RunStats struct {
	Items     int
	Generated int
	Failed    int
	Unwrapped int // respuestas sin la envoltura esperada
}
