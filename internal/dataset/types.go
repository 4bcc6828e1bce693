// Package dataset convierte filas de revisión en ejemplos de entrenamiento
// (Alpaca, DPO y chat).
package dataset

import (
	"fmt"
	"strings"
)

// Format formato de dataset de salida
type Format string

const (
	FormatAlpaca Format = "alpaca"
	FormatDPO    Format = "dpo"
	FormatChat   Format = "chat"
)

// ParseFormats interpreta nombres de formato sin repetir
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool, len(names))
	var formats []Format
	for _, name := range names {
		f := Format(strings.ToLower(strings.TrimSpace(name)))
		switch f {
		case FormatAlpaca, FormatDPO, FormatChat:
		case "":
			continue
		default:
			return nil, fmt.Errorf("formato desconocido: %q", name)
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no se indicó ningún formato")
	}
	return formats, nil
}

// AlpacaEntry ejemplo instrucción/salida. Output es un string o un
// review.Record según la configuración.
type AlpacaEntry struct {
	Instruction string  `json:"instruction"`
	Input       string  `json:"input"`
	Output      any     `json:"output"`
	System      *string `json:"system,omitempty"`
}

// DPOEntry par de preferencia: la evaluación humana es la elegida
type DPOEntry struct {
	Instruction string  `json:"instruction"`
	Input       string  `json:"input"`
	Chosen      any     `json:"chosen"`
	Rejected    any     `json:"rejected"`
	System      *string `json:"system,omitempty"`
}

// Roles de los mensajes de chat
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message mensaje con rol
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatEntry conversación system/user/assistant
type ChatEntry struct {
	Messages []Message `json:"messages"`
}

// Stats conteo por formato. Las filas sin evaluación no se cuentan.
type Stats struct {
	Rows      int
	Written   int
	Malformed int
}
