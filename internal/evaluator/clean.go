package evaluator

import (
	"strings"

	"github.com/tidwall/gjson"
)

// CleanJSON elimina bloques de código markdown que el modelo pueda agregar
// alrededor del JSON (```json ... ```)
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// LooksWrapped indica si la respuesta es JSON válido con un arreglo bajo key,
// que es la forma que espera el conversor para los pares de preferencia
func LooksWrapped(response, key string) bool {
	s := CleanJSON(response)
	if !gjson.Valid(s) {
		return false
	}
	return gjson.Get(s, key).IsArray()
}
