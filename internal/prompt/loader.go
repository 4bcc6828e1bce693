// Package prompt arma la instrucción fija que acompaña a cada ejemplo del
// dataset: tarea, objetivo, rúbrica de evaluación y formato de salida.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed texts/task.txt
var defaultTask string

//go:embed texts/standard.txt
var defaultStandard string

const (
	outlineOpen  = "<短剧大纲>"
	outlineClose = "</短剧大纲>"
)

// PromptLoader almacena los textos de la instrucción.
// Se cargan una sola vez por ejecución.
type PromptLoader struct {
	Task     string // tarea y objetivo
	Standard string // rúbrica y formato de salida
}

// Default devuelve los textos embebidos en el binario
func Default() *PromptLoader {
	return &PromptLoader{Task: defaultTask, Standard: defaultStandard}
}

// LoadPrompts lee los textos desde disco. Una ruta vacía usa el texto
// embebido; una ruta configurada que no existe es un error.
func LoadPrompts(taskPath, standardPath string) (*PromptLoader, error) {
	p := Default()
	if taskPath != "" {
		data, err := os.ReadFile(taskPath)
		if err != nil {
			return nil, fmt.Errorf("no se pudo cargar la tarea (%s): %w", taskPath, err)
		}
		p.Task = string(data)
	}
	if standardPath != "" {
		data, err := os.ReadFile(standardPath)
		if err != nil {
			return nil, fmt.Errorf("no se pudo cargar la rúbrica (%s): %w", standardPath, err)
		}
		p.Standard = string(data)
	}
	return p, nil
}

// Instruction concatena tarea y rúbrica. A la rúbrica se le quitan los
// espacios ASCII; los saltos de línea y la puntuación de ancho completo se
// conservan.
func (p *PromptLoader) Instruction() string {
	standard := strings.ReplaceAll(strings.TrimSpace(p.Standard), " ", "")
	return strings.TrimSpace(p.Task) + "\n" + standard
}

// WrapOutline envuelve el guion entre los delimitadores de la instrucción
func WrapOutline(outline string) string {
	return outlineOpen + outline + outlineClose
}
