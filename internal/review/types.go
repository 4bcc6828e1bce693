// Package review normaliza los registros de evaluación de guiones cortos
// (humanos o generados por el modelo) a la forma canónica usada en los
// datasets de entrenamiento.
package review

// Dimension categoría evaluada en un guion
type Dimension = string

// Dimensiones fijas de la rúbrica, en el orden en que se muestran
const (
	DimensionStoryline Dimension = "主线" // línea argumental
	DimensionCharacter Dimension = "人设" // diseño de personajes
	DimensionHook      Dimension = "钩子" // gancho narrativo
	DimensionPromotion Dimension = "投流" // potencial promocional
)

// Resultados posibles de una dimensión
const (
	ResultPass = "通过"
	ResultFail = "不通过"
)

// Dimensions devuelve las dimensiones de la rúbrica en orden de presentación
func Dimensions() []Dimension {
	return []Dimension{DimensionStoryline, DimensionCharacter, DimensionHook, DimensionPromotion}
}

// KnownDimension indica si d pertenece a la rúbrica
func KnownDimension(d string) bool {
	for _, known := range Dimensions() {
		if d == known {
			return true
		}
	}
	return false
}

// Judgment resultado de una dimensión en forma canónica.
// El orden de los campos define el orden de las claves en JSON.
type Judgment struct {
	Dimension string `json:"dimension"`
	Analysis  string `json:"analysis"`
	Result    string `json:"result"`
}

// Record evaluación completa: una secuencia ordenada de dimensiones
type Record []Judgment

// Form selecciona cómo se entrega una evaluación normalizada
type Form int

const (
	// FormText entrega la evaluación serializada como string JSON
	FormText Form = iota
	// FormStructured entrega el Record tal cual
	FormStructured
)
