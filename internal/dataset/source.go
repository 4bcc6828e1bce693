package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Row fila de origen: un guion con sus evaluaciones crudas.
// Una columna ausente queda como string vacío.
type Row struct {
	Index   int
	Outline string
	Human   string
	LLM     string
}

// Columns nombres de las columnas en el origen
type Columns struct {
	Outline string
	Human   string
	LLM     string // opcional
}

// DefaultColumns columnas del export original
func DefaultColumns() Columns {
	return Columns{
		Outline: "outline",
		Human:   "human_result_data",
		LLM:     "llm_result_data",
	}
}

// LoadCSV abre path en fs y lee sus filas
func LoadCSV(fs afero.Fs, path, enc string, cols Columns) ([]Row, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error abriendo %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f, enc, cols)
	if err != nil {
		return nil, fmt.Errorf("error leyendo %s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV lee un CSV con cabecera. enc es una etiqueta WHATWG ("utf-8",
// "gbk", "gb18030"...); vacío equivale a UTF-8.
func ReadCSV(r io.Reader, enc string, cols Columns) ([]Row, error) {
	decoded, err := decode(r, enc)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("archivo vacío, falta la cabecera")
		}
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	outlineIdx, ok := index[cols.Outline]
	if !ok {
		return nil, fmt.Errorf("falta la columna %q", cols.Outline)
	}
	humanIdx, ok := index[cols.Human]
	if !ok {
		return nil, fmt.Errorf("falta la columna %q", cols.Human)
	}
	llmIdx := -1
	if cols.LLM != "" {
		if i, ok := index[cols.LLM]; ok {
			llmIdx = i
		}
	}

	var rows []Row
	for n := 0; ; n++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			Index:   n,
			Outline: field(record, outlineIdx),
			Human:   field(record, humanIdx),
			LLM:     field(record, llmIdx),
		})
	}
	return rows, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

func decode(r io.Reader, label string) (io.Reader, error) {
	var enc encoding.Encoding = unicode.UTF8
	if label != "" {
		e, err := htmlindex.Get(label)
		if err != nil {
			return nil, fmt.Errorf("codificación desconocida %q: %w", label, err)
		}
		enc = e
	}
	if enc == unicode.UTF8 {
		// Quitar el BOM que dejan algunas hojas de cálculo
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
