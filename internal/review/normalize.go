package review

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultEnvelopeKey clave bajo la que el modelo envuelve sus evaluaciones
const DefaultEnvelopeKey = "result"

// Normalizer convierte evaluaciones crudas a la forma canónica.
// El valor cero usa DefaultEnvelopeKey.
type Normalizer struct {
	EnvelopeKey string
}

var defaultNormalizer = Normalizer{EnvelopeKey: DefaultEnvelopeKey}

// Normalize normaliza con la clave de envoltura por defecto
func Normalize(raw string, wrapped bool) (Record, error) {
	return defaultNormalizer.Normalize(raw, wrapped)
}

// NormalizeText normaliza y serializa con la clave de envoltura por defecto
func NormalizeText(raw string, wrapped bool) (string, error) {
	return defaultNormalizer.NormalizeText(raw, wrapped)
}

// NormalizeAs normaliza y entrega el resultado en la forma pedida
func NormalizeAs(raw string, wrapped bool, form Form) (any, error) {
	return defaultNormalizer.NormalizeAs(raw, wrapped, form)
}

// Normalize interpreta raw como arreglo de evaluaciones (o como objeto que
// lo envuelve si wrapped es true) y renombra description -> analysis.
// Cada elemento debe traer dimension, description y result como strings;
// cualquier otra clave se ignora.
func (n Normalizer) Normalize(raw string, wrapped bool) (Record, error) {
	items, err := n.items(raw, wrapped)
	if err != nil {
		return nil, &MalformedError{Raw: raw, Err: err}
	}

	record := make(Record, 0, len(items))
	for i, item := range items {
		j, err := judgmentFrom(item)
		if err != nil {
			return nil, &MalformedError{Raw: raw, Err: fmt.Errorf("elemento %d: %w", i, err)}
		}
		record = append(record, j)
	}
	return record, nil
}

// NormalizeText igual que Normalize pero devuelve la evaluación serializada
func (n Normalizer) NormalizeText(raw string, wrapped bool) (string, error) {
	record, err := n.Normalize(raw, wrapped)
	if err != nil {
		return "", err
	}
	return record.Text(), nil
}

// NormalizeAs devuelve un Record o su texto según form
func (n Normalizer) NormalizeAs(raw string, wrapped bool, form Form) (any, error) {
	record, err := n.Normalize(raw, wrapped)
	if err != nil {
		return nil, err
	}
	return record.As(form), nil
}

// As devuelve el Record o su texto según form
func (r Record) As(form Form) any {
	if form == FormStructured {
		return r
	}
	return r.Text()
}

func (n Normalizer) envelopeKey() string {
	if n.EnvelopeKey == "" {
		return DefaultEnvelopeKey
	}
	return n.EnvelopeKey
}

func (n Normalizer) items(raw string, wrapped bool) ([]map[string]json.RawMessage, error) {
	data := []byte(raw)

	if wrapped {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, err
		}
		if envelope == nil {
			return nil, errors.New("se esperaba un objeto envolvente")
		}
		inner, ok := envelope[n.envelopeKey()]
		if !ok {
			return nil, fmt.Errorf("falta la clave %q", n.envelopeKey())
		}
		data = inner
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil && bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, errors.New("se esperaba un arreglo de evaluaciones")
	}
	return items, nil
}

func judgmentFrom(item map[string]json.RawMessage) (Judgment, error) {
	var (
		j   Judgment
		err error
	)
	if j.Dimension, err = stringField(item, "dimension"); err != nil {
		return j, err
	}
	if j.Analysis, err = stringField(item, "description"); err != nil {
		return j, err
	}
	if j.Result, err = stringField(item, "result"); err != nil {
		return j, err
	}
	return j, nil
}

func stringField(item map[string]json.RawMessage, key string) (string, error) {
	raw, ok := item[key]
	if !ok {
		return "", fmt.Errorf("falta la clave %q", key)
	}
	if bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("la clave %q es null", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("la clave %q no es texto: %w", key, err)
	}
	return s, nil
}

// Text serializa la evaluación con separadores ", " y ": " sin escapar
// caracteres no ASCII, p.ej. [{"dimension": "主线", "analysis": "ok", "result": "通过"}]
func (r Record) Text() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, j := range r {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(`{"dimension": `)
		b.WriteString(quote(j.Dimension))
		b.WriteString(`, "analysis": `)
		b.WriteString(quote(j.Analysis))
		b.WriteString(`, "result": `)
		b.WriteString(quote(j.Result))
		b.WriteByte('}')
	}
	b.WriteByte(']')
	return b.String()
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encode de un string no falla
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Present indica si la celda trae una evaluación. Vacío, solo espacios y el
// marcador "nan" que dejan las hojas de cálculo cuentan como ausentes.
func Present(raw string) bool {
	s := strings.TrimSpace(raw)
	return s != "" && !strings.EqualFold(s, "nan")
}

// FixQuotes reemplaza comillas simples por dobles; parte de los datos de
// origen usa comillas no estándar
func FixQuotes(raw string) string {
	return strings.ReplaceAll(raw, "'", `"`)
}

// Prepare aplica las reglas del llamador antes de normalizar: devuelve
// ErrSkipRow si la celda no trae evaluación y corrige comillas si se pide
func Prepare(raw string, fixQuotes bool) (string, error) {
	if !Present(raw) {
		return "", ErrSkipRow
	}
	if fixQuotes {
		raw = FixQuotes(raw)
	}
	return raw, nil
}
