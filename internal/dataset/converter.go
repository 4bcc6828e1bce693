package dataset

import (
	"errors"

	"github.com/PhelGc/furina-dataset/internal/logger"
	"github.com/PhelGc/furina-dataset/internal/prompt"
	"github.com/PhelGc/furina-dataset/internal/review"
)

// Options controla la forma de los ejemplos
type Options struct {
	WrapOutline   bool        // envolver el guion con <短剧大纲>
	IncludeSystem bool        // emitir "system": "" en Alpaca y DPO
	Form          review.Form // salida como texto o estructurada
	EnvelopeKey   string      // clave que envuelve las evaluaciones del modelo
	FixQuotes     bool        // reemplazar ' por " antes de interpretar
}

// DefaultOptions opciones equivalentes al export original
func DefaultOptions() Options {
	return Options{
		WrapOutline:   true,
		IncludeSystem: true,
		Form:          review.FormText,
		EnvelopeKey:   review.DefaultEnvelopeKey,
		FixQuotes:     true,
	}
}

// Converter arma los ejemplos de cada formato. La instrucción se arma una
// vez por ejecución; cada fila se procesa de forma independiente.
type Converter struct {
	instruction string
	opts        Options
	normalizer  review.Normalizer
	log         logger.Logger
}

// NewConverter crea un conversor
func NewConverter(instruction string, opts Options, log logger.Logger) *Converter {
	if log == nil {
		log = logger.Discard()
	}
	return &Converter{
		instruction: instruction,
		opts:        opts,
		normalizer:  review.Normalizer{EnvelopeKey: opts.EnvelopeKey},
		log:         log,
	}
}

// Instruction devuelve la instrucción usada en los ejemplos
func (c *Converter) Instruction() string {
	return c.instruction
}

// Alpaca convierte las evaluaciones humanas a formato instrucción/salida
func (c *Converter) Alpaca(rows []Row) ([]AlpacaEntry, Stats) {
	entries := make([]AlpacaEntry, 0, len(rows))
	stats := Stats{Rows: len(rows)}

	for _, row := range rows {
		output, err := c.evaluation(row, FormatAlpaca, row.Human, false, c.opts.Form)
		if err != nil {
			stats.countFailure(err)
			continue
		}
		entries = append(entries, AlpacaEntry{
			Instruction: c.instruction,
			Input:       c.input(row),
			Output:      output,
			System:      c.system(),
		})
	}

	stats.Written = len(entries)
	return entries, stats
}

// DPO arma pares de preferencia: humano como elegido, modelo como rechazado.
// Solo entran las filas con ambas evaluaciones válidas.
func (c *Converter) DPO(rows []Row) ([]DPOEntry, Stats) {
	entries := make([]DPOEntry, 0, len(rows))
	stats := Stats{Rows: len(rows)}

	for _, row := range rows {
		if !review.Present(row.Human) || !review.Present(row.LLM) {
			continue
		}
		chosen, err := c.evaluation(row, FormatDPO, row.Human, false, c.opts.Form)
		if err != nil {
			stats.countFailure(err)
			continue
		}
		rejected, err := c.evaluation(row, FormatDPO, row.LLM, true, c.opts.Form)
		if err != nil {
			stats.countFailure(err)
			continue
		}
		entries = append(entries, DPOEntry{
			Instruction: c.instruction,
			Input:       c.input(row),
			Chosen:      chosen,
			Rejected:    rejected,
			System:      c.system(),
		})
	}

	stats.Written = len(entries)
	return entries, stats
}

// Chat arma conversaciones system/user/assistant. El asistente siempre
// responde con la evaluación serializada.
func (c *Converter) Chat(rows []Row) ([]ChatEntry, Stats) {
	entries := make([]ChatEntry, 0, len(rows))
	stats := Stats{Rows: len(rows)}

	for _, row := range rows {
		output, err := c.evaluation(row, FormatChat, row.Human, false, review.FormText)
		if err != nil {
			stats.countFailure(err)
			continue
		}
		entries = append(entries, ChatEntry{
			Messages: []Message{
				{Role: RoleSystem, Content: c.instruction},
				{Role: RoleUser, Content: c.input(row)},
				{Role: RoleAssistant, Content: output.(string)},
			},
		})
	}

	stats.Written = len(entries)
	return entries, stats
}

// evaluation prepara y normaliza una celda. Las filas sin evaluación
// devuelven review.ErrSkipRow sin log; las mal formadas se registran.
func (c *Converter) evaluation(row Row, format Format, raw string, wrapped bool, form review.Form) (any, error) {
	prepared, err := review.Prepare(raw, c.opts.FixQuotes)
	if err != nil {
		return nil, err
	}

	record, err := c.normalizer.Normalize(prepared, wrapped)
	if err != nil {
		c.log.Warn("no se pudo interpretar la evaluación, se omite la fila",
			"formato", format, "fila", row.Index, "modelo", wrapped, "texto", prepared, "error", err)
		return nil, err
	}

	for _, j := range record {
		if !review.KnownDimension(j.Dimension) {
			c.log.Debug("dimensión fuera de la rúbrica", "formato", format, "fila", row.Index, "dimension", j.Dimension)
		}
	}
	return record.As(form), nil
}

func (c *Converter) input(row Row) string {
	if c.opts.WrapOutline {
		return prompt.WrapOutline(row.Outline)
	}
	return row.Outline
}

func (c *Converter) system() *string {
	if !c.opts.IncludeSystem {
		return nil
	}
	empty := ""
	return &empty
}

func (s *Stats) countFailure(err error) {
	if errors.Is(err, review.ErrMalformedJSON) {
		s.Malformed++
	}
}
