package evaluator

import (
	"context"
	"errors"
	"fmt"

	"github.com/PhelGc/furina-dataset/internal/logger"
)

// resultHeader columnas del CSV de resultados
var resultHeader = []string{"prompt", "human_result", "llm_result"}

// Checkpointer persiste los resultados acumulados; storage.Storage lo implementa
type Checkpointer interface {
	SaveCSV(path string, header []string, records [][]string) error
}

// Runner pide al modelo una evaluación por cada ejemplo y guarda el
// progreso tras cada ronda, de modo que un corte no pierde lo ya generado
type Runner struct {
	gen         TextGenerator
	store       Checkpointer
	outputPath  string
	envelopeKey string
	log         logger.Logger
}

// NewRunner crea un Runner. envelopeKey se usa solo para avisar de
// respuestas que no podrán usarse como evaluación del modelo.
func NewRunner(gen TextGenerator, store Checkpointer, outputPath, envelopeKey string, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{
		gen:         gen,
		store:       store,
		outputPath:  outputPath,
		envelopeKey: envelopeKey,
		log:         log,
	}
}

// Run procesa los ejemplos en orden. Un fallo del modelo omite el ejemplo;
// un fallo al guardar o la cancelación del contexto detienen la ejecución.
func (r *Runner) Run(ctx context.Context, items []Item) ([]Result, RunStats, error) {
	stats := RunStats{Items: len(items)}
	var results []Result

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return results, stats, err
		}

		prompt := item.Prompt()
		response, err := r.gen.Complete(ctx, prompt)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return results, stats, err
			}
			r.log.Error("error generando evaluación", "ronda", i+1, "error", err)
			stats.Failed++
			continue
		}

		if !LooksWrapped(response, r.envelopeKey) {
			r.log.Warn("respuesta sin la envoltura esperada", "ronda", i+1, "clave", r.envelopeKey)
			stats.Unwrapped++
		}

		results = append(results, Result{
			Prompt:      prompt,
			HumanResult: item.HumanResult(),
			LLMResult:   response,
		})
		stats.Generated++
		r.log.Info("ronda completada", "ronda", i+1, "total", len(items))
		r.log.Debug("respuesta del modelo", "ronda", i+1, "respuesta", response)

		if err := r.checkpoint(results); err != nil {
			return results, stats, err
		}
	}

	return results, stats, nil
}

func (r *Runner) checkpoint(results []Result) error {
	records := make([][]string, len(results))
	for i, res := range results {
		records[i] = []string{res.Prompt, res.HumanResult, res.LLMResult}
	}
	if err := r.store.SaveCSV(r.outputPath, resultHeader, records); err != nil {
		return fmt.Errorf("error guardando resultados en %s: %w", r.outputPath, err)
	}
	return nil
}
