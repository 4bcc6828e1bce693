package main

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/PhelGc/furina-dataset/internal/discord"
	"github.com/PhelGc/furina-dataset/internal/evaluator"
	"github.com/PhelGc/furina-dataset/internal/storage"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <dataset_alpaca.json>",
		Short: "Pide al modelo una evaluación por cada ejemplo Alpaca",
		Long: `Envía instrucción + guion de cada ejemplo al modelo configurado y guarda
prompt, evaluación humana y respuesta del modelo en un CSV. El CSV se
reescribe tras cada ronda para no perder progreso.`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}

	cmd.Flags().String("output", "", "ruta del CSV de resultados")
	cmd.Flags().String("provider", "", "proveedor del modelo (openai, gemini)")
	cmd.Flags().String("model", "", "nombre del modelo")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.LLM.OutputPath, _ = flags.GetString("output")
	}
	if flags.Changed("provider") {
		cfg.LLM.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("model") {
		cfg.LLM.Model, _ = flags.GetString("model")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	start := time.Now()
	store, err := storage.New(afero.NewOsFs(), cfg.Storage.BasePath, cfg.Storage.Prefix)
	if err != nil {
		return fmt.Errorf("error inicializando storage: %w", err)
	}

	items, err := storage.LoadJSON[evaluator.Item](store, args[0])
	if err != nil {
		return fmt.Errorf("error leyendo ejemplos: %w", err)
	}
	log.Info("ejemplos leídos", "archivo", args[0], "ejemplos", len(items))

	client, err := evaluator.NewClient(cfg.LLM.Provider, evaluator.Options{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		TopP:        cfg.LLM.TopP,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return err
	}

	resilience := evaluator.DefaultResilienceConfig()
	resilience.MaxRetries = cfg.LLM.MaxRetries
	resilience.RequestsPerMinute = cfg.LLM.RequestsPerMinute

	runner := evaluator.NewRunner(
		evaluator.NewResilient(client, resilience),
		store,
		cfg.LLM.OutputPath,
		cfg.Dataset.EnvelopeKey,
		log,
	)

	_, stats, runErr := runner.Run(cmd.Context(), items)
	log.Info("generación terminada",
		"generadas", stats.Generated, "fallidas", stats.Failed, "sin_envoltura", stats.Unwrapped, "archivo", cfg.LLM.OutputPath)

	notify(cfg, log, &discord.Summary{
		Command:  "generate",
		Source:   args[0],
		Sections: []discord.Section{{Name: cfg.LLM.Provider, Written: stats.Generated, Malformed: stats.Failed}},
		Files:    []string{cfg.LLM.OutputPath},
		Duration: time.Since(start),
	})

	return runErr
}
