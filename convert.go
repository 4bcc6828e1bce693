package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/PhelGc/furina-dataset/internal/config"
	"github.com/PhelGc/furina-dataset/internal/database"
	"github.com/PhelGc/furina-dataset/internal/dataset"
	"github.com/PhelGc/furina-dataset/internal/discord"
	"github.com/PhelGc/furina-dataset/internal/logger"
	"github.com/PhelGc/furina-dataset/internal/prompt"
	"github.com/PhelGc/furina-dataset/internal/review"
	"github.com/PhelGc/furina-dataset/internal/storage"
)

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convierte las filas de origen y escribe los datasets",
		Long: `Lee todas las filas, arma los ejemplos de cada formato y escribe un
archivo por formato al final. Las filas sin evaluación se omiten en silencio;
las evaluaciones inválidas se registran y también se omiten.`,
		RunE: runConvert,
	}

	addSourceFlags(cmd)
	cmd.Flags().StringSlice("formats", nil, "formatos a generar (alpaca, dpo, chat)")
	cmd.Flags().Bool("jsonl", false, "un objeto JSON por línea en lugar de un arreglo")
	cmd.Flags().String("out", "", "directorio de salida")

	return cmd
}

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [indice]",
		Short: "Muestra un ejemplo Alpaca sin escribir archivos",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPreview,
	}

	addSourceFlags(cmd)
	return cmd
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "origen de las filas (csv, mysql)")
	cmd.Flags().String("input", "", "ruta del CSV de origen")
	cmd.Flags().String("encoding", "", "codificación del CSV (utf-8, gbk, gb18030)")
}

// applyFlags sobrescribe la configuración con los flags indicados explícitamente
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source.Type, _ = flags.GetString("source")
	}
	if flags.Changed("input") {
		cfg.Source.Path, _ = flags.GetString("input")
	}
	if flags.Changed("encoding") {
		cfg.Source.Encoding, _ = flags.GetString("encoding")
	}
	if flags.Changed("formats") {
		cfg.Dataset.Formats, _ = flags.GetStringSlice("formats")
	}
	if flags.Changed("jsonl") {
		cfg.Dataset.JSONL, _ = flags.GetBool("jsonl")
	}
	if flags.Changed("out") {
		cfg.Storage.BasePath, _ = flags.GetString("out")
	}
	return cfg.Validate()
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	start := time.Now()
	formats, err := dataset.ParseFormats(cfg.Dataset.Formats)
	if err != nil {
		return err
	}

	rows, origin, err := loadRows(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	log.Info("filas leídas", "origen", origin, "filas", len(rows))

	conv, err := newConverter(cfg, log)
	if err != nil {
		return err
	}

	store, err := storage.New(afero.NewOsFs(), cfg.Storage.BasePath, cfg.Storage.Prefix)
	if err != nil {
		return fmt.Errorf("error inicializando storage: %w", err)
	}

	layout := storage.LayoutList
	if cfg.Dataset.JSONL {
		layout = storage.LayoutJSONL
	}

	summary := &discord.Summary{Command: "convert", Source: origin}
	for _, format := range formats {
		path, stats, err := writeFormat(conv, store, format, rows, layout)
		if err != nil {
			return err
		}
		log.Info("dataset escrito", "formato", format, "ejemplos", stats.Written, "inválidos", stats.Malformed, "archivo", path)

		summary.Sections = append(summary.Sections, discord.Section{
			Name:      string(format),
			Written:   stats.Written,
			Malformed: stats.Malformed,
		})
		summary.Files = append(summary.Files, path)
	}
	summary.Duration = time.Since(start)

	notify(cfg, log, summary)
	return nil
}

func writeFormat(conv *dataset.Converter, store *storage.Storage, format dataset.Format, rows []dataset.Row, layout storage.Layout) (string, dataset.Stats, error) {
	var (
		path  string
		stats dataset.Stats
		err   error
	)

	switch format {
	case dataset.FormatAlpaca:
		var entries []dataset.AlpacaEntry
		entries, stats = conv.Alpaca(rows)
		path, err = storage.SaveDataset(store, string(format), entries, layout)
	case dataset.FormatDPO:
		var entries []dataset.DPOEntry
		entries, stats = conv.DPO(rows)
		path, err = storage.SaveDataset(store, string(format), entries, layout)
	case dataset.FormatChat:
		var entries []dataset.ChatEntry
		entries, stats = conv.Chat(rows)
		path, err = storage.SaveDataset(store, string(format), entries, layout)
	default:
		err = fmt.Errorf("formato desconocido: %q", format)
	}

	return path, stats, err
}

func runPreview(cmd *cobra.Command, args []string) error {
	index := 0
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("índice inválido %q: %w", args[0], err)
		}
		index = n
	}

	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	rows, _, err := loadRows(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	conv, err := newConverter(cfg, log)
	if err != nil {
		return err
	}

	entries, _ := conv.Alpaca(rows)
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("índice %d fuera de rango, hay %d ejemplos", index, len(entries))
	}
	entry := entries[index]

	output, ok := entry.Output.(string)
	if !ok {
		data, err := json.MarshalIndent(entry.Output, "", "  ")
		if err != nil {
			return err
		}
		output = string(data)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Ejemplo de instrucción:")
	fmt.Fprintln(out, entry.Instruction)
	fmt.Fprintln(out, entry.Input)
	fmt.Fprintln(out, "Ejemplo de salida:")
	fmt.Fprintln(out, output)
	return nil
}

// loadRows lee las filas del origen configurado y devuelve una descripción del origen
func loadRows(ctx context.Context, cfg *config.Config) ([]dataset.Row, string, error) {
	cols := dataset.Columns{
		Outline: cfg.Source.OutlineColumn,
		Human:   cfg.Source.HumanColumn,
		LLM:     cfg.Source.LLMColumn,
	}

	if cfg.Source.Type == "mysql" {
		client, err := database.NewClient(&database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			Database: cfg.Database.Database,
		})
		if err != nil {
			return nil, "", err
		}
		defer client.Close()

		rows, err := client.LoadRows(ctx, cfg.Source.Table, cols)
		return rows, "mysql:" + cfg.Source.Table, err
	}

	rows, err := dataset.LoadCSV(afero.NewOsFs(), cfg.Source.Path, cfg.Source.Encoding, cols)
	return rows, cfg.Source.Path, err
}

func newConverter(cfg *config.Config, log logger.Logger) (*dataset.Converter, error) {
	prompts, err := prompt.LoadPrompts(cfg.Prompt.TaskPath, cfg.Prompt.StandardPath)
	if err != nil {
		return nil, err
	}

	form := review.FormText
	if cfg.Dataset.StructuredOutput {
		form = review.FormStructured
	}

	return dataset.NewConverter(prompts.Instruction(), dataset.Options{
		WrapOutline:   cfg.Dataset.WrapOutline,
		IncludeSystem: cfg.Dataset.IncludeSystem,
		Form:          form,
		EnvelopeKey:   cfg.Dataset.EnvelopeKey,
		FixQuotes:     cfg.Dataset.FixQuotes,
	}, log), nil
}
