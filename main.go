package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/PhelGc/furina-dataset/internal/config"
	"github.com/PhelGc/furina-dataset/internal/discord"
	"github.com/PhelGc/furina-dataset/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "furina-dataset",
		Short: "Convierte revisiones de guiones cortos en datasets de entrenamiento",
		Long: `furina-dataset lee las evaluaciones de guiones (humanas y del modelo)
y genera datasets Alpaca, DPO y chat para ajuste fino.

Ejecuta 'furina-dataset convert' para escribir los datasets.
Ejecuta 'furina-dataset preview 3' para ver un ejemplo sin escribir nada.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "ruta del archivo de configuración YAML")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "logs de depuración")

	rootCmd.AddCommand(
		convertCmd(),
		previewCmd(),
		generateCmd(),
		versionCmd(),
	)
	return rootCmd
}

// setup carga la configuración y crea el logger de la ejecución
func setup(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	})
	return cfg, log, nil
}

// notify envía el resumen a Discord si está configurado. Un fallo aquí no
// invalida los archivos ya escritos.
func notify(cfg *config.Config, log logger.Logger, summary *discord.Summary) {
	if !cfg.DiscordEnabled() {
		return
	}

	client, err := discord.NewClient(&discord.Config{
		BotToken:  cfg.Discord.BotToken,
		ChannelID: cfg.Discord.ChannelID,
	})
	if err != nil {
		log.Warn("no se pudo crear el cliente de Discord", "error", err)
		return
	}
	defer client.Close()

	if _, err := client.SendSummary(summary); err != nil {
		log.Warn("no se pudo enviar el resumen a Discord", "error", err)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "furina-dataset %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
