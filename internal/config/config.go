// Package config carga la configuración desde valores por defecto, un
// archivo YAML opcional y variables de entorno (en ese orden de prioridad).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config contiene toda la configuración del sistema
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Prompt   PromptConfig   `yaml:"prompt"`
	Storage  StorageConfig  `yaml:"storage"`
	LLM      LLMConfig      `yaml:"llm"`
	Discord  DiscordConfig  `yaml:"discord"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// SourceConfig origen de las filas a convertir
type SourceConfig struct {
	Type     string `envconfig:"SOURCE_TYPE" yaml:"type"` // csv o mysql
	Path     string `envconfig:"SOURCE_PATH" yaml:"path"`
	Encoding string `envconfig:"SOURCE_ENCODING" yaml:"encoding"` // etiqueta WHATWG: utf-8, gbk, gb18030
	Table    string `envconfig:"SOURCE_TABLE" yaml:"table"`       // solo mysql

	OutlineColumn string `envconfig:"SOURCE_OUTLINE_COLUMN" yaml:"outline_column"`
	HumanColumn   string `envconfig:"SOURCE_HUMAN_COLUMN" yaml:"human_column"`
	LLMColumn     string `envconfig:"SOURCE_LLM_COLUMN" yaml:"llm_column"`
}

// DatasetConfig formatos y forma de los ejemplos generados
type DatasetConfig struct {
	Formats          []string `envconfig:"DATASET_FORMATS" yaml:"formats"` // alpaca, dpo, chat
	JSONL            bool     `envconfig:"DATASET_JSONL" yaml:"jsonl"`
	WrapOutline      bool     `envconfig:"DATASET_WRAP_OUTLINE" yaml:"wrap_outline"`
	IncludeSystem    bool     `envconfig:"DATASET_INCLUDE_SYSTEM" yaml:"include_system"`
	StructuredOutput bool     `envconfig:"DATASET_STRUCTURED_OUTPUT" yaml:"structured_output"`
	FixQuotes        bool     `envconfig:"DATASET_FIX_QUOTES" yaml:"fix_quotes"`
	EnvelopeKey      string   `envconfig:"DATASET_ENVELOPE_KEY" yaml:"envelope_key"`
}

// PromptConfig rutas opcionales que reemplazan los textos embebidos
type PromptConfig struct {
	TaskPath     string `envconfig:"PROMPT_TASK_PATH" yaml:"task_path"`
	StandardPath string `envconfig:"PROMPT_STANDARD_PATH" yaml:"standard_path"`
}

// StorageConfig configuración de almacenamiento
type StorageConfig struct {
	BasePath string `envconfig:"STORAGE_BASE_PATH" yaml:"base_path"` // Directorio de salida
	Prefix   string `envconfig:"STORAGE_PREFIX" yaml:"prefix"`
}

// LLMConfig proveedor usado por el comando generate
type LLMConfig struct {
	Provider          string  `envconfig:"LLM_PROVIDER" yaml:"provider"` // openai o gemini
	APIKey            string  `envconfig:"LLM_API_KEY" yaml:"api_key"`
	Model             string  `envconfig:"LLM_MODEL" yaml:"model"` // vacío usa el modelo por defecto del proveedor
	BaseURL           string  `envconfig:"LLM_BASE_URL" yaml:"base_url"`
	Temperature       float64 `envconfig:"LLM_TEMPERATURE" yaml:"temperature"`
	TopP              float64 `envconfig:"LLM_TOP_P" yaml:"top_p"`
	TimeoutSeconds    int     `envconfig:"LLM_TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	MaxRetries        int     `envconfig:"LLM_MAX_RETRIES" yaml:"max_retries"`
	RequestsPerMinute int     `envconfig:"LLM_REQUESTS_PER_MINUTE" yaml:"requests_per_minute"` // 0 = sin límite
	OutputPath        string  `envconfig:"LLM_OUTPUT_PATH" yaml:"output_path"`
}

// DiscordConfig configuración del bot de Discord
type DiscordConfig struct {
	BotToken  string `envconfig:"DISCORD_BOT_TOKEN" yaml:"bot_token"`
	ChannelID string `envconfig:"DISCORD_CHANNEL_ID" yaml:"channel_id"`
}

// DatabaseConfig configuración de la base de datos MySQL
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" yaml:"host"`
	Port     string `envconfig:"DB_PORT" yaml:"port"`
	Username string `envconfig:"DB_USERNAME" yaml:"username"`
	Password string `envconfig:"DB_PASSWORD" yaml:"password"`
	Database string `envconfig:"DB_DATABASE" yaml:"database"`
}

// LogConfig configuración de logs
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" yaml:"level"`
	JSON  bool   `envconfig:"LOG_JSON" yaml:"json"`
}

// Load carga la configuración. configPath puede estar vacío.
func Load(configPath string) (*Config, error) {
	// Cargar archivo .env si existe
	_ = godotenv.Load()

	cfg := &Config{}
	setDefaults(cfg)

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("error cargando archivo de configuración: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("error procesando variables de entorno: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuración inválida: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Source = SourceConfig{
		Type:          "csv",
		Path:          "raw_data/llm_dataset_post.csv",
		Encoding:      "utf-8",
		Table:         "llm_dataset_post",
		OutlineColumn: "outline",
		HumanColumn:   "human_result_data",
		LLMColumn:     "llm_result_data",
	}
	cfg.Dataset = DatasetConfig{
		Formats:       []string{"alpaca", "dpo"},
		WrapOutline:   true,
		IncludeSystem: true,
		FixQuotes:     true,
		EnvelopeKey:   "result",
	}
	cfg.Storage = StorageConfig{
		BasePath: ".",
		Prefix:   "script_review",
	}
	cfg.LLM = LLMConfig{
		Provider:       "openai",
		Temperature:    0.5,
		TopP:           0.8,
		TimeoutSeconds: 60,
		MaxRetries:     3,
		OutputPath:     "test_result/llm_result.csv",
	}
	cfg.Database = DatabaseConfig{
		Host:     "localhost",
		Port:     "3306",
		Database: "furina_dataset",
	}
	cfg.Log = LogConfig{Level: "info"}
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// normalize limpia listas y mayúsculas provenientes de env o YAML
func (c *Config) normalize() {
	formats := make([]string, 0, len(c.Dataset.Formats))
	for _, f := range c.Dataset.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			formats = append(formats, f)
		}
	}
	c.Dataset.Formats = formats
	c.Source.Type = strings.ToLower(strings.TrimSpace(c.Source.Type))
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
}

// Validate revisa los valores que no tienen un comportamiento razonable por defecto
func (c *Config) Validate() error {
	switch c.Source.Type {
	case "csv":
		if c.Source.Path == "" {
			return fmt.Errorf("source.path es obligatorio para el origen csv")
		}
	case "mysql":
		if c.Source.Table == "" {
			return fmt.Errorf("source.table es obligatorio para el origen mysql")
		}
	default:
		return fmt.Errorf("source.type desconocido: %q", c.Source.Type)
	}

	if c.Source.OutlineColumn == "" || c.Source.HumanColumn == "" {
		return fmt.Errorf("las columnas de guion y evaluación humana son obligatorias")
	}

	if len(c.Dataset.Formats) == 0 {
		return fmt.Errorf("dataset.formats no puede estar vacío")
	}
	for _, f := range c.Dataset.Formats {
		switch f {
		case "alpaca", "dpo", "chat":
		default:
			return fmt.Errorf("formato de dataset desconocido: %q", f)
		}
	}

	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider desconocido: %q", c.LLM.Provider)
	}

	return nil
}

// DiscordEnabled indica si hay que enviar el resumen a Discord
func (c *Config) DiscordEnabled() bool {
	return c.Discord.BotToken != "" && c.Discord.ChannelID != ""
}
