// Package discord publica un resumen de cada ejecución en un canal.
package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

type Client struct {
	session *discordgo.Session
	config  *Config
}

type Config struct {
	BotToken  string
	ChannelID string
}

// Summary resultado de una ejecución de convert o generate
type Summary struct {
	Command  string
	Source   string
	Sections []Section
	Files    []string
	Duration time.Duration
}

// Section conteo de un formato o de la generación
type Section struct {
	Name      string
	Written   int
	Malformed int // filas con evaluación inválida o rondas fallidas
}

func NewClient(config *Config) (*Client, error) {
	session, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creando sesión Discord: %w", err)
	}

	return &Client{
		session: session,
		config:  config,
	}, nil
}

// SendSummary envía el resumen al canal configurado y devuelve el id del mensaje
func (c *Client) SendSummary(summary *Summary) (string, error) {
	message, err := c.session.ChannelMessageSendEmbed(c.config.ChannelID, buildSummaryEmbed(summary))
	if err != nil {
		return "", fmt.Errorf("error enviando mensaje a Discord: %w", err)
	}

	return message.ID, nil
}

// buildSummaryEmbed construye el embed con los conteos de la ejecución
func buildSummaryEmbed(summary *Summary) *discordgo.MessageEmbed {
	color := 0x2ECC71 // Verde: sin filas inválidas
	for _, s := range summary.Sections {
		if s.Malformed > 0 {
			color = 0xF39C12 // Naranja
			break
		}
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(summary.Sections)+1)
	for _, s := range summary.Sections {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   s.Name,
			Value:  fmt.Sprintf("%d escritos, %d inválidos", s.Written, s.Malformed),
			Inline: true,
		})
	}
	if len(summary.Files) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Archivos",
			Value: strings.Join(summary.Files, "\n"),
		})
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("furina-dataset %s", summary.Command),
		Description: fmt.Sprintf("Origen: %s\nDuración: %s", summary.Source, summary.Duration.Round(time.Second)),
		Color:       color,
		Fields:      fields,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Furina Dataset - Notificación automatizada",
		},
	}
}

// Close cierra la conexión con Discord
func (c *Client) Close() {
	if c.session != nil {
		c.session.Close()
	}
}
