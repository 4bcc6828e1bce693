// Package database lee las filas de revisión directamente desde MySQL,
// como alternativa al CSV exportado.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/PhelGc/furina-dataset/internal/dataset"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Client struct {
	db *sql.DB
}

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

func NewClient(config *Config) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=Local&charset=utf8mb4",
		config.Username, config.Password, config.Host, config.Port, config.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("error conectando a MySQL: %w", err)
	}

	// La lectura es secuencial; pocas conexiones bastan
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error haciendo ping a MySQL: %w", err)
	}

	return &Client{db: db}, nil
}

// NewFromDB usa una conexión ya abierta
func NewFromDB(db *sql.DB) *Client {
	return &Client{db: db}
}

// LoadRows lee guion y evaluaciones de table en el orden en que los devuelve
// la base. NULL se trata igual que una celda vacía.
func (c *Client) LoadRows(ctx context.Context, table string, cols dataset.Columns) ([]dataset.Row, error) {
	query, err := selectQuery(table, cols)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error consultando %s: %w", table, err)
	}
	defer rows.Close()

	var result []dataset.Row
	for rows.Next() {
		var outline, human, llm sql.NullString
		if err := rows.Scan(&outline, &human, &llm); err != nil {
			return nil, fmt.Errorf("error escaneando fila %d: %w", len(result), err)
		}
		result = append(result, dataset.Row{
			Index:   len(result),
			Outline: outline.String,
			Human:   human.String,
			LLM:     llm.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error recorriendo %s: %w", table, err)
	}

	return result, nil
}

func selectQuery(table string, cols dataset.Columns) (string, error) {
	names := []string{table, cols.Outline, cols.Human}
	if cols.LLM != "" {
		names = append(names, cols.LLM)
	}
	for _, name := range names {
		if !identifierPattern.MatchString(name) {
			return "", fmt.Errorf("identificador inválido: %q", name)
		}
	}

	llm := "NULL"
	if cols.LLM != "" {
		llm = quoteIdent(cols.LLM)
	}
	fields := strings.Join([]string{quoteIdent(cols.Outline), quoteIdent(cols.Human), llm}, ", ")
	return fmt.Sprintf("SELECT %s FROM %s", fields, quoteIdent(table)), nil
}

func quoteIdent(name string) string {
	return "`" + name + "`"
}

// Close cierra la conexión
func (c *Client) Close() error {
	return c.db.Close()
}
