// Package storage escribe los datasets y resultados generados, y lee los
// datasets previos que consume el generador.
package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// stampLayout formato de fecha usado en los nombres de archivo
const stampLayout = "2006-01-02-15-04-05"

// Layout forma de un archivo de dataset
type Layout string

const (
	// LayoutList un único arreglo JSON
	LayoutList Layout = "list"
	// LayoutJSONL un objeto JSON por línea
	LayoutJSONL Layout = "jsonl"
)

// Storage maneja el almacenamiento de los datasets en archivos
type Storage struct {
	fs       afero.Fs
	basePath string
	prefix   string
	stamp    string
}

// New crea una nueva instancia de Storage. Todos los archivos de la misma
// ejecución comparten la marca de tiempo.
func New(fs afero.Fs, basePath, prefix string) (*Storage, error) {
	// Crear directorio base si no existe
	if err := fs.MkdirAll(basePath, 0755); err != nil {
		return nil, err
	}

	return &Storage{
		fs:       fs,
		basePath: basePath,
		prefix:   prefix,
		stamp:    time.Now().Format(stampLayout),
	}, nil
}

// FilePath ruta del dataset de tipo kind, p.ej. out/script_review_alpaca_2025-02-28-15-52-27.json
func (s *Storage) FilePath(kind string, layout Layout) string {
	ext := ".json"
	if layout == LayoutJSONL {
		ext = ".jsonl"
	}
	name := fmt.Sprintf("%s_%s_%s%s", s.prefix, safeName(kind), s.stamp, ext)
	return filepath.Join(s.basePath, name)
}

// SaveDataset escribe todos los ejemplos de una vez y devuelve la ruta.
// No se escapan <, > ni & y el texto UTF-8 se conserva tal cual.
func SaveDataset[T any](s *Storage, kind string, entries []T, layout Layout) (string, error) {
	path := s.FilePath(kind, layout)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if layout == LayoutJSONL {
		for i, entry := range entries {
			if err := enc.Encode(entry); err != nil {
				return "", fmt.Errorf("error serializando ejemplo %d: %w", i, err)
			}
		}
	} else {
		if entries == nil {
			entries = []T{}
		}
		if err := enc.Encode(entries); err != nil {
			return "", fmt.Errorf("error serializando dataset: %w", err)
		}
	}

	if err := afero.WriteFile(s.fs, path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("error escribiendo %s: %w", path, err)
	}
	return path, nil
}

// LoadJSON lee un dataset previo: arreglo JSON o, si la extensión es
// .jsonl, un objeto por línea
func LoadJSON[T any](s *Storage, path string) ([]T, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}

	var entries []T
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		scanner := bufio.NewScanner(bytes.NewReader(data))
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for line := 1; scanner.Scan(); line++ {
			text := bytes.TrimSpace(scanner.Bytes())
			if len(text) == 0 {
				continue
			}
			var entry T
			if err := json.Unmarshal(text, &entry); err != nil {
				return nil, fmt.Errorf("línea %d de %s: %w", line, path, err)
			}
			entries = append(entries, entry)
		}
		return entries, scanner.Err()
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error leyendo %s: %w", path, err)
	}
	return entries, nil
}

// SaveCSV reescribe path completo con la cabecera y las filas dadas
func (s *Storage) SaveCSV(path string, header []string, records [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creando carpeta %s: %w", dir, err)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}

	return afero.WriteFile(s.fs, path, buf.Bytes(), 0644)
}

// safeName reemplaza caracteres no válidos para nombres de archivo
func safeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "?", "_", "*", "_", "<", "_", ">", "_", "|", "_")
	return replacer.Replace(name)
}
