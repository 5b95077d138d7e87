package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Tables names the GreptimeDB tables the dashboards query.
type Tables struct {
	Verdict string
	Stats   string
}

// Render parses dashboard templates and writes rendered dashboards to outDir.
func Render(outDir string, tables Tables) error {
	if tables.Verdict == "" || tables.Stats == "" {
		return fmt.Errorf("dashboard: verdict and stats table names are required")
	}
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	names, err := templates.ReadDir("templates")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, entry := range names {
		name := entry.Name()
		t, err := template.New(name).Funcs(funcMap).ParseFS(templates, "templates/"+name)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(name, ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, tables); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
