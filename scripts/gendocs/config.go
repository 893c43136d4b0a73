package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/leapstack-labs/leapc/internal/cli/config"
	"github.com/leapstack-labs/leapc/pkg/capability"
)

// configField documents one leapc.yaml key.
type configField struct {
	Key         string
	Type        string
	Default     string
	Env         string
	Description string
}

// fieldDescriptions holds the prose for each koanf key. Keys missing here
// fail generation so new settings cannot go undocumented.
var fieldDescriptions = map[string]string{
	"verbose":          "Enable debug logging",
	"log_level":        "Log level: debug, info, warn, error",
	"output":           "Output format: auto, text, markdown, json, yaml",
	"state_path":       "SQLite state database, relative to the config file",
	"record":           "Record every run in the state database",
	"namespace":        "Namespace for configured headers that omit one",
	"include_defaults": "Start from the built-in headers before adding configured ones",
	"headers":          "Extra headers: a list of {name, namespace, functions}",
}

// configFields reflects over config.Config so the reference follows the code.
func configFields() []configField {
	defaults := reflect.ValueOf(config.Defaults()).Elem()
	typ := defaults.Type()

	fields := make([]configField, 0, typ.NumField())
	for i := range typ.NumField() {
		f := typ.Field(i)
		key := f.Tag.Get("koanf")
		if key == "" {
			continue
		}

		field := configField{
			Key:         key,
			Type:        typeName(f.Type),
			Description: fieldDescriptions[key],
		}
		if def := defaults.Field(i); !def.IsZero() {
			field.Default = fmt.Sprint(def.Interface())
		}
		if f.Type.Kind() != reflect.Slice {
			field.Env = config.EnvPrefix + strings.ToUpper(key)
		}
		fields = append(fields, field)
	}
	return fields
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Slice:
		return "list"
	case reflect.Bool:
		return "bool"
	case reflect.Int:
		return "int"
	default:
		return "string"
	}
}

// generateConfigDocs writes the leapc.yaml and capability table reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fields := configFields()
	for _, f := range fields {
		if f.Description == "" {
			return fmt.Errorf("config key %q has no description", f.Key)
		}
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "leapc.yaml reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("leapc reads " + InlineCode("leapc.yaml") + " (or " + InlineCode("leapc.yml") +
		") from the working directory or the nearest parent directory. " +
		"Pass " + InlineCode("--config") + " to use another file.")

	w.Header(2, "Keys")
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		def := ""
		if f.Default != "" {
			def = InlineCode(f.Default)
		}
		env := ""
		if f.Env != "" {
			env = InlineCode(f.Env)
		}
		rows = append(rows, []string{InlineCode(f.Key), f.Type, def, env, f.Description})
	}
	w.Table([]string{"Key", "Type", "Default", "Environment", "Description"}, rows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `output: markdown
record: true
state_path: .leapc/state.db

headers:
  - name: stdlib.h
    functions: [malloc, free]
  - name: sys/io.h
    namespace: kernel
    functions: outb,inb`)

	w.Paragraph("Functions may be a list or a comma-separated string. " +
		"A header declared twice keeps its last declaration, and a configured header " +
		"replaces a built-in one of the same name.")

	w.Header(2, "Built-in Headers")
	var headerRows [][]string
	for _, h := range capability.Default().Headers() {
		fns := make([]string, 0, len(h.Functions))
		for _, fn := range h.Functions {
			fns = append(fns, InlineCode(fn))
		}
		headerRows = append(headerRows, []string{InlineCode(h.Name), h.Namespace, strings.Join(fns, ", ")})
	}
	w.Table([]string{"Header", "Namespace", "Functions"}, headerRows)

	filename := filepath.Join(outDir, "configuration.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}
