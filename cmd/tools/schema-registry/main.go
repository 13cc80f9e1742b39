// cmd/tools/schema-registry/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"policy-navigator/pkg/registry"
)

func main() {
	os.Exit(runTool(os.Args[1:], os.Stdout))
}

func runTool(args []string, out io.Writer) int {
	listCmd := flag.NewFlagSet("list", flag.ContinueOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	checkCmd := flag.NewFlagSet("check", flag.ContinueOnError)
	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	for _, fs := range []*flag.FlagSet{listCmd, validateCmd, checkCmd, exportCmd} {
		fs.SetOutput(out)
	}

	listPath := listCmd.String("path", "", "Path to registry file (default: the embedded registry)")
	validatePath := validateCmd.String("path", "", "Path to registry file (default: the embedded registry)")
	checkPath := checkCmd.String("path", "", "Path to registry file (default: the embedded registry)")
	checkID := checkCmd.String("id", "", "Schema ID (e.g., plan.response)")
	checkFile := checkCmd.String("file", "", "JSON document to check, e.g. a saved model reply")
	exportPath := exportCmd.String("out", "", "Where to write the registry")

	if len(args) < 1 {
		help(out)
		return 1
	}

	switch args[0] {
	case "list":
		if err := listCmd.Parse(args[1:]); err != nil {
			return 1
		}
		reg, err := load(*listPath)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return 1
		}
		listSchemas(out, reg)

	case "validate":
		if err := validateCmd.Parse(args[1:]); err != nil {
			return 1
		}
		reg, err := load(*validatePath)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return 1
		}
		if err := validateRegistry(reg); err != nil {
			fmt.Fprintf(out, "Registry validation failed: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "Registry validation passed. Found %d schemas.\n", len(reg.Schemas))

	case "check":
		if err := checkCmd.Parse(args[1:]); err != nil {
			return 1
		}
		if *checkID == "" || *checkFile == "" {
			fmt.Fprintln(out, "Error: id and file are required for check.")
			checkCmd.Usage()
			return 1
		}
		reg, err := load(*checkPath)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return 1
		}
		problems, err := checkDocument(reg, *checkID, *checkFile)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return 1
		}
		if len(problems) > 0 {
			fmt.Fprintf(out, "%s does not match %s:\n", *checkFile, *checkID)
			for _, p := range problems {
				fmt.Fprintf(out, "  - %s\n", p)
			}
			return 1
		}
		fmt.Fprintf(out, "%s matches %s.\n", *checkFile, *checkID)

	case "export":
		if err := exportCmd.Parse(args[1:]); err != nil {
			return 1
		}
		if *exportPath == "" {
			fmt.Fprintln(out, "Error: out is required for export.")
			exportCmd.Usage()
			return 1
		}
		reg := registry.Default()
		reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
		if err := saveRegistry(reg, *exportPath); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "Wrote %d schemas to %s\n", len(reg.Schemas), *exportPath)

	case "help":
		help(out)

	default:
		help(out)
		return 1
	}
	return 0
}

func load(path string) (*registry.SchemaRegistry, error) {
	if path == "" {
		return registry.Default(), nil
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return reg, nil
}

func listSchemas(out io.Writer, reg *registry.SchemaRegistry) {
	entries := append([]registry.SchemaEntry(nil), reg.Schemas...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	fmt.Fprintf(out, "Registry version %s (%d schemas)\n", reg.Version, len(entries))
	for _, e := range entries {
		fmt.Fprintf(out, "  %-16s %s\n", e.ID, e.Description)
	}
}

// validateRegistry requires unique IDs and schemas that compile.
func validateRegistry(reg *registry.SchemaRegistry) error {
	if len(reg.Schemas) == 0 {
		return fmt.Errorf("registry contains no schemas")
	}
	ids := make(map[string]bool)
	for _, entry := range reg.Schemas {
		if entry.ID == "" {
			return fmt.Errorf("schema missing required field: id")
		}
		if ids[entry.ID] {
			return fmt.Errorf("duplicate schema ID: %s", entry.ID)
		}
		ids[entry.ID] = true
		if entry.Schema == nil {
			return fmt.Errorf("schema %s has no body", entry.ID)
		}
		if _, err := reg.Validator(entry.ID); err != nil {
			return fmt.Errorf("schema %s does not compile: %w", entry.ID, err)
		}
	}
	return nil
}

func checkDocument(reg *registry.SchemaRegistry, id, path string) ([]string, error) {
	v, err := reg.Validator(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	res, err := v.ValidateJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s is not JSON: %w", path, err)
	}
	if res.Valid {
		return nil, nil
	}
	return res.GetErrorMessages(), nil
}

func saveRegistry(reg *registry.SchemaRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: schema-registry <command> [flags]

Commands:
  list      List the registered schemas
  validate  Check that every schema compiles and IDs are unique
  check     Validate a JSON document against one schema
  export    Write the embedded registry to a file
  help      Show this help message

Examples:
  schema-registry validate
  schema-registry check -id plan.response -file reply.json
  schema-registry export -out build/registry.json`)
}
