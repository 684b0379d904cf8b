package declaration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/tariffgraph/internal/ctxlog"
	"github.com/specialistvlad/tariffgraph/internal/dag"
	"github.com/specialistvlad/tariffgraph/internal/table"
)

// ResolveDeclarationPath returns every .hcl file rooted at path. If path
// names a single file it must carry the .hcl extension; if it names a
// directory, every .hcl file beneath it is returned in a stable,
// lexicographically sorted order.
func ResolveDeclarationPath(ctx context.Context, path string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("declaration path not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	if info.IsDir() {
		logger.Debug("scanning directory for declaration files", "path", path)
		return findHCLFiles(path)
	}

	if filepath.Ext(path) != ".hcl" {
		return nil, fmt.Errorf("specified file is not an .hcl file: %s", path)
	}
	return []string{path}, nil
}

func findHCLFiles(rootDir string) ([]string, error) {
	var files []string
	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".hcl" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// decodeDeclarationFile parses and decodes a single HCL declaration file
// into its raw shape.
func decodeDeclarationFile(filePath string) (*file, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse declaration file %s: %s", filePath, diags.Error())
	}

	var f file
	diags = gohcl.DecodeBody(hclFile.Body, nil, &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode declaration file %s: %s", filePath, diags.Error())
	}
	return &f, nil
}

// Load resolves path to one or more .hcl files, decodes and merges them
// into a single Graph plus the Tables its LOOKUP nodes reference, and
// validates the graph. A directory may split a product's nodes and table
// declarations across several files; node and table names must still be
// unique across the merged set. Each table block's path is resolved
// relative to the .hcl file that declares it.
func Load(ctx context.Context, path string) (*dag.Graph, *dag.Tables, error) {
	logger := ctxlog.FromContext(ctx)
	files, err := ResolveDeclarationPath(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve declaration path %q: %w", path, err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no .hcl files found at %s", path)
	}

	var merged *file
	var specs []TableSpec
	for _, f := range files {
		logger.Debug("decoding declaration file", "path", f)
		decoded, err := decodeDeclarationFile(f)
		if err != nil {
			return nil, nil, err
		}
		for _, tb := range decoded.Tables {
			spec, err := tableSpecFromBlock(tb, filepath.Dir(f))
			if err != nil {
				return nil, nil, fmt.Errorf("table %q in %s: %w", tb.Name, f, err)
			}
			specs = append(specs, spec)
		}
		if merged == nil {
			merged = decoded
			continue
		}
		merged.Nodes = append(merged.Nodes, decoded.Nodes...)
	}

	g, err := build(merged)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build graph from %s: %w", path, err)
	}
	if err := g.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid graph loaded from %s: %w", path, err)
	}

	tables, err := LoadTables(specs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tables for %s: %w", path, err)
	}

	logger.Info("loaded declaration", "path", path, "nodes", g.Len(), "tables", len(specs),
		"product", g.Product, "version", g.Version)
	return g, tables, nil
}

func tableSpecFromBlock(tb tableBlock, baseDir string) (TableSpec, error) {
	mode, err := parseLookupMode(tb.Mode)
	if err != nil {
		return TableSpec{}, err
	}
	keyType := table.TextKey
	if tb.KeyType == "int" {
		keyType = table.IntKey
	}
	path := tb.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return TableSpec{
		Name:        tb.Name,
		Path:        path,
		Mode:        mode,
		KeyType:     keyType,
		KeyColumn:   tb.KeyColumn,
		ValueColumn: tb.ValueColumn,
	}, nil
}
