package domains

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const modulePrefix = "jetlumen/go-backend/internal/"

func TestArchitecture_DomainPackagesDisallowAdapterCompositionImports(t *testing.T) {
	domainsDir := domainsRoot(t)
	forbidden := []string{
		modulePrefix + "adapters",
		modulePrefix + "composition",
		modulePrefix + "bootstrap",
		"jetlumen/go-backend/cmd",
	}
	violations := collectImportViolations(t, domainsDir, func(_ string, importPath string) bool {
		for _, prefix := range forbidden {
			if hasPrefixImport(importPath, prefix) {
				return true
			}
		}
		return false
	})
	if len(violations) > 0 {
		t.Fatalf("domain boundary violations detected:\n- %s", strings.Join(violations, "\n- "))
	}
}

func TestArchitecture_OnlyWorkflowOrchestratesDomains(t *testing.T) {
	domainsDir := domainsRoot(t)
	workflow := modulePrefix + "domains/workflow"
	horizon := modulePrefix + "domains/ledger/horizon"
	violations := collectImportViolations(t, domainsDir, func(rel string, importPath string) bool {
		if strings.HasPrefix(rel, "contracts"+string(filepath.Separator)+"ports") {
			return false
		}
		if hasPrefixImport(importPath, workflow) {
			return true
		}
		owner := strings.Split(filepath.ToSlash(rel), "/")
		return hasPrefixImport(importPath, horizon) && !(len(owner) > 1 && owner[0] == "ledger" && owner[1] == "horizon")
	})
	if len(violations) > 0 {
		t.Fatalf("workflow/horizon layering violations detected:\n- %s", strings.Join(violations, "\n- "))
	}
}

func domainsRoot(t *testing.T) string {
	t.Helper()
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to resolve current test file path")
	}
	return filepath.Dir(currentFile)
}

func collectImportViolations(t *testing.T, root string, violates func(rel, importPath string) bool) []string {
	t.Helper()
	fset := token.NewFileSet()
	var violations []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		parsed, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return fmt.Errorf("parse file %s: %w", path, err)
		}
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}
		for _, imp := range parsed.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if !violates(relPath, importPath) {
				continue
			}
			pos := fset.Position(imp.Path.Pos())
			violations = append(violations, fmt.Sprintf("%s:%d imports %q", relPath, pos.Line, importPath))
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk domains tree: %v", walkErr)
	}
	return violations
}

func hasPrefixImport(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
