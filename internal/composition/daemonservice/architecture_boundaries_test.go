package daemonservice

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const internalRoot = "jetlumen/go-backend/internal/"

// allowedInternal lists the packages the service may assemble from. Concrete
// adapters such as ledger/horizon and wallet/keystore are opened by
// composition/daemon and arrive through Options.
var allowedInternal = []string{
	"bootstrap/appconfig",
	"composition/daemon",
	"domains/contract",
	"domains/contracts",
	"domains/contracts/ports",
	"domains/ledger",
	"domains/mirror",
	"domains/session",
	"domains/wallet",
	"domains/workflow",
	"platform/metrics",
	"platform/notify",
	"platform/privacylog",
}

func TestArchitecture_DaemonServiceImportsOnlyAllowedPackages(t *testing.T) {
	_, currentFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	files, err := filepath.Glob(filepath.Join(filepath.Dir(currentFile), "*.go"))
	require.NoError(t, err)

	fset := token.NewFileSet()
	var violations []string
	for _, file := range files {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}
		parsed, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
		require.NoError(t, err, file)
		for _, imp := range parsed.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if reason := importRejection(importPath); reason != "" {
				pos := fset.Position(imp.Path.Pos())
				violations = append(violations, filepath.Base(file)+":"+strconv.Itoa(pos.Line)+" "+importPath+" ("+reason+")")
			}
		}
	}
	require.Empty(t, violations, "daemonservice import boundary violations")
}

func TestImportRejection(t *testing.T) {
	cases := map[string]string{
		"context": "",
		"jetlumen/go-backend/internal/domains/ledger":           "",
		"jetlumen/go-backend/internal/domains/contracts/ports":  "",
		"jetlumen/go-backend/internal/domains/ledger/horizon":   "adapter-not-allowed",
		"jetlumen/go-backend/internal/domains/wallet/keystore":  "adapter-not-allowed",
		"jetlumen/go-backend/internal/adapters/rpc":             "adapter-not-allowed",
		"jetlumen/go-backend/internal/composition/daemon":       "",
		"jetlumen/go-backend/internal/composition/daemonserver": "adapter-not-allowed",
		"github.com/dgraph-io/badger/v4":                        "third-party-import",
		"github.com/lib/pq":                                     "third-party-import",
	}
	for importPath, want := range cases {
		require.Equal(t, want, importRejection(importPath), importPath)
	}
}

// importRejection returns why importPath may not appear in the service, or
// "" when it may. The service composes domain packages and never talks to a
// driver or SDK directly.
func importRejection(importPath string) string {
	if rel, ok := strings.CutPrefix(importPath, internalRoot); ok {
		for _, allowed := range allowedInternal {
			if rel == allowed {
				return ""
			}
		}
		return "adapter-not-allowed"
	}
	if isStdlib(importPath) {
		return ""
	}
	return "third-party-import"
}

func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
