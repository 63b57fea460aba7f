//go:build blackbox

package blackbox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

// writeConfig writes a config that journals to SQLite inside dir.
func writeConfig(t *testing.T, dir string) (cfgPath, dbPath string) {
	t.Helper()

	cfgPath = filepath.Join(dir, "vault.yaml")
	dbPath = filepath.Join(dir, "vault.sqlite")
	run(t, dir, "config", "init", "-o", cfgPath)

	b, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	s := strings.Replace(string(b), "type: csv", "type: sqlite\n    db_path: "+dbPath, 1)
	if err := os.WriteFile(cfgPath, []byte(s), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, dbPath
}
