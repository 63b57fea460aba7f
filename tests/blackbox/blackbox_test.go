//go:build blackbox

package blackbox

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var vaultBin string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "vault-blackbox-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	vaultBin = filepath.Join(tmp, "vault")

	// Build the binary once for all tests.
	cmd := exec.Command("go", "build", "-o", vaultBin, "../../cmd/vault")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func run(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command(vaultBin, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("command failed: %v\nargs: %v\noutput:\n%s", err, args, string(out))
	}
	return string(out)
}
