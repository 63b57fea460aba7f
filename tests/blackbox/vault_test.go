//go:build blackbox

package blackbox

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestDemoJournalsToSQLite(t *testing.T) {
	dir := t.TempDir()
	cfgPath, dbPath := writeConfig(t, dir)

	out := run(t, dir, "demo", "-c", cfgPath, "--accounts", "2")
	if !contains(out, "2 accounts match the ledger") {
		t.Fatalf("expected replay check in output, got:\n%s", out)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind = 'account_created'`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 account_created events, got %d", n)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind = 'fees_distributed'`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 fees_distributed event, got %d", n)
	}

	out = run(t, dir, "journal", "replay", "--db", dbPath)
	if !contains(out, "paused=true") {
		t.Fatalf("expected paused accounts in replay, got:\n%s", out)
	}

	out = run(t, dir, "journal", "list", "--db", dbPath, "--kind", "stake")
	if !contains(out, "** stake: staking") {
		t.Fatalf("expected stake event, got:\n%s", out)
	}
}

func TestKeeperOnce(t *testing.T) {
	dir := t.TempDir()
	cfgPath, _ := writeConfig(t, dir)

	out := run(t, dir, "keeper", "run", "-c", cfgPath, "--once", "--seed-fees", "101")
	if !contains(out, "distributed: stakers=50 burn=25 treasury=26") {
		t.Fatalf("expected a 50/25/26 distribution, got:\n%s", out)
	}
}
