package configuration

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv_LoadsExistingFilesOnly(t *testing.T) {
	tmp := t.TempDir()
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "STAFFPLAN_TEST_ENV_LOAD=ok\n")

	chdir(t, tmp)
	_ = os.Unsetenv("STAFFPLAN_TEST_ENV_LOAD")
	t.Cleanup(func() { _ = os.Unsetenv("STAFFPLAN_TEST_ENV_LOAD") })

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("STAFFPLAN_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded from .env.local, got %q", got)
	}
}

func TestLoad_DatabaseURLWins(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	t.Setenv("DATABASE_URL", "postgresql://nusuk:secret@db:5432/nusuk_db")
	t.Setenv("DB_HOST", "ignored")
	t.Setenv("LOG_PATH", filepath.Join(tmp, "import.log"))
	t.Setenv("EXCEL_PATH", "/data/plan.xlsx")

	c, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(c.Unload)

	if c.Database.Opts != "postgresql://nusuk:secret@db:5432/nusuk_db" {
		t.Fatalf("unexpected connection string: %q", c.Database.Opts)
	}
	if c.WorkbookPath != "/data/plan.xlsx" {
		t.Fatalf("unexpected workbook path: %q", c.WorkbookPath)
	}
	if c.Logger() == nil {
		t.Fatalf("expected logger")
	}
}

func TestLoad_DiscreteDatabaseSettings(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "nusuk")
	t.Setenv("DB_NAME", "nusuk_db")
	t.Setenv("DB_PASSWORD", "nusuk_secret")
	t.Setenv("LOG_PATH", filepath.Join(tmp, "import.log"))

	c, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(c.Unload)

	want := "host=pg port=6543 user=nusuk dbname=nusuk_db password=nusuk_secret sslmode=disable"
	if c.Database.Opts != want {
		t.Fatalf("unexpected connection string: %q", c.Database.Opts)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
