package safewrite_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/covtools/covprep/internal/safewrite"
)

func TestReplace_WritesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcov.info")

	if err := safewrite.Replace(path, []byte("SF:src/a.ts\nend_of_record\n"), false); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "SF:src/a.ts\nend_of_record\n" {
		t.Errorf("unexpected content: %q", got)
	}
}

func TestReplace_KeepsBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lcov.info")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	if err := safewrite.Replace(path, []byte("rewritten"), true); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "rewritten" {
		t.Errorf("expected rewritten content, got %q", got)
	}

	backup, err := os.ReadFile(path + safewrite.BackupSuffix)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != "original" {
		t.Errorf("expected original content in backup, got %q", backup)
	}
}

func TestReplace_NoBackupWhenTargetMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lcov.info")

	if err := safewrite.Replace(path, []byte("content"), true); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if _, err := os.Stat(path + safewrite.BackupSuffix); !os.IsNotExist(err) {
		t.Errorf("expected no backup file, stat err = %v", err)
	}
}

func TestReplace_LeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lcov.info")

	if err := safewrite.Replace(path, []byte("content"), false); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the target file, found %v", names)
	}
}
