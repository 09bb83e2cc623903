package reportprep

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPurgeBackup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Data_Backup")
	if n, err := PurgeBackup(dir, nil); err != nil || n != 0 {
		t.Errorf("PurgeBackup() of a missing folder = %d, %v, want 0, nil", n, err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "sp_Ivanov I.I._01.06.2024__30.06.2024_резерв_20240701_120000"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sp_Ivanov I.I._01.06.2024__30.06.2024_резерв_20240701_120000", AAPL+".pdf"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bonds_Ivanov I.I._01.06.2024__30.06.2024_резерв_20240701_120000.json"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	n, err := PurgeBackup(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("PurgeBackup() = %d, want 2", n)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("the backup folder itself must remain: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("PurgeBackup() left %d entries", len(entries))
	}
}
