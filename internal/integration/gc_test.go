package integration

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sir_venger/media_lite/internal/config"
)

func Test_AdminGC_RemovesStaleWorkspaces(t *testing.T) {
	s := newStack(t, func(c *config.Config) { c.Scratch.TTL = 24 * time.Hour })

	// брошенная рабочая директория упавшего запроса
	d := filepath.Join(s.scratch.Dir(), uuid.NewString())
	if err := os.MkdirAll(d, 0o755); err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(d, "input.wav"), []byte("x"), 0o644)
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(d, old, old); err != nil {
		t.Fatal(err)
	}

	// чужой каталог рядом не трогаем
	keep := filepath.Join(s.scratch.Dir(), "not-a-workspace")
	if err := os.MkdirAll(keep, 0o755); err != nil {
		t.Fatal(err)
	}
	_ = os.Chtimes(keep, old, old)

	resp, err := http.Post(s.api.URL+"/admin/gc", "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("gc status %s", resp.Status)
	}

	if _, err := os.Stat(d); !os.IsNotExist(err) {
		t.Fatalf("stale workspace not removed")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatalf("foreign dir removed: %v", err)
	}
}
