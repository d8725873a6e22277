package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/regmap/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("judgment", "openai", "gpt-4o-mini", "prompt")
	b := Key("judgment", "openai", "gpt-4o-mini", "prompt")
	c := Key("judgment", "openai", "gpt-4o-mini", "other prompt")

	if a != b {
		t.Error("Expected identical parts to produce identical keys")
	}
	if a == c {
		t.Error("Expected different prompts to produce different keys")
	}
	if !strings.HasPrefix(a, "regmap:v1:") {
		t.Errorf("Expected versioned prefix, got %s", a)
	}

	// Part boundaries matter
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Expected part boundaries to be preserved")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss")
	}

	_ = c.Set("k", []byte("v"), 0)
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Errorf("Expected hit with v, got %q (%v)", got, ok)
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after delete")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("x")

	if err := c.Set(key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, ok := c.Get(key); !ok || string(got) != "payload" {
		t.Errorf("Expected payload, got %q (%v)", got, ok)
	}

	if err := c.Set(key, []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("Expected expired entry to miss")
	}

	if err := c.Delete(key); err != nil {
		t.Errorf("Expected delete of missing entry to succeed, got %v", err)
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	key := Key("y")

	if err := NewDiskCache(dir, time.Hour).Set(key, []byte("from disk"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	memory := NewMemoryCache(time.Minute, time.Minute)
	layered := NewLayeredCache(memory, NewDiskCache(dir, time.Hour))
	if got, ok := layered.Get(key); !ok || string(got) != "from disk" {
		t.Fatalf("Expected disk hit, got %q (%v)", got, ok)
	}
	if got, ok := memory.Get(key); !ok || string(got) != "from disk" {
		t.Errorf("Expected promotion to memory, got %q (%v)", got, ok)
	}
}

func TestLayeredCache_WritesAndClearsEveryLayer(t *testing.T) {
	memory := NewMemoryCache(time.Minute, time.Minute)
	disk := NewDiskCache(t.TempDir(), time.Hour)
	layered := NewLayeredCache(memory, disk)
	key := Key("z")

	if err := layered.Set(key, []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok := memory.Get(key); !ok {
		t.Error("Expected memory layer to hold the entry")
	}
	if _, ok := disk.Get(key); !ok {
		t.Error("Expected disk layer to hold the entry")
	}

	if err := layered.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := layered.Get(key); ok {
		t.Error("Expected miss after clear")
	}
}

func TestDiskCache_StatsAndPrune(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	_ = c.Set(Key("live"), []byte("a"), 0)
	_ = c.Set(Key("old"), []byte("b"), -time.Minute)
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 3 || stats.Expired != 2 {
		t.Errorf("Expected 3 entries with 2 expired, got %+v", stats)
	}

	removed, err := c.Prune()
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 pruned, got %d", removed)
	}
	if _, ok := c.Get(Key("live")); !ok {
		t.Error("Expected live entry to survive prune")
	}

	empty := NewDiskCache(filepath.Join(dir, "missing"), time.Hour)
	if stats, err := empty.Stats(); err != nil || stats.Entries != 0 {
		t.Errorf("Expected empty stats for missing dir, got %+v (%v)", stats, err)
	}
}

func TestNew(t *testing.T) {
	if New(model.CacheConfig{Enabled: false}) != nil {
		t.Error("Expected nil cache when disabled")
	}
	if _, ok := New(model.CacheConfig{Enabled: true}).(*MemoryCache); !ok {
		t.Error("Expected memory cache without a directory")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("Expected layered cache with a directory")
	}
}

func TestJudgments(t *testing.T) {
	j := NewJudgments(NewMemoryCache(time.Minute, time.Minute), time.Minute)
	key := JudgmentKey("anthropic", "claude", "prompt")

	if _, ok := j.Get(key); ok {
		t.Error("Expected miss")
	}

	want := model.Judgment{
		Status:     model.CoveragePartial,
		Confidence: 0.6,
		Rationale:  "ok",
		Gaps:       []string{"retention period"},
	}
	if err := j.Put(key, want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := j.Get(key)
	if !ok {
		t.Fatal("Expected hit")
	}
	if got.Status != want.Status || got.Confidence != want.Confidence || got.Rationale != want.Rationale {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestJudgments_Disabled(t *testing.T) {
	var j *Judgments
	if _, ok := j.Get("k"); ok {
		t.Error("Expected nil Judgments to miss")
	}
	if err := j.Put("k", model.Judgment{}); err != nil {
		t.Errorf("Expected nil Judgments to ignore Put, got %v", err)
	}

	j = NewJudgments(nil, time.Minute)
	if _, ok := j.Get("k"); ok {
		t.Error("Expected nil store to miss")
	}
}
