package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deepteams/webp"

	"github.com/backmassage/webpmaster/internal/codec"
	"github.com/backmassage/webpmaster/internal/config"
	"github.com/backmassage/webpmaster/internal/logging"
)

// --- Discover tests ---

func TestDiscover_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "photo.jpg")
	touch(t, dir, "icon.png")
	touch(t, dir, "scan.tiff")
	touch(t, dir, "old.bmp")
	touch(t, dir, "anim.gif")
	touch(t, dir, "notes.txt")
	touch(t, dir, "movie.mp4")
	touch(t, dir, "already.webp")

	files, _, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := map[string]bool{
		"photo.jpg": true, "icon.png": true, "scan.tiff": true,
		"old.bmp": true, "anim.gif": true,
	}
	got := basenameSet(files)
	if len(got) != len(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	for name := range want {
		if !got[name] {
			t.Errorf("missing %s in %v", name, got)
		}
	}
}

func TestDiscover_CaseInsensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "PHOTO.JPG")
	touch(t, dir, "Icon.Png")

	files, _, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2 (case-insensitive ext matching)", len(files))
	}
}

func TestDiscover_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "real.jpg")
	os.MkdirAll(filepath.Join(dir, "nested.jpg"), 0o755)
	os.MkdirAll(filepath.Join(dir, "sub"), 0o755)
	touch(t, filepath.Join(dir, "sub"), "deep.png")

	files, _, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "real.jpg" {
		t.Errorf("got %v, want only real.jpg (non-recursive, dirs ignored)", files)
	}
}

func TestDiscover_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	files, skipped, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 0 || skipped != 0 {
		t.Errorf("got %d files and %d skipped, want 0/0", len(files), skipped)
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	if _, _, err := Discover(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Discover should fail on a missing directory")
	}
}

func TestDiscover_HEIFCounting(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "photo.jpg")
	touch(t, dir, "trip.heic")
	touch(t, dir, "trip2.HEIF")

	files, skipped, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if codec.HEIFEnabled() {
		if len(files) != 3 || skipped != 0 {
			t.Errorf("heif build: got %d files, %d skipped, want 3/0", len(files), skipped)
		}
	} else {
		if len(files) != 1 || skipped != 2 {
			t.Errorf("default build: got %d files, %d skipped, want 1/2", len(files), skipped)
		}
	}
}

// --- RunStats tests ---

func TestRunStats_SpaceSaved(t *testing.T) {
	s := RunStats{TotalInputBytes: 1000, TotalOutputBytes: 600}
	if got := s.SpaceSaved(); got != 400 {
		t.Errorf("SpaceSaved: got %d, want 400", got)
	}

	s2 := RunStats{TotalInputBytes: 100, TotalOutputBytes: 150}
	if got := s2.SpaceSaved(); got != -50 {
		t.Errorf("SpaceSaved (negative): got %d, want -50", got)
	}
}

// --- End-to-end Run tests ---

func TestRun_ConvertsBatch(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	writeJPEG(t, filepath.Join(inputDir, "photo.jpg"), 64, 48)
	writeAlphaPNG(t, filepath.Join(inputDir, "icon.png"), 16, 16)

	cfg, log := testConfig(t, inputDir, outputDir)
	defer log.Close()

	stats := Run(context.Background(), cfg, log)

	if stats.Total != 2 || stats.Converted != 2 || stats.Failed != 0 {
		t.Fatalf("stats = %+v, want 2/2 converted", stats)
	}
	if stats.TotalInputBytes <= 0 || stats.TotalOutputBytes <= 0 {
		t.Errorf("byte totals not accumulated: %+v", stats)
	}

	for _, name := range []string{"photo.webp", "icon.webp"} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	// The PNG's transparency must survive the round trip.
	f, err := os.Open(filepath.Join(outputDir, "icon.webp"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := webp.Decode(f)
	if err != nil {
		t.Fatalf("decode icon.webp: %v", err)
	}
	if _, _, _, a := img.At(2, 8).RGBA(); a > 0x4000 {
		t.Errorf("transparent region alpha = %#x, want near 0", a)
	}
}

func TestRun_CorruptFileDoesNotAbortBatch(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	writeJPEG(t, filepath.Join(inputDir, "good.jpg"), 32, 32)
	if err := os.WriteFile(filepath.Join(inputDir, "bad.jpg"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, log := testConfig(t, inputDir, outputDir)
	defer log.Close()

	stats := Run(context.Background(), cfg, log)

	if stats.Total != 2 {
		t.Fatalf("Total = %d, want 2", stats.Total)
	}
	if stats.Converted != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 1 converted, 1 failed", stats)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "good.webp")); err != nil {
		t.Errorf("good.webp should exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "bad.webp")); !os.IsNotExist(err) {
		t.Error("bad.webp should not exist")
	}
}

func TestRun_BaseNameCollision(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	writeJPEG(t, filepath.Join(inputDir, "photo.jpg"), 24, 24)
	writeAlphaPNG(t, filepath.Join(inputDir, "photo.png"), 24, 24)

	cfg, log := testConfig(t, inputDir, outputDir)
	defer log.Close()

	stats := Run(context.Background(), cfg, log)

	if stats.Converted != 2 {
		t.Fatalf("stats = %+v, want 2 converted", stats)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "photo.webp")); err != nil {
		t.Errorf("photo.webp should exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "photo-2.webp")); err != nil {
		t.Errorf("photo-2.webp should exist (collision suffix): %v", err)
	}
}

func TestRun_Idempotent(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	writeJPEG(t, filepath.Join(inputDir, "photo.jpg"), 40, 30)

	cfg, log := testConfig(t, inputDir, outputDir)
	defer log.Close()

	Run(context.Background(), cfg, log)
	first, err := os.ReadFile(filepath.Join(outputDir, "photo.webp"))
	if err != nil {
		t.Fatal(err)
	}

	Run(context.Background(), cfg, log)
	second, err := os.ReadFile(filepath.Join(outputDir, "photo.webp"))
	if err != nil {
		t.Fatal(err)
	}

	if len(first) == 0 || len(first) != len(second) {
		t.Errorf("re-run output differs: %d vs %d bytes", len(first), len(second))
	}
}

func TestRun_SkipExisting(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	writeJPEG(t, filepath.Join(inputDir, "photo.jpg"), 24, 24)
	touch(t, outputDir, "photo.webp")

	cfg, log := testConfig(t, inputDir, outputDir)
	defer log.Close()
	cfg.SkipExisting = true

	stats := Run(context.Background(), cfg, log)

	if stats.Skipped != 1 || stats.Converted != 0 {
		t.Errorf("stats = %+v, want 1 skipped, 0 converted", stats)
	}
}

func TestRun_DryRun(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	writeJPEG(t, filepath.Join(inputDir, "photo.jpg"), 24, 24)

	cfg, log := testConfig(t, inputDir, outputDir)
	defer log.Close()
	cfg.DryRun = true

	stats := Run(context.Background(), cfg, log)

	if stats.Converted != 1 {
		t.Errorf("dry-run should count would-be conversions, got %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "photo.webp")); !os.IsNotExist(err) {
		t.Error("dry-run must not write output files")
	}
}

func TestRun_HEIFWithoutCapability(t *testing.T) {
	if codec.HEIFEnabled() {
		t.Skip("built with heif tag; skip-warning path not reachable")
	}

	inputDir := t.TempDir()
	outputDir := t.TempDir()
	touch(t, inputDir, "trip.heic")

	cfg, log := testConfig(t, inputDir, outputDir)
	defer log.Close()

	stats := Run(context.Background(), cfg, log)

	if stats.Total != 0 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want empty run (HEIF soft-skipped)", stats)
	}
	entries, _ := os.ReadDir(outputDir)
	if len(entries) != 0 {
		t.Errorf("output dir should stay empty, got %d entries", len(entries))
	}
}

func TestRun_CancelledContext(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeJPEG(t, filepath.Join(inputDir, "photo.jpg"), 24, 24)

	cfg, log := testConfig(t, inputDir, outputDir)
	defer log.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats := Run(ctx, cfg, log)

	if stats.Converted != 0 {
		t.Errorf("cancelled run converted %d files, want 0", stats.Converted)
	}
}

func TestOutputSize_MissingFileLogsDebug(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "run.log")

	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.Verbose = true
	cfg.LogFile = logPath
	log, err := logging.NewLogger(&cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	if got := outputSize(log, filepath.Join(dir, "gone.webp")); got != 0 {
		t.Errorf("outputSize on missing file = %d, want 0", got)
	}
	log.Close()

	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "Cannot stat output") {
		t.Error("stat failure should be logged, not silently discarded")
	}
}

// --- Helpers ---

func testConfig(t *testing.T, inputDir, outputDir string) (*config.Config, *logging.Logger) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.InputDir = inputDir
	cfg.OutputDir = outputDir
	cfg.ColorMode = config.ColorNever
	log, err := logging.NewLogger(&cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	return &cfg, log
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

func basenameSet(paths []string) map[string]bool {
	out := make(map[string]bool, len(paths))
	for _, p := range paths {
		out[filepath.Base(p)] = true
	}
	return out
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 96, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// writeAlphaPNG writes a PNG whose left half is fully transparent.
func writeAlphaPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(0)
			if x >= w/2 {
				a = 255
			}
			img.SetNRGBA(x, y, color.NRGBA{R: 180, G: 60, B: 60, A: a})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
