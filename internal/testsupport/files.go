package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// SeedAssetRoot lays out a conventional asset root with the given number of
// scenes: one animation and one voiceover file per scene.
func SeedAssetRoot(t testing.TB, root string, scenes int) {
	t.Helper()

	for i := 1; i <= scenes; i++ {
		WriteFile(t, filepath.Join(root, "animations", fmt.Sprintf("scene_%03d.mp4", i)), 16)
		WriteFile(t, filepath.Join(root, "voiceover", fmt.Sprintf("voiceover_part_%03d.mp3", i)), 16)
	}
}
