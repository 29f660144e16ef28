package testsupport

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"testing"

	"mandelmovie/internal/animation"
)

// AssertFrames fails the test unless every frame <prefix>01.jpg through
// <prefix>NN.jpg exists and is non-empty.
func AssertFrames(t testing.TB, prefix string, count int) {
	t.Helper()

	for idx := 0; idx < count; idx++ {
		path := animation.OutputPath(prefix, idx)
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("frame %d: %v", idx, err)
		}
		if info.Size() == 0 {
			t.Fatalf("frame %d: %s is empty", idx, path)
		}
	}
}

// AssertNoFrame fails the test if frame idx was written.
func AssertNoFrame(t testing.TB, prefix string, idx int) {
	t.Helper()

	path := animation.OutputPath(prefix, idx)
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("frame %d: %s should not exist", idx, path)
	} else if !os.IsNotExist(err) {
		t.Fatalf("frame %d: stat %s: %v", idx, path, err)
	}
}

// ReadJPEG decodes a written frame.
func ReadJPEG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	decoded, err := jpeg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return decoded, nil
}
