package subtitle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CreateOutput opens the output file for a rendition without clobbering
// an existing one: "base.vtt" first, then "base-1.vtt" through
// "base-99.vtt". A non-empty suffix names the rendition, as in
// "base-fi.vtt". Returns the streaming writer and the path actually
// opened.
func CreateOutput(basename, suffix string, format Format) (CueWriter, string, error) {
	name := basename
	if suffix != "" {
		name += "-" + suffix
	}
	ext := GetExtensionForFormat(format)

	if err := ensureDir(name + ext); err != nil {
		return nil, "", err
	}

	f, path, err := createExclusive(name, ext)
	if err != nil {
		return nil, "", err
	}

	w, err := NewWriter(f, format)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, "", err
	}
	return w, path, nil
}

func createExclusive(name, ext string) (*os.File, string, error) {
	path := name + ext
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err == nil {
		return f, path, nil
	}
	if !errors.Is(err, os.ErrExist) {
		return nil, "", err
	}

	for i := 1; i < 100; i++ {
		path = fmt.Sprintf("%s-%d%s", name, i, ext)
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("create %s%s: too many existing files", name, ext)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
