package export

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/notebook-tools/env-composer/internal/envspec"
	"github.com/notebook-tools/env-composer/internal/utils/general/slice"
)

// WriteBundle writes the canonical manifest plus every requested export
// format into a tar archive at outPath. The compressor is chosen by
// extension: .tar, .tar.gz, .tar.zst, or .tar.xz.
func WriteBundle(spec *envspec.EnvironmentSpec, formats []string, outPath string) error {
	manifest, err := spec.Marshal()
	if err != nil {
		return err
	}

	entries := map[string][]byte{
		"environment.yml": manifest,
	}
	for _, format := range slice.Dedupe(formats) {
		e, ok := Get(format)
		if !ok {
			return fmt.Errorf("unknown export format %q (available: %v)", format, Names())
		}
		content, err := e.Render(spec)
		if err != nil {
			return err
		}
		entries[e.FileName()] = content
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating bundle: %w", err)
	}
	defer f.Close()

	w, closeCompressor, err := compressor(outPath, f)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(w)
	now := time.Now()
	// Stable entry order so identical inputs produce identical bundles.
	names := []string{"environment.yml"}
	for name := range entries {
		if name != "environment.yml" {
			names = append(names, name)
		}
	}
	sort.Strings(names[1:])

	for _, name := range names {
		content := entries[name]
		hdr := &tar.Header{
			Name:    name,
			Mode:    0644,
			Size:    int64(len(content)),
			ModTime: now,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing bundle header: %w", err)
		}
		if _, err := tw.Write(content); err != nil {
			return fmt.Errorf("writing bundle entry %s: %w", name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing bundle: %w", err)
	}
	if closeCompressor != nil {
		if err := closeCompressor(); err != nil {
			return fmt.Errorf("closing compressor: %w", err)
		}
	}
	return nil
}

func compressor(path string, f io.Writer) (io.Writer, func() error, error) {
	switch {
	case strings.HasSuffix(path, ".tar"):
		return f, nil, nil
	case strings.HasSuffix(path, ".tar.gz"):
		gz := gzip.NewWriter(f)
		return gz, gz.Close, nil
	case strings.HasSuffix(path, ".tar.zst"):
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd writer: %w", err)
		}
		return zw, zw.Close, nil
	case strings.HasSuffix(path, ".tar.xz"):
		xw, err := xz.NewWriter(f)
		if err != nil {
			return nil, nil, fmt.Errorf("creating xz writer: %w", err)
		}
		return xw, xw.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported bundle extension for %s", path)
	}
}
