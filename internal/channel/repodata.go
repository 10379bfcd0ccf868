// Package channel deals with conda channel indexes ("repodata"): loading
// them from local cache directories in their common compressed encodings and
// syncing them from channel mirrors. It never resolves dependencies; it only
// answers whether a package name is known to a channel.
package channel

import (
	"compress/bzip2"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Subdirs are the platform directories synced per channel. noarch carries
// the pure-python packages Binder environments mostly consist of.
var Subdirs = []string{"noarch", "linux-64"}

// Index is one loaded repodata file.
type Index struct {
	Channel string
	Subdir  string

	// packageNames is the set of package names present in the index.
	packageNames map[string]struct{}
}

// repodata mirrors the slice of the repodata.json layout we care about.
type repodata struct {
	Info struct {
		Subdir string `json:"subdir"`
	} `json:"info"`
	Packages      map[string]repodataEntry `json:"packages"`
	PackagesConda map[string]repodataEntry `json:"packages.conda"`
}

type repodataEntry struct {
	Name string `json:"name"`
}

// HasPackage reports whether the index lists any version of name.
func (idx *Index) HasPackage(name string) bool {
	_, ok := idx.packageNames[name]
	return ok
}

// PackageCount returns the number of distinct package names in the index.
func (idx *Index) PackageCount() int {
	return len(idx.packageNames)
}

// LoadIndex reads one repodata file. The decompressor is chosen by file
// extension: .json, .json.gz, .json.bz2, or .json.zst.
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	defer f.Close()

	reader, closeReader, err := decompressor(path, f)
	if err != nil {
		return nil, err
	}
	if closeReader != nil {
		defer closeReader()
	}

	var data repodata
	if err := json.NewDecoder(reader).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding repodata %s: %w", path, err)
	}

	idx := &Index{
		Channel:      channelFromPath(path),
		Subdir:       data.Info.Subdir,
		packageNames: make(map[string]struct{}, len(data.Packages)+len(data.PackagesConda)),
	}
	for _, entry := range data.Packages {
		if entry.Name != "" {
			idx.packageNames[entry.Name] = struct{}{}
		}
	}
	for _, entry := range data.PackagesConda {
		if entry.Name != "" {
			idx.packageNames[entry.Name] = struct{}{}
		}
	}
	return idx, nil
}

func decompressor(path string, f io.Reader) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(path, ".json"):
		return f, nil, nil
	case strings.HasSuffix(path, ".json.gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	case strings.HasSuffix(path, ".json.bz2"):
		return bzip2.NewReader(f), nil, nil
	case strings.HasSuffix(path, ".json.zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported index file %s", path)
	}
}

// channelFromPath recovers the channel name from the cache layout
// <dir>/<channel>/<subdir>/repodata.json[.*].
func channelFromPath(path string) string {
	subdirDir := filepath.Dir(path)
	channelDir := filepath.Dir(subdirDir)
	base := filepath.Base(channelDir)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

// LoadDir loads every repodata file found below dir.
func LoadDir(dir string) ([]*Index, error) {
	var indexes []*Index
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasPrefix(name, "repodata.json") {
			return nil
		}
		idx, err := LoadIndex(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		indexes = append(indexes, idx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(indexes) == 0 {
		return nil, fmt.Errorf("no repodata indexes found under %s", dir)
	}
	return indexes, nil
}
