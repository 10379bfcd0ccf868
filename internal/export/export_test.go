package export

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/notebook-tools/env-composer/internal/envspec"
)

const manifest = `name: jupysql-binder
channels:
  - conda-forge
dependencies:
  - python=3.11
  - pip
  - pip:
      - duckdb
      - --editable .
      - traitlets<5.10.0
`

func parseSpec(t *testing.T) *envspec.EnvironmentSpec {
	t.Helper()
	spec, err := envspec.Parse([]byte(manifest))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return spec
}

func TestRegistryListsFormats(t *testing.T) {
	names := Names()
	for _, want := range []string{"conda", "requirements"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected format %s registered, got %v", want, names)
		}
	}

	if _, ok := Get("requirements"); !ok {
		t.Error("Expected requirements exporter to be registered")
	}
	if _, ok := Get("bogus"); ok {
		t.Error("Unexpected exporter for bogus format")
	}
}

func TestRenderRequirements(t *testing.T) {
	out, err := Render("requirements", parseSpec(t))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	want := []string{"duckdb", "-e .", "traitlets<5.10.0"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d:\n%s", len(want), len(lines), out)
	}
	for i, line := range want {
		if lines[i] != line {
			t.Errorf("Expected line %d to be %q, got %q", i, line, lines[i])
		}
	}
}

func TestRenderRequirementsWithoutPipBlock(t *testing.T) {
	spec, err := envspec.Parse([]byte("name: x\nchannels:\n  - conda-forge\ndependencies:\n  - python\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := Render("requirements", spec); err == nil {
		t.Error("expected export without pip block to fail")
	}
}

func TestRenderCondaSpecs(t *testing.T) {
	out, err := Render("conda", parseSpec(t))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	content := string(out)
	if !strings.Contains(content, "# channel: conda-forge") {
		t.Errorf("Expected channel comment in output:\n%s", content)
	}
	if !strings.Contains(content, "python=3.11\n") {
		t.Errorf("Expected python pin in output:\n%s", content)
	}
	if !strings.Contains(content, "pip\n") {
		t.Errorf("Expected pip entry in output:\n%s", content)
	}
	if strings.Contains(content, "duckdb") {
		t.Errorf("Pip entries must not leak into conda specs:\n%s", content)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := Render("rpm", parseSpec(t)); err == nil {
		t.Error("expected unknown format to fail")
	}
}

func readBundle(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening bundle: %v", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".tar.gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			t.Fatalf("creating gzip reader: %v", err)
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(path, ".tar.zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			t.Fatalf("creating zstd reader: %v", err)
		}
		defer zr.Close()
		r = zr
	case strings.HasSuffix(path, ".tar.xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			t.Fatalf("creating xz reader: %v", err)
		}
		r = xr
	}

	entries := map[string]string{}
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading bundle: %v", err)
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("reading bundle entry: %v", err)
		}
		entries[hdr.Name] = string(content)
	}
	return entries
}

func TestWriteBundleCompressions(t *testing.T) {
	spec := parseSpec(t)

	for _, ext := range []string{".tar", ".tar.gz", ".tar.zst", ".tar.xz"} {
		t.Run(ext, func(t *testing.T) {
			outPath := filepath.Join(t.TempDir(), "bundle"+ext)
			if err := WriteBundle(spec, []string{"requirements", "conda"}, outPath); err != nil {
				t.Fatalf("WriteBundle failed: %v", err)
			}

			entries := readBundle(t, outPath)
			for _, name := range []string{"environment.yml", "requirements.txt", "conda-specs.txt"} {
				if _, ok := entries[name]; !ok {
					t.Errorf("Expected %s in bundle, got %v", name, keys(entries))
				}
			}

			// The bundled manifest must itself parse.
			again, err := envspec.Parse([]byte(entries["environment.yml"]))
			if err != nil {
				t.Fatalf("bundled manifest does not parse: %v", err)
			}
			if again.Name != spec.Name {
				t.Errorf("bundled manifest name changed: %q", again.Name)
			}
		})
	}
}

func TestWriteBundleRejectsUnknownExtension(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "bundle.zip")
	if err := WriteBundle(parseSpec(t), nil, outPath); err == nil {
		t.Error("expected unsupported extension to fail")
	}
}

func TestWriteBundleRejectsUnknownFormat(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "bundle.tar")
	if err := WriteBundle(parseSpec(t), []string{"rpm"}, outPath); err == nil {
		t.Error("expected unknown format to fail")
	}
}

func keys(m map[string]string) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
