package batch

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultPatterns are the workbook globs matched by DiscoverDir.
var DefaultPatterns = []string{"*.xlsx", "*.xlsm"}

// DiscoverDir walks dir and returns a source for every file whose base name
// matches one of patterns, sorted by path. Office lock files ("~$...") are
// ignored.
func DiscoverDir(dir string, patterns []string) ([]Source, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, errors.Wrapf(err, "invalid pattern %q", p)
		}
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "~$") {
			return nil
		}
		for _, p := range patterns {
			if ok, _ := filepath.Match(p, strings.ToLower(name)); ok {
				paths = append(paths, path)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "discover %s", dir)
	}

	sort.Strings(paths)
	return FileSources(paths...), nil
}

// ManifestEntry is one record of a discovery manifest.
type ManifestEntry struct {
	FileID    string `json:"file_id,omitempty"`
	FileName  string `json:"file_name,omitempty"`
	FilePath  string `json:"file_path"`
	DealName  string `json:"deal_name,omitempty"`
	DealStage string `json:"deal_stage,omitempty"`
}

// LoadManifest reads a JSON list of files to process. Relative paths are
// resolved against the manifest's directory. Entries keep manifest order.
func LoadManifest(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read manifest %s", path)
	}

	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "parse manifest %s", path)
	}

	base := filepath.Dir(path)
	sources := make([]Source, 0, len(entries))
	for i, e := range entries {
		if e.FilePath == "" {
			return nil, errors.Newf("manifest %s: entry %d has no file_path", path, i)
		}
		p := e.FilePath
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		id := e.FileID
		if id == "" {
			id = e.FilePath
		}
		sources = append(sources, NamedFileSource(id, p))
	}
	return sources, nil
}
