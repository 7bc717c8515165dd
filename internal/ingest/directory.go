package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/docparse/constants"
)

// WalkDocuments walks root, skips hidden entries if requested and returns
// every document with an allowed extension, sorted by path. Files whose
// content hash was already seen are flagged Duplicate.
func WalkDocuments(ctx context.Context, root string, skipHidden bool) ([]Source, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var paths []string
	var results []Source
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Source{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	sort.Strings(paths)
	seen := map[string]struct{}{}
	for _, p := range paths {
		src := Source{Path: p, Ext: constants.NormalizeExt(filepath.Ext(p))}
		sum, err := HashFile(p)
		if err != nil {
			src.Err = err.Error()
			results = append(results, src)
			stats.Failed++
			continue
		}
		src.HashHex = sum
		if _, dup := seen[sum]; dup {
			src.Duplicate = true
			stats.Deduplicated++
		}
		seen[sum] = struct{}{}
		results = append(results, src)
		stats.Succeeded++
	}
	return results, stats, nil
}

// Exemplars groups labeled documents by template: every immediate
// subdirectory of root is a template ID and the documents beneath it are its
// exemplars. Template order follows directory name order.
type Exemplars struct {
	TemplateIDs []string
	Sources     map[string][]Source
	Stats       DirStats
}

// WalkExemplars reads a root/<template_id>/... exemplar tree.
func WalkExemplars(ctx context.Context, root string) (*Exemplars, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read exemplar root: %w", err)
	}
	out := &Exemplars{Sources: map[string][]Source{}}
	for _, e := range entries {
		if !e.IsDir() || IsHidden(e.Name()) {
			continue
		}
		id := e.Name()
		srcs, stats, err := WalkDocuments(ctx, filepath.Join(root, id), true)
		if err != nil {
			return nil, err
		}
		for i := range srcs {
			srcs[i].TemplateID = id
		}
		out.TemplateIDs = append(out.TemplateIDs, id)
		out.Sources[id] = srcs
		out.Stats.Scanned += stats.Scanned
		out.Stats.Matched += stats.Matched
		out.Stats.Succeeded += stats.Succeeded
		out.Stats.Deduplicated += stats.Deduplicated
		out.Stats.Failed += stats.Failed
	}
	return out, nil
}
