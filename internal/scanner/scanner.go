// Package scanner builds the class model from a source tree: model
// documents (JSON/YAML) and Java sources.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codewithboateng/diguard/internal/model"
)

var DefaultInclude = []string{"**/*.java", "**/*.json", "**/*.yaml", "**/*.yml"}

type Options struct {
	Include []string // doublestar patterns relative to root; empty means DefaultInclude
	Exclude []string
}

type Diagnostics struct {
	Warnings []string
	Files    int
}

func (d *Diagnostics) warnf(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// Scan walks root (a directory or a single file) and returns a run holding
// every class found, sorted by qualified name. Unreadable or unparsable
// files become warnings; a document with an invalid modifier list is a
// *model.ModelError.
func Scan(ctx context.Context, root string, opts Options) (model.Run, Diagnostics, error) {
	run := model.Run{
		StartedAt:    time.Now().UTC(),
		Source:       filepath.Clean(root),
		ModelVersion: model.Version,
	}
	diags := Diagnostics{}
	include := opts.Include
	if len(include) == 0 {
		include = DefaultInclude
	}

	info, err := os.Stat(root)
	if err != nil {
		return run, diags, fmt.Errorf("scan %s: %w", root, err)
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, werr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if werr != nil {
			diags.warnf("%s: %v", p, werr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel := relPath(root, p, info.IsDir())
		if d.IsDir() {
			if p != root && matchAny(opts.Exclude, rel) {
				return fs.SkipDir
			}
			return nil
		}
		if matchAny(opts.Exclude, rel) || !matchAny(include, rel) {
			return nil
		}
		classes, err := scanFile(p, rel, &diags)
		if err != nil {
			return err
		}
		diags.Files++
		run.Classes = append(run.Classes, classes...)
		return nil
	})
	if err != nil {
		return run, diags, err
	}

	sort.SliceStable(run.Classes, func(i, j int) bool {
		return run.Classes[i].QualifiedName() < run.Classes[j].QualifiedName()
	})
	if len(run.Classes) == 0 {
		diags.warnf("no classes found under %s", run.Source)
	}
	slog.Debug("scan complete", "source", run.Source, "files", diags.Files, "classes", len(run.Classes), "warnings", len(diags.Warnings))
	return run, diags, nil
}

func scanFile(path, rel string, diags *Diagnostics) ([]model.Class, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		diags.warnf("%s: %v", rel, err)
		return nil, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".java":
		classes, warnings := parseJava(string(b), rel)
		diags.Warnings = append(diags.Warnings, warnings...)
		return classes, nil
	case ".json", ".yaml", ".yml":
		classes, err := decodeDocument(b, rel)
		var me *model.ModelError
		if errors.As(err, &me) {
			return nil, err
		}
		if err != nil {
			diags.warnf("%s: %v", rel, err)
			return nil, nil
		}
		return classes, nil
	default:
		diags.warnf("%s: unsupported file type", rel)
		return nil, nil
	}
}

func relPath(root, p string, rootIsDir bool) string {
	if !rootIsDir {
		return filepath.Base(p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}
