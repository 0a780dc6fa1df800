package job

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

var ErrNoJobs = errors.New("job: no job files found")

// Discover expands command line arguments into job file paths. Directories
// are walked for YAML, TOML and JSON files, arguments holding glob
// metacharacters are matched with doublestar (so "jobs/**/*.yaml" works
// without shell support) and anything else is taken as a job path.
// Paths come back in argument order, sorted within each expansion and
// without duplicates.
func Discover(ctx context.Context, args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			found []string
			err   error
		)
		switch {
		case isDir(arg):
			found, err = walk(ctx, arg)
		case hasMeta(arg):
			found, err = glob(arg)
		default:
			add(arg)
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoJobs, arg)
		}
		for _, p := range found {
			add(p)
		}
	}
	return paths, nil
}

// walk collects job files under dir. fastwalk visits entries concurrently.
func walk(ctx context.Context, dir string) ([]string, error) {
	var (
		mu    sync.Mutex
		found []string
	)
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, dir, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, err := FormatOf(p); err != nil {
			return nil
		}

		mu.Lock()
		found = append(found, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	sort.Strings(found)
	return found, nil
}

func glob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}

	found := matches[:0]
	for _, m := range matches {
		if _, err := FormatOf(m); err == nil {
			found = append(found, m)
		}
	}
	sort.Strings(found)
	return found, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[{`)
}
