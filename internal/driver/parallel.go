package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"mica/internal/diag"
	"mica/internal/source"
)

// SourceExt is the file extension CheckDir picks up.
const SourceExt = ".mica"

// CheckUnits analyzes units in parallel, one independent checker per unit,
// bounded by opts.Jobs workers. Results come back sorted by path so output
// is deterministic regardless of scheduling.
func CheckUnits(ctx context.Context, fset *source.FileSet, units []Unit, opts Options) ([]UnitResult, error) {
	if len(units) == 0 {
		return nil, nil
	}
	progress := progressOrNop(opts.Progress)
	for _, u := range units {
		progress.Publish(Event{Path: u.Path, Stage: StageAnalyze, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]UnitResult, len(units))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			progress.Publish(Event{Path: unit.Path, Stage: StageAnalyze, Status: StatusWorking})
			res, err := CheckFile(fset, unit, opts)
			if err != nil {
				progress.Publish(Event{Path: unit.Path, Stage: StageAnalyze, Status: StatusError})
				return err
			}
			status := StatusDone
			if !res.OK {
				status = StatusError
			}
			progress.Publish(Event{Path: unit.Path, Stage: StageAnalyze, Status: status})
			if opts.Sink != nil {
				opts.Sink.MergeBag(res.Bag)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

// CheckDir loads every source file under dir and analyzes them in
// parallel. The returned FileSet resolves spans in the results.
func CheckDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []UnitResult, error) {
	paths, err := ListSourceFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	if len(paths) == 0 {
		return source.NewFileSet(), nil, nil
	}

	fset := source.NewFileSet()
	progress := progressOrNop(opts.Progress)
	units := make([]Unit, 0, len(paths))
	for _, p := range paths {
		progress.Publish(Event{Path: p, Stage: StageLoad, Status: StatusWorking})
		id, err := fset.Load(p)
		if err != nil {
			progress.Publish(Event{Path: p, Stage: StageLoad, Status: StatusError})
			return nil, nil, fmt.Errorf("failed to load %s: %w", p, err)
		}
		units = append(units, Unit{
			Path:   p,
			FileID: id,
			Source: fset.Get(id).Content,
		})
	}

	results, err := CheckUnits(ctx, fset, units, opts)
	if err != nil {
		return nil, nil, err
	}
	return fset, results, nil
}

// ListSourceFiles walks dir and returns every *.mica path, sorted.
// Hidden directories and the usual build output directories are skipped.
func ListSourceFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if strings.HasSuffix(dir, SourceExt) {
			return []string{dir}, nil
		}
		return nil, fmt.Errorf("%s is not a directory or %s file", dir, SourceExt)
	}

	var out []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "target" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), SourceExt) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// MergeResults folds per-unit bags into one sorted bag and reports
// whether every unit passed. Results are already path-sorted, so the
// merged order is stable run to run.
func MergeResults(results []UnitResult) (*diag.Bag, bool) {
	ok := true
	total := 0
	for i := range results {
		total += results[i].Bag.Len()
	}
	merged := diag.NewBag(total + 1)
	for i := range results {
		if !results[i].OK {
			ok = false
		}
		merged.Merge(results[i].Bag)
	}
	merged.Sort()
	return merged, ok
}
