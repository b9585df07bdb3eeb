package driver

import (
	"fmt"

	"mica/internal/diag"
	"mica/internal/observ"
	"mica/internal/project"
	"mica/internal/sema"
	"mica/internal/source"
)

// CheckFile analyzes one unit with a fresh checker. The unit's AST is
// taken as-is when present, otherwise built by opts.Frontend from Source.
// Cached results are replayed when the content digest matches.
func CheckFile(fs *source.FileSet, unit Unit, opts Options) (UnitResult, error) {
	bag := diag.NewBag(opts.maxDiagnostics())
	res := UnitResult{
		Path:   unit.Path,
		FileID: unit.FileID,
		Bag:    bag,
	}

	var key project.Digest
	if opts.Cache != nil && unit.File == nil {
		key = cacheKey(unit.Source, opts)
		var payload unitPayload
		if ok, err := opts.Cache.Get(key, &payload); err == nil && ok {
			if payload.restore(unit.FileID, bag) {
				res.OK = payload.OK
				res.FromCache = true
				return res, nil
			}
		}
	}

	timer := observ.NewTimer()

	file := unit.File
	if file == nil {
		loadPhase := timer.Begin("load")
		if opts.Frontend == nil {
			return res, fmt.Errorf("unit %s has no AST and no frontend is configured", unit.Path)
		}
		built, err := opts.Frontend(unit.FileID, unit.Path, unit.Source)
		timer.End(loadPhase, "")
		if err != nil {
			return res, fmt.Errorf("frontend failed on %s: %w", unit.Path, err)
		}
		file = built
	}

	checkPhase := timer.Begin("check")
	checker := sema.NewChecker(sema.Options{
		Reporter:   diag.BagReporter{Bag: bag},
		Policy:     opts.Policy,
		StackLimit: opts.StackLimit,
		SIMDWidth:  opts.SIMDWidth,
	})
	out := checker.Check(file)
	timer.End(checkPhase, fmt.Sprintf("%d decls", len(file.Decls)))

	res.OK = out.OK
	res.StackVars = out.StackVars
	res.Loops = out.Loops

	if opts.Timing {
		report := timer.Report()
		res.Timing = &report
		appendTimingDiagnostic(bag, timingPayload{
			Kind:    "unit",
			Path:    unit.Path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}

	if opts.Cache != nil && !key.IsZero() {
		// Best effort; analysis already succeeded.
		_ = opts.Cache.Put(key, newUnitPayload(unit, opts, res.OK, bag))
	}
	return res, nil
}

// cacheKey mixes the unit content with everything that can change the
// diagnostics: tool version, payload schema and analysis knobs.
func cacheKey(src []byte, opts Options) project.Digest {
	config := fmt.Sprintf("v=%s schema=%d policy=%d stack=%d simd=%d max=%d",
		opts.ToolVersion, diskCacheSchemaVersion,
		opts.Policy, opts.StackLimit, opts.SIMDWidth, opts.maxDiagnostics())
	return project.Combine(project.HashBytes(src), project.HashBytes([]byte(config)))
}
