package driver

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"twfold/internal/diag"
	"twfold/internal/rewrite"
	"twfold/internal/source"
)

// sourceExts lists the file extensions the driver considers rewritable.
var sourceExts = map[string]bool{
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
	".ts":  true,
	".tsx": true,
	".mts": true,
	".cts": true,
}

// Options configures a directory rewrite.
type Options struct {
	Config         rewrite.Config
	MaxDiagnostics int
	Jobs           int          // 0 means GOMAXPROCS
	Cache          *DiskCache   // nil disables caching
	Sink           ProgressSink // nil disables progress events
}

// FileResult contains the rewrite outcome of one file.
type FileResult struct {
	Path     string
	FileID   source.FileID
	Res      *rewrite.Result // nil when the file is unchanged
	Bag      *diag.Bag
	CacheHit bool
	Skipped  bool // the target name never occurs in the file
}

// ListSourceFiles returns the sorted list of rewritable files under dir.
// node_modules and dot-directories are not descended into.
func ListSourceFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (name == "node_modules" || name[0] == '.') {
				return filepath.SkipDir
			}
			return nil
		}
		if sourceExts[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// RewriteDir rewrites every source file under dir in parallel. All files are
// loaded into the returned FileSet before the fan-out, so workers only read.
// A per-file parse failure lands in that file's Bag and does not abort the
// run; the error return covers directory listing and context cancellation.
func RewriteDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []FileResult, error) {
	files, err := ListSourceFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	return RewriteFiles(ctx, dir, files, opts)
}

// RewriteFiles rewrites an explicit list of files. baseDir anchors relative
// path formatting in diagnostics.
func RewriteFiles(ctx context.Context, baseDir string, files []string, opts Options) (*source.FileSet, []FileResult, error) {
	fileSet := source.NewFileSetWithBase(baseDir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	sink := opts.Sink
	if sink == nil {
		sink = nopSink{}
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 64
	}
	cfg := opts.Config.WithDefaults()
	cfgHash := cfg.Hash()

	// Load everything up front; the FileSet is immutable during the fan-out.
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		sink.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusQueued})
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			// Placeholder entry so diagnostics still point at the right path.
			fileIDs[path] = fileSet.AddVirtual(path, nil)
			continue
		}
		fileIDs[path] = fileID
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Indexes are unique per goroutine, no mutex needed.
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	target := []byte(cfg.TargetName)

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			started := time.Now()
			bag := diag.NewBag(opts.MaxDiagnostics)

			fileID := fileIDs[path]

			if loadErr, hadError := loadErrors[path]; hadError {
				bag.Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.LoadFailed,
					Message:  "failed to load file: " + loadErr.Error(),
					Primary:  source.Span{File: fileID},
				})
				results[i] = FileResult{Path: path, FileID: fileID, Bag: bag}
				sink.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr})
				return nil
			}

			file := fileSet.Get(fileID)

			// Files that never mention the target cannot change; skip the
			// parse entirely.
			if !bytes.Contains(file.Content, target) {
				results[i] = FileResult{Path: path, FileID: fileID, Bag: bag, Skipped: true}
				sink.OnEvent(Event{File: path, Stage: StageRewrite, Status: StatusSkipped, Elapsed: time.Since(started)})
				return nil
			}

			if opts.Cache != nil {
				key := cacheKey(file.Hash, cfgHash)
				var payload DiskPayload
				// A decode error or schema mismatch falls through to a
				// fresh rewrite that overwrites the stale entry.
				if ok, err := opts.Cache.Get(key, &payload); err == nil && ok && payload.Schema == diskCacheSchemaVersion {
					res := payloadToResult(&payload, fileID, bag)
					results[i] = FileResult{Path: path, FileID: fileID, Res: res, Bag: bag, CacheHit: true}
					sink.OnEvent(Event{File: path, Stage: StageRewrite, Status: StatusCached, Elapsed: time.Since(started)})
					return nil
				}
			}

			sink.OnEvent(Event{File: path, Stage: StageParse, Status: StatusWorking})

			res, rerr := rewrite.Rewrite(gctx, file, cfg, diag.BagReporter{Bag: bag})
			results[i] = FileResult{Path: path, FileID: fileID, Res: res, Bag: bag}

			if rerr != nil {
				sink.OnEvent(Event{File: path, Stage: StageRewrite, Status: StatusError, Err: rerr, Elapsed: time.Since(started)})
				return nil
			}

			if opts.Cache != nil {
				key := cacheKey(file.Hash, cfgHash)
				// Best effort: a full cache disk or permission problem must
				// not fail the rewrite.
				_ = opts.Cache.Put(key, resultToPayload(res, bag))
			}

			sink.OnEvent(Event{File: path, Stage: StageRewrite, Status: StatusDone, Elapsed: time.Since(started)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}

	return fileSet, results, nil
}
