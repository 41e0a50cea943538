package cli

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/nauticalab/propbind/internal/catalog"
	"github.com/nauticalab/propbind/internal/loader"
)

// FileJob represents one property file to check
type FileJob struct {
	Path string
}

// ProcessingResult represents the outcome of checking one file
type ProcessingResult struct {
	File     string
	Report   *catalog.Report
	Error    error
	Duration time.Duration
}

// Success reports whether the file loaded and validated cleanly
func (r ProcessingResult) Success() bool {
	return r.Error == nil && r.Report != nil && r.Report.Valid
}

// CheckDirRun checks every property file under dir against one module,
// each with its own factory. Overrides apply to every file.
func CheckDirRun(ctx context.Context, dir string, opts CheckOptions) (bool, error) {
	opts.defaults()

	files, err := findPropertyFiles(dir)
	if err != nil {
		return false, err
	}
	if len(files) == 0 {
		fmt.Fprintf(opts.Out, "No property files found in %s\n", dir)
		return true, nil
	}

	fmt.Fprintf(opts.Out, "Found %d property files to check.\n", len(files))

	const numWorkers = 4
	jobs := make(chan FileJob, len(files))
	results := make(chan ProcessingResult, len(files))

	for i := 0; i < numWorkers; i++ {
		go fileWorker(ctx, jobs, results, opts)
	}

	for _, f := range files {
		jobs <- FileJob{Path: f}
	}
	close(jobs)

	var successCount, failureCount int
	var failures []ProcessingResult

	for i := 0; i < len(files); i++ {
		result := <-results
		if result.Success() {
			successCount++
			fmt.Fprintf(opts.Out, "[%d/%d] ✅ %s (%d warnings, %.1fs)\n",
				i+1, len(files), result.File, len(result.Report.Warnings), result.Duration.Seconds())
		} else {
			failureCount++
			failures = append(failures, result)
			fmt.Fprintf(opts.Out, "[%d/%d] ❌ %s (%.1fs): %s\n",
				i+1, len(files), result.File, result.Duration.Seconds(), failureSummary(result))
		}
	}

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("check interrupted: %w", err)
	}

	fmt.Fprintf(opts.Out, "\n🎉 Check complete!\n")
	fmt.Fprintf(opts.Out, "✅ Valid: %d\n", successCount)
	if failureCount == 0 {
		return true, nil
	}

	fmt.Fprintf(opts.Out, "❌ Invalid: %d\n", failureCount)
	fmt.Fprintf(opts.Out, "\nFailures:\n")
	for _, failure := range failures {
		if failure.Error != nil {
			fmt.Fprintf(opts.Out, "  - %s: %v\n", failure.File, failure.Error)
			continue
		}
		for _, m := range failure.Report.Errors {
			fmt.Fprintf(opts.Out, "  - %s: %s\n", failure.File, m.Text)
		}
	}
	return false, nil
}

// fileWorker answers every job it receives; once ctx is done the remaining
// jobs are reported with the context error instead of being checked.
func fileWorker(ctx context.Context, jobs <-chan FileJob, results chan<- ProcessingResult, opts CheckOptions) {
	for job := range jobs {
		select {
		case <-ctx.Done():
			results <- ProcessingResult{File: job.Path, Error: ctx.Err()}
			continue
		default:
		}

		startTime := time.Now()
		report, err := checkFile(ctx, job.Path, opts)
		results <- ProcessingResult{
			File:     job.Path,
			Report:   report,
			Error:    err,
			Duration: time.Since(startTime),
		}
	}
}

func checkFile(ctx context.Context, path string, opts CheckOptions) (*catalog.Report, error) {
	bag, err := loader.Load(ctx, loader.Sources{
		Files:     []string{path},
		Overrides: opts.Overrides,
		LookupEnv: opts.LookupEnv,
	}, nil)
	if err != nil {
		return nil, err
	}

	report, err := opts.Catalog.Check(opts.Module, bag, opts.Strict, nil)
	if err != nil {
		return nil, err
	}
	report.Source = path
	report.Revision = fileRevision(path)
	return report, nil
}

func failureSummary(r ProcessingResult) string {
	if r.Error != nil {
		return r.Error.Error()
	}
	return fmt.Sprintf("%d errors, %d warnings", len(r.Report.Errors), len(r.Report.Warnings))
}

// findPropertyFiles walks dir for files the loader understands, in lexical order
func findPropertyFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if loader.IsPropertyFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}
	return files, nil
}
