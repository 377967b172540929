package tasks

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// maxListed caps how many names of each kind are logged.
const maxListed = 10

// StorageReportResult compares the upload directory with the image rows.
type StorageReportResult struct {
	Files   int
	Rows    int
	Orphans []string // on disk, no row
	Missing []string // row, not on disk
}

// BuildStorageReport lists regular files in uploadDir and image filenames in
// the store and returns the differences, sorted. Nothing is modified.
func BuildStorageReport(ctx context.Context, store TaskStore, uploadDir string) (StorageReportResult, error) {
	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		return StorageReportResult{}, fmt.Errorf("failed to read upload dir: %w", err)
	}
	onDisk := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		onDisk[e.Name()] = struct{}{}
	}

	names, err := store.ListImageFilenames(ctx)
	if err != nil {
		return StorageReportResult{}, fmt.Errorf("failed to list image filenames: %w", err)
	}
	inDB := make(map[string]struct{}, len(names))
	for _, n := range names {
		inDB[n] = struct{}{}
	}

	report := StorageReportResult{Files: len(onDisk), Rows: len(names)}
	for name := range onDisk {
		if _, ok := inDB[name]; !ok {
			report.Orphans = append(report.Orphans, name)
		}
	}
	for name := range inDB {
		if _, ok := onDisk[name]; !ok {
			report.Missing = append(report.Missing, name)
		}
	}
	sort.Strings(report.Orphans)
	sort.Strings(report.Missing)
	return report, nil
}

func newStorageReportTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", StorageReport)

	return func(ctx context.Context) error {
		startTime := time.Now()
		report, err := BuildStorageReport(ctx, deps.Store, deps.UploadDir)
		if err != nil {
			log.ErrorContext(ctx, "Storage report failed", "error", err)
			return fmt.Errorf("storage report failed: %w", err)
		}

		attrs := []any{
			"files", report.Files,
			"rows", report.Rows,
			"orphans", len(report.Orphans),
			"missing", len(report.Missing),
			"duration", time.Since(startTime),
		}
		if len(report.Orphans) == 0 && len(report.Missing) == 0 {
			log.InfoContext(ctx, "Storage consistent", attrs...)
			return nil
		}
		attrs = append(attrs,
			"orphan_sample", firstN(report.Orphans, maxListed),
			"missing_sample", firstN(report.Missing, maxListed))
		log.WarnContext(ctx, "Storage inconsistent", attrs...)
		return nil
	}
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
