package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"yardwatch/internal/bootstrap/logging"
	"yardwatch/internal/domain/yard"
	"yardwatch/internal/errs"
)

const (
	processedPrefix = "processed_"
	errorPrefix     = "error_"

	archiveSubdir    = "processed"
	quarantineSubdir = "error"
)

// Summary is the outcome of one scan over the watch directory.
type Summary struct {
	FilesArchived    int         `json:"files_archived"`
	FilesQuarantined int         `json:"files_quarantined"`
	Trucks           ApplyCounts `json:"trucks"`
	Safety           ApplyCounts `json:"safety"`
	Equipment        ApplyCounts `json:"equipment"`
}

// Pipeline discovers dropped detection files, feeds them through the applier
// and resolves every file it saw into the archive or the quarantine. The
// watch directory and its subdirectories are exclusively owned by the
// pipeline; scans are serialized so an on-demand refresh cannot interleave
// with the monitor loop.
type Pipeline struct {
	svc           *Service
	watchDir      string
	archiveDir    string
	quarantineDir string

	mu sync.Mutex
}

func NewPipeline(svc *Service, watchDir string) *Pipeline {
	return &Pipeline{
		svc:           svc,
		watchDir:      watchDir,
		archiveDir:    filepath.Join(watchDir, archiveSubdir),
		quarantineDir: filepath.Join(watchDir, quarantineSubdir),
	}
}

func (p *Pipeline) WatchDir() string { return p.watchDir }

// ScanAndProcess lists the watch directory once and resolves each eligible
// file. Files already carrying the processed prefix are skipped, which keeps
// re-scans idempotent. A listing failure aborts the scan with an error; the
// monitor loop backs off and retries.
func (p *Pipeline) ScanAndProcess(ctx context.Context) (Summary, error) {
	if ctx == nil {
		return Summary{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, errs.Wrap(err, "check context")
	}
	if p.svc == nil {
		return Summary{}, errors.New("ingest service is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureDirectories(); err != nil {
		return Summary{}, errs.Wrap(err, "ensure detection directories")
	}

	entries, err := os.ReadDir(p.watchDir)
	if err != nil {
		return Summary{}, errs.Wrap(err, "list watch directory")
	}

	var summary Summary
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, processedPrefix) {
			continue
		}
		p.processFile(ctx, name, &summary)
	}
	return summary, nil
}

func (p *Pipeline) ensureDirectories() error {
	for _, dir := range []string{p.watchDir, p.archiveDir, p.quarantineDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrapf(err, "create directory %q", dir)
		}
	}
	return nil
}

func (p *Pipeline) processFile(ctx context.Context, name string, summary *Summary) {
	logCtx := logging.WithAttrs(ctx, slog.String("file", name))
	path := filepath.Join(p.watchDir, name)

	raw, err := os.ReadFile(path)
	if err != nil {
		logging.Error(logCtx, "detection file unreadable", slog.Any("err", errs.Loggable(err)))
		p.quarantine(logCtx, name, summary)
		return
	}

	var doc yard.DetectionDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		logging.Error(logCtx, "detection file malformed", slog.Any("err", errs.Loggable(err)))
		p.quarantine(logCtx, name, summary)
		return
	}

	logging.Info(logCtx, "processing detection file",
		slog.Int("truck_detections", len(doc.TruckDetections)),
		slog.Int("safety_violations", len(doc.SafetyViolations)),
		slog.Int("equipment_status", len(doc.EquipmentStatus)),
	)

	trucks, err := p.svc.ApplyTruckDetections(logCtx, doc.TruckDetections)
	if err != nil {
		logging.Error(logCtx, "truck section failed", slog.Any("err", errs.Loggable(err)))
		p.quarantine(logCtx, name, summary)
		return
	}
	summary.Trucks.add(trucks)

	safety, err := p.svc.ApplySafetyViolations(logCtx, doc.SafetyViolations)
	if err != nil {
		logging.Error(logCtx, "safety section failed", slog.Any("err", errs.Loggable(err)))
		p.quarantine(logCtx, name, summary)
		return
	}
	summary.Safety.add(safety)

	equipment, err := p.svc.ApplyEquipmentStatus(logCtx, doc.EquipmentStatus)
	if err != nil {
		logging.Error(logCtx, "equipment section failed", slog.Any("err", errs.Loggable(err)))
		p.quarantine(logCtx, name, summary)
		return
	}
	summary.Equipment.add(equipment)

	// A context cancelled mid-file means record writes may have failed and
	// been counted as skips. Leave the file where it is so the next scan
	// retries it instead of consuming it half-applied.
	if err := ctx.Err(); err != nil {
		logging.Warn(logCtx, "scan interrupted, leaving file for retry", slog.Any("err", errs.Loggable(err)))
		return
	}

	p.archive(logCtx, name, summary)
}

func (p *Pipeline) archive(ctx context.Context, name string, summary *Summary) {
	target := filepath.Join(p.archiveDir, processedPrefix+name)
	if err := os.Rename(filepath.Join(p.watchDir, name), target); err != nil {
		logging.Error(ctx, "archive rename failed", slog.Any("err", errs.Loggable(err)))
		p.quarantine(ctx, name, summary)
		return
	}
	summary.FilesArchived++
	logging.Info(ctx, "detection file archived")
}

func (p *Pipeline) quarantine(ctx context.Context, name string, summary *Summary) {
	target := filepath.Join(p.quarantineDir, errorPrefix+name)
	if err := os.Rename(filepath.Join(p.watchDir, name), target); err != nil {
		// The file stays in the watch directory and is retried next scan.
		logging.Error(ctx, "quarantine rename failed", slog.Any("err", errs.Loggable(err)))
		return
	}
	summary.FilesQuarantined++
	logging.Warn(ctx, "detection file quarantined")
}
