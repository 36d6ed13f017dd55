package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"voicecode/diff"
	"voicecode/logging"
	"voicecode/model"
	"voicecode/patch"
)

// Workspace is the only reader/writer of persisted files for one root.
//
// It does not lock: callers must make sure at most one WriteFiles or
// ApplyPatches runs against the same root at a time, otherwise concurrent
// read-modify-write cycles can lose edits.
type Workspace struct {
	store  FileStore
	logger *slog.Logger
}

// New wraps store. A nil logger discards output.
func New(store FileStore, logger *slog.Logger) *Workspace {
	return &Workspace{
		store:  store,
		logger: logging.OrNop(logger).With("component", "workspace"),
	}
}

// Open returns a Workspace backed by the directory root.
func Open(root string, logger *slog.Logger) *Workspace {
	return New(NewDirStore(root), logger)
}

// PatchReport is the outcome of ApplyPatches.
type PatchReport struct {
	Files    []model.FileArtifact
	Warnings []model.Warning
	Changes  []model.FileChange
}

// Ensure 幂等地创建工作区根目录。
func (w *Workspace) Ensure(ctx context.Context) error {
	if err := w.store.Ensure(ctx); err != nil {
		return storageErr("ensure", "", err)
	}
	return nil
}

// Snapshot reads every file under the root in full, ordered by name.
func (w *Workspace) Snapshot(ctx context.Context) ([]model.FileArtifact, error) {
	names, err := w.store.List(ctx)
	if err != nil {
		return nil, storageErr("list", "", err)
	}
	files := make([]model.FileArtifact, 0, len(names))
	for _, name := range names {
		content, err := w.store.Read(ctx, name)
		if err != nil {
			return nil, storageErr("read", name, err)
		}
		files = append(files, model.FileArtifact{Name: name, Content: content})
	}
	return files, nil
}

// WriteFiles creates or overwrites each artifact. Files not mentioned are left
// alone. All names are validated before anything is written.
func (w *Workspace) WriteFiles(ctx context.Context, files []model.FileArtifact) error {
	for _, f := range files {
		if err := ValidateName(f.Name); err != nil {
			return storageErr("write", f.Name, err)
		}
	}
	if err := w.Ensure(ctx); err != nil {
		return err
	}
	for _, f := range files {
		if err := w.store.Write(ctx, f.Name, f.Content); err != nil {
			return storageErr("write", f.Name, err)
		}
		w.logger.Debug("file written", "file", f.Name, "bytes", len(f.Content))
	}
	w.logger.Info("files written", "count", len(files))
	return nil
}

// ApplyPatches groups edits by target file, patches each existing target once
// and writes it back. Edits whose target does not exist are skipped with a
// warning. Once writing starts the batch runs to completion; a storage
// failure returns immediately and files already written stay written.
func (w *Workspace) ApplyPatches(ctx context.Context, edits []model.Edit) (PatchReport, error) {
	var report PatchReport
	order, groups := groupByFile(edits)

	for _, name := range order {
		group := groups[name]
		before, err := w.store.Read(ctx, name)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return report, storageErr("read", name, err)
			}
			for _, e := range group {
				report.Warnings = append(report.Warnings, model.Warning{
					Kind:    model.WarnTargetFileMissing,
					File:    name,
					Region:  e.RegionID,
					Message: fmt.Sprintf("target file %q does not exist", name),
				})
			}
			w.logger.Warn("edit target missing", "file", name, "edits", len(group))
			continue
		}

		after, warnings := patch.Apply(name, before, group)
		for _, warn := range warnings {
			w.logger.Warn("edit skipped", "file", warn.File, "region", warn.Region, "kind", warn.Kind)
		}
		report.Warnings = append(report.Warnings, warnings...)
		if after == before {
			continue
		}
		if err := w.store.Write(ctx, name, after); err != nil {
			return report, storageErr("write", name, err)
		}
		report.Changes = append(report.Changes, model.FileChange{Name: name, Hunks: diff.TextDiff(before, after)})
		w.logger.Debug("file patched", "file", name, "edits", len(group))
	}

	files, err := w.Snapshot(ctx)
	if err != nil {
		return report, err
	}
	report.Files = files
	w.logger.Info("patches applied", "edits", len(edits), "changed", len(report.Changes), "warnings", len(report.Warnings))
	return report, nil
}

// groupByFile keeps the first-seen order of targets and the original order of
// edits within each target.
func groupByFile(edits []model.Edit) ([]string, map[string][]model.Edit) {
	var order []string
	groups := make(map[string][]model.Edit)
	for _, e := range edits {
		if _, ok := groups[e.TargetFile]; !ok {
			order = append(order, e.TargetFile)
		}
		groups[e.TargetFile] = append(groups[e.TargetFile], e)
	}
	return order, groups
}
