package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"curriculum/internal/application/contentimport/document"
	"curriculum/internal/application/contentimport/dto"
	"curriculum/internal/application/contentimport/usecases"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/goroutine"
	"curriculum/internal/shared/logger"
)

// BatchOptions apply to every file of one batch.
type BatchOptions struct {
	OrganizationID string
	Replace        bool
	DryRun         bool
	Workers        int
	// MaxBytes caps a single document; 0 means unlimited.
	MaxBytes int64
}

// FileResult is the outcome of importing one file.
type FileResult struct {
	Path    string            `json:"path"`
	Result  *dto.ImportResult `json:"result,omitempty"`
	Outcome errors.Outcome    `json:"outcome"`
	Error   string            `json:"error,omitempty"`
}

// Failed reports whether the file did not import.
func (r FileResult) Failed() bool {
	return r.Error != ""
}

// Batch imports files concurrently. Files naming the same course serialize
// on the import lock, so workers only bound parallelism.
type Batch struct {
	importUC  usecases.ImportCourseExecutor
	previewUC usecases.PreviewImportExecutor
	logger    logger.Interface
}

func NewBatch(importUC usecases.ImportCourseExecutor, previewUC usecases.PreviewImportExecutor, log logger.Interface) *Batch {
	return &Batch{importUC: importUC, previewUC: previewUC, logger: log}
}

// Run imports every path and returns one result per path, in input order.
func (b *Batch) Run(ctx context.Context, paths []string, opts BatchOptions) []FileResult {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			results[i] = b.importFile(gctx, path, opts)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (b *Batch) importFile(ctx context.Context, path string, opts BatchOptions) (fr FileResult) {
	fr.Path = path

	var err error
	defer func() {
		if err != nil {
			fr.Error = err.Error()
			fr.Outcome = errors.ClassifyOutcome(err)
		}
	}()
	defer goroutine.Recover(b.logger, "import "+filepath.Base(path), &err)

	raw, err := readDocument(path, opts.MaxBytes)
	if err != nil {
		return fr
	}

	cmd := dto.ImportCourseCommand{
		OrganizationID:  opts.OrganizationID,
		Raw:             raw,
		Format:          document.FormatFromPath(path),
		ReplaceExisting: opts.Replace,
		Source:          "cli:" + path,
	}

	if opts.DryRun {
		var preview *dto.PreviewResult
		preview, err = b.previewUC.Execute(ctx, cmd)
		if preview != nil {
			fr.Result = &preview.ImportResult
			fr.Outcome = preview.Outcome
		}
		return fr
	}

	fr.Result, err = b.importUC.Execute(ctx, cmd)
	if fr.Result != nil {
		fr.Outcome = fr.Result.Outcome
	}
	if err == nil {
		b.logger.Infow("file imported",
			"path", path,
			"course_id", fr.Result.CourseID,
			"mode", fr.Result.Mode)
	}
	return fr
}

func readDocument(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewBadRequestError("cannot open document", err.Error())
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewBadRequestError("cannot read document", err.Error())
	}
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return nil, errors.NewBadRequestError("document too large", fmt.Sprintf("limit is %d bytes", maxBytes))
	}
	return raw, nil
}
