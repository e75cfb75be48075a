package payload

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"

	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/errors"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
)

// SynthfsEngine is the default Engine, materializing an element's files
// through a synthfs pipeline the same way the teacher's
// SynthfsExecutor drives dotfile operations, grounded on
// arthur-debert-dodot/pkg/synthfs/synthfs_executor.go.
type SynthfsEngine struct{}

// NewSynthfsEngine returns a SynthfsEngine.
func NewSynthfsEngine() *SynthfsEngine {
	return &SynthfsEngine{}
}

func (e *SynthfsEngine) Install(el *element.Element, root string) (string, error) {
	logger := logging.GetLogger("payload.synthfs")
	fsys := filesystem.NewOSFileSystem(root)
	pipeline := synthfs.NewMemPipeline()

	for _, f := range el.Files {
		if FileState(f.State) != FileStateCreate && FileState(f.State) != FileStateReplace {
			continue
		}
		relPath, err := relativize(f.Path)
		if err != nil {
			return f.Path, errors.Wrap(err, errors.ErrPayloadInstall, "resolving file path")
		}
		opID := core.OperationID(fmt.Sprintf("install-%s", f.Path))
		op := operations.NewCreateFileOperation(opID, relPath)
		op.SetItem(&fileItem{path: relPath, content: nil, mode: 0644})
		if err := pipeline.Add(op); err != nil {
			return f.Path, errors.Wrap(err, errors.ErrPayloadInstall, "queuing file operation")
		}
	}

	executor := synthfs.NewExecutor()
	result := executor.Run(context.Background(), pipeline, fsys)
	if result.GetError() != nil {
		logger.Error().Err(result.GetError()).Str("root", root).Msg("payload install failed")
		return failedFileFromResult(result), errors.Wrap(result.GetError(), errors.ErrPayloadInstall, "installing package payload")
	}
	return "", nil
}

func (e *SynthfsEngine) Remove(el *element.Element, root string) (string, error) {
	logger := logging.GetLogger("payload.synthfs")
	fsys := filesystem.NewOSFileSystem(root)
	pipeline := synthfs.NewMemPipeline()

	for _, f := range el.Files {
		if FileState(f.State) != FileStateRemove {
			continue
		}
		relPath, err := relativize(f.Path)
		if err != nil {
			return f.Path, errors.Wrap(err, errors.ErrPayloadRemove, "resolving file path")
		}
		opID := core.OperationID(fmt.Sprintf("remove-%s", f.Path))
		op := operations.NewDeleteOperation(opID, relPath)
		if err := pipeline.Add(op); err != nil {
			return f.Path, errors.Wrap(err, errors.ErrPayloadRemove, "queuing file operation")
		}
	}

	executor := synthfs.NewExecutor()
	result := executor.Run(context.Background(), pipeline, fsys)
	if result.GetError() != nil {
		logger.Error().Err(result.GetError()).Str("root", root).Msg("payload remove failed")
		return failedFileFromResult(result), errors.Wrap(result.GetError(), errors.ErrPayloadRemove, "removing package payload")
	}
	return "", nil
}

func relativize(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Rel("/", path)
}

// failedFileFromResult always returns the empty string: the pipeline's
// result is not inspected for which operation failed, so a pipeline
// execution failure is reported without a failed-file name.
func failedFileFromResult(result interface{ GetError() error }) string {
	_ = result
	return ""
}
