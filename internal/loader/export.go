package loader

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/papapumpkin/lineup/internal/model"
)

// ErrDirExists indicates the output directory already exists and Overwrite was not set.
var ErrDirExists = errors.New("output directory already exists")

// ExportOptions controls how a configuration is written to disk.
type ExportOptions struct {
	Overwrite bool // If true, replace an existing output directory.
}

// Export writes cfg as a canonical organizer directory at outputDir.
//
// If the directory already exists and opts.Overwrite is false, Export returns
// an error. The tree is written to a sibling temp directory and renamed into
// place on success; on failure the temp directory is removed.
func Export(fs afero.Fs, cfg model.OrganizerConfiguration, outputDir string, opts ExportOptions) error {
	if ok, err := afero.DirExists(fs, outputDir); err == nil && ok && !opts.Overwrite {
		return fmt.Errorf("%w: %s; use --force to overwrite", ErrDirExists, outputDir)
	}

	tmpDir := outputDir + ".tmp"
	if err := fs.RemoveAll(tmpDir); err != nil {
		return fmt.Errorf("cleaning temp directory: %w", err)
	}

	success := false
	defer func() {
		if !success {
			_ = fs.RemoveAll(tmpDir)
		}
	}()

	if err := Write(fs, tmpDir, cfg); err != nil {
		return fmt.Errorf("writing organizer tree: %w", err)
	}

	if opts.Overwrite {
		if err := fs.RemoveAll(outputDir); err != nil {
			return fmt.Errorf("removing existing directory: %w", err)
		}
	}
	if err := fs.Rename(tmpDir, outputDir); err != nil {
		return fmt.Errorf("renaming temp to output directory: %w", err)
	}

	success = true
	return nil
}
