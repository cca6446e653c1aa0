package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/parsegrid/internal/ctxlog"
	"github.com/specialistvlad/parsegrid/internal/fsutil"
)

// Composite dispatches job files to a format-specific Loader based on the
// file extension. Entries from all files are concatenated in sorted file
// order.
type Composite struct {
	byExt map[string]Loader
	exts  []string
}

// NewComposite creates a loader that routes files by extension, e.g.
// {".hcl": hclLoader, ".yaml": yamlLoader}.
func NewComposite(loaders map[string]Loader) *Composite {
	c := &Composite{byExt: loaders}
	for ext := range loaders {
		c.exts = append(c.exts, ext)
	}
	return c
}

// Load discovers every job file under paths and loads them in order.
func (c *Composite) Load(ctx context.Context, paths ...string) (*Job, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(paths, c.exts...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no job definition files found in %v", paths)
	}
	logger.Debug("Discovered job definition files.", "files", files)

	job := &Job{}
	for _, file := range files {
		loader, ok := c.byExt[filepath.Ext(file)]
		if !ok {
			continue
		}
		part, err := loader.Load(ctx, file)
		if err != nil {
			return nil, err
		}
		job.Transformations = append(job.Transformations, part.Transformations...)
	}

	logger.Debug("Job definition loaded.", "transformations", len(job.Transformations))
	return job, nil
}
