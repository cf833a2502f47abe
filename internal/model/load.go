package model

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/flowgraph/internal/ctxlog"
	"github.com/vk/flowgraph/internal/fsutil"
)

// LoadGraphsRecursively finds and parses all .hcl definition files under the
// given path (a single file or a directory tree) into one aggregated Spec.
// Splitting a definition across files is fine; node references resolve
// across file boundaries once the graph is built.
func LoadGraphsRecursively(ctx context.Context, path string) (*Spec, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("loading graph definitions", "path", path)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to find definition files in %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl definition files found in %s", path)
	}

	spec := &Spec{}
	parser := hclparse.NewParser()
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		fileSpec, err := ParseSpec(file, src, parser)
		if err != nil {
			return nil, err
		}
		spec.Inputs = append(spec.Inputs, fileSpec.Inputs...)
		spec.Nodes = append(spec.Nodes, fileSpec.Nodes...)
	}

	logger.Debug("graph definitions loaded",
		"files", len(files), "inputs", len(spec.Inputs), "nodes", len(spec.Nodes))
	return spec, nil
}
