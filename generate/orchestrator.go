// Package generate drives the render pipeline: for each configured
// template, evaluate its filter against the resolved registry, render
// once (single) or once per filter-result element (each), resolve the
// output path, and write atomically — accumulating a Manifest of every
// file produced.
package generate

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/semaphore"

	"github.com/build-flow-labs/weaver/filter"
	"github.com/build-flow-labs/weaver/registry"
	"github.com/build-flow-labs/weaver/render"
	"github.com/build-flow-labs/weaver/target"
)

// Options configures one generation run.
type Options struct {
	OutputDir     string
	Force         bool
	Sync          bool
	FailFast      bool
	Workers       int
	ToolVersion   string
	Deterministic bool
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// Run executes every template in cfg against reg, writing outputs under
// fs rooted at opts.OutputDir, and returns the accumulated manifest. The
// manifest reflects every file written even when a later template in the
// loop fails, since the target domain's templates are independent.
func Run(ctx context.Context, reg *registry.Registry, cfg *target.Config, filterEngine *filter.Engine, renderEngine *render.Engine, fs afero.Fs, now time.Time, opts Options) (*Manifest, error) {
	writer := NewWriter(fs, opts.OutputDir, opts.Force, opts.Sync)
	manifest := NewManifest(cfg.Name, opts.ToolVersion, now, opts.Deterministic)

	root := filter.ToValue(reg)

	for _, entry := range cfg.Templates {
		if err := ctx.Err(); err != nil {
			return manifest, err
		}

		filterSrc := entry.Filter
		if filterSrc == "" {
			filterSrc = "."
		}
		result, err := filterEngine.Evaluate(filterSrc, root)
		if err != nil {
			return manifest, err
		}

		switch entry.ApplicationMode {
		case target.ApplicationSingle:
			me, err := renderOne(entry, entry.Index, 0, result, cfg, renderEngine, writer)
			if err != nil {
				return manifest, err
			}
			manifest.Add(me)

		case target.ApplicationEach:
			elements, ok := result.([]any)
			if !ok {
				return manifest, &ConfigError{Target: cfg.Name, Reason: fmt.Sprintf("template %q: application_mode each requires the filter to produce an array, got %T", entry.TemplatePath, result)}
			}
			entries, err := runEach(ctx, entry, elements, cfg, renderEngine, writer, opts)
			if err != nil {
				return manifest, err
			}
			for _, me := range entries {
				manifest.Add(me)
			}
		}
	}

	return manifest, nil
}

// runEach fans renders for one `each`-mode template out across a bounded
// worker pool (golang.org/x/sync/semaphore), one goroutine per element,
// preserving (template_index, filter_output_index) ordering in the
// returned slice regardless of completion order.
func runEach(ctx context.Context, entry target.TemplateEntry, elements []any, cfg *target.Config, renderEngine *render.Engine, writer *Writer, opts Options) ([]ManifestEntry, error) {
	sem := semaphore.NewWeighted(int64(opts.workers()))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]ManifestEntry, len(elements))
	errs := make([]error, len(elements))
	done := make(chan struct{}, len(elements))

	for i, el := range elements {
		if err := sem.Acquire(runCtx, 1); err != nil {
			errs[i] = err
			done <- struct{}{}
			continue
		}
		go func(i int, el any) {
			defer sem.Release(1)
			defer func() { done <- struct{}{} }()
			me, err := renderOne(entry, entry.Index, i, el, cfg, renderEngine, writer)
			if err != nil {
				errs[i] = err
				if opts.FailFast {
					cancel()
				}
				return
			}
			results[i] = me
		}(i, el)
	}

	for range elements {
		<-done
	}

	var firstErr error
	out := make([]ManifestEntry, 0, len(elements))
	for i, err := range errs {
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if err == nil {
			out = append(out, results[i])
		}
	}
	if firstErr != nil {
		return out, firstErr
	}
	return out, nil
}

// renderOne renders one template invocation, resolves its output path
// (template.set_file_name overriding the configured file_name expression),
// and writes the result.
func renderOne(entry target.TemplateEntry, templateIndex, filterIndex int, ctxValue any, cfg *target.Config, renderEngine *render.Engine, writer *Writer) (ManifestEntry, error) {
	data := map[string]any{"ctx": ctxValue, "params": cfg.Params}

	res, err := renderEngine.Render(entry.TemplatePath, entry.TemplateBody, data)
	if err != nil {
		return ManifestEntry{}, err
	}

	relPath := res.FileName
	if !res.FileNameOK {
		nameRes, err := renderEngine.Render(entry.FileName, entry.FileName, data)
		if err != nil {
			return ManifestEntry{}, err
		}
		relPath = nameRes.Output
	}
	if relPath == "" {
		return ManifestEntry{}, &ConfigError{Target: cfg.Name, Reason: fmt.Sprintf("template %q produced an empty output path", entry.TemplatePath)}
	}

	wr, err := writer.Write(relPath, []byte(res.Output))
	if err != nil {
		return ManifestEntry{}, err
	}

	return ManifestEntry{
		Template:      entry.TemplatePath,
		TemplateIndex: templateIndex,
		FilterIndex:   filterIndex,
		OutputPath:    wr.Path,
		Bytes:         wr.Bytes,
		SHA256:        wr.SHA256,
	}, nil
}
