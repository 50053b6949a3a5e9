package weavercli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/build-flow-labs/weaver/filter"
	"github.com/build-flow-labs/weaver/generate"
	"github.com/build-flow-labs/weaver/registry"
	"github.com/build-flow-labs/weaver/render"
	"github.com/build-flow-labs/weaver/target"
)

var (
	generateRegistryPath  string
	generateGitHubToken   string
	generateTemplatesPath string
	generateTargetSpec    string
	generateOutputDir     string
	generateForce         bool
	generateFailFast      bool
	generateManifestPath  string
	generateDeterministic bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render one or more targets' templates against a resolved registry",
	Long: `generate loads and resolves a registry once, then for every requested
target loads its manifest (weaver.yaml) and templates, filters and renders
each template, and writes the results atomically under --output. A run
manifest recording every generated file is written alongside each target's
output. --target accepts a single name, a comma-separated list, or "all"
to fan out over every target subdirectory under --templates.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateRegistryPath, "registry", "registry", "registry directory or owner/repo[@ref]")
	generateCmd.Flags().StringVar(&generateGitHubToken, "github-token", "", "GitHub token for remote registries (or GITHUB_TOKEN)")
	generateCmd.Flags().StringVar(&generateTemplatesPath, "templates", "templates", "directory containing target subdirectories")
	generateCmd.Flags().StringVar(&generateTargetSpec, "target", "", `target name, comma-separated list, or "all" (required)`)
	generateCmd.Flags().StringVar(&generateOutputDir, "output", "build", "output directory for generated artifacts")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "overwrite existing output files")
	generateCmd.Flags().BoolVar(&generateFailFast, "fail-fast", false, "cancel remaining targets (and each-mode renders) on first error")
	generateCmd.Flags().StringVar(&generateManifestPath, "manifest", "", "manifest JSON path for a single target (default <output>/manifest.json)")
	generateCmd.Flags().BoolVar(&generateDeterministic, "deterministic", false, "omit runId/generatedAt from the manifest so repeated runs are byte-identical")
	generateCmd.MarkFlagRequired("target")
}

// resolveTargets expands --target into a concrete, sorted list of target
// names: a literal name, a comma-separated list, or "all" meaning every
// subdirectory of templatesRoot that declares a weaver.yaml.
func resolveTargets(templatesFS fs.FS, spec string) ([]string, error) {
	if spec == "all" {
		names, err := target.ListTargets(templatesFS, ".")
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("no targets found under templates root")
		}
		return names, nil
	}
	var names []string
	for _, n := range strings.Split(spec, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("--target must not be empty")
	}
	sort.Strings(names)
	return names, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry(cmd.Context(), generateRegistryPath, generateGitHubToken)
	if err != nil {
		return err
	}

	templatesFS := os.DirFS(generateTemplatesPath)
	targets, err := resolveTargets(templatesFS, generateTargetSpec)
	if err != nil {
		return withExit(ExitConfigError, err)
	}

	outFs := afero.NewOsFs()
	now := time.Now().UTC()

	// Single-target runs keep the flat --output/--manifest layout used
	// before multi-target fan-out existed; multi-target runs nest each
	// target's output and manifest under --output/<target>/ to avoid
	// collisions.
	if len(targets) == 1 {
		manifest, outDir, err := generateOne(cmd.Context(), reg, templatesFS, targets[0], outFs, generateOutputDir, now)
		if err != nil {
			return err
		}
		return writeManifestAndReport(cmd, manifest, outFs, manifestPathFor(generateManifestPath, outDir))
	}

	group, ctx := errgroup.WithContext(cmd.Context())
	var mu sync.Mutex
	var lines []string
	for _, t := range targets {
		t := t
		group.Go(func() error {
			runCtx := cmd.Context()
			if generateFailFast {
				runCtx = ctx
			}
			outDir := path.Join(generateOutputDir, t)
			manifest, _, err := generateOne(runCtx, reg, templatesFS, t, outFs, outDir, now)
			if err != nil {
				if generateFailFast {
					return err
				}
				mu.Lock()
				lines = append(lines, fmt.Sprintf("target %s: FAILED: %v", t, err))
				mu.Unlock()
				return nil
			}
			manifestPath := path.Join(outDir, "manifest.json")
			manifestJSON, err := manifest.JSON()
			if err != nil {
				mu.Lock()
				lines = append(lines, fmt.Sprintf("target %s: FAILED: %v", t, err))
				mu.Unlock()
				return nil
			}
			if err := afero.WriteFile(outFs, manifestPath, manifestJSON, 0o644); err != nil {
				mu.Lock()
				lines = append(lines, fmt.Sprintf("target %s: FAILED: %v", t, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			lines = append(lines, fmt.Sprintf("target %s: generated %d file(s), manifest: %s", t, len(manifest.Entries), manifestPath))
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return withExit(ExitGenerationFailed, err)
	}

	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), l)
	}
	for _, l := range lines {
		if strings.Contains(l, "FAILED") {
			return withExit(ExitGenerationFailed, fmt.Errorf("one or more targets failed"))
		}
	}
	return nil
}

// generateOne loads a single target's manifest and templates and renders
// it. See internal/weavercli's DESIGN.md note on the two-pass target.Load
// used to discover declared text_maps before binding the real engines.
func generateOne(ctx context.Context, reg *registry.Registry, templatesFS fs.FS, targetName string, outFs afero.Fs, outDir string, now time.Time) (*generate.Manifest, string, error) {
	probeFilter := filter.NewEngine(nil)
	probeRender := render.NewEngine(probeFilter, render.UndefinedLenient)
	probeCfg, err := target.Load(templatesFS, targetName, targetName, probeFilter, probeRender)
	if err != nil {
		return nil, outDir, withExit(ExitConfigError, err)
	}

	filterEngine := filter.NewEngine(probeCfg.FilterTextMaps())
	renderEngine := render.NewEngine(filterEngine, render.UndefinedLenient)
	cfg, err := target.Load(templatesFS, targetName, targetName, filterEngine, renderEngine)
	if err != nil {
		return nil, outDir, withExit(ExitConfigError, err)
	}

	workers, _ := strconv.Atoi(os.Getenv("WORKERS")) // unset or invalid: 0, meaning one per CPU
	manifest, err := generate.Run(ctx, reg, cfg, filterEngine, renderEngine, outFs, now, generate.Options{
		OutputDir:     outDir,
		Force:         generateForce,
		FailFast:      generateFailFast,
		Workers:       workers,
		ToolVersion:   Version,
		Deterministic: generateDeterministic,
	})
	if err != nil {
		return nil, outDir, withExit(ExitGenerationFailed, err)
	}
	return manifest, outDir, nil
}

func manifestPathFor(explicit, outDir string) string {
	if explicit != "" {
		return explicit
	}
	return path.Join(outDir, "manifest.json")
}

func writeManifestAndReport(cmd *cobra.Command, manifest *generate.Manifest, outFs afero.Fs, manifestPath string) error {
	manifestJSON, err := manifest.JSON()
	if err != nil {
		return withExit(ExitGenerationFailed, err)
	}
	if err := afero.WriteFile(outFs, manifestPath, manifestJSON, 0o644); err != nil {
		return withExit(ExitGenerationFailed, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "generated %d file(s), manifest: %s\n", len(manifest.Entries), manifestPath)
	return nil
}
