package weavercli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/build-flow-labs/weaver/filter"
	"github.com/build-flow-labs/weaver/generate"
	"github.com/build-flow-labs/weaver/internal/status"
	"github.com/build-flow-labs/weaver/render"
	"github.com/build-flow-labs/weaver/target"
	"github.com/build-flow-labs/weaver/validate"
)

var (
	serveAddr          string
	serveRegistryPath  string
	serveGitHubToken   string
	serveTemplatesPath string
	serveTargetName    string
	serveOutputDir     string
	serveSpansPath     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run one generation pass and serve its status over HTTP",
	Long: `serve resolves the registry, runs generate once against the given
target, optionally scores the result against a captured span file, and
then serves /health, /status, and /ui until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveRegistryPath, "registry", "registry", "registry directory or owner/repo[@ref]")
	serveCmd.Flags().StringVar(&serveGitHubToken, "github-token", "", "GitHub token for remote registries (or GITHUB_TOKEN)")
	serveCmd.Flags().StringVar(&serveTemplatesPath, "templates", "templates", "directory containing target subdirectories")
	serveCmd.Flags().StringVar(&serveTargetName, "target", "", "target subdirectory name under --templates (required)")
	serveCmd.Flags().StringVar(&serveOutputDir, "output", "build", "output directory for generated artifacts")
	serveCmd.Flags().StringVar(&serveSpansPath, "spans", "", "optional captured-span JSON file to score artifact health against")
	serveCmd.MarkFlagRequired("target")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	reg, err := loadRegistry(ctx, serveRegistryPath, serveGitHubToken)
	if err != nil {
		return err
	}

	probeFilter := filter.NewEngine(nil)
	probeRender := render.NewEngine(probeFilter, render.UndefinedLenient)
	templatesFS := os.DirFS(serveTemplatesPath)
	probeCfg, err := target.Load(templatesFS, serveTargetName, serveTargetName, probeFilter, probeRender)
	if err != nil {
		return withExit(ExitConfigError, err)
	}

	filterEngine := filter.NewEngine(probeCfg.FilterTextMaps())
	renderEngine := render.NewEngine(filterEngine, render.UndefinedLenient)
	cfg, err := target.Load(templatesFS, serveTargetName, serveTargetName, filterEngine, renderEngine)
	if err != nil {
		return withExit(ExitConfigError, err)
	}

	now := time.Now().UTC()
	outFs := afero.NewOsFs()
	manifest, err := generate.Run(ctx, reg, cfg, filterEngine, renderEngine, outFs, now, generate.Options{
		OutputDir:   serveOutputDir,
		Force:       true,
		ToolVersion: Version,
	})
	if err != nil {
		return withExit(ExitGenerationFailed, err)
	}

	var health *validate.HealthReport
	if serveSpansPath != "" {
		data, err := os.ReadFile(serveSpansPath)
		if err != nil {
			return withExit(ExitConfigError, err)
		}
		spans, err := validate.ParseSpansJSON(data)
		if err != nil {
			return withExit(ExitConfigError, err)
		}
		health = validate.ArtifactReport(reg, manifest, spans, 0)
	}

	srv := status.NewServer(status.Config{Addr: serveAddr}, logger)
	srv.RecordRun(manifest, health, now)

	fmt.Fprintf(cmd.OutOrStdout(), "generated %d file(s), serving status on %s\n", len(manifest.Entries), serveAddr)
	if err := srv.Start(ctx); err != nil {
		return withExit(ExitGenerationFailed, err)
	}
	return nil
}
