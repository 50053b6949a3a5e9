package weavercli

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/build-flow-labs/weaver/internal/scaffold"
)

var (
	initDir    string
	initDryRun bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive wizard that scaffolds a starter registry and target",
	Long: `init walks through a short interactive wizard and writes a starter
registry plus a starter target manifest and template for the chosen
language, so "weaver check" and "weaver generate" have something to run
against immediately.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initDir, "dir", ".", "project directory to scaffold into")
	initCmd.Flags().BoolVar(&initDryRun, "dry-run", false, "preview steps without writing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	wiz := scaffold.NewWizard(afero.NewOsFs(), initDir, initDryRun)
	if err := wiz.Run(cmd.Context()); err != nil {
		return withExit(ExitConfigError, err)
	}
	return nil
}
