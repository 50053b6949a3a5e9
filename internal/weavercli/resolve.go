package weavercli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/build-flow-labs/weaver/filter"
)

var (
	resolveRegistryPath string
	resolveGitHubToken  string
	resolveFormat       string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Load and resolve a registry, printing the fully inlined groups",
	Long: `resolve loads a registry (local directory or "owner/repo[@ref]"
GitHub source), resolves extends and ref inheritance, and prints the
resulting flat groups as JSON or YAML.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveRegistryPath, "registry", "registry", "registry directory or owner/repo[@ref]")
	resolveCmd.Flags().StringVar(&resolveGitHubToken, "github-token", "", "GitHub token for remote registries (or GITHUB_TOKEN)")
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "json", "output format: json or yaml")
}

func runResolve(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry(cmd.Context(), resolveRegistryPath, resolveGitHubToken)
	if err != nil {
		return err
	}

	value := filter.ToValue(reg)

	switch resolveFormat {
	case "yaml":
		out, err := yaml.Marshal(value)
		if err != nil {
			return withExit(ExitConfigError, err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
	case "json":
		out, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return withExit(ExitConfigError, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	default:
		return withExit(ExitConfigError, fmt.Errorf("unknown format %q: expected json or yaml", resolveFormat))
	}
	return nil
}
