package weavercli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/build-flow-labs/weaver/registry"
)

var (
	statsRegistryPath string
	statsGitHubToken  string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a group/attribute histogram for a registry",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsRegistryPath, "registry", "registry", "registry directory or owner/repo[@ref]")
	statsCmd.Flags().StringVar(&statsGitHubToken, "github-token", "", "GitHub token for remote registries (or GITHUB_TOKEN)")
}

func runStats(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry(cmd.Context(), statsRegistryPath, statsGitHubToken)
	if err != nil {
		return err
	}

	s := reg.ComputeStats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "groups:     %d\n", s.GroupCount)
	fmt.Fprintf(out, "attributes: %d\n", s.AttributeCount)
	fmt.Fprintln(out, "by type:")

	types := make([]registry.GroupType, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		fmt.Fprintf(out, "  %-16s %d\n", t, s.ByType[t])
	}
	return nil
}
