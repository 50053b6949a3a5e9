package weavercli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/build-flow-labs/weaver/validate"
)

var (
	checkRegistryPath string
	checkGitHubToken  string
	checkJSON         bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a registry's structural well-formedness",
	Long: `check loads and resolves a registry, then runs structural checks:
required fields, enum domains, stability and requirement_level domain
membership. Errors fail the gate; warnings only annotate it.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkRegistryPath, "registry", "registry", "registry directory or owner/repo[@ref]")
	checkCmd.Flags().StringVar(&checkGitHubToken, "github-token", "", "GitHub token for remote registries (or GITHUB_TOKEN)")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output findings as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry(cmd.Context(), checkRegistryPath, checkGitHubToken)
	if err != nil {
		return err
	}

	report := validate.CheckRegistry(reg)

	if checkJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return withExit(ExitConfigError, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	} else {
		printGateReport(cmd, report.Errors, report.Warnings)
	}

	if !report.PassesGate() {
		return withExit(ExitValidationFailed, fmt.Errorf("%s", report.GateMessage()))
	}
	return nil
}

func printGateReport(cmd *cobra.Command, errs, warnings []validate.Finding) {
	out := cmd.OutOrStdout()
	for _, f := range errs {
		fmt.Fprintf(out, "ERROR [%s] %s\n", f.Group, f.Message)
	}
	for _, f := range warnings {
		fmt.Fprintf(out, "WARN  [%s] %s\n", f.Group, f.Message)
	}
	if len(errs) == 0 && len(warnings) == 0 {
		fmt.Fprintln(out, "registry is valid, no findings")
	}
}
