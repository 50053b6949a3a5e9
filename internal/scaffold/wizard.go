// Package scaffold implements the interactive `weaver init` wizard that
// lays down a starter registry and a starter target under a new project
// directory.
package scaffold

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
)

// StepResult records the outcome of a single wizard step.
type StepResult struct {
	Step   string
	Action string // "created", "skipped", "dry-run", "error"
	Detail string
}

// Wizard orchestrates the interactive `weaver init` process.
type Wizard struct {
	fs      afero.Fs
	prompt  *prompter
	out     io.Writer
	dir     string
	dryRun  bool
	results []StepResult

	// gathered answers, filled in by gatherDetails and used by later steps
	projectName string
	target      string
}

// NewWizard creates an init wizard rooted at dir.
func NewWizard(fs afero.Fs, dir string, dryRun bool) *Wizard {
	return &Wizard{
		fs:     fs,
		prompt: newPrompter(os.Stdin, os.Stdout),
		out:    os.Stdout,
		dir:    dir,
		dryRun: dryRun,
	}
}

// Run executes the wizard's step sequence.
func (w *Wizard) Run(ctx context.Context) error {
	fmt.Fprintln(w.out, "")
	fmt.Fprintln(w.out, "  weaver init")
	fmt.Fprintln(w.out, "  ===========")
	if w.dryRun {
		fmt.Fprintln(w.out, "  (dry-run mode: no files will be written)")
	}
	fmt.Fprintln(w.out, "")

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Gather project details", w.gatherDetails},
		{"Scaffold registry", w.scaffoldRegistry},
		{"Scaffold target", w.scaffoldTarget},
	}

	for i, step := range steps {
		fmt.Fprintf(w.out, "\n--- Step %d/%d: %s ---\n", i+1, len(steps), step.name)
		if err := step.fn(ctx); err != nil {
			w.record(step.name, "error", err.Error())
			return fmt.Errorf("init failed at step %d (%s): %w", i+1, step.name, err)
		}
	}

	w.printSummary()
	return nil
}

func (w *Wizard) gatherDetails(ctx context.Context) error {
	w.projectName = w.prompt.askDefault("Project name", "my-telemetry")
	idx := w.prompt.askChoice("Target language", []string{"go", "python", "java"})
	w.target = []string{"go", "python", "java"}[idx]
	w.record("Gather project details", "created", fmt.Sprintf("name=%s target=%s", w.projectName, w.target))
	return nil
}

func (w *Wizard) scaffoldRegistry(ctx context.Context) error {
	relPath := path.Join("registry", "attributes.yaml")
	if w.dryRun {
		w.record("Scaffold registry", "dry-run", relPath)
		return nil
	}
	if err := w.writeFile(relPath, starterRegistryYAML(w.projectName)); err != nil {
		return err
	}
	w.record("Scaffold registry", "created", relPath)
	return nil
}

func (w *Wizard) scaffoldTarget(ctx context.Context) error {
	manifestPath := path.Join("templates", w.target, "weaver.yaml")
	templatePath := path.Join("templates", w.target, "attributes."+templateExt(w.target))
	if w.dryRun {
		w.record("Scaffold target", "dry-run", fmt.Sprintf("%s, %s", manifestPath, templatePath))
		return nil
	}
	if err := w.writeFile(manifestPath, starterManifestYAML(templatePath, w.target)); err != nil {
		return err
	}
	if err := w.writeFile(templatePath, starterTemplateBody(w.target)); err != nil {
		return err
	}
	w.record("Scaffold target", "created", fmt.Sprintf("%s, %s", manifestPath, templatePath))
	return nil
}

func (w *Wizard) writeFile(rel, content string) error {
	full := path.Join(w.dir, rel)
	if err := w.fs.MkdirAll(path.Dir(full), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(w.fs, full, []byte(content), 0o644)
}

func (w *Wizard) record(step, action, detail string) {
	w.results = append(w.results, StepResult{Step: step, Action: action, Detail: detail})
	marker := "+"
	switch action {
	case "dry-run":
		marker = "~"
	case "error":
		marker = "!"
	}
	fmt.Fprintf(w.out, "  [%s] %s: %s\n", marker, action, detail)
}

func (w *Wizard) printSummary() {
	fmt.Fprintln(w.out, "\nDone. Next steps:")
	fmt.Fprintln(w.out, "  weaver check  --registry registry")
	fmt.Fprintf(w.out, "  weaver generate --registry registry --templates templates --target %s --output build/%s\n", w.target, w.target)
}

// Results returns the wizard's recorded step outcomes, mainly for tests.
func (w *Wizard) Results() []StepResult { return w.results }

func templateExt(target string) string {
	switch target {
	case "python":
		return "py.j2"
	case "java":
		return "java.j2"
	default:
		return "go.j2"
	}
}

func starterRegistryYAML(projectName string) string {
	return fmt.Sprintf(`# %s semantic conventions
groups:
  - id: app
    type: attribute_group
    brief: Common application attributes
    attributes:
      - id: app.name
        type: string
        requirement_level: required
        brief: The application's name
        examples: ["%s"]
`, projectName, projectName)
}

func starterManifestYAML(templatePath, target string) string {
	return fmt.Sprintf(`name: %s
templates:
  - template: %s
    filter: .
    application_mode: single
    file_name: attributes.generated
`, target, path.Base(templatePath))
}

func starterTemplateBody(target string) string {
	switch target {
	case "python":
		return "# Generated attribute constants\n" +
			"{{ range .ctx }}{{ range .attributes }}{{ .id | snake_case_const }} = \"{{ .id }}\"\n{{ end }}{{ end }}"
	case "java":
		return "// Generated attribute constants\n" +
			"public final class Attributes {\n" +
			"{{ range .ctx }}{{ range .attributes }}  public static final String {{ .id | snake_case_const }} = \"{{ .id }}\";\n{{ end }}{{ end }}" +
			"}\n"
	default:
		return "// Generated attribute constants\n" +
			"package attributes\n\nconst (\n" +
			"{{ range .ctx }}{{ range .attributes }}\t{{ .id | pascal_case }} = \"{{ .id }}\"\n{{ end }}{{ end }}" +
			")\n"
	}
}
