package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/MEKXH/toolgate/internal/policy"
)

func NewPolicyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policy [tool...]",
		Short: "Show gate mode and which tools require approval",
		RunE:  runPolicyStatus,
	}
}

func runPolicyStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}
		names = reg.Names()
	}

	printPolicyStatus(cmd.OutOrStdout(), newPolicy(cfg), names)
	return nil
}

func printPolicyStatus(out io.Writer, p policy.Evaluator, names []string) {
	var (
		headerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#8E4EC6")).
				Padding(0, 1).
				MarginBottom(1)

		nameStyle = lipgloss.NewStyle().Width(24).MarginRight(1)

		gatedColor = lipgloss.Color("#E0A100")
		freeColor  = lipgloss.Color("#2E8B57")
	)

	fmt.Fprintln(out, headerStyle.Render("Approval Gate"))
	fmt.Fprintf(out, "Mode: %s\n", p.Mode())
	gated := p.Names()
	if len(gated) == 0 {
		fmt.Fprintln(out, "Interrupt before: (none)")
	} else {
		fmt.Fprintf(out, "Interrupt before: %s\n", strings.Join(gated, ", "))
	}
	if p.Mode() == policy.ModeOff {
		fmt.Fprintln(out, "Risk: gate is off, every tool runs without approval")
	}

	fmt.Fprintln(out)
	for _, name := range names {
		status := lipgloss.NewStyle().Foreground(freeColor).Render("runs directly")
		if p.ShouldIntercept(name) {
			status = lipgloss.NewStyle().Foreground(gatedColor).Render("requires approval")
		}
		fmt.Fprintf(out, "  %s%s\n", nameStyle.Render(name), status)
	}
}
