package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MEKXH/toolgate/internal/sanitize"
)

func NewSanitizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sanitize [text...]",
		Short: "Print text the way it would appear in a log line",
		RunE:  runSanitize,
	}
	cmd.Flags().Int("max", sanitize.DefaultMaxLength, "Maximum length in characters")
	return cmd
}

func runSanitize(cmd *cobra.Command, args []string) error {
	maxLength, _ := cmd.Flags().GetInt("max")

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimSuffix(string(data), "\n")
	}

	fmt.Fprintln(cmd.OutOrStdout(), sanitize.Value(text, maxLength))
	return nil
}
