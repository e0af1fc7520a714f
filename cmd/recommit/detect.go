package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/recommit/internal/validate"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show which message-format checker applies to this repository",
	Long: `Scan the repository root for message-format checker configuration and
report the checker recommit would use, along with the rule description it
feeds to the model.

Examples:
  recommit detect`,
	RunE: runDetect,
}

// runDetect handles the detect command
func runDetect(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}

	v := validate.Detect(root, validate.Options{})
	if v == nil {
		fmt.Println("No message-format checker detected; messages are rewritten without validation.")
		return nil
	}

	fmt.Printf("Checker: %s\n", v.Name())
	if hint := v.PromptHint(); hint != "" {
		fmt.Printf("Rules: %s\n", hint)
	}
	return nil
}
