package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/findsight/findsight-cli/internal/table"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <findings.csv>",
	Short: "Show detected column roles and a dataset summary",
	Long: `Inspect loads a findings CSV, reports which columns were detected for each
semantic role (finding text, asset, date, status, location), and prints the
dataset summary used in answer prompts. Role detection is best-effort; use
the --*-col flags to override a wrong guess.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Println("Column roles:")
		for _, role := range table.AllRoles {
			col := sess.Roles.Column(role)
			if col == "" {
				col = "(none)"
			}
			fmt.Printf("  %-9s → %s\n", role, col)
		}
		fmt.Println()
		fmt.Println(sess.Summary)
		return nil
	},
}

func init() {
	addRoleFlags(inspectCmd)
	rootCmd.AddCommand(inspectCmd)
}
