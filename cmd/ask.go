package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <findings.csv> <question...>",
	Short: "Ask a single question about a findings CSV",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, model, err := newRuntime()
		if err != nil {
			return err
		}
		sess, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		query := strings.Join(args[1:], " ")
		text, res, err := runTurn(cmd.Context(), rt, model, sess, query)
		if err != nil {
			return err
		}
		fmt.Println(text)
		fmt.Printf("\n🔍 retrieval: %s [%s]\n", res.Detail, res.Strategy)
		return nil
	},
}

func init() {
	addRoleFlags(askCmd)
	rootCmd.AddCommand(askCmd)
}
