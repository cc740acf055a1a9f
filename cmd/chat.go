package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/findsight/findsight-cli/internal/ai"
	"github.com/findsight/findsight-cli/internal/answer"
	"github.com/findsight/findsight-cli/internal/retrieval"
	"github.com/findsight/findsight-cli/internal/session"
	"github.com/findsight/findsight-cli/internal/table"
)

var (
	roleFindingCol  string
	roleAssetCol    string
	roleDateCol     string
	roleStatusCol   string
	roleLocationCol string
)

func addRoleFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&roleFindingCol, "finding-col", "", "column holding the free-text finding (overrides detection)")
	cmd.Flags().StringVar(&roleAssetCol, "asset-col", "", "column holding the asset identifier (overrides detection)")
	cmd.Flags().StringVar(&roleDateCol, "date-col", "", "column holding the finding date (overrides detection)")
	cmd.Flags().StringVar(&roleStatusCol, "status-col", "", "column holding the status (overrides detection)")
	cmd.Flags().StringVar(&roleLocationCol, "location-col", "", "column holding the functional location (overrides detection)")
}

func roleOverrides(cmd *cobra.Command) map[table.Role]string {
	out := map[table.Role]string{}
	set := func(flag string, role table.Role, val string) {
		if cmd.Flags().Changed(flag) {
			out[role] = val
		}
	}
	set("finding-col", table.RoleFinding, roleFindingCol)
	set("asset-col", table.RoleAsset, roleAssetCol)
	set("date-col", table.RoleDate, roleDateCol)
	set("status-col", table.RoleStatus, roleStatusCol)
	set("location-col", table.RoleLocation, roleLocationCol)
	return out
}

// openSession loads the CSV, detects roles, applies overrides.
func openSession(cmd *cobra.Command, path string) (*session.Session, error) {
	t, err := table.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	sess := session.New(t)
	if err := sess.ApplyOverrides(roleOverrides(cmd)); err != nil {
		return nil, err
	}
	debugf("loaded %s: %d rows, roles %v", path, len(t.Rows), sess.Roles)
	return sess, nil
}

// runTurn executes one retrieve-then-answer turn against a table snapshot.
func runTurn(ctx context.Context, rt ai.Runtime, model string, sess *session.Session, query string) (string, *retrieval.Result, error) {
	res, err := retrieval.New(rt, model).Retrieve(ctx, retrieval.Request{
		Query:   query,
		Table:   sess.Table.Snapshot(),
		Roles:   sess.Roles,
		MaxRows: cfg.RetrievalMaxRows,
	})
	if err != nil {
		return "", nil, err
	}
	debugf("retrieval: %s", res.Detail)
	text, err := answer.New(rt, model, cfg.MaxTokens, cfg.ContextMaxRows).Answer(ctx, sess, query, res)
	if err != nil {
		return "", res, err
	}
	return text, res, nil
}

var chatCmd = &cobra.Command{
	Use:   "chat <findings.csv>",
	Short: "Chat interactively with a findings CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, model, err := newRuntime()
		if err != nil {
			return err
		}
		sess, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %s: %d rows, %d columns. Ask away (exit to quit).\n",
			args[0], len(sess.Table.Rows), len(sess.Table.Columns))

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			query := strings.TrimSpace(scanner.Text())
			if query == "" {
				continue
			}
			if query == "exit" || query == "quit" {
				break
			}
			text, res, err := runTurn(cmd.Context(), rt, model, sess, query)
			if err != nil {
				fmt.Fprintf(os.Stderr, "✗ %v\n", err)
				continue
			}
			sess.Append(ai.RoleUser, query, "")
			sess.Append(ai.RoleAssistant, text, res.Detail)
			fmt.Println()
			fmt.Println(text)
			fmt.Printf("\n🔍 retrieval: %s [%s]\n\n", res.Detail, res.Strategy)
		}
		return scanner.Err()
	},
}

func init() {
	addRoleFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}
