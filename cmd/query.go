// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"log/slog"
	"strings"

	"zentaoctl/cli/internal/config"
	zerrors "zentaoctl/cli/internal/errors"
	"zentaoctl/cli/internal/export"
	"zentaoctl/cli/internal/logging"
	"zentaoctl/cli/internal/operation"
	"zentaoctl/cli/internal/portal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	queryProject    string
	queryAssignedTo string
	querySolution   string
	queryID         string
	queryExport     string
	queryOperator   string
)

// queryCmd lists the bugs of one project, optionally narrowed to one id or
// to an assignee/solution pair.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List the bugs of a project",
	Long: `The query command logs in with the admin account, resolves the project by
name and lists its bugs.

Filters:
  --id                 keep only the bug with this id
  --assigned-to and --solution
                       keep bugs matching both; "全部" (or "all") matches anything

Flags that are not given fall back to the previous query, the bug id
included; pass --id "" to drop a remembered id. The result can be written to a
CSV file with --export.`,
	Example: `  zentaoctl query --project 商城 --assigned-to 张三 --solution 全部
  zentaoctl query --project 商城 --id 42
  zentaoctl query --export bugs.csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		q, err := config.LoadLastQuery()
		if err != nil {
			slog.Warn("last query unreadable, using defaults", slog.Any("error", err))
			q = config.DefaultLastQuery()
		}
		q = applyQueryFlags(q, cmd.Flags().Changed)
		q.ProjectName = strings.TrimSpace(q.ProjectName)
		if q.ProjectName == "" {
			pterm.Warning.Println("A project name is required (--project).")
			return &exitError{code: 1}
		}

		env, err := loadRuntime(ctx)
		if err != nil {
			return err
		}
		defer env.closer()

		operator := pickOperator(cmd, queryOperator, env.cfg)
		if operator == "" {
			pterm.Warning.Println("An operator name is required (--operator or 'zentaoctl configure').")
			return &exitError{code: 1}
		}

		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Project:  ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(q.ProjectName))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Filter:   ") + describeQuery(q))
		pterm.Println()

		res, records := runOperation(ctx, operation.Request{
			Credentials: env.creds,
			Operator:    operator,
			Query:       &q,
		}, env.deps)

		if err := config.SaveLastQuery(q); err != nil {
			slog.Warn("failed to save last query", slog.Any("error", err))
		}

		if !res.Success {
			if res.Kind == zerrors.EmptyResult {
				return nil
			}
			return reportFailure(res)
		}

		if queryExport != "" {
			if err := export.WriteCSV(queryExport, records); err != nil {
				pterm.Error.Println(logging.PresentError("export "+queryExport, err))
				return &exitError{code: 1}
			}
			pterm.Success.Printfln("Exported %d record(s) to %s", len(records), queryExport)
		}
		return nil
	},
}

// applyQueryFlags overrides the fields of q whose flag was given.
func applyQueryFlags(q portal.Query, changed func(name string) bool) portal.Query {
	if changed("project") {
		q.ProjectName = queryProject
	}
	if changed("assigned-to") {
		q.AssignedTo = queryAssignedTo
	}
	if changed("solution") {
		q.Solution = querySolution
	}
	if changed("id") {
		q.RecordID = queryID
	}
	return q
}

// pickOperator prefers the --operator flag over the configured name.
func pickOperator(cmd *cobra.Command, flagValue string, cfg config.Config) string {
	if cmd.Flags().Changed("operator") {
		return strings.TrimSpace(flagValue)
	}
	return strings.TrimSpace(cfg.Operator)
}

func describeQuery(q portal.Query) string {
	switch q.Mode() {
	case portal.ModeByID:
		return "BUG ID " + strings.TrimSpace(q.RecordID)
	case portal.ModeByCondition:
		return "指派给 " + strings.TrimSpace(q.AssignedTo) + ", 解决方案 " + strings.TrimSpace(q.Solution)
	}
	return "none"
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&queryProject, "project", "", "Project name as shown in the portal")
	queryCmd.Flags().StringVar(&queryAssignedTo, "assigned-to", "", `Assignee to keep ("全部" for any)`)
	queryCmd.Flags().StringVar(&querySolution, "solution", "", `Solution to keep ("全部" for any)`)
	queryCmd.Flags().StringVar(&queryID, "id", "", "Keep only the bug with this id")
	queryCmd.Flags().StringVar(&queryExport, "export", "", "Write the result to this CSV file")
	queryCmd.Flags().StringVar(&queryOperator, "operator", "", "Name of the person the admin account is used for")
}
