// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"zentaoctl/cli/internal/operation"
	"zentaoctl/cli/internal/portal"
	"zentaoctl/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	execID       string
	execAction   string
	execComment  string
	execOperator string
	execStrict   bool
	execYes      bool
)

// execCmd performs one state change on one bug.
var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Close, activate, resolve or reassign a bug",
	Long: `The exec command logs in with the admin account, opens the bug's detail page,
triggers the requested action and submits its form with a comment naming the
operator.

Actions: close (关闭), activate (激活), resolve (解决), assign (指派).

A submission that shows no success marker is reported as done unless --strict
is given or portal.submit_policy is "strict".`,
	Example: `  zentaoctl exec --id 42 --action close --comment "duplicate of 40"
  zentaoctl exec --id 42 --action 激活 --operator 王五 --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id := strings.TrimSpace(execID)
		if id == "" {
			pterm.Warning.Println("A bug id is required (--id).")
			return &exitError{code: 1}
		}
		action, err := portal.ParseAction(execAction)
		if err != nil {
			pterm.Warning.Println(err.Error())
			pterm.Info.Println("Use one of: " + actionNames())
			return &exitError{code: 1}
		}

		env, err := loadRuntime(ctx)
		if err != nil {
			return err
		}
		defer env.closer()

		operator := pickOperator(cmd, execOperator, env.cfg)
		if operator == "" {
			pterm.Warning.Println("An operator name is required (--operator or 'zentaoctl configure').")
			return &exitError{code: 1}
		}
		if execStrict {
			env.deps.Submit = portal.SubmitStrict
		}

		if !execYes {
			ok, err := terminal.NewPrompter().Confirm(fmt.Sprintf("%s BUG %s for %s?", action.Label(), id, operator))
			if err != nil {
				return err
			}
			if !ok {
				pterm.Info.Println("Cancelled.")
				return nil
			}
		}

		res, _ := runOperation(ctx, operation.Request{
			Credentials: env.creds,
			Operator:    operator,
			Command: &portal.ActionCommand{
				RecordID: id,
				Action:   action,
				Comment:  execComment,
			},
		}, env.deps)
		if !res.Success {
			return reportFailure(res)
		}
		return nil
	},
}

func actionNames() string {
	names := make([]string, 0, len(portal.Actions()))
	for _, a := range portal.Actions() {
		names = append(names, fmt.Sprintf("%s (%s)", a, a.Label()))
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().StringVar(&execID, "id", "", "Bug id")
	execCmd.Flags().StringVar(&execAction, "action", "", "close, activate, resolve or assign")
	execCmd.Flags().StringVar(&execComment, "comment", "", "Comment entered in the action form")
	execCmd.Flags().StringVar(&execOperator, "operator", "", "Name of the person the admin account is used for")
	execCmd.Flags().BoolVar(&execStrict, "strict", false, "Fail when the portal shows no success marker after submitting")
	execCmd.Flags().BoolVarP(&execYes, "yes", "y", false, "Do not ask for confirmation")
}
