package cmd

import (
	"context"
	"fmt"

	"github.com/agubarev/accounts/internal/core"
	"github.com/agubarev/accounts/pkg/user"
	"github.com/agubarev/accounts/pkg/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	showUsername string
	showEmail    string

	checkUsername string
	checkEmail    string
)

// showCmd prints a stored account
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a stored account as JSON, looked up by username or email.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showUsername == "" && showEmail == "" {
			return errors.New("either --username or --email must be given")
		}

		return withCore(cmd, func(c *core.Core) error {
			um, err := c.UserManager()
			if err != nil {
				return err
			}

			var u user.User
			if showUsername != "" {
				u, err = um.UserByUsername(context.Background(), showUsername)
			} else {
				u, err = um.UserByEmailAddr(context.Background(), showEmail)
			}

			if err != nil {
				return err
			}

			return util.PrettyPrint(cmd.OutOrStdout(), u)
		})
	},
}

// checkCmd reports whether a username and email are still free
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a username and/or email address are still available.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(c *core.Core) error {
			um, err := c.UserManager()
			if err != nil {
				return err
			}

			if err = um.CheckAvailability(context.Background(), checkUsername, checkEmail); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "available")

			return nil
		})
	},
}

func init() {
	showCmd.Flags().StringVar(&showUsername, "username", "", "username to look up")
	showCmd.Flags().StringVar(&showEmail, "email", "", "email address to look up")

	checkCmd.Flags().StringVar(&checkUsername, "username", "", "username to check")
	checkCmd.Flags().StringVar(&checkEmail, "email", "", "email address to check")

	rootCmd.AddCommand(showCmd, checkCmd)
}
