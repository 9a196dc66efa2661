package cmd

import (
	"context"

	"github.com/agubarev/accounts/internal/core"
	"github.com/agubarev/accounts/pkg/user"
	"github.com/agubarev/accounts/pkg/util"
	"github.com/spf13/cobra"
)

type createFlags struct {
	username  string
	email     string
	password  string
	firstname string
	lastname  string
	inactive  bool
}

func (f *createFlags) bind(c *cobra.Command) {
	c.Flags().StringVar(&f.username, "username", "", "username (required)")
	c.Flags().StringVar(&f.email, "email", "", "email address")
	c.Flags().StringVar(&f.password, "password", "", "password, leave empty for an unusable one")
	c.Flags().StringVar(&f.firstname, "firstname", "", "first name")
	c.Flags().StringVar(&f.lastname, "lastname", "", "last name")
	c.Flags().BoolVar(&f.inactive, "inactive", false, "create the account as inactive")
	c.MarkFlagRequired("username")
}

func (f *createFlags) object() user.NewUserObject {
	return user.NewUserObject{
		Username:  f.username,
		Email:     f.email,
		Password:  []byte(f.password),
		Firstname: f.firstname,
		Lastname:  f.lastname,
	}
}

var createUserFlags createFlags

// createUserCmd creates a standard account
var createUserCmd = &cobra.Command{
	Use:   "createuser",
	Short: "Create a standard (non-privileged) account.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(c *core.Core) error {
			um, err := c.UserManager()
			if err != nil {
				return err
			}

			u, err := um.CreateUser(context.Background(), createUserFlags.object(), user.WithActive(!createUserFlags.inactive))
			if err != nil {
				return err
			}

			return util.PrettyPrint(cmd.OutOrStdout(), u)
		})
	},
}

var createSuperuserFlags createFlags

// createSuperuserCmd creates an administrative account
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an administrative account with staff and superuser privileges.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(c *core.Core) error {
			um, err := c.UserManager()
			if err != nil {
				return err
			}

			u, err := um.CreateSuperuser(context.Background(), createSuperuserFlags.object(), user.WithActive(!createSuperuserFlags.inactive))
			if err != nil {
				return err
			}

			return util.PrettyPrint(cmd.OutOrStdout(), u)
		})
	},
}

func init() {
	createUserFlags.bind(createUserCmd)
	createSuperuserFlags.bind(createSuperuserCmd)

	rootCmd.AddCommand(createUserCmd, createSuperuserCmd)
}
