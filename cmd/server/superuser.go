package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yamdb/internal/db"
	"yamdb/internal/services"
	"yamdb/internal/store"
)

var (
	superuserName  string
	superuserEmail string
)

var superuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an administrator account",
	Long: `Create a confirmed admin with the superuser flag. The account has no
password; obtain a token by signing up again with the same username and email.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()

		if err := db.Migrate(e.db, e.log); err != nil {
			return err
		}
		users := services.NewUserService(store.New(e.db), e.log)
		u, err := users.CreateSuperuser(cmd.Context(), superuserName, superuserEmail)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s created\n", u.Username)
		return nil
	},
}

func init() {
	superuserCmd.Flags().StringVar(&superuserName, "username", "", "Username")
	superuserCmd.Flags().StringVar(&superuserEmail, "email", "", "Email address")
	_ = superuserCmd.MarkFlagRequired("username")
	_ = superuserCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(superuserCmd)
}
