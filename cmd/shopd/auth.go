package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Sign in and fold the guest cart into your account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := a.session.Login(ctx, args[0], args[1]); err != nil {
				return err
			}

			user := a.session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.Username, user.RoleName)

			pending := len(a.guestCart.Items())
			merged, err := a.merge.Merge(ctx)
			if err != nil {
				remaining := len(a.guestCart.Items())
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %d of %d saved cart item(s); %d will be retried on next login\n",
					pending-remaining, pending, remaining)
				return err
			}
			if merged {
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %d saved cart item(s) into your account\n", pending)
			}
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newMeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := a.session.User()
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s\n", user.Username, user.Email, user.RoleName)

			favs := a.session.FavouriteIDs()
			if len(favs) == 0 {
				return nil
			}
			ids := make([]int64, 0, len(favs))
			for id := range favs {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			fmt.Fprintf(cmd.OutOrStdout(), "Favourite products: %v\n", ids)
			return nil
		},
	}
}
