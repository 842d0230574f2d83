package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newFavCmd(a *app) *cobra.Command {
	fav := &cobra.Command{
		Use:   "fav",
		Short: "Manage favourite products",
	}
	fav.AddCommand(newFavAddCmd(a), newFavRemoveCmd(a))
	return fav
}

func newFavAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id>",
		Short: "Favourite a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			favID, err := a.favourites.Add(cmd.Context(), productID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Favourited product %d (favourite id %d)\n", productID, favID)
			return nil
		},
	}
}

func newFavRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <favourite-id> <product-id>",
		Short: "Remove a favourite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			favID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid favourite id %q", args[0])
			}
			productID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[1])
			}

			if err := a.favourites.Remove(cmd.Context(), favID, productID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Favourite removed")
			return nil
		},
	}
}
