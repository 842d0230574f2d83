package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProductsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the product catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.api.Products(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range products {
				marker := " "
				if a.session.IsFavourite(p.ID) {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %4d  %-24s %8.2f\n", marker, p.ID, p.Name, p.Price)
			}
			return nil
		},
	}
}
