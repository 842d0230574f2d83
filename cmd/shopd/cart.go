package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stackmill/storefront/internal/domain"
)

func newCartCmd(a *app) *cobra.Command {
	cart := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart (guest or signed in)",
	}
	cart.AddCommand(
		newCartListCmd(a),
		newCartAddCmd(a),
		newCartRemoveCmd(a),
		newCartClearCmd(a),
	)
	return cart
}

func newCartListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show cart contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if !a.session.IsAuthenticated() {
				items := a.guestCart.Items()
				if len(items) == 0 {
					fmt.Fprintln(out, "Your cart is empty")
					return nil
				}
				var total float64
				for _, item := range items {
					line := item.Snapshot.Price * float64(item.Quantity)
					total += line
					fmt.Fprintf(out, "%4d x %-24s %8.2f  (product %d)\n",
						item.Quantity, item.Snapshot.Name, line, item.ProductID)
				}
				fmt.Fprintf(out, "Total: %.2f (saved locally, sign in to check out)\n", total)
				return nil
			}

			items, err := a.cart.Items(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "Your cart is empty")
				return nil
			}
			var total float64
			for _, item := range items {
				line := item.Product.Price * float64(item.Quantity)
				total += line
				fmt.Fprintf(out, "%4d x %-24s %8.2f  (line %d)\n",
					item.Quantity, item.Product.Name, line, item.ID)
			}
			fmt.Fprintf(out, "Total: %.2f\n", total)
			return nil
		},
	}
}

func newCartAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id> [quantity]",
		Short: "Add a product to the cart",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			quantity := int64(1)
			if len(args) == 2 {
				quantity, err = strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid quantity %q", args[1])
				}
			}

			ctx := cmd.Context()

			if a.session.IsAuthenticated() {
				if err := a.cart.Add(ctx, productID, quantity); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Added to your cart")
				return nil
			}

			// Anonymous: carry a display snapshot so the cart renders
			// without a product fetch. If the catalog is unreachable
			// the item still goes in with a placeholder.
			item := domain.LineItem{ProductID: productID, Quantity: quantity}
			if product, err := a.api.Product(ctx, productID); err == nil {
				item.Snapshot = domain.SnapshotFromProduct(*product)
			} else if domain.ErrorCode(err) == domain.ENOTFOUND {
				return err
			}

			if err := a.guestCart.Add(item); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved to your local cart")
			return nil
		},
	}
}

func newCartRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a cart line (product id when signed out, line id when signed in)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			if a.session.IsAuthenticated() {
				if err := a.cart.Remove(cmd.Context(), id); err != nil {
					return err
				}
			} else if err := a.guestCart.Remove(id); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Removed")
			return nil
		},
	}
}

func newCartClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.session.IsAuthenticated() {
				if err := a.cart.Clear(cmd.Context()); err != nil {
					return err
				}
			} else if err := a.guestCart.Clear(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared")
			return nil
		},
	}
}
