package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pomerium/storefront/internal/catalog"
)

func (c *cli) productsCommand() *cobra.Command {
	var (
		categoryID int64
		query      string
		refresh    bool
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if refresh {
				c.app.catalog.Invalidate(cmd.Context())
			}

			var products []catalog.Product
			var err error
			if cmd.Flags().Changed("category") {
				products, err = c.app.catalog.ProductsByCategory(cmd.Context(), categoryID)
			} else {
				products, err = c.app.catalog.Products(cmd.Context())
			}
			if err != nil {
				return err
			}

			products = catalog.Search(products, query)
			if len(products) == 0 {
				fmt.Fprintln(c.stdout, "No products found")
				return nil
			}
			renderProducts(c.stdout, products, c.app.favorites.IsFavorite)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&categoryID, "category", 0, "Only list products of this category id")
	flags.StringVarP(&query, "search", "s", "", "Only list products whose name or store matches")
	flags.BoolVar(&refresh, "refresh", false, "Ignore cached listings")
	return cmd
}

func (c *cli) categoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories, err := c.app.catalog.Categories(cmd.Context())
			if err != nil {
				return err
			}
			renderCategories(c.stdout, categories)
			return nil
		},
	}
}

func (c *cli) favoritesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage favorite products",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorite products",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			products, err := c.app.favorites.All()
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Fprintln(c.stdout, "No favorites yet")
				return nil
			}
			renderProducts(c.stdout, products, func(int64) bool { return true })
			return nil
		},
	}, &cobra.Command{
		Use:   "toggle PRODUCT_ID",
		Short: "Add a product to the favorites, or remove it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			products, err := c.app.catalog.Products(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range products {
				if p.ID == nil || *p.ID != id {
					continue
				}
				favorite, err := c.app.favorites.Toggle(p)
				if err != nil {
					return err
				}
				if favorite {
					fmt.Fprintf(c.stdout, "Added %s to favorites\n", p.Name)
				} else {
					fmt.Fprintf(c.stdout, "Removed %s from favorites\n", p.Name)
				}
				return nil
			}
			return fmt.Errorf("product %d not found", id)
		},
	})
	return cmd
}
