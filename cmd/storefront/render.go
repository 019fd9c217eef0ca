package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pomerium/storefront/internal/catalog"
)

const (
	colorAccent = lipgloss.Color("#4ade80")
	colorMuted  = lipgloss.Color("245")
	colorSale   = lipgloss.Color("#D4A017")
)

func newTable(w io.Writer, headers ...string) *table.Table {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.NewStyle().Foreground(colorMuted)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

func renderProducts(w io.Writer, products []catalog.Product, isFavorite func(int64) bool) {
	sale := lipgloss.NewRenderer(w).NewStyle().Foreground(colorSale)
	t := newTable(w, "ID", "NAME", "STORE", "PRICE", "")
	for _, p := range products {
		id, favorite := "-", ""
		if p.ID != nil {
			id = strconv.FormatInt(*p.ID, 10)
			if isFavorite(*p.ID) {
				favorite = "★"
			}
		}
		price := fmt.Sprintf("%.2f", p.Price)
		if p.Discount > 0 {
			price = sale.Render(fmt.Sprintf("%.2f (-%d%%)", p.DiscountedPrice(), int(p.Discount)))
		}
		t.Row(id, p.Name, p.Store, price, favorite)
	}
	fmt.Fprintln(w, t.Render())
}

func renderCategories(w io.Writer, categories []catalog.Category) {
	t := newTable(w, "ID", "NAME")
	for _, c := range categories {
		t.Row(strconv.FormatInt(c.ID, 10), c.Name)
	}
	fmt.Fprintln(w, t.Render())
}

func renderFields(w io.Writer, rows [][2]string) {
	r := lipgloss.NewRenderer(w)
	label := r.NewStyle().Foreground(colorMuted).Width(14)
	for _, row := range rows {
		fmt.Fprintln(w, label.Render(row[0]+":")+row[1])
	}
}
