// Package reportertest builds the datasets and tables reporter tests share.
package reportertest

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/table"
	"github.com/de-tools/report-atlas/pkg/worksheet"
)

func Periods() []domain.Period {
	return []domain.Period{
		domain.MustPeriod("2024", "2024-01-01", "2024-12-31"),
		domain.MustPeriod("2023", "2023-01-01", "2023-12-31"),
	}
}

// Evaluator serves fixed results keyed by computation id and period name
type Evaluator map[string]map[string]worksheet.Result

func (e Evaluator) Evaluate(_ context.Context, id string, p domain.Period) (worksheet.Result, error) {
	r, ok := e[id][p.Name]
	if !ok {
		return nil, fmt.Errorf("no result for %s/%s", id, p.Name)
	}
	return r, nil
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func leaf(id, desc string, concept string, amount string) worksheet.Result {
	return &worksheet.Simple{Defn: worksheet.Definition{ID: id, Description: desc, Concept: concept}, Amount: money(amount)}
}

func Results() Evaluator {
	expenses := func(rent, wages, total string) worksheet.Result {
		return &worksheet.Breakdown{
			Defn:   worksheet.Definition{ID: "expenses", Description: "Expenses", Concept: "core:Expenses"},
			Amount: money(total),
			Items: []worksheet.Result{
				leaf("rent", "Rent", "core:Rent", rent),
				leaf("wages", "Wages", "core:Wages", wages),
			},
		}
	}
	profit := func(amount string) worksheet.Result {
		return &worksheet.Total{
			Defn:   worksheet.Definition{ID: "profit", Description: "Profit", Concept: "core:Profit"},
			Amount: money(amount),
		}
	}
	return Evaluator{
		"profit":   {"2024": profit("100"), "2023": profit("100")},
		"expenses": {"2024": expenses("-30", "-50", "-80"), "2023": expenses("-25", "-45", "-70")},
		"turnover": {"2024": leaf("turnover", "Turnover", "", "0.0001"), "2023": leaf("turnover", "Turnover", "", "12.5")},
	}
}

// ProfitDataset is one total with no items, so a single line and a break
func ProfitDataset(ctx context.Context) (*worksheet.Dataset, error) {
	return worksheet.NewSimpleSheet("pl", "Profit and loss", []string{"profit"}, Results()).Build(ctx, Periods())
}

// ExpensesDataset is an itemised breakdown followed by a single line
func ExpensesDataset(ctx context.Context) (*worksheet.Dataset, error) {
	return worksheet.NewSimpleSheet("detail", "Detailed expenses", []string{"expenses", "turnover"}, Results()).Build(ctx, Periods())
}

// FlowsDataset closes the expenses block with a supertotal
func FlowsDataset(ctx context.Context) (*worksheet.Dataset, error) {
	return worksheet.NewFlowsSheet("flows", "Flows", []worksheet.FlowEntry{
		{Type: worksheet.EntryHeading, Computation: "expenses"},
		{Type: worksheet.EntryItems, Computation: "expenses"},
		{Type: worksheet.EntrySuperTotal, Computation: "expenses"},
	}, Results()).Build(ctx, Periods())
}

func cell(id, concept, amount string, p domain.Period) table.Cell {
	return table.Cell{
		Concept: concept,
		Datum: domain.Datum{
			ID:      id,
			Kind:    domain.DatumMoney,
			Value:   money(amount),
			Context: (&domain.Context{Entity: "01234567"}).WithPeriod(p),
		},
	}
}

// FixedAssets is a two-level header over a grouped index and a total
func FixedAssets() *table.Table {
	ps := Periods()
	plant := table.NewIndex(table.Header{ID: "plant", Description: "Plant and machinery"}, &table.Row{Cells: []table.Cell{
		cell("plant", "core:Plant", "1200.50", ps[0]),
		cell("plant", "core:Plant", "-15", ps[1]),
	}})
	plant.Notes = "note:plant"
	vehicles := table.NewIndex(table.Header{ID: "vehicles", Description: "Vehicles"}, &table.Row{Cells: []table.Cell{
		cell("vehicles", "core:Vehicles", "0", ps[0]),
		{Datum: domain.Datum{ID: "vehicles-py", Kind: domain.DatumString, Value: "n/a"}},
	}})
	total := table.NewTotalIndex(table.Header{ID: "total", Description: "Total fixed assets"}, &table.Row{Cells: []table.Cell{
		cell("fixed", "core:FixedAssets", "1200.50", ps[0]),
		cell("fixed", "core:FixedAssets", "-15", ps[1]),
	}})
	return &table.Table{
		ID:          "fixed-assets",
		Description: "Fixed assets",
		Periods:     ps,
		Columns: []*table.Column{
			{Metadata: table.Header{ID: "cost", Description: "Cost"}, Children: []*table.Column{
				{Metadata: table.Header{ID: "cy", Description: "2024"}, Units: "GBP"},
				{Metadata: table.Header{ID: "py", Description: "2023"}, Units: "GBP"},
			}},
		},
		Indexes: []*table.Index{
			table.NewGroup(table.Header{ID: "assets", Description: "Assets"}, []*table.Index{plant, vehicles}),
			total,
		},
	}
}
