package catalogctl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/catalog-console/internal/catalog"
	"github.com/sandeepkv93/catalog-console/internal/domain"
	"github.com/sandeepkv93/catalog-console/internal/validation"
)

const (
	exportSheet       = "Products"
	importConcurrency = 4
)

var columnAliases = map[string]string{
	"name":      validation.FieldName,
	"title":     validation.FieldName,
	"price":     validation.FieldPrice,
	"image":     validation.FieldImage,
	"image url": validation.FieldImage,
	"url":       validation.FieldImage,
}

type sheetRow struct {
	number int
	values map[string]string
}

// readWorkbook returns the data rows of the first sheet, or of sheet when
// given. A header row is detected when the second cell of the first row is
// not a number; without one the columns are name, price, image.
func readWorkbook(path, sheet string) ([]sheetRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := map[string]int{validation.FieldName: 0, validation.FieldPrice: 1, validation.FieldImage: 2}
	start := 0
	if isHeader(rows[0]) {
		columns = map[string]int{}
		for i, cell := range rows[0] {
			if field, ok := columnAliases[strings.ToLower(strings.TrimSpace(cell))]; ok {
				if _, seen := columns[field]; !seen {
					columns[field] = i
				}
			}
		}
		start = 1
	}

	out := make([]sheetRow, 0, len(rows)-start)
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		values := make(map[string]string, 3)
		for _, field := range []string{validation.FieldName, validation.FieldPrice, validation.FieldImage} {
			if idx, ok := columns[field]; ok && idx < len(row) {
				values[field] = row[idx]
			} else {
				values[field] = ""
			}
		}
		out = append(out, sheetRow{number: i + 1, values: values})
	}
	return out, nil
}

func isHeader(row []string) bool {
	if len(row) < 2 {
		return true
	}
	_, err := decimal.NewFromString(strings.TrimSpace(row[1]))
	return err != nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// importRows validates every row concurrently, then creates the valid ones
// in sheet order. Each row validates under its own scope so rows never make
// each other's results stale.
func importRows(ctx context.Context, rows []sheetRow, products catalog.ProductService, validator catalog.FormValidator, logger *slog.Logger) ([]string, error) {
	results := make([]validation.FormResult, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)
	for i, row := range rows {
		g.Go(func() error {
			scoped := validation.WithScope(gctx, fmt.Sprintf("import:%d", row.number))
			results[i] = validator.ValidateForm(scoped, row.values)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	details := make([]string, 0, len(rows)+1)
	var created, invalid, failed int
	for i, row := range rows {
		res := results[i]
		if !res.Valid() {
			invalid++
			details = append(details, fmt.Sprintf("row %d: invalid %s: %s", row.number, res.FirstInvalid, res.Message(res.FirstInvalid)))
			continue
		}
		p, err := products.Create(ctx, row.values[validation.FieldName], row.values[validation.FieldPrice], row.values[validation.FieldImage])
		if err != nil {
			failed++
			logger.ErrorContext(ctx, "import row create failed", "row", row.number, "error", err)
			details = append(details, fmt.Sprintf("row %d: create failed: %v", row.number, err))
			continue
		}
		created++
		details = append(details, fmt.Sprintf("row %d: created id=%s", row.number, p.ID))
	}
	details = append(details, fmt.Sprintf("created=%d invalid=%d failed=%d", created, invalid, failed))
	if invalid+failed > 0 {
		return details, fmt.Errorf("%d of %d rows not imported", invalid+failed, len(rows))
	}
	return details, nil
}

// writeWorkbook saves products as one sheet with a header row. Prices are
// numeric cells formatted with two decimals.
func writeWorkbook(path string, products []domain.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &[]any{"id", "name", "price", "image"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	priceFormat := "0.00"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &priceFormat})
	if err != nil {
		return fmt.Errorf("price style: %w", err)
	}
	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &[]any{p.ID, p.Name, p.Price.InexactFloat64(), p.Image}); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if len(products) > 0 {
		last := fmt.Sprintf("C%d", len(products)+1)
		if err := f.SetCellStyle(exportSheet, "C2", last, style); err != nil {
			return fmt.Errorf("style prices: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func exportProducts(ctx context.Context, products catalog.ProductService, path string) ([]string, error) {
	list, err := products.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeWorkbook(path, list); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("exported %d products to %s", len(list), path)}, nil
}
