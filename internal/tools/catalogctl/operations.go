package catalogctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sandeepkv93/catalog-console/internal/catalog"
	"github.com/sandeepkv93/catalog-console/internal/validation"
)

func listProducts(ctx context.Context, products catalog.ProductService, logger *slog.Logger) ([]string, error) {
	view := newConsoleView(nil)
	err := catalog.NewController(products, view, view, nil, logger).Render(ctx)
	return view.lines(), err
}

// addProduct runs the same validate-then-submit pipeline as the page form.
func addProduct(ctx context.Context, products catalog.ProductService, validator catalog.FormValidator, logger *slog.Logger, values map[string]string) ([]string, error) {
	view := newConsoleView(values)
	ctrl := catalog.NewController(products, view, view, validator, logger)
	created, err := ctrl.Submit(ctx)
	if errors.Is(err, catalog.ErrInvalidForm) {
		details := make([]string, 0, len(view.messages))
		for _, f := range []string{validation.FieldName, validation.FieldPrice, validation.FieldImage} {
			if msg := view.messages[f]; msg != "" {
				details = append(details, f+": "+msg)
			}
		}
		return details, err
	}
	if err != nil {
		return view.lines(), err
	}
	details := []string{fmt.Sprintf("created id=%s name=%s price=%s", created.ID, created.Name, created.PriceText())}
	return append(details, view.lines()...), nil
}

func deleteProduct(ctx context.Context, products catalog.ProductService, logger *slog.Logger, id string) ([]string, error) {
	view := newConsoleView(nil)
	err := catalog.NewController(products, view, view, nil, logger).Delete(ctx, id)
	return view.lines(), err
}

var ErrInvalidValue = errors.New("value is invalid")

func validateValue(ctx context.Context, validator catalog.FormValidator, field, value string) ([]string, error) {
	res, err := validator.Validate(ctx, field, value)
	if err != nil {
		return nil, err
	}
	if res.Invalid() {
		return []string{field + ": " + res.Message}, fmt.Errorf("%s: %w", field, ErrInvalidValue)
	}
	return []string{field + ": valid"}, nil
}
