package catalog

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sandeepkv93/catalog-console/internal/domain"
	"github.com/sandeepkv93/catalog-console/internal/observability"
	"github.com/sandeepkv93/catalog-console/internal/validation"
)

//go:generate mockgen -destination=gomock/mock_product_service.go -package=gomock . ProductService

var ErrInvalidForm = errors.New("form has invalid fields")

const (
	noticeCreateFailed = "Unable to add the product."
	noticeDeleteFailed = "Unable to delete the product."
	noticeCreated      = "Product added."
	noticeDeleted      = "Product deleted."
)

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, name, price, image string) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type FormValidator interface {
	Validate(ctx context.Context, field, value string) (validation.Result, error)
	ValidateForm(ctx context.Context, values map[string]string) validation.FormResult
	Fields() []validation.Field
}

// Controller drives one list view and one form view. Every render is a full
// rebuild from a fresh List call.
type Controller struct {
	products  ProductService
	list      ListView
	form      FormView
	validator FormValidator
	fields    []string
	logger    *slog.Logger
}

func NewController(products ProductService, list ListView, form FormView, validator FormValidator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	var fields []string
	for _, f := range validator.Fields() {
		fields = append(fields, f.Name)
	}
	return &Controller{
		products:  products,
		list:      list,
		form:      form,
		validator: validator,
		fields:    fields,
		logger:    logger,
	}
}

// Render fetches the list and rebuilds the view. A failed fetch shows the
// error banner and is also returned.
func (c *Controller) Render(ctx context.Context) error {
	ctx, span := observability.Tracer().Start(ctx, "catalog.render")
	defer span.End()

	products, err := c.products.List(ctx)
	c.list.Clear()
	if err != nil {
		c.logger.ErrorContext(ctx, "product list render failed", "error", err)
		c.list.ShowBanner(ErrorBanner)
		observability.RecordRender(ctx, "error", 0)
		span.RecordError(err)
		return err
	}
	if len(products) == 0 {
		c.list.ShowBanner(EmptyBanner)
		observability.RecordRender(ctx, "empty", 0)
		return nil
	}
	for _, p := range products {
		c.list.AppendCard(NewCard(p))
	}
	span.SetAttributes(attribute.Int("catalog.cards", len(products)))
	observability.RecordRender(ctx, "cards", len(products))
	return nil
}

// Submit validates every field in order and, when all pass, creates the
// product, re-renders once and resets the form. An invalid form focuses the
// first invalid field and returns ErrInvalidForm without calling the service.
func (c *Controller) Submit(ctx context.Context) (domain.Product, error) {
	values := c.form.Values()
	result := c.validator.ValidateForm(ctx, values)
	for _, r := range result.Results {
		if !r.Stale {
			c.form.SetFieldMessage(r.Field, r.Message)
		}
	}
	if !result.Valid() {
		c.form.Focus(result.FirstInvalid)
		return domain.Product{}, ErrInvalidForm
	}

	created, err := c.products.Create(ctx,
		values[validation.FieldName],
		values[validation.FieldPrice],
		values[validation.FieldImage],
	)
	if err != nil {
		c.logger.ErrorContext(ctx, "product create failed", "error", err)
		c.list.ShowNotice(Notice{Level: NoticeError, Text: noticeCreateFailed})
		return domain.Product{}, err
	}

	_ = c.Render(ctx)
	c.form.Reset()
	c.list.ShowNotice(Notice{Level: NoticeInfo, Text: noticeCreated})
	return created, nil
}

// Click deletes the product behind the nearest marked element. It reports
// whether the click hit a delete affordance at all.
func (c *Controller) Click(ctx context.Context, target Element) (bool, error) {
	_, id, ok := Closest(target, RemoveAttr)
	if !ok {
		return false, nil
	}
	return true, c.Delete(ctx, id)
}

func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.products.Delete(ctx, id); err != nil {
		c.logger.ErrorContext(ctx, "product delete failed", "product_id", id, "error", err)
		c.list.ShowNotice(Notice{Level: NoticeError, Text: noticeDeleteFailed})
		return err
	}
	c.logger.InfoContext(ctx, "product deleted", "product_id", id)
	_ = c.Render(ctx)
	c.list.ShowNotice(Notice{Level: NoticeInfo, Text: noticeDeleted})
	return nil
}

// Blur validates one field and updates its message. Results overtaken by a
// newer validation of the same field are dropped.
func (c *Controller) Blur(ctx context.Context, field string) (validation.Result, error) {
	res, err := c.validator.Validate(ctx, field, c.form.Values()[field])
	if err != nil {
		return validation.Result{}, err
	}
	if res.Stale {
		return res, nil
	}
	c.form.SetFieldMessage(field, res.Message)
	return res, nil
}

// Clear resets the form and every field message.
func (c *Controller) Clear() {
	c.form.Reset()
	for _, f := range c.fields {
		c.form.SetFieldMessage(f, "")
	}
}
