package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	cataloggomock "github.com/sandeepkv93/catalog-console/internal/catalog/gomock"
	"github.com/sandeepkv93/catalog-console/internal/client"
	"github.com/sandeepkv93/catalog-console/internal/domain"
	"github.com/sandeepkv93/catalog-console/internal/validation"
)

type fakeList struct {
	cards   []Card
	banners []Banner
	notices []Notice
	clears  int
}

func (l *fakeList) Clear() {
	l.clears++
	l.cards = nil
	l.banners = nil
}
func (l *fakeList) AppendCard(card Card)     { l.cards = append(l.cards, card) }
func (l *fakeList) ShowBanner(banner Banner) { l.banners = append(l.banners, banner) }
func (l *fakeList) ShowNotice(notice Notice) { l.notices = append(l.notices, notice) }

type fakeForm struct {
	values   map[string]string
	messages map[string]string
	focused  string
	resets   int
}

func newFakeForm(values map[string]string) *fakeForm {
	return &fakeForm{values: values, messages: map[string]string{}}
}

func (f *fakeForm) Values() map[string]string { return f.values }
func (f *fakeForm) SetFieldMessage(field, message string) {
	f.messages[field] = message
}
func (f *fakeForm) Focus(field string) { f.focused = field }
func (f *fakeForm) Reset() {
	f.resets++
	f.values = map[string]string{}
}

type acceptProber struct{}

func (acceptProber) Probe(context.Context, string) error { return nil }

type node struct {
	attrs  map[string]string
	parent *node
}

func (n *node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *node) Parent() Element {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(t *testing.T, form *fakeForm) (*Controller, *cataloggomock.MockProductService, *fakeList) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := cataloggomock.NewMockProductService(ctrl)
	list := &fakeList{}
	if form == nil {
		form = newFakeForm(map[string]string{})
	}
	v := validation.New(acceptProber{}, quietLogger())
	return NewController(svc, list, form, v, quietLogger()), svc, list
}

func product(id, name, price, image string) domain.Product {
	return domain.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Image: image}
}

func TestRenderCardsInServerOrder(t *testing.T) {
	c, svc, list := newTestController(t, nil)
	svc.EXPECT().List(gomock.Any()).Return([]domain.Product{
		product("b", "Zeta", "19.99", "https://x.test/z.png"),
		product("a", "Alpha", "5", "https://x.test/a.png"),
	}, nil)

	if err := c.Render(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(list.cards) != 2 || len(list.banners) != 0 {
		t.Fatalf("unexpected view: %+v", list)
	}
	if list.cards[0].ID != "b" || list.cards[1].ID != "a" {
		t.Fatalf("cards out of order: %+v", list.cards)
	}
	if list.cards[0].PriceText != "$ 19.99" || list.cards[1].PriceText != "$ 5.00" {
		t.Fatalf("unexpected price text: %+v", list.cards)
	}
}

func TestRenderEmptyShowsBanner(t *testing.T) {
	c, svc, list := newTestController(t, nil)
	svc.EXPECT().List(gomock.Any()).Return([]domain.Product{}, nil)

	if err := c.Render(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(list.cards) != 0 || len(list.banners) != 1 || list.banners[0] != EmptyBanner {
		t.Fatalf("expected empty banner only, got %+v", list)
	}
}

func TestRenderFailureReplacesCardsWithErrorBanner(t *testing.T) {
	c, svc, list := newTestController(t, nil)
	list.cards = []Card{{ID: "stale"}}
	upstream := &client.HTTPStatusError{Op: client.OpList, Code: 500, Status: "500 Internal Server Error"}
	svc.EXPECT().List(gomock.Any()).Return(nil, upstream)

	err := c.Render(context.Background())
	if !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if len(list.cards) != 0 || len(list.banners) != 1 || list.banners[0] != ErrorBanner {
		t.Fatalf("expected error banner only, got %+v", list)
	}
}

func TestSubmitCreatesRendersOnceAndResets(t *testing.T) {
	form := newFakeForm(map[string]string{
		validation.FieldName:  "Chair",
		validation.FieldPrice: "19.99",
		validation.FieldImage: "https://x.test/a.png",
	})
	c, svc, list := newTestController(t, form)
	created := product("7", "Chair", "19.99", "https://x.test/a.png")
	gomock.InOrder(
		svc.EXPECT().Create(gomock.Any(), "Chair", "19.99", "https://x.test/a.png").Return(created, nil).Times(1),
		svc.EXPECT().List(gomock.Any()).Return([]domain.Product{created}, nil).Times(1),
	)

	got, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.ID != "7" {
		t.Fatalf("unexpected created product: %+v", got)
	}
	if form.resets != 1 {
		t.Fatalf("expected one form reset, got %d", form.resets)
	}
	if len(list.cards) != 1 {
		t.Fatalf("expected one card, got %+v", list.cards)
	}
	for field, msg := range form.messages {
		if msg != "" {
			t.Fatalf("expected no message for %s, got %q", field, msg)
		}
	}
}

func TestSubmitInvalidFormSkipsCreate(t *testing.T) {
	form := newFakeForm(map[string]string{
		validation.FieldName:  "Chair",
		validation.FieldPrice: "0.5",
		validation.FieldImage: "notes.txt",
	})
	c, _, _ := newTestController(t, form)

	_, err := c.Submit(context.Background())
	if !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm, got %v", err)
	}
	if form.focused != validation.FieldPrice {
		t.Fatalf("expected price focused, got %q", form.focused)
	}
	if form.messages[validation.FieldPrice] != "The minimum price is 1." {
		t.Fatalf("unexpected price message %q", form.messages[validation.FieldPrice])
	}
	if form.messages[validation.FieldImage] != "Please enter a valid image URL." {
		t.Fatalf("unexpected image message %q", form.messages[validation.FieldImage])
	}
	if form.resets != 0 {
		t.Fatal("form must not reset on invalid submit")
	}
}

func TestSubmitCreateFailureShowsNotice(t *testing.T) {
	form := newFakeForm(map[string]string{
		validation.FieldName:  "Chair",
		validation.FieldPrice: "19.99",
		validation.FieldImage: "https://x.test/a.png",
	})
	c, svc, list := newTestController(t, form)
	svc.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.Product{}, &client.TransportError{Op: client.OpCreate, Err: io.ErrUnexpectedEOF})

	_, err := c.Submit(context.Background())
	var transportErr *client.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(list.notices) != 1 || list.notices[0].Level != NoticeError {
		t.Fatalf("expected error notice, got %+v", list.notices)
	}
	if form.resets != 0 || list.clears != 0 {
		t.Fatalf("expected no reset and no render, resets=%d clears=%d", form.resets, list.clears)
	}
}

func TestClickDeletesNearestMarkedAncestor(t *testing.T) {
	c, svc, list := newTestController(t, nil)
	button := &node{attrs: map[string]string{RemoveAttr: "42"}}
	icon := &node{attrs: map[string]string{"class": "icon"}, parent: button}
	gomock.InOrder(
		svc.EXPECT().Delete(gomock.Any(), "42").Return(nil).Times(1),
		svc.EXPECT().List(gomock.Any()).Return([]domain.Product{}, nil).Times(1),
	)

	handled, err := c.Click(context.Background(), icon)
	if err != nil || !handled {
		t.Fatalf("expected handled click, got handled=%v err=%v", handled, err)
	}
	if len(list.banners) != 1 || list.banners[0] != EmptyBanner {
		t.Fatalf("expected re-render to empty banner, got %+v", list)
	}
}

func TestClickWithoutMarkerIsIgnored(t *testing.T) {
	c, _, list := newTestController(t, nil)
	root := &node{attrs: map[string]string{}}
	leaf := &node{attrs: map[string]string{"class": "card"}, parent: root}

	handled, err := c.Click(context.Background(), leaf)
	if err != nil || handled {
		t.Fatalf("expected ignored click, got handled=%v err=%v", handled, err)
	}
	if list.clears != 0 {
		t.Fatal("ignored click must not render")
	}
}

func TestDeleteFailureShowsNoticeWithoutRender(t *testing.T) {
	c, svc, list := newTestController(t, nil)
	svc.EXPECT().Delete(gomock.Any(), "42").Return(&client.HTTPStatusError{Op: client.OpDelete, Code: 404, Status: "404 Not Found"})

	if err := c.Delete(context.Background(), "42"); client.StatusCode(err) != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
	if list.clears != 0 {
		t.Fatal("failed delete must not render")
	}
	if len(list.notices) != 1 || list.notices[0].Text != noticeDeleteFailed {
		t.Fatalf("unexpected notices %+v", list.notices)
	}
}

type staleValidator struct{}

func (staleValidator) Validate(_ context.Context, field, _ string) (validation.Result, error) {
	return validation.Result{Field: field, Message: "old", Stale: true}, nil
}

func (staleValidator) ValidateForm(context.Context, map[string]string) validation.FormResult {
	return validation.FormResult{}
}

func (staleValidator) Fields() []validation.Field { return validation.DefaultFields() }

func TestBlurDropsStaleResult(t *testing.T) {
	form := newFakeForm(map[string]string{validation.FieldImage: "https://x.test/a.png"})
	c := NewController(nil, &fakeList{}, form, staleValidator{}, quietLogger())

	res, err := c.Blur(context.Background(), validation.FieldImage)
	if err != nil {
		t.Fatalf("blur: %v", err)
	}
	if !res.Stale {
		t.Fatal("expected stale result")
	}
	if _, ok := form.messages[validation.FieldImage]; ok {
		t.Fatal("stale result must not touch the view")
	}
}

func TestBlurShowsAndClearsMessage(t *testing.T) {
	form := newFakeForm(map[string]string{validation.FieldName: "ab"})
	c, _, _ := newTestController(t, form)

	if _, err := c.Blur(context.Background(), validation.FieldName); err != nil {
		t.Fatalf("blur: %v", err)
	}
	if form.messages[validation.FieldName] != "The name must be between 3 and 100 characters." {
		t.Fatalf("unexpected message %q", form.messages[validation.FieldName])
	}

	form.values[validation.FieldName] = "abc"
	if _, err := c.Blur(context.Background(), validation.FieldName); err != nil {
		t.Fatalf("blur: %v", err)
	}
	if form.messages[validation.FieldName] != "" {
		t.Fatalf("expected cleared message, got %q", form.messages[validation.FieldName])
	}
}

func TestClearResetsFormAndMessages(t *testing.T) {
	form := newFakeForm(map[string]string{validation.FieldName: "ab"})
	form.messages[validation.FieldName] = "bad"
	c, _, _ := newTestController(t, form)

	c.Clear()
	if form.resets != 1 {
		t.Fatalf("expected reset, got %d", form.resets)
	}
	for _, f := range []string{validation.FieldName, validation.FieldPrice, validation.FieldImage} {
		if form.messages[f] != "" {
			t.Fatalf("expected %s message cleared", f)
		}
	}
}

func TestClearUsesValidatorFields(t *testing.T) {
	fields := append(validation.DefaultFields(), validation.Field{Name: "sku", Required: true})
	v := validation.New(nil, quietLogger(), validation.WithFields(fields))
	form := newFakeForm(map[string]string{})
	form.messages["sku"] = "This field is required."
	c := NewController(nil, &fakeList{}, form, v, quietLogger())

	c.Clear()
	if msg, ok := form.messages["sku"]; !ok || msg != "" {
		t.Fatalf("expected sku message cleared, got %q (set=%v)", msg, ok)
	}
}
