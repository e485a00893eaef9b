package catalog

import (
	"github.com/sandeepkv93/catalog-console/internal/domain"
)

// RemoveAttr marks the element that carries a product id for deletion.
const RemoveAttr = "data-remove"

// Card is the rendered unit for one product.
type Card struct {
	ID        string
	Name      string
	Image     string
	PriceText string
}

func NewCard(p domain.Product) Card {
	return Card{
		ID:        p.ID,
		Name:      p.Name,
		Image:     p.Image,
		PriceText: p.PriceText(),
	}
}

type BannerKind string

const (
	BannerEmpty BannerKind = "empty"
	BannerError BannerKind = "error"
)

// Banner replaces the cards when there is nothing to show.
type Banner struct {
	Kind     BannerKind
	Message  string
	Image    string
	ImageAlt string
}

var (
	EmptyBanner = Banner{
		Kind:     BannerEmpty,
		Message:  "No products available.",
		Image:    "/assets/images/no-products.svg",
		ImageAlt: "No products",
	}
	ErrorBanner = Banner{
		Kind:     BannerError,
		Message:  "Unable to load the product list.",
		Image:    "/assets/images/no-connection.svg",
		ImageAlt: "No connection",
	}
)

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a transient status line that never blocks the user.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// ListView is the product list container. Clear removes cards and banners
// only; surrounding static content stays.
type ListView interface {
	Clear()
	AppendCard(card Card)
	ShowBanner(banner Banner)
	ShowNotice(notice Notice)
}

// FormView is the product form. SetFieldMessage with an empty message
// clears the message and the invalid marker.
type FormView interface {
	Values() map[string]string
	SetFieldMessage(field, message string)
	Focus(field string)
	Reset()
}

// Element is a node of the view tree. Parent returns nil at the root.
type Element interface {
	Attr(name string) (string, bool)
	Parent() Element
}

// Closest returns el or its nearest ancestor carrying attr.
func Closest(el Element, attr string) (Element, string, bool) {
	for el != nil {
		if v, ok := el.Attr(attr); ok {
			return el, v, true
		}
		el = el.Parent()
	}
	return nil, "", false
}
