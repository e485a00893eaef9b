package handler

import (
	"github.com/sandeepkv93/catalog-console/internal/catalog"
	"github.com/sandeepkv93/catalog-console/internal/validation"
)

type FieldState struct {
	Name      string
	Label     string
	InputType string
	Value     string
	Message   string
	MinLength int
	MaxLength int
	Min       string
	Focused   bool
}

func (f FieldState) Invalid() bool {
	return f.Message != ""
}

// Page is the view model of one rendered catalog page. It serves as both the
// list view and the form view of a per-request controller.
type Page struct {
	Cards     []catalog.Card
	Banner    *catalog.Banner
	Notices   []catalog.Notice
	Fields    []FieldState
	CSRFToken string
}

var fieldLabels = map[string]string{
	validation.FieldName:  "Name",
	validation.FieldPrice: "Price",
	validation.FieldImage: "Image URL",
}

func newPage(fields []validation.Field, csrfToken string) *Page {
	p := &Page{CSRFToken: csrfToken}
	for _, f := range fields {
		st := FieldState{
			Name:      f.Name,
			Label:     fieldLabels[f.Name],
			InputType: string(f.Type),
			MinLength: f.MinLength,
			MaxLength: f.MaxLength,
		}
		if f.Min.Valid {
			st.Min = f.Min.Decimal.String()
		}
		p.Fields = append(p.Fields, st)
	}
	return p
}

func (p *Page) field(name string) *FieldState {
	for i := range p.Fields {
		if p.Fields[i].Name == name {
			return &p.Fields[i]
		}
	}
	return nil
}

func (p *Page) setValues(values map[string]string) {
	for name, v := range values {
		if f := p.field(name); f != nil {
			f.Value = v
		}
	}
}

func (p *Page) Clear() {
	p.Cards = nil
	p.Banner = nil
}

func (p *Page) AppendCard(card catalog.Card) {
	p.Cards = append(p.Cards, card)
}

func (p *Page) ShowBanner(banner catalog.Banner) {
	b := banner
	p.Banner = &b
}

func (p *Page) ShowNotice(notice catalog.Notice) {
	p.Notices = append(p.Notices, notice)
}

func (p *Page) Values() map[string]string {
	out := make(map[string]string, len(p.Fields))
	for _, f := range p.Fields {
		out[f.Name] = f.Value
	}
	return out
}

func (p *Page) SetFieldMessage(field, message string) {
	if f := p.field(field); f != nil {
		f.Message = message
	}
}

func (p *Page) Focus(field string) {
	for i := range p.Fields {
		p.Fields[i].Focused = p.Fields[i].Name == field
	}
}

func (p *Page) Reset() {
	for i := range p.Fields {
		p.Fields[i].Value = ""
		p.Fields[i].Focused = false
	}
}
