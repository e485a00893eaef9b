package tui

import (
	"maps"

	"github.com/sandeepkv93/catalog-console/internal/catalog"
)

// snapshot records what one controller action did to the views. Actions run
// off the update loop; their snapshot is applied when the result message
// arrives, so the last action to finish wins the visible state.
type snapshot struct {
	values      map[string]string
	listTouched bool
	cards       []catalog.Card
	banner      *catalog.Banner
	notices     []catalog.Notice
	messages    map[string]string
	focus       string
	reset       bool
}

func newSnapshot(values map[string]string) *snapshot {
	return &snapshot{values: maps.Clone(values), messages: map[string]string{}}
}

func (s *snapshot) Clear() {
	s.listTouched = true
	s.cards = nil
	s.banner = nil
}

func (s *snapshot) AppendCard(card catalog.Card) {
	s.listTouched = true
	s.cards = append(s.cards, card)
}

func (s *snapshot) ShowBanner(banner catalog.Banner) {
	s.listTouched = true
	s.banner = &banner
}

func (s *snapshot) ShowNotice(notice catalog.Notice) {
	s.notices = append(s.notices, notice)
}

func (s *snapshot) Values() map[string]string {
	return maps.Clone(s.values)
}

func (s *snapshot) SetFieldMessage(field, message string) {
	s.messages[field] = message
}

func (s *snapshot) Focus(field string) {
	s.focus = field
}

func (s *snapshot) Reset() {
	s.reset = true
	clear(s.values)
}

// cardElement is a rendered card; its delete button is a child without
// attributes of its own.
type cardElement struct {
	id string
}

func (c cardElement) Attr(name string) (string, bool) {
	if name == catalog.RemoveAttr {
		return c.id, true
	}
	return "", false
}

func (c cardElement) Parent() catalog.Element { return nil }

type deleteButton struct {
	card cardElement
}

func (deleteButton) Attr(string) (string, bool) { return "", false }

func (b deleteButton) Parent() catalog.Element { return b.card }
