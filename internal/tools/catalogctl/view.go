package catalogctl

import (
	"fmt"
	"maps"

	"github.com/sandeepkv93/catalog-console/internal/catalog"
)

// consoleView collects controller output for one-shot commands.
type consoleView struct {
	values   map[string]string
	cards    []catalog.Card
	banner   *catalog.Banner
	notices  []catalog.Notice
	messages map[string]string
	focused  string
}

func newConsoleView(values map[string]string) *consoleView {
	return &consoleView{values: maps.Clone(values), messages: map[string]string{}}
}

func (v *consoleView) Clear() {
	v.cards = nil
	v.banner = nil
}

func (v *consoleView) AppendCard(card catalog.Card) { v.cards = append(v.cards, card) }

func (v *consoleView) ShowBanner(banner catalog.Banner) { v.banner = &banner }

func (v *consoleView) ShowNotice(notice catalog.Notice) { v.notices = append(v.notices, notice) }

func (v *consoleView) Values() map[string]string { return maps.Clone(v.values) }

func (v *consoleView) SetFieldMessage(field, message string) { v.messages[field] = message }

func (v *consoleView) Focus(field string) { v.focused = field }

func (v *consoleView) Reset() { clear(v.values) }

func (v *consoleView) lines() []string {
	out := make([]string, 0, len(v.cards)+len(v.notices)+1)
	for _, n := range v.notices {
		out = append(out, n.Text)
	}
	if v.banner != nil {
		out = append(out, v.banner.Message)
	}
	for _, c := range v.cards {
		out = append(out, cardLine(c))
	}
	return out
}

func cardLine(c catalog.Card) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s", c.ID, c.Name, c.PriceText, c.Image)
}
