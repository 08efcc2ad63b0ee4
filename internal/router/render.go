package router

import (
	"strings"
	"time"

	"github.com/travelboss/travelbot/internal/config"
)

// greetingFor returns the Portuguese greeting for the hour of t.
func greetingFor(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Bom dia"
	case h < 18:
		return "Boa tarde"
	default:
		return "Boa noite"
	}
}

// renderer fills business placeholders in reply templates.
type renderer struct {
	facts *strings.Replacer
}

func newRenderer(b config.BusinessConfig) renderer {
	return renderer{facts: strings.NewReplacer(
		"{name}", b.Name,
		"{address}", b.Address,
		"{hours}", b.Hours,
		"{phone}", b.Phone,
		"{email}", b.Email,
		"{site}", b.Site,
		"{maps_url}", b.MapsURL,
	)}
}

func (r renderer) render(tmpl string) string {
	return r.facts.Replace(tmpl)
}

func (r renderer) renderGreeting(tmpl, greeting string) string {
	return strings.ReplaceAll(r.facts.Replace(tmpl), "{greeting}", greeting)
}
