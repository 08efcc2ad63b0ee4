// Package intent classifies free-text customer messages with an ordered
// keyword table.
package intent

import "strings"

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	Greeting  Intent = "greeting"
	Pricing   Intent = "pricing"
	Countries Intent = "countries"
	Documents Intent = "documents"
	Location  Intent = "location"
	Contact   Intent = "contact"
	Stop      Intent = "stop"
	Image     Intent = "image"
	Gallery   Intent = "gallery"
	Personal  Intent = "personal"
	General   Intent = "general"
)

// Rule binds an intent to the keywords that select it.
type Rule struct {
	Intent   Intent   `mapstructure:"name"`
	Keywords []string `mapstructure:"keywords"`
}

// Table is evaluated in order; the first rule with a matching keyword wins.
type Table []Rule

// DefaultTable is the built-in keyword table.
var DefaultTable = Table{
	{Intent: Greeting, Keywords: []string{"oi", "olá", "bom dia", "boa tarde", "boa noite", "hey", "hello"}},
	{Intent: Pricing, Keywords: []string{"preço", "precos", "valor", "quanto custa", "custo", "cobra"}},
	{Intent: Countries, Keywords: []string{"portugal", "brasil", "eua", "usa", "canada", "canadá", "europa"}},
	{Intent: Documents, Keywords: []string{"documento", "papeis", "requisitos", "preciso", "necessário"}},
	{Intent: Location, Keywords: []string{"onde", "localização", "endereço", "mapa"}},
	{Intent: Contact, Keywords: []string{"telefone", "contato", "atendente", "falar", "humano"}},
	{Intent: Stop, Keywords: []string{"parar", "stop", "sair", "cancelar", "encerrar"}},
	{Intent: Image, Keywords: []string{"imagem", "logo"}},
	{Intent: Gallery, Keywords: []string{"galeria", "fotos", "imagens"}},
	{Intent: Personal, Keywords: []string{"criador", "quem te criou", "quem te fez", "fundador", "gilson"}},
}

// Classifier maps messages to intents. The zero value is not usable; build
// one with NewClassifier.
type Classifier struct {
	table Table
}

// NewClassifier returns a Classifier over table. Keywords are lower-cased
// once here; an empty table falls back to DefaultTable.
func NewClassifier(table Table) *Classifier {
	if len(table) == 0 {
		table = DefaultTable
	}

	normalized := make(Table, 0, len(table))
	for _, rule := range table {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		normalized = append(normalized, Rule{Intent: rule.Intent, Keywords: keywords})
	}
	return &Classifier{table: normalized}
}

// Classify returns the first intent whose keyword occurs in message, or
// General when none does.
func (c *Classifier) Classify(message string) Intent {
	lower := strings.ToLower(message)
	for _, rule := range c.table {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Intent
			}
		}
	}
	return General
}

// UsesMedia reports whether the intent is answered by the media/location
// responders instead of the AI orchestrator.
func (i Intent) UsesMedia() bool {
	switch i {
	case Image, Gallery, Location, Personal:
		return true
	default:
		return false
	}
}
