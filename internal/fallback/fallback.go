// Package fallback answers customer messages from fixed templates when the
// LLM backend is unavailable.
package fallback

import (
	"fmt"
	"strings"
)

// Facts holds the business data interpolated into the templates.
type Facts struct {
	Address    string
	Directions string
	Hours      string
	Phone      string
	Email      string
	MapsURL    string
}

// Responder maps messages to pre-rendered templates. It never fails and
// never touches the network.
type Responder struct {
	pricing   string
	location  string
	documents string
	basic     string
}

var (
	pricingKeywords   = []string{"preço", "valor", "custa"}
	locationKeywords  = []string{"onde", "localização", "endereço", "mapa"}
	documentsKeywords = []string{"documento", "papel", "requisito"}
)

// NewResponder renders every template once from facts.
func NewResponder(facts Facts) *Responder {
	return &Responder{
		pricing: fmt.Sprintf(`💰 PREÇOS DE VISTOS TRAVEL BOSS

🇵🇹 Portugal:
• Turismo: 700.000 KZ (normal) / 1.000.000 KZ (direto)
• Trabalho: 950.000 KZ a 1.850.000 KZ
• Estudante: 2.000.000 KZ
• Saúde: 800.000 KZ a 1.350.000 KZ

🇧🇷 Brasil: 1.300.000 KZ a 1.650.000 KZ
🇺🇸 EUA: 1.150.000 KZ a 2.150.000 KZ
🇨🇦 Canadá: 1.150.000 KZ a 1.850.000 KZ

📞 Para informações detalhadas: %s
⏰ Horário: %s`, facts.Phone, facts.Hours),

		location: fmt.Sprintf(`📍 NOSSA LOCALIZAÇÃO

🏢 Endereço:
%s

⏰ Horário:
%s

📞 Telefone:
%s

🗺 Google Maps:
%s

💡 %s`, facts.Address, facts.Hours, facts.Phone, facts.MapsURL, facts.Directions),

		documents: fmt.Sprintf(`📄 DOCUMENTOS NECESSÁRIOS

📋 Documentos básicos para visto:
• Passaporte válido (mínimo 6 meses)
• Fotos tipo passe recentes
• Extractos bancários
• Comprovativo de rendimentos
• Seguro de viagem

⚠ Importante:
Os documentos podem variar conforme o país e tipo de visto.

📞 Para lista completa específica:
%s

🤝 Oferecemos análise completa da documentação!`, facts.Phone),

		basic: fmt.Sprintf(`Sistema temporariamente em modo básico.

📞 Para atendimento completo:
%s

📧 Email:
%s

⏰ Horário de atendimento:
%s

💡 Para reativar funcionalidades avançadas: digite MENU`, facts.Phone, facts.Email, facts.Hours),
	}
}

// Respond returns the template selected by the keywords in message. Pricing
// is checked first, then location, then documents; anything else gets the
// basic-mode notice.
func (r *Responder) Respond(message string) string {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, pricingKeywords):
		return r.pricing
	case containsAny(lower, locationKeywords):
		return r.location
	case containsAny(lower, documentsKeywords):
		return r.documents
	default:
		return r.basic
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
