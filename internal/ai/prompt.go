package ai

import (
	"fmt"
	"strings"

	"github.com/travelboss/travelbot/internal/memory"
)

var visaLabels = map[string]string{
	memory.VisaWork:    "trabalho",
	memory.VisaTourism: "turismo",
	memory.VisaStudent: "estudante",
	memory.VisaHealth:  "saúde",
}

func profileAnnotations(p memory.Profile) []string {
	var out []string
	if len(p.InterestedCountries) > 0 {
		out = append(out, "Países de interesse: "+strings.Join(p.InterestedCountries, ", "))
	}
	if label, ok := visaLabels[p.VisaIntent]; ok {
		out = append(out, "Tipo de visto pretendido: "+label)
	}
	return out
}

func contextBlock(req Request) string {
	status := "inativo"
	if req.Session.Active {
		status = "ativo"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CONTEXTO: Usuário no estado %q, bot %s.", req.Session.State, status)
	for _, a := range req.Annotations {
		sb.WriteString("\n- ")
		sb.WriteString(a)
	}
	return sb.String()
}

// systemWithContext is the system text for chat-shaped providers.
func systemWithContext(req Request) string {
	return req.System + "\n\n" + contextBlock(req)
}

// singlePrompt renders the whole request as one prompt for completion-shaped
// providers.
func singlePrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString(req.System)
	sb.WriteString("\n\n")
	sb.WriteString(contextBlock(req))
	sb.WriteString("\n\nHISTÓRICO DA CONVERSA:\n")
	for _, turn := range req.History {
		speaker := "Cliente"
		if turn.Role == memory.RoleAssistant {
			speaker = "TravelBot"
		}
		sb.WriteString(speaker)
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("\nTravelBot:")
	return sb.String()
}
