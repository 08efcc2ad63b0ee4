package router

import (
	"context"
	"fmt"
	"strings"
)

// handleAdmin runs body as an operator command and reports whether it was
// one.
func (r *Router) handleAdmin(ctx context.Context, userID, body string) bool {
	var reply string
	switch strings.ToLower(strings.TrimSpace(body)) {
	case "!stats", "!estatisticas":
		reply = r.statsReport()
	case "!health", "!status":
		reply = r.healthReport()
	case "!clear":
		r.deps.Sessions.Clear()
		r.deps.AI.ClearAll()
		r.log.InfoContext(ctx, "Sessions and conversation memory cleared by operator", "user_id", userID)
		reply = r.render.render(r.msgs.AdminCleared)
	case "!info", "!railway":
		reply = r.render.render(r.msgs.AdminInfo)
	default:
		return false
	}

	r.log.InfoContext(ctx, "Admin command executed", "user_id", userID, "command", body)
	if err := r.deps.Messenger.SendText(ctx, userID, reply); err != nil {
		r.log.ErrorContext(ctx, "Failed to send admin reply", "user_id", userID, "error", err)
	}
	return true
}

func (r *Router) statsReport() string {
	st := r.deps.Analytics.Snapshot()
	conv := r.deps.AI.Stats()

	var sb strings.Builder
	sb.WriteString("📊 ESTATÍSTICAS TRAVEL BOSS BOT\n\n")
	fmt.Fprintf(&sb, "🤖 IA: %s\n", strings.ToUpper(conv.Provider))
	fmt.Fprintf(&sb, "📨 Total mensagens: %d\n", st.TotalMessages)
	fmt.Fprintf(&sb, "👥 Usuários únicos: %d\n", st.UniqueUsers)
	fmt.Fprintf(&sb, "🧠 Respostas IA: %d\n", st.AIResponses)
	fmt.Fprintf(&sb, "📝 Respostas fallback: %d\n", st.FallbackResponses)
	fmt.Fprintf(&sb, "📷 Imagens: %d\n", st.ImageRequests)
	fmt.Fprintf(&sb, "🖼 Galerias: %d\n", st.GalleryRequests)
	fmt.Fprintf(&sb, "📍 Localizações: %d\n", st.LocationRequests)
	fmt.Fprintf(&sb, "👤 Pessoal: %d\n", st.PersonalRequests)
	fmt.Fprintf(&sb, "❌ Erros: %d\n", st.Errors)
	fmt.Fprintf(&sb, "✅ Taxa sucesso IA: %.1f%%\n", st.AISuccessRate)
	fmt.Fprintf(&sb, "💬 Conversas ativas: %d\n", conv.ActiveConversations)
	fmt.Fprintf(&sb, "⏱ Uptime: %d min\n", st.UptimeMinutes)
	fmt.Fprintf(&sb, "🔌 Conectado: %s", yesNo(r.deps.Connected()))
	return sb.String()
}

func (r *Router) healthReport() string {
	st := r.deps.Analytics.Snapshot()
	conv := r.deps.AI.Stats()

	status := "✅ Online"
	if !r.deps.Connected() {
		status = "❌ Desconectado"
	}

	var sb strings.Builder
	sb.WriteString("🏥 STATUS DO SISTEMA\n\n")
	fmt.Fprintf(&sb, "Bot: %s\n", status)
	fmt.Fprintf(&sb, "🤖 IA: %s\n", strings.ToUpper(conv.Provider))
	fmt.Fprintf(&sb, "👥 Sessões: %d (%d ativas)\n", r.deps.Sessions.Len(), r.deps.Sessions.ActiveCount())
	fmt.Fprintf(&sb, "🧠 Conversas: %d\n", conv.ActiveConversations)
	fmt.Fprintf(&sb, "⏱ Uptime: %d min", st.UptimeMinutes)
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}
