package config

import (
	"time"

	"github.com/spf13/viper"
)

// Task names known to the scheduler.
const (
	TaskRateWindowSweep       = "rate_window_sweep"
	TaskIdleSessionEviction   = "idle_session_eviction"
	TaskTranscriptMaintenance = "transcript_maintenance"
)

const (
	DefaultLogLevel = "info"

	DefaultAIProvider      = "gemini"
	DefaultAITimeout       = 15 * time.Second
	DefaultHistoryLimit    = 10
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = time.Minute
	DefaultAITemperature   = 0.7
	DefaultGeminiModel     = "gemini-1.5-flash"
	DefaultGeminiTopK      = 40
	DefaultGeminiTopP      = 0.95
	DefaultGeminiMaxToken  = 1024
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultOpenAIModel     = "gpt-3.5-turbo"
	DefaultAnthropicURL    = "https://api.anthropic.com/v1"
	DefaultAnthropicModel  = "claude-3-haiku-20240307"
	DefaultAnthropicVer    = "2023-06-01"
	DefaultChatMaxTokens   = 500

	DefaultRateMaxRequests    = 10
	DefaultRateWindow         = time.Minute
	DefaultRateSweepRetention = 5 * time.Minute

	DefaultIdleTimeout = 2 * time.Hour

	DefaultDatabasePath      = "travelbot.db"
	DefaultDatabaseRetention = 30 * 24 * time.Hour

	DefaultHTTPAddr = ":3000"

	DefaultGalleryDelay = 2 * time.Second
)

// DefaultInstruction is the persona and business text given to every
// provider.
const DefaultInstruction = `Você é o TravelBot da Travel Boss, uma agência de viagens especializada em vistos localizada em Luanda, Angola.

INFORMAÇÕES DA EMPRESA:
- Nome: Travel Boss
- Localização: Kikuxi Shopping, 2º Piso, Luanda
- Telefone: +244 922 254 236
- Email: geral@travelboss.gdmao.com
- Horário: Segunda a Sexta: 8h às 17h | Sábado: 8h às 13h

ESPECIALIDADES E PREÇOS (em Kwanza):
PORTUGAL:
- Visto Procura de Trabalho: 950.000 KZ (entrada normal)
- Visto Turismo: 700.000 KZ (normal) / 1.000.000 KZ (direto)
- Visto Estudante Ensino Superior: 2.000.000 KZ
- Visto Trabalho com Contrato Cliente: 950.000 KZ (normal) / 1.150.000 KZ (direto)
- Visto Trabalho com Nosso Contrato: 1.850.000 KZ (normal) / 2.050.000 KZ (direto)
- Visto Saúde com Nossa Guia: 1.350.000 KZ (normal) / 1.550.000 KZ (direto)
- Visto Saúde com Guia Cliente: 800.000 KZ (normal) / 1.100.000 KZ (direto)

OUTROS PAÍSES:
- Brasil: Turismo/Saúde 1.300.000 KZ, Trabalho 1.650.000 KZ
- EUA: Trabalho 1.150.000 KZ, Estudante 2.150.000 KZ
- Canadá: Turismo 1.150.000 KZ, Estudante/Trabalho 1.850.000 KZ
- União Europeia: Turismo 700.000 KZ, Estudante 1.650.000 KZ

PERSONALIDADE:
- Seja sempre educado, prestativo e profissional
- Use emojis apropriados para tornar a conversa amigável
- Responda em português angolano
- Seja direto mas acolhedor
- Só cumprimente quando o cliente mandar uma saudação
- Quando não souber algo específico, encaminhe para contato humano
- Sempre ofereça ajuda adicional

Responda de forma natural e conversacional, como um atendente experiente da agência.`

// DefaultMessages are the built-in reply texts.
var DefaultMessages = MessagesConfig{
	RateLimited:   "⚠ Você está enviando mensagens muito rapidamente. Aguarde alguns segundos e tente novamente.",
	InternalError: "❌ Erro interno. Nossa equipe foi notificada. Tente novamente em alguns minutos.",
	Stop: `🔴 Bot pausado com sucesso

Agora você pode conversar diretamente com nossa equipe:

📞 Telefone: {phone}
📧 Email: {email}
⏰ Horário: {hours}

💡 Para reativar o bot: digite OI, MENU ou INICIAR`,
	FirstGreeting: `🤖 TravelBot Inteligente Ativado!

{greeting}! Bem-vindo à {name}!

🌍✈️ Sou seu assistente virtual com inteligência artificial, pronto para ajudar com tudo sobre vistos e viagens!

💡 Você pode falar comigo de forma natural, como se fosse uma conversa.

📌 Exemplos do que posso fazer por você:
💶 Informar quanto custa um visto para Portugal
📑 Listar os documentos necessários para o pedido
🗓️ Explicar como funciona o agendamento
🏢 Mostrar a logo da nossa empresa
🖼️ Exibir a galeria de fotos

👉 Digite PARAR a qualquer momento para falar com nossa equipe humana.`,
	ReturningGreeting: `🤖 TravelBot reativado!

{greeting}! Que bom ter você de volta à {name}.

Como posso ajudar hoje? Pergunte sobre preços, documentos ou a nossa localização.

👉 Digite PARAR a qualquer momento para falar com nossa equipe humana.`,
	LogoSent:      "📷 Logo enviada! Deseja mais alguma coisa?",
	MediaFailed:   "❌ Problema temporário com imagens. Contate nossa equipe.",
	GalleryIntro:  "📸 Enviando galeria de fotos...",
	GallerySent:   "📸 Galeria enviada! Deseja mais alguma informação?",
	GalleryFailed: "❌ Galeria temporariamente indisponível. Entre em contato!",
	LocationIntro: `📍 NOSSA LOCALIZAÇÃO

🏢 Endereço:
{address}

🗺 Google Maps:
{maps_url}

💡 Enviando localização...`,
	LocationSent:   "📍 Localização enviada! Estamos no 2º piso do Kikuxi Shopping. Como posso ajudar mais?",
	LocationFailed: "❌ Use o link do Google Maps acima para encontrar nossa localização.",
	PersonalSent:   "👤 Fui criado pela equipa da {name}. Como posso ajudar mais?",
	AssetMissing:   "(Imagem temporariamente indisponível)",
	AdminCleared: `🧹 LIMPEZA

• Estados de usuários limpos
• Histórico de conversas limpo`,
	AdminInfo: `🚀 TRAVEL BOSS BOT

📊 Health: /health
📈 Status: /status
📉 Metrics: /metrics

🔧 Comandos Admin:
• !stats - Estatísticas completas
• !health - Status do sistema
• !clear - Limpar cache
• !info - Esta informação`,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", false)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_id", 0)

	v.SetDefault("ai.provider", DefaultAIProvider)
	v.SetDefault("ai.timeout", DefaultAITimeout)
	v.SetDefault("ai.history_limit", DefaultHistoryLimit)
	v.SetDefault("ai.temperature", DefaultAITemperature)
	v.SetDefault("ai.instruction", DefaultInstruction)
	v.SetDefault("ai.gemini.api_key", "")
	v.SetDefault("ai.gemini.base_url", "")
	v.SetDefault("ai.gemini.model", DefaultGeminiModel)
	v.SetDefault("ai.gemini.top_k", DefaultGeminiTopK)
	v.SetDefault("ai.gemini.top_p", DefaultGeminiTopP)
	v.SetDefault("ai.gemini.max_output_tokens", DefaultGeminiMaxToken)
	v.SetDefault("ai.openai.api_key", "")
	v.SetDefault("ai.openai.base_url", DefaultOpenAIBaseURL)
	v.SetDefault("ai.openai.model", DefaultOpenAIModel)
	v.SetDefault("ai.openai.max_tokens", DefaultChatMaxTokens)
	v.SetDefault("ai.anthropic.api_key", "")
	v.SetDefault("ai.anthropic.base_url", DefaultAnthropicURL)
	v.SetDefault("ai.anthropic.model", DefaultAnthropicModel)
	v.SetDefault("ai.anthropic.version", DefaultAnthropicVer)
	v.SetDefault("ai.anthropic.max_tokens", DefaultChatMaxTokens)
	v.SetDefault("ai.breaker.max_failures", DefaultBreakerFailures)
	v.SetDefault("ai.breaker.open_timeout", DefaultBreakerTimeout)

	v.SetDefault("business.name", "Travel Boss")
	v.SetDefault("business.address", "Avenida Fidel Castro, Kikuxi Shopping, 2º Piso")
	v.SetDefault("business.directions", "Estamos no 2º piso do Kikuxi Shopping, fácil acesso e estacionamento disponível!")
	v.SetDefault("business.hours", "Segunda a Sexta: 8h às 17h | Sábado: 8h às 13h")
	v.SetDefault("business.phone", "+244 922 254 236")
	v.SetDefault("business.email", "geral@travelboss.gdmao.com")
	v.SetDefault("business.site", "www.travelboss.gdmao.com")
	v.SetDefault("business.maps_url", "https://maps.google.com/?q=-8.976940,13.366880")
	v.SetDefault("business.timezone", "Africa/Luanda")

	v.SetDefault("location.latitude", -8.976940)
	v.SetDefault("location.longitude", 13.366880)
	v.SetDefault("location.label", "Travel Boss - Kikuxi Shopping")

	v.SetDefault("media.dir", "./images")
	v.SetDefault("media.logo", "logo.png")
	v.SetDefault("media.logo_caption", "Logo oficial da Travel Boss")
	v.SetDefault("media.gallery", []string{"photo1.jpg", "photo2.jpg", "photo3.jpg"})
	v.SetDefault("media.gallery_caption", "Travel Boss - Nosso espaço")
	v.SetDefault("media.gallery_delay", DefaultGalleryDelay)
	v.SetDefault("media.personal", "founder.jpg")
	v.SetDefault("media.personal_caption", "Travel Boss - A nossa equipa")

	v.SetDefault("rate_limit.max_requests", DefaultRateMaxRequests)
	v.SetDefault("rate_limit.window", DefaultRateWindow)
	v.SetDefault("rate_limit.sweep_retention", DefaultRateSweepRetention)

	v.SetDefault("session.idle_timeout", DefaultIdleTimeout)

	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("database.retention", DefaultDatabaseRetention)

	v.SetDefault("http.enabled", true)
	v.SetDefault("http.addr", DefaultHTTPAddr)

	for name, schedule := range map[string]string{
		TaskRateWindowSweep:       "*/5 * * * *",
		TaskIdleSessionEviction:   "*/30 * * * *",
		TaskTranscriptMaintenance: "0 3 * * *",
	} {
		v.SetDefault("scheduler.tasks."+name+".enabled", true)
		v.SetDefault("scheduler.tasks."+name+".schedule", schedule)
	}

	v.SetDefault("messages.rate_limited", DefaultMessages.RateLimited)
	v.SetDefault("messages.internal_error", DefaultMessages.InternalError)
	v.SetDefault("messages.stop", DefaultMessages.Stop)
	v.SetDefault("messages.first_greeting", DefaultMessages.FirstGreeting)
	v.SetDefault("messages.returning_greeting", DefaultMessages.ReturningGreeting)
	v.SetDefault("messages.logo_sent", DefaultMessages.LogoSent)
	v.SetDefault("messages.media_failed", DefaultMessages.MediaFailed)
	v.SetDefault("messages.gallery_intro", DefaultMessages.GalleryIntro)
	v.SetDefault("messages.gallery_sent", DefaultMessages.GallerySent)
	v.SetDefault("messages.gallery_failed", DefaultMessages.GalleryFailed)
	v.SetDefault("messages.location_intro", DefaultMessages.LocationIntro)
	v.SetDefault("messages.location_sent", DefaultMessages.LocationSent)
	v.SetDefault("messages.location_failed", DefaultMessages.LocationFailed)
	v.SetDefault("messages.personal_sent", DefaultMessages.PersonalSent)
	v.SetDefault("messages.asset_missing", DefaultMessages.AssetMissing)
	v.SetDefault("messages.admin_cleared", DefaultMessages.AdminCleared)
	v.SetDefault("messages.admin_info", DefaultMessages.AdminInfo)
}
