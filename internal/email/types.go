package email

// Message представляет структуру email сообщения
type Message struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData представляет данные для шаблонов писем
type TemplateData map[string]interface{}

const (
	TemplateVerification = "verification"
	TemplateReset        = "reset"
)
