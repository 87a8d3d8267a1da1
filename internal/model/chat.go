package model

// ChatRequest representa a requisição para o endpoint de chat
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatResponse representa a resposta do endpoint de chat.
// Response é preenchido em caso de sucesso ou fallback; Error apenas para erros do cliente.
type ChatResponse struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}
