package prompt

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/vitormoschetta/go-chatproxy/internal/config"
)

// Contents monta a conversa enviada ao modelo.
//
// inline: um único turno "preâmbulo + User: mensagem".
// primed: preâmbulo, confirmação do modelo e a mensagem do usuário em turnos separados.
//
// A mensagem do usuário entra literalmente, sem escape.
func (b Business) Contents(style, message string) ([]*genai.Content, error) {
	switch style {
	case config.PromptStyleInline:
		return []*genai.Content{
			genai.NewContentFromText(b.Preamble()+"\n\nUser: "+message, genai.RoleUser),
		}, nil
	case config.PromptStylePrimed:
		return []*genai.Content{
			genai.NewContentFromText(b.Preamble(), genai.RoleUser),
			genai.NewContentFromText(b.Acknowledgement(), genai.RoleModel),
			genai.NewContentFromText(message, genai.RoleUser),
		}, nil
	default:
		return nil, fmt.Errorf("unknown prompt style %q", style)
	}
}
