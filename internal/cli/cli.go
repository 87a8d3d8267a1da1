package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// maxLineBytes limita quanto de uma linha é guardado; o excedente é descartado
const maxLineBytes = 64 << 10

const errMessageTooLong = "Message is too long"

// Replier é o que o terminal precisa do assistente
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
	Fallback(err error) string
}

// Run lê uma pergunta por linha de in e escreve a resposta em out.
// Linhas em branco são ignoradas; "exit" ou "quit" encerram a sessão.
func Run(ctx context.Context, in io.Reader, out io.Writer, assistant Replier, maxLength int) error {
	reader := bufio.NewReader(in)

	prompt := func() { fmt.Fprint(out, "> ") }
	prompt()

	for {
		line, truncated, err := readLine(reader)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
		eof := err != nil
		if eof && line == "" && !truncated {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		message := strings.TrimSpace(line)
		switch {
		case truncated || (maxLength > 0 && utf8.RuneCountInString(message) > maxLength):
			fmt.Fprintln(out, errMessageTooLong)
		case message == "":
		case message == "exit" || message == "quit":
			return nil
		default:
			reply, err := assistant.Reply(ctx, message)
			if err != nil {
				log.Warn().Err(err).Msg("Falling back after reply error")
				reply = assistant.Fallback(err)
			}
			fmt.Fprintf(out, "%s\n\n", reply)
		}

		if eof {
			return nil
		}
		prompt()
	}
}

// readLine devolve a próxima linha sem o terminador. Linhas acima de
// maxLineBytes são consumidas até o fim e marcadas como truncadas.
func readLine(r *bufio.Reader) (string, bool, error) {
	var sb strings.Builder
	truncated := false

	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return sb.String(), truncated, err
		}
		if !truncated {
			if sb.Len()+len(chunk) > maxLineBytes {
				truncated = true
				sb.Reset()
			} else {
				sb.Write(chunk)
			}
		}
		if !isPrefix {
			return sb.String(), truncated, nil
		}
	}
}
