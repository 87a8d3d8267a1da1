package widget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptIsEmbedded(t *testing.T) {
	js := string(Script())

	assert.NotEmpty(t, js)
	assert.Contains(t, js, "class ChatWidget")
	for _, method := range []string{"addUserMessage(", "addBotMessage(", "send("} {
		assert.Contains(t, js, method)
	}
}

func TestScriptRendersTextNotHTML(t *testing.T) {
	js := string(Script())

	assert.Contains(t, js, "textContent")
	assert.False(t, strings.Contains(js, "innerHTML"), "widget must not inject HTML")
}
