package widget

import _ "embed"

//go:embed widget.js
var script []byte

// Script retorna o JavaScript do widget de chat
func Script() []byte {
	return script
}
