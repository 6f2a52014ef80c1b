package wsframe

import (
	"encoding/binary"

	"github.com/gorilla/websocket"
)

// CloseStatus decodes the status code and reason carried by a close frame.
// It reports false for other opcodes. A close frame without a body yields
// websocket.CloseNoStatusReceived. Masked frames need the full masking key
// to decode the reason.
func CloseStatus(frame []byte, h Header) (*websocket.CloseError, bool) {
	if h.Opcode != Close {
		return nil, false
	}
	p := Payload(frame, h)
	if len(p) < 2 {
		return &websocket.CloseError{Code: websocket.CloseNoStatusReceived}, true
	}
	return &websocket.CloseError{
		Code: int(binary.BigEndian.Uint16(p)),
		Text: string(p[2:]),
	}, true
}

// Expected reports whether a close frame's status code is one a peer sends
// on an orderly shutdown.
func Expected(ce *websocket.CloseError) bool {
	return websocket.IsCloseError(ce, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
