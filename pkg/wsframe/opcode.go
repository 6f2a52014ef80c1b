package wsframe

import (
	"fmt"

	"github.com/gorilla/websocket"
)

// Opcode is the 4-bit frame opcode. Values above 15 never come from a
// parsed header but can be classified.
type Opcode byte

const (
	Continuation Opcode = 0
	Text         Opcode = websocket.TextMessage
	Binary       Opcode = websocket.BinaryMessage
	Close        Opcode = websocket.CloseMessage
	Ping         Opcode = websocket.PingMessage
	Pong         Opcode = websocket.PongMessage
)

// OpcodeClass groups opcodes by meaning.
type OpcodeClass int

const (
	ClassContinuation OpcodeClass = iota
	ClassText
	ClassBinary
	ClassClose
	ClassPing
	ClassPong
	// ClassReserved covers 3-7 and 11-15.
	ClassReserved
	ClassUnrecognized
)

func (c OpcodeClass) String() string {
	switch c {
	case ClassContinuation:
		return "continuation"
	case ClassText:
		return "text"
	case ClassBinary:
		return "binary"
	case ClassClose:
		return "close"
	case ClassPing:
		return "ping"
	case ClassPong:
		return "pong"
	case ClassReserved:
		return "reserved"
	default:
		return "unrecognized"
	}
}

// Class classifies o.
func (o Opcode) Class() OpcodeClass {
	switch {
	case o == Continuation:
		return ClassContinuation
	case o == Text:
		return ClassText
	case o == Binary:
		return ClassBinary
	case o == Close:
		return ClassClose
	case o == Ping:
		return ClassPing
	case o == Pong:
		return ClassPong
	case o <= 15:
		return ClassReserved
	default:
		return ClassUnrecognized
	}
}

// Control reports whether o is a control opcode (close, ping, pong or
// reserved 11-15).
func (o Opcode) Control() bool {
	return o >= 8 && o <= 15
}

func (o Opcode) String() string {
	return fmt.Sprintf("%s(%d)", o.Class(), byte(o))
}
