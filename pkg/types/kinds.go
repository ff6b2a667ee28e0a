package types

// MessageKind is the internal message vocabulary. The wire tags differ
// between standalone and live sessions; a mode-aware serializer in the
// transport maps kinds to tags so nothing else branches on mode strings.
type MessageKind int

const (
	KindTerminalIn MessageKind = iota
	KindTerminalOut
	KindCodeBroadcast
	KindJoin
)

func (k MessageKind) String() string {
	switch k {
	case KindTerminalIn:
		return "terminal_in"
	case KindTerminalOut:
		return "terminal_out"
	case KindCodeBroadcast:
		return "code_broadcast"
	case KindJoin:
		return "join"
	default:
		return "unknown"
	}
}
