package transport

import (
	"fmt"

	"codelab/pkg/types"
)

// wireTag maps an internal message kind to the outbound wire tag for the
// session's fixed mode. Standalone and live sessions speak the same frame
// shape with different tag vocabularies; this is the only place the two
// vocabularies meet.
func wireTag(mode types.SessionMode, kind types.MessageKind) (string, error) {
	if mode == types.ModeLive {
		switch kind {
		case types.KindTerminalIn:
			return types.MessageTypeHomeworkTerminalIn, nil
		case types.KindCodeBroadcast:
			return types.MessageTypeHomeworkCodeUpdate, nil
		case types.KindJoin:
			return types.MessageTypeHomeworkJoin, nil
		}
	} else {
		switch kind {
		case types.KindTerminalIn:
			return types.MessageTypeTerminalIn, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s mode", ErrUnsupportedKind, kind, mode)
}

// inboundKind classifies an inbound wire tag. TERMINAL_OUT is handled
// identically in both modes; unrecognized tags report ok=false and are
// skipped by the read loop (forward compatibility).
func inboundKind(tag string) (types.MessageKind, bool) {
	switch tag {
	case types.MessageTypeTerminalOut:
		return types.KindTerminalOut, true
	default:
		return 0, false
	}
}
