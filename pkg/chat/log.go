package chat

import "slices"

// DefaultHistoryLimit is how many recent log entries are offered to the
// Game Master as prior turns.
const DefaultHistoryLimit = 10

// Log is the append-only adventure log for one session.
type Log struct {
	messages []Message
}

// Append adds entries to the end of the log.
func (l *Log) Append(msgs ...Message) {
	l.messages = append(l.messages, msgs...)
}

// Messages returns a copy of every entry, oldest first.
func (l *Log) Messages() []Message {
	return slices.Clone(l.messages)
}

func (l *Log) Len() int {
	return len(l.messages)
}

// Last returns the newest entry, if any.
func (l *Log) Last() (Message, bool) {
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}

// PriorTurns takes the newest limit entries, drops system entries and maps
// the rest to user/model turns, oldest first.
func (l *Log) PriorTurns(limit int) []Turn {
	if limit <= 0 {
		return nil
	}
	window := l.messages[max(0, len(l.messages)-limit):]
	turns := make([]Turn, 0, len(window))
	for _, m := range window {
		switch m.Sender {
		case SenderUser:
			turns = append(turns, Turn{Role: TurnRoleUser, Text: m.Content})
		case SenderAI:
			turns = append(turns, Turn{Role: TurnRoleModel, Text: m.Content})
		}
	}
	return turns
}
