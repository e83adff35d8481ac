package core

// UnprocessableReply is the fixed sentinel relayed when a remote reply was
// transported successfully but carried no extractable text. It propagates as
// ordinary text, never as an error: a malformed reply is a soft failure.
const UnprocessableReply = "reply could not be processed"

// Reply is the closed set of remote agent reply shapes. Concrete types
// implement the unexported marker so the set cannot grow outside this
// package, keeping extraction exhaustive.
type Reply interface{ isReply() }

// DirectReply is a message reply whose text was carried in the message parts.
type DirectReply struct {
	Text string
}

func (DirectReply) isReply() {}

// HistoriedReply is a task reply whose result text sits at the tail of the
// task's message history. History holds the extracted texts in history order.
type HistoriedReply struct {
	History []string
}

func (HistoriedReply) isReply() {}

// UnrecognizedReply is a transported reply with no extractable text.
type UnrecognizedReply struct{}

func (UnrecognizedReply) isReply() {}

// ReplyText extracts the relay text from a reply, falling back to the
// UnprocessableReply sentinel for unrecognized shapes and empty histories.
func ReplyText(r Reply) string {
	switch reply := r.(type) {
	case DirectReply:
		return reply.Text
	case HistoriedReply:
		if len(reply.History) == 0 {
			return UnprocessableReply
		}
		return reply.History[len(reply.History)-1]
	default:
		return UnprocessableReply
	}
}
