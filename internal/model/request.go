package model

// Request is everything an endpoint needs for one stateless call: the full
// transcript is resent every time.
type Request struct {
	ModelID           string
	SystemInstruction string
	Transcript        []Turn
	Options           GenerationOptions
}

// LastUserText returns the text of the final turn when it is a user turn.
func (r Request) LastUserText() (string, bool) {
	if len(r.Transcript) == 0 {
		return "", false
	}
	last := r.Transcript[len(r.Transcript)-1]
	if last.Role != RoleUser {
		return "", false
	}
	return last.Text, true
}

type Reply struct {
	Text         string
	FinishReason string
	InputTokens  int
	OutputTokens int
}
