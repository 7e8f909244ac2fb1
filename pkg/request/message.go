package request

import "fmt"

// Message is the body of a response that only carries text.
type Message struct {
	Message string `json:"Message" xml:"Message"`
}

// NewMessage creates a new Message. The message is formatted when args are given.
func NewMessage(message string, args ...any) *Message {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	return &Message{
		Message: message,
	}
}

// MessageError is the body of a failed request. Message is safe to show to the client, Error is the cause and Values
// lists the offending inputs when there are any.
type MessageError struct {
	Message string   `json:"Message" xml:"Message"`
	Error   string   `json:"Error,omitempty" xml:"Error,omitempty"`
	Values  []string `json:"Values,omitempty" xml:"Values,omitempty"`
}

// NewMessageError creates a new MessageError. A nil error leaves Error empty.
func NewMessageError(message string, err error, values ...string) *MessageError {
	me := &MessageError{
		Message: message,
		Values:  values,
	}
	if err != nil {
		me.Error = err.Error()
	}
	return me
}
