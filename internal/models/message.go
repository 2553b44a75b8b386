package models

import "fmt"

// Message is a single SMS in flight. It is never persisted. Any field may be
// empty: transports hand us whatever the gateway gave them.
type Message struct {
	Sender    string
	Recipient string
	Subject   string
	Body      string
}

// IsValid reports whether the message can be processed at all. A processable
// message needs a sender to reply to, a recipient to route by, and a body.
func (m Message) IsValid() bool {
	return m.Sender != "" && m.Recipient != "" && m.Body != ""
}

// IsEmpty reports whether every field is absent.
func (m Message) IsEmpty() bool {
	return m.Sender == "" && m.Recipient == "" && m.Subject == "" && m.Body == ""
}

func (m Message) String() string {
	return fmt.Sprintf("f='%s' t='%s' s='%s' b='%s'", m.Sender, m.Recipient, m.Subject, m.Body)
}
