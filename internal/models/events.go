package models

import "encoding/json"

// Socket event names recognized on the inbound side.
const (
	EventSetup       = "setup"
	EventJoinChat    = "join chat"
	EventLeaveChat   = "leave chat"
	EventNewMessage  = "new message"
	EventTyping      = "typing"
	EventStopTyping  = "stop typing"
	EventCallUser    = "call user"
	EventAnswerCall  = "answer call"
	EventEndCall     = "end call"
	EventDeclineCall = "decline call"
)

// Outbound event names.
const (
	EventConnected       = "connected"
	EventOnlineUsers     = "online users"
	EventMessageReceived = "message received"
	EventNotification    = "notification"
	EventIncomingCall    = "incoming call"
	EventCallAccepted    = "call accepted"
	EventCallDeclined    = "call declined"
	EventCallEnded       = "call ended"
	EventError           = "error"
)

// Envelope is the wire frame for every inbound socket event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutEvent is the wire frame for every outbound socket event.
type OutEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// UserRef unmarshals a user reference that clients send either as a plain
// id string or as a populated object carrying an _id field.
type UserRef string

func (u *UserRef) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*u = UserRef(s)
		return nil
	}
	var obj struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*u = UserRef(obj.ID)
	return nil
}

func (u UserRef) String() string { return string(u) }

// ChatRef is a chat reference inside a message payload. It may arrive fully
// populated with member ids or as a bare id.
type ChatRef struct {
	ID    string    `json:"_id"`
	Users []UserRef `json:"users"`
}

func (c *ChatRef) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		c.ID = s
		return nil
	}
	type alias ChatRef
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = ChatRef(a)
	return nil
}

// SetupPayload binds a connection to a user identity.
type SetupPayload struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// MessagePayload is the inbound shape of a "new message" event. The chat may
// be carried as a populated object, a bare id, or a separate chatId field.
type MessagePayload struct {
	ID       string   `json:"_id"`
	Chat     *ChatRef `json:"chat,omitempty"`
	ChatID   string   `json:"chatId,omitempty"`
	SenderID UserRef  `json:"senderId"`
	Body     string   `json:"body,omitempty"`
}

// ResolveChatID picks the chat id out of whichever field the client used.
func (m *MessagePayload) ResolveChatID() string {
	if m.Chat != nil && m.Chat.ID != "" {
		return m.Chat.ID
	}
	return m.ChatID
}

// Members returns the chat member ids when the payload carries a populated
// chat object, nil otherwise.
func (m *MessagePayload) Members() []string {
	if m.Chat == nil || len(m.Chat.Users) == 0 {
		return nil
	}
	members := make([]string, 0, len(m.Chat.Users))
	for _, u := range m.Chat.Users {
		members = append(members, u.String())
	}
	return members
}

// CallPayload is the shared shape of all call-signaling events.
type CallPayload struct {
	To       string `json:"to,omitempty"`
	From     string `json:"from,omitempty"`
	CallType string `json:"callType,omitempty"`
	RoomID   string `json:"roomId,omitempty"`
}

// NotificationPayload is pushed to a recipient's personal room when a
// message lands in a chat they are not currently viewing.
type NotificationPayload struct {
	ChatID  string      `json:"chatId"`
	Message interface{} `json:"message"`
}

// ErrorPayload reports a failed inbound event back to its originating
// connection.
type ErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}
