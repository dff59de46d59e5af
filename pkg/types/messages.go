package types

// Client -> Server
const (
	MsgSetReady        = "setReady"
	MsgDrawCards       = "drawCards"
	MsgSelectAttribute = "selectAttribute"
	MsgRespond         = "respond"
	MsgForfeit         = "forfeit"
	MsgLeaveMatch      = "leaveMatch"
)

type ClientMessage struct {
	Type             string `json:"type"`
	Ready            bool   `json:"ready,omitempty"`
	Attribute        string `json:"attribute,omitempty"`
	UseTerrificToken bool   `json:"use_terrific_token,omitempty"`
	Accept           bool   `json:"accept"`
}

// Server -> Client
const (
	MsgSnapshot             = "snapshot"
	MsgError                = "error"
	MsgMatchEnded           = "matchEnded"
	MsgOpponentDisconnected = "opponentDisconnected"
	MsgOpponentReconnected  = "opponentReconnected"
)

type ServerMessage struct {
	Type     string    `json:"type"`
	Version  int       `json:"version,omitempty"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Error    string    `json:"error,omitempty"`
	// Winner is a seat index; -1 means no winner. Never omitted: seat 0 is
	// a meaningful value.
	Winner int    `json:"winner"`
	Reason string `json:"reason,omitempty"`
}
