package match

import (
	"github.com/juannacho112/multivf-server/internal/auth"
	"github.com/juannacho112/multivf-server/internal/engine"
	"github.com/juannacho112/multivf-server/pkg/types"
)

type Msg interface{ isMatchMsg() }

// Join claims a seat for an identity. A rejoining identity gets its existing
// seat back along with ErrAlreadyJoined so the caller can tell the two apart.
type Join struct {
	Identity auth.Identity
	Reply    chan JoinReply
}

type JoinReply struct {
	Seat engine.Seat
	Err  error
}

// Attach binds a connection outbox to an occupied seat. The current snapshot
// is queued on the outbox immediately.
type Attach struct {
	Seat   engine.Seat
	Outbox chan types.ServerMessage
}

// Detach unbinds a connection from its seat. It carries the outbox so a stale
// detach from a replaced connection cannot unbind its successor. The seat
// stays occupied; the opponent gets an advisory event only.
type Detach struct {
	Seat   engine.Seat
	Outbox chan types.ServerMessage
}

// FromClient carries one gameplay action. The reply is sent only after the
// resulting broadcast has been queued to both seats.
type FromClient struct {
	Seat  engine.Seat
	Msg   types.ClientMessage
	Reply chan error
}

type GetSnapshot struct {
	Seat  engine.Seat
	Reply chan *types.Snapshot
}

type Shutdown struct{}

func (Join) isMatchMsg()        {}
func (Attach) isMatchMsg()      {}
func (Detach) isMatchMsg()      {}
func (FromClient) isMatchMsg()  {}
func (GetSnapshot) isMatchMsg() {}
func (Shutdown) isMatchMsg()    {}
