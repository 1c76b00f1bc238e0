package app

import (
	"github.com/EdJGM/ChatSala-WebSocket/internal/core"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
)

// AdminQuery is the read-only projection of the store used by room lists.
type AdminQuery struct {
	store *Store
}

func NewAdminQuery(store *Store) AdminQuery {
	return AdminQuery{store: store}
}

func view(sum core.RoomSummary, requester domain.Fingerprint) core.RoomView {
	return core.RoomView{RoomSummary: sum, IsCreator: requester != "" && sum.Creator == requester}
}

// Rooms lists every live room, flagging the ones requester created.
func (a AdminQuery) Rooms(requester domain.Fingerprint) core.RoomsList {
	rooms := a.store.ListRooms()
	out := make(core.RoomsList, 0, len(rooms))
	for _, sum := range rooms {
		out = append(out, view(sum, requester))
	}
	return out
}

func (a AdminQuery) Room(pin domain.PIN, requester domain.Fingerprint) (core.RoomView, bool) {
	snap, ok := a.store.GetRoom(pin)
	if !ok {
		return core.RoomView{}, false
	}
	return view(snap.Summary(), requester), true
}

// CreatorRooms is the set of live PINs fp created.
func (a AdminQuery) CreatorRooms(fp domain.Fingerprint) core.CreatorRooms {
	return core.CreatorRooms(a.store.CreatedBy(fp))
}
