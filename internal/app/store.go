package app

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/EdJGM/ChatSala-WebSocket/internal/clock"
	"github.com/EdJGM/ChatSala-WebSocket/internal/core"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
	"github.com/rs/zerolog/log"
)

type seat struct {
	domain.Participant
	seq uint64
}

// roomState is the authoritative record of one live room.
type roomState struct {
	meta         domain.Room
	participants map[domain.SessionID]seat
	expiry       *expiryToken
}

func (r *roomState) summary() core.RoomSummary {
	return summarize(r.meta, len(r.participants))
}

func summarize(meta domain.Room, count int) core.RoomSummary {
	return core.RoomSummary{
		ID:                      meta.PIN,
		PIN:                     meta.PIN,
		Name:                    meta.Name,
		MaxParticipants:         meta.MaxParticipants,
		CurrentParticipants:     count,
		Encrypted:               meta.Encrypted,
		OneConnectionPerMachine: meta.OneConnectionPerMachine,
		CreatedAt:               meta.CreatedAt,
		Creator:                 meta.Creator,
	}
}

func (r *roomState) seats() []seat {
	out := make([]seat, 0, len(r.participants))
	for _, s := range r.participants {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// roster returns member ids and their public views in join order.
func (r *roomState) roster() ([]domain.SessionID, []core.ParticipantView) {
	seats := r.seats()
	ids := make([]domain.SessionID, 0, len(seats))
	views := make([]core.ParticipantView, 0, len(seats))
	for _, s := range seats {
		ids = append(ids, s.SessionID)
		views = append(views, core.ParticipantView{
			ID:        s.SessionID,
			Nickname:  s.Nickname,
			IsCreator: s.IsCreatorOf(&r.meta),
		})
	}
	return ids, views
}

// Roster is the state of a room right after a membership change.
type Roster struct {
	Room         domain.Room
	Members      []domain.SessionID
	Participants []core.ParticipantView
}

// Departure describes a removed participant and what is left behind.
type Departure struct {
	Roster
	Participant domain.Participant
	Emptied     bool
}

// RoomSnapshot is a copy of a room taken under the store lock.
type RoomSnapshot struct {
	Room         domain.Room
	Participants []domain.Participant
	ExpiryArmed  bool
}

func (r RoomSnapshot) Summary() core.RoomSummary {
	return summarize(r.Room, len(r.Participants))
}

// Store owns every room and the creator index. All mutations happen
// under one lock: PIN uniqueness, capacity and the cross-room device
// check all need a consistent view of the whole store.
type Store struct {
	mu       sync.Mutex
	rooms    map[domain.PIN]*roomState
	creators map[domain.Fingerprint]map[domain.PIN]struct{}
	seq      uint64

	clock     clock.Clock
	pins      *PinAllocator
	policy    AdmissionPolicy
	idle      time.Duration
	expiry    *ExpiryScheduler
	onExpired func(domain.Room)
}

type StoreOption func(*Store)

func WithClock(c clock.Clock) StoreOption { return func(s *Store) { s.clock = c } }

func WithPinAllocator(p *PinAllocator) StoreOption { return func(s *Store) { s.pins = p } }

func WithAdmissionPolicy(p AdmissionPolicy) StoreOption { return func(s *Store) { s.policy = p } }

func WithIdleWindow(d time.Duration) StoreOption { return func(s *Store) { s.idle = d } }

// WithExpiryHook registers f to run, outside the lock, after a room was
// removed by idle expiry.
func WithExpiryHook(f func(domain.Room)) StoreOption { return func(s *Store) { s.onExpired = f } }

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		rooms:    make(map[domain.PIN]*roomState),
		creators: make(map[domain.Fingerprint]map[domain.PIN]struct{}),
		clock:    clock.Real(),
		pins:     NewPinAllocator(DefaultMaxPinAttempts),
		policy:   OneDevicePolicy{Match: MatchPrimary},
		idle:     DefaultIdleWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.expiry = newExpiryScheduler(s.clock, s.idle, s.expire)
	return s
}

func (s *Store) IdleWindow() time.Duration { return s.expiry.IdleWindow() }

// CreateRoom stores a new room owned by creator. The room starts empty,
// so its idle expiry is armed right away.
func (s *Store) CreateRoom(spec domain.RoomSpec, creator domain.Fingerprint) (domain.Room, error) {
	if spec.MaxParticipants < domain.MinParticipants {
		return domain.Room{}, fmt.Errorf("%w: room needs at least %d participants", domain.ErrValidation, domain.MinParticipants)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pin, err := s.pins.Allocate(func(p domain.PIN) bool {
		_, taken := s.rooms[p]
		return taken
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.store").Int("rooms", len(s.rooms)).Msg("pin allocation failed")
		return domain.Room{}, err
	}

	r := &roomState{
		meta: domain.Room{
			PIN:       pin,
			CreatedAt: s.clock.Now(),
			Creator:   creator,
			RoomSpec:  spec,
		},
		participants: make(map[domain.SessionID]seat),
	}
	s.rooms[pin] = r
	owned, ok := s.creators[creator]
	if !ok {
		owned = make(map[domain.PIN]struct{})
		s.creators[creator] = owned
	}
	owned[pin] = struct{}{}
	s.expiry.Arm(r)

	log.Info().Str("module", "app.store").Str("pin", string(pin)).Str("name", spec.Name).
		Int("max", spec.MaxParticipants).Bool("one_per_machine", spec.OneConnectionPerMachine).
		Str("creator", string(creator)).Msg("room created")
	return r.meta, nil
}

func (s *Store) GetRoom(pin domain.PIN) (RoomSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[pin]
	if !ok {
		return RoomSnapshot{}, false
	}
	snap := RoomSnapshot{Room: r.meta, ExpiryArmed: r.expiry != nil}
	for _, st := range r.seats() {
		snap.Participants = append(snap.Participants, st.Participant)
	}
	return snap, true
}

// DeleteRoom removes pin on behalf of requester and returns the sessions
// that were seated in it, so the caller can tell them.
func (s *Store) DeleteRoom(pin domain.PIN, requester domain.Fingerprint) ([]domain.SessionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[pin]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if r.meta.Creator != requester {
		log.Warn().Str("module", "app.store").Str("pin", string(pin)).Str("requester", string(requester)).Msg("delete refused")
		return nil, domain.ErrUnauthorized
	}
	members, _ := r.roster()
	s.removeLocked(r)
	log.Info().Str("module", "app.store").Str("pin", string(pin)).Int("members", len(members)).Msg("room deleted")
	return members, nil
}

func (s *Store) removeLocked(r *roomState) {
	s.expiry.Disarm(r)
	delete(s.rooms, r.meta.PIN)
	if owned, ok := s.creators[r.meta.Creator]; ok {
		delete(owned, r.meta.PIN)
		if len(owned) == 0 {
			delete(s.creators, r.meta.Creator)
		}
	}
}

// AddParticipant seats p in pin. It fails with ErrRoomNotFound,
// ErrRoomFull or the admission policy's error, leaving the store as it was.
func (s *Store) AddParticipant(pin domain.PIN, p domain.Participant) (Roster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.admitLocked(pin, p)
	if err != nil {
		return Roster{}, err
	}
	return s.seatLocked(r, p), nil
}

// MoveParticipant moves p from its seat in from to a seat in to. The
// target is checked before the old seat is given up, so a refused move
// leaves p where it was.
func (s *Store) MoveParticipant(from, to domain.PIN, p domain.Participant) (Departure, Roster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.admitLocked(to, p)
	if err != nil {
		return Departure{}, Roster{}, err
	}
	dep, _ := s.unseatLocked(from, p.SessionID)
	return dep, s.seatLocked(r, p), nil
}

func (s *Store) admitLocked(pin domain.PIN, p domain.Participant) (*roomState, error) {
	r, ok := s.rooms[pin]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if _, seated := r.participants[p.SessionID]; seated {
		return nil, fmt.Errorf("%w: already in this room", domain.ErrValidation)
	}
	if len(r.participants) >= r.meta.MaxParticipants {
		return nil, domain.ErrRoomFull
	}
	if r.meta.OneConnectionPerMachine {
		if err := s.policy.Admit(&r.meta, p.Fingerprint, s.enforcedSeatsLocked(p.SessionID)); err != nil {
			log.Warn().Err(err).Str("module", "app.store").Str("pin", string(pin)).
				Str("fingerprint", string(p.Fingerprint)).Msg("admission refused")
			return nil, err
		}
	}
	return r, nil
}

func (s *Store) seatLocked(r *roomState, p domain.Participant) Roster {
	s.seq++
	r.participants[p.SessionID] = seat{Participant: p, seq: s.seq}
	s.expiry.Disarm(r)

	members, views := r.roster()
	log.Info().Str("module", "app.store").Str("pin", string(r.meta.PIN)).Str("sid", string(p.SessionID)).
		Str("nickname", p.Nickname).Int("count", len(members)).Msg("participant added")
	return Roster{Room: r.meta, Members: members, Participants: views}
}

// enforcedSeatsLocked lists everyone seated in an enforcing room except
// the session being admitted, whose own seat is about to be given up.
func (s *Store) enforcedSeatsLocked(except domain.SessionID) []domain.Participant {
	var out []domain.Participant
	for _, r := range s.rooms {
		if !r.meta.OneConnectionPerMachine {
			continue
		}
		for sid, st := range r.participants {
			if sid != except {
				out = append(out, st.Participant)
			}
		}
	}
	return out
}

// RemoveParticipant unseats sid. It reports false when the room or the
// seat is already gone, which makes leave and disconnect idempotent.
func (s *Store) RemoveParticipant(pin domain.PIN, sid domain.SessionID) (Departure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unseatLocked(pin, sid)
}

func (s *Store) unseatLocked(pin domain.PIN, sid domain.SessionID) (Departure, bool) {
	r, ok := s.rooms[pin]
	if !ok {
		return Departure{}, false
	}
	st, ok := r.participants[sid]
	if !ok {
		return Departure{}, false
	}
	delete(r.participants, sid)

	emptied := len(r.participants) == 0
	if emptied {
		s.expiry.Arm(r)
	}
	members, views := r.roster()
	log.Info().Str("module", "app.store").Str("pin", string(pin)).Str("sid", string(sid)).
		Int("count", len(members)).Bool("emptied", emptied).Msg("participant removed")
	return Departure{
		Roster:      Roster{Room: r.meta, Members: members, Participants: views},
		Participant: st.Participant,
		Emptied:     emptied,
	}, true
}

// Members returns the sessions seated in pin, but only if sid is one of them.
func (s *Store) Members(pin domain.PIN, sid domain.SessionID) ([]domain.SessionID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[pin]
	if !ok {
		return nil, false
	}
	if _, ok := r.participants[sid]; !ok {
		return nil, false
	}
	members, _ := r.roster()
	return members, true
}

// ListRooms returns summaries ordered by creation time.
func (s *Store) ListRooms() []core.RoomSummary {
	out := make([]core.RoomSummary, 0)
	s.visit(func(r *roomState) { out = append(out, r.summary()) })
	return out
}

// CreatedBy lists the PINs fp created that are still alive, sorted.
func (s *Store) CreatedBy(fp domain.Fingerprint) []domain.PIN {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.PIN, 0, len(s.creators[fp]))
	for pin := range s.creators[fp] {
		out = append(out, pin)
	}
	slices.Sort(out)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// visit calls fn for each room in creation order with the lock held.
func (s *Store) visit(fn func(r *roomState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := make([]*roomState, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].meta.CreatedAt.Equal(rooms[j].meta.CreatedAt) {
			return rooms[i].meta.CreatedAt.Before(rooms[j].meta.CreatedAt)
		}
		return rooms[i].meta.PIN < rooms[j].meta.PIN
	})
	for _, r := range rooms {
		fn(r)
	}
}

// expire runs when an idle check fires. The room goes only if token is
// still the pending one and nobody is seated.
func (s *Store) expire(pin domain.PIN, token *expiryToken) {
	s.mu.Lock()
	r, ok := s.rooms[pin]
	if !ok || r.expiry != token || len(r.participants) > 0 {
		s.mu.Unlock()
		return
	}
	r.expiry = nil
	s.removeLocked(r)
	meta := r.meta
	s.mu.Unlock()

	log.Info().Str("module", "app.store").Str("pin", string(pin)).Msg("room expired after idle window")
	if s.onExpired != nil {
		s.onExpired(meta)
	}
}
