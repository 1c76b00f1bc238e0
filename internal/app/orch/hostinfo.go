package orch

import (
	"context"
	"strings"

	"github.com/EdJGM/ChatSala-WebSocket/internal/core"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
	"github.com/rs/zerolog/log"
)

// HostResolver is satisfied by *net.Resolver.
type HostResolver interface {
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// sendHostInfo resolves the client's hostname and reports it. It runs on
// its own goroutine so a slow DNS server never holds up room operations.
func (s *Session) sendHostInfo(ctx context.Context, fp domain.Fingerprint) {
	host := s.addr
	if r := s.o.Resolver; r != nil && s.addr != "" {
		timeout := s.o.Limits.LookupTimeout
		if timeout <= 0 {
			timeout = defaultLookupTimeout
		}
		lookupCtx, cancel := context.WithTimeout(ctx, timeout)
		names, err := r.LookupAddr(lookupCtx, s.addr)
		cancel()
		if err == nil && len(names) > 0 {
			host = strings.TrimSuffix(names[0], ".")
		} else if err != nil {
			log.Debug().Err(err).Str("module", "orch").Str("ip", s.addr).Msg("reverse lookup failed")
		}
	}
	if err := s.o.Relay.SendTo(s.id, core.HostInfo{IP: s.addr, Host: host, Fingerprint: fp}); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(s.id)).Msg("host info not delivered")
	}
}
