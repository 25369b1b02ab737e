package client

import (
	"context"
	"slices"

	"tavern/internal/models"
	"tavern/internal/protocol"
)

// effect is one side effect of entering a status.
type effect struct {
	name string
	run  func(ctx context.Context, ev *Events) error
}

var (
	adoptIdentity = effect{"adopt-identity", func(_ context.Context, ev *Events) error {
		ev.action.AdoptIdentity()
		return nil
	}}
	announcePresence = effect{"presence", func(ctx context.Context, ev *Events) error {
		return ev.action.Presence(ctx, protocol.PresenceAttrs{})
	}}
	joinAutojoinRooms = effect{"autojoin", func(ctx context.Context, ev *Events) error {
		return ev.action.Autojoin(ctx)
	}}
	fetchIgnoreList = effect{"get-ignore-list", func(ctx context.Context, ev *Events) error {
		return ev.action.GetIgnoreList(ctx)
	}}
)

// A resumed session skips identity adoption; a fresh one adopts first and
// then does everything a resumed one does.
var (
	attachedEffects  = []effect{announcePresence, joinAutojoinRooms, fetchIgnoreList}
	connectedEffects = append([]effect{adoptIdentity}, attachedEffects...)
)

var statusEffects = map[models.Status][]effect{
	models.StatusConnected: connectedEffects,
	models.StatusAttached:  attachedEffects,
}

// transitions lists the statuses reachable from each status. Entering
// DISCONNECTING is allowed from any live status and is handled in
// canTransition.
var transitions = map[models.Status][]models.Status{
	models.StatusDisconnected: {
		models.StatusConnecting,
		models.StatusAttached,
	},
	models.StatusConnecting: {
		models.StatusAuthenticating,
		models.StatusConnected,
		models.StatusConnFail,
		models.StatusAuthFail,
		models.StatusError,
		models.StatusDisconnected,
	},
	models.StatusAuthenticating: {
		models.StatusConnected,
		models.StatusAuthFail,
		models.StatusConnFail,
		models.StatusError,
		models.StatusDisconnected,
	},
	models.StatusConnected: {
		models.StatusAttached,
		models.StatusConnFail,
		models.StatusError,
		models.StatusDisconnected,
	},
	models.StatusAttached: {
		models.StatusConnFail,
		models.StatusError,
		models.StatusDisconnected,
	},
	models.StatusConnFail:      {models.StatusConnecting, models.StatusDisconnected},
	models.StatusAuthFail:      {models.StatusConnecting, models.StatusDisconnected},
	models.StatusError:         {models.StatusConnecting, models.StatusDisconnected},
	models.StatusDisconnecting: {models.StatusDisconnected},
}

func canTransition(from, to models.Status) bool {
	if to == models.StatusDisconnecting {
		return from != models.StatusDisconnected && from != models.StatusDisconnecting
	}
	return slices.Contains(transitions[from], to)
}

func effectNames(status models.Status) []string {
	effs := statusEffects[status]
	names := make([]string, 0, len(effs))
	for _, e := range effs {
		names = append(names, e.name)
	}
	return names
}
