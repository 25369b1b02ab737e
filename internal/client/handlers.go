package client

import (
	"context"

	"tavern/internal/models"
	"tavern/internal/protocol"
)

func (ev *Events) handleVersion(ctx context.Context, st protocol.Stanza) (bool, error) {
	iq, ok := st.(*protocol.IQ)
	if !ok {
		return true, nil
	}
	return true, ev.action.Version(ctx, iq)
}

// handleBookmarks joins every bookmarked conference marked autojoin.
func (ev *Events) handleBookmarks(ctx context.Context, st protocol.Stanza) (bool, error) {
	iq, ok := st.(*protocol.IQ)
	if !ok || iq.Query == nil || iq.Query.Storage == nil {
		return true, nil
	}
	for _, c := range iq.Query.Storage.Conferences {
		if !c.AutojoinSet() {
			continue
		}
		if err := ev.action.JoinRoom(ctx, protocol.UnescapeJID(c.JID), c.Password); err != nil {
			ev.log.Warn("bookmark join failed", "room", c.JID, "err", err)
		}
	}
	return true, nil
}

// handleDisco names a room from its disco#info identity. Only answers
// carrying a conference identity describe a room; a name, once set, is
// kept.
func (ev *Events) handleDisco(_ context.Context, st protocol.Stanza) (bool, error) {
	iq, ok := st.(*protocol.IQ)
	if !ok || iq.Query == nil || !iq.Query.HasIdentity("conference") {
		return true, nil
	}
	roomJID := protocol.Bare(protocol.UnescapeJID(iq.From))
	name := ""
	for _, id := range iq.Query.Identities {
		if id.Category == "conference" {
			name = protocol.UnescapeNode(id.Name)
			break
		}
	}
	ev.session.write(func() {
		r := ev.session.ensureRoom(roomJID)
		if !r.HasName() && name != "" {
			r.SetName(name)
		}
	})
	return true, nil
}

// handlePrivacyList loads the deny items of the ignore list into the
// local user and activates the list.
func (ev *Events) handlePrivacyList(ctx context.Context, st protocol.Stanza) (bool, error) {
	iq, ok := st.(*protocol.IQ)
	if !ok {
		return false, nil
	}
	if iq.Query != nil {
		if list := iq.Query.List(models.IgnoreListName); list != nil {
			ev.session.write(func() {
				ignore := ev.session.user.PrivacyList(models.IgnoreListName)
				for _, item := range list.Items {
					if item.Action == "deny" && item.Value != "" {
						ignore.Add(protocol.UnescapeJID(item.Value))
					}
				}
			})
		}
	}
	return false, ev.action.SetIgnoreListActive(ctx)
}

// handlePrivacyListError creates the ignore list when the server does not
// have one yet.
func (ev *Events) handlePrivacyListError(ctx context.Context, st protocol.Stanza) (bool, error) {
	iq, ok := st.(*protocol.IQ)
	if !ok || !iq.Error.IsItemNotFound() {
		return false, nil
	}
	if err := ev.action.ResetIgnoreList(ctx); err != nil {
		return false, err
	}
	return false, ev.action.SetIgnoreListActive(ctx)
}
