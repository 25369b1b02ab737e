package storage

import (
	"context"
	"log/slog"
	"time"

	"tavern/internal/client"
	"tavern/internal/models"
	"tavern/internal/observer"
)

// SeenManager keeps the last presence of every nickname per room.
type SeenManager struct {
	w   *batchWriter[Sighting]
	log *slog.Logger
	now func() time.Time
}

func NewSeenManager(writeQSize int, log *slog.Logger) *SeenManager {
	if log == nil {
		log = slog.Default()
	}
	return &SeenManager{
		log: log,
		now: time.Now,
		w:   newBatchWriter[Sighting]("seen", writeQSize, 1, log, nil),
	}
}

func (s *SeenManager) Start(store *Store) {
	s.w.save = func(ctx context.Context, batch []Sighting) error {
		for _, sg := range batch {
			if err := store.SaveSighting(ctx, sg); err != nil {
				return err
			}
		}
		return nil
	}
	s.w.start()
}

func (s *SeenManager) Stop() {
	s.w.stop()
}

func (s *SeenManager) Enqueue(sg Sighting) error {
	return s.w.enqueue(sg)
}

func (s *SeenManager) Attach(bus *client.Bus) observer.Handle {
	return client.Subscribe(bus, func(ev models.PresenceEvent) {
		if ev.User.Nick == "" {
			return
		}
		sg := Sighting{
			RoomJID:     ev.RoomJID,
			Nick:        ev.User.Nick,
			Affiliation: ev.User.Affiliation,
			Role:        ev.User.Role,
			LastAction:  ev.Action,
			LastSeen:    s.now().UTC(),
		}
		if err := s.Enqueue(sg); err != nil {
			s.log.Warn("dropping sighting", "room", ev.RoomJID, "nick", ev.User.Nick, "err", err)
		}
	})
}
