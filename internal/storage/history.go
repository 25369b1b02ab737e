package storage

import (
	"log/slog"
	"time"

	"tavern/internal/client"
	"tavern/internal/models"
	"tavern/internal/observer"
)

// HistoryManager records every MESSAGE event into the messages table.
type HistoryManager struct {
	w   *batchWriter[models.StoredMessage]
	log *slog.Logger
	now func() time.Time
}

// NewHistoryManager returns a ready-to-start history manager.
// writeQSize: buffered channel size for incoming writes.
func NewHistoryManager(writeQSize int, log *slog.Logger) *HistoryManager {
	if log == nil {
		log = slog.Default()
	}
	return &HistoryManager{
		log: log,
		now: time.Now,
		w:   newBatchWriter[models.StoredMessage]("history", writeQSize, 50, log, nil),
	}
}

// Start launches the background writer. Call Stop() to cleanly shut down.
func (h *HistoryManager) Start(store *Store) {
	h.w.save = store.SaveMessages
	h.w.start()
}

// Stop stops the worker and blocks until the queue is drained.
func (h *HistoryManager) Stop() {
	h.w.stop()
}

func (h *HistoryManager) Enqueue(m models.StoredMessage) error {
	return h.w.enqueue(m)
}

// Attach subscribes the manager to the bus. Unsubscribe the returned
// handle before Stop.
func (h *HistoryManager) Attach(bus *client.Bus) observer.Handle {
	return client.Subscribe(bus, func(ev models.MessageEvent) {
		m, ok := storedMessage(ev, h.now())
		if !ok {
			return
		}
		if err := h.Enqueue(m); err != nil {
			h.log.Warn("dropping history entry", "room", ev.RoomJID, "err", err)
		}
	})
}

// storedMessage uses the delay stamp when present so replayed room
// history collapses onto the rows already stored.
func storedMessage(ev models.MessageEvent, now time.Time) (models.StoredMessage, bool) {
	if ev.Message.Body == "" {
		return models.StoredMessage{}, false
	}
	m := models.StoredMessage{
		RoomJID:   ev.RoomJID,
		Sender:    ev.Message.Name,
		Body:      ev.Message.Body,
		MsgType:   ev.Message.Type,
		Timestamp: now.UTC(),
	}
	if !ev.Time.IsZero() {
		m.Delayed = true
		m.Timestamp = ev.Time.UTC()
	}
	return m, true
}
