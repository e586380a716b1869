package server

import (
	"dm-lab/domain/event"
	"dm-lab/sink"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 512
)

// subscribe upgrades to a websocket that pushes every message created in
// the conversation. Pushes are hints: a client that falls behind loses them
// and reloads the latest messages on reconnect.
func (s *MessagingServer) subscribe(w http.ResponseWriter, r *http.Request) {
	conversationID, err := conversationParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	me := callerID(r)
	subscriber := sink.NewSubscriberSink(me, s.options.ConnectionBufferSize)
	unsubscribe, err := s.service.Subscribe(me, conversationID, subscriber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer unsubscribe()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("Websocket upgrade failed", "conversation_id", conversationID, "error", err)
		return
	}
	live := &liveConnection{
		log:            s.log,
		conn:           conn,
		subscriber:     subscriber,
		conversationID: conversationID,
	}
	live.serve()
}

type liveConnection struct {
	log            *slog.Logger
	conn           *websocket.Conn
	subscriber     *sink.SubscriberSink
	conversationID uuid.UUID
}

// serve blocks until the client goes away or a write fails.
func (c *liveConnection) serve() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.readPump()
	}()
	c.writePump(done)
	_ = c.conn.Close()
	<-done
}

// readPump only exists to process control frames and notice disconnects.
func (c *liveConnection) readPump() {
	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *liveConnection) writePump(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case evt := <-c.subscriber.Events():
			created, ok := evt.(event.MessageCreated)
			if !ok {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(toMessageView(created.Message)); err != nil {
				c.log.Debug("Push failed", "conversation_id", c.conversationID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
