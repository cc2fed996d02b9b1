package preview

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/host/memdom"
)

// client is one connected browser. Only the newest pending message is
// kept: every message carries the complete HTML, so older ones are stale.
type client struct {
	s    *Server
	conn *websocket.Conn
	send chan ServerMessage
	done chan struct{}
	once sync.Once
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		s:    s,
		conn: conn,
		send: make(chan ServerMessage, 1),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		c.close()
		return
	}
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("browser connected", "remote", r.RemoteAddr)

	html, err := s.currentHTML(r.Context())
	if err != nil {
		c.push(ServerMessage{Error: err.Error()})
	} else {
		c.push(ServerMessage{HTML: html})
	}

	go c.writeLoop()
	c.readLoop()
}

func (c *client) push(msg ServerMessage) {
	select {
	case <-c.done:
		return
	default:
	}
	for {
		select {
		case c.send <- msg:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

func (c *client) readLoop() {
	defer func() {
		c.s.mu.Lock()
		delete(c.s.clients, c)
		c.s.mu.Unlock()
		c.close()
		c.s.logger.Info("browser disconnected")
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		if err := c.s.dispatch(msg); err != nil {
			c.push(ServerMessage{Error: err.Error()})
		}
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(c.s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.s.writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.s.logger.Warn("websocket write failed", "error", err)
				c.close()
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.s.writeTimeout)); err != nil {
				c.close()
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.conn.Close()
	})
}

// dispatch relays a browser event into the document on the loop.
func (s *Server) dispatch(msg ClientMessage) error {
	if msg.Event == "" {
		return errors.New("E142").WithDetail("event name is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.taskTimeout)
	defer cancel()

	found := true
	err := s.app.Do(ctx, func() {
		target := elementAt(s.app.Root, msg.Path)
		if target == nil {
			found = false
			return
		}
		if msg.Event == "input" {
			s.app.Doc.Input(target, msg.Value)
			return
		}
		s.app.Doc.Dispatch(target, msg.Event, msg.Value)
	})
	if err != nil {
		return err
	}
	if !found {
		return errors.New("E142").WithDetailf("no node at path %v", msg.Path)
	}
	return nil
}

// elementAt walks element-only child indices. Browsers drop the empty
// text anchors the renderer inserts, so paths skip non-element nodes.
func elementAt(root *memdom.Node, path []int) *memdom.Node {
	cur := root
	for _, i := range path {
		children := cur.ElementChildren()
		if i < 0 || i >= len(children) {
			return nil
		}
		cur = children[i]
	}
	return cur
}
