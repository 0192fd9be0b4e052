package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:   	Stream decoded packets to browsers and dashboards.
 *
 * Description:	An HTTP server upgrades every request to a websocket.
 *		Each packet goes to every client as one JSON text message
 *		(see PacketJSON).  Clients don't send anything; reading
 *		is only to notice when they go away.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsClientQueue   = 64
	wsShutdownGrace = 5 * time.Second
)

type WebsocketSink struct {
	listener net.Listener
	server   *http.Server

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewWebsocketSink listens on addr and starts serving.
func NewWebsocketSink(addr string) (*WebsocketSink, error) {
	var listener, err = net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("websocket listen: %w", err)
	}

	var s = &WebsocketSink{
		listener: listener,
		clients:  make(map[*wsClient]struct{}),
	}

	var mux = http.NewServeMux()
	mux.HandleFunc("/", s.handleWS)

	s.server = &http.Server{ //nolint:exhaustruct
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Error("Websocket server stopped", "err", err)
		}
	}()

	Logger.Info("Websocket packet stream", "addr", listener.Addr())

	return s, nil
}

func (s *WebsocketSink) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *WebsocketSink) handleWS(w http.ResponseWriter, r *http.Request) {
	var upgrader = websocket.Upgrader{ //nolint:exhaustruct
		CheckOrigin: func(*http.Request) bool {
			return true
		},
	}

	var conn, err = upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	var c = &wsClient{
		conn: conn,
		send: make(chan []byte, wsClientQueue),
	}
	s.addClient(c)

	go c.writeLoop()
	c.readLoop()

	c.close()
	s.removeClient(c)
}

func (s *WebsocketSink) addClient(c *wsClient) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
}

func (s *WebsocketSink) removeClient(c *wsClient) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

func (s *WebsocketSink) numClients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.clients)
}

func (s *WebsocketSink) Publish(pkt *DecodedPacket, now time.Time) error {
	var msg, err = json.Marshal(NewPacketJSON(pkt, now))
	if err != nil {
		return fmt.Errorf("websocket: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for c := range s.clients {
		c.trySend(msg)
	}

	return nil
}

func (s *WebsocketSink) Close() error {
	var ctx, cancel = context.WithTimeout(context.Background(), wsShutdownGrace)
	defer cancel()

	s.mu.RLock()
	for c := range s.clients {
		c.close()
	}
	s.mu.RUnlock()

	return s.server.Shutdown(ctx) //nolint:wrapcheck
}

func (c *wsClient) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writeLoop() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.close()
			return
		}
	}
}

func (c *wsClient) trySend(msg []byte) {
	defer func() {
		_ = recover() // send on closed channel
	}()

	select {
	case c.send <- msg:
	default:
	}
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}
