package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:   	Provide decoded packets to other applications over a
 *		TCP socket.
 *
 * Description:	Each packet is sent, in the same text form as the log
 *		file, to every client currently connected.  Nothing is
 *		read from clients.  A client that can't keep up is
 *		disconnected rather than being allowed to stall the rest.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

const (
	MaxNetClients    = 3
	netWriteDeadline = 2 * time.Second
)

type TCPSink struct {
	listener net.Listener

	mu      sync.Mutex
	clients map[net.Conn]struct{}
	wg      sync.WaitGroup
}

// NewTCPSink listens on addr, e.g. ":8002" or "127.0.0.1:0".
func NewTCPSink(addr string) (*TCPSink, error) {
	var listener, err = net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp sink listen: %w", err)
	}

	var s = &TCPSink{
		listener: listener,
		clients:  make(map[net.Conn]struct{}),
	}

	s.wg.Add(1)
	go s.acceptLoop()

	Logger.Info("Ready to accept TCP client applications", "addr", listener.Addr())

	return s, nil
}

func (s *TCPSink) acceptLoop() {
	defer s.wg.Done()

	for {
		var conn, err = s.listener.Accept()
		if errors.Is(err, net.ErrClosed) {
			return
		}

		if err != nil {
			Logger.Warn("Accept failed", "err", err)
			continue
		}

		s.mu.Lock()
		if len(s.clients) >= MaxNetClients {
			s.mu.Unlock()
			Logger.Warn("Too many TCP clients, refusing", "remote", conn.RemoteAddr())
			conn.Close()

			continue
		}
		s.clients[conn] = struct{}{}
		s.mu.Unlock()

		Logger.Info("Attached to TCP client application", "remote", conn.RemoteAddr())
	}
}

// Addr is where we are listening, useful with port 0.
func (s *TCPSink) Addr() net.Addr {
	return s.listener.Addr()
}

// Port is the listening port number.
func (s *TCPSink) Port() int {
	if a, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return a.Port
	}

	return 0
}

func (s *TCPSink) numClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.clients)
}

func (s *TCPSink) Publish(pkt *DecodedPacket, now time.Time) error {
	var msg = []byte(FormatPacketLog(pkt))

	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		conn.SetWriteDeadline(time.Now().Add(netWriteDeadline)) //nolint:errcheck

		if _, err := conn.Write(msg); err != nil {
			Logger.Info("Lost TCP client application", "remote", conn.RemoteAddr(), "err", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}

	return nil
}

func (s *TCPSink) Close() error {
	var err = s.listener.Close()

	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	clear(s.clients)
	s.mu.Unlock()

	s.wg.Wait()

	return err //nolint:wrapcheck
}
