package transport

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/OpenSourceNeuro/Spikeling/pkg/command"
	"github.com/OpenSourceNeuro/Spikeling/pkg/telemetry"
)

const (
	// DefaultWSDecimation forwards every fifth tick to a fresh connection.
	DefaultWSDecimation = 5
	// wsSendQueue bounds per-connection outbound messages.
	wsSendQueue = 256

	wsWriteTimeout = 5 * time.Second
)

type wsMessage struct {
	kind int
	data []byte
}

// wsClient is one accepted connection with its own stream gate, so each
// client decimates independently of the others.
type wsClient struct {
	conn   *websocket.Conn
	stream *telemetry.Stream
	remote *command.Remote
	send   chan wsMessage
}

// WSServer broadcasts telemetry payloads to every connected client and feeds
// their inbound messages to the remote command surface. The transport frames
// messages, so payloads go out headerless.
type WSServer struct {
	addr       string
	dispatcher *command.Dispatcher
	upgrader   websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	server  *http.Server
}

// NewWSServer creates a WebSocket server on addr, e.g. ":81".
func NewWSServer(addr string, d *command.Dispatcher) *WSServer {
	return &WSServer{
		addr:       addr,
		dispatcher: d,
		upgrader: websocket.Upgrader{
			// The device serves trusted classroom networks.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// Serve accepts connections until the context is cancelled.
func (s *WSServer) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleConn)

	s.mu.Lock()
	s.server = &http.Server{Addr: s.addr, Handler: mux}
	srv := s.server
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Send fans one tick's packet out to every client whose stream gate admits
// it. It implements engine.Sink; slow clients drop rather than block.
func (s *WSServer) Send(pkt telemetry.Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		if !c.stream.Take() {
			continue
		}
		payload := pkt.AppendPayload(make([]byte, 0, telemetry.PayloadSize))
		select {
		case c.send <- wsMessage{kind: websocket.BinaryMessage, data: payload}:
		default:
		}
	}
}

func (s *WSServer) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	stream := telemetry.NewStream(DefaultWSDecimation)
	stream.SetEnabled(true)

	c := &wsClient{
		conn:   conn,
		stream: stream,
		remote: command.NewRemote(s.dispatcher, stream),
		send:   make(chan wsMessage, wsSendQueue),
	}
	c.send <- wsMessage{kind: websocket.TextMessage, data: command.Hello()}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writePump(c)
	s.readPump(c)
}

func (s *WSServer) readPump(c *wsClient) {
	defer s.dropClient(c)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: read failed: %v", err)
			}
			return
		}

		reply, err := c.remote.Handle(msg)
		if err != nil {
			log.Printf("ws: %v", err)
			continue
		}
		if reply != nil {
			select {
			case c.send <- wsMessage{kind: websocket.TextMessage, data: reply}:
			default:
			}
		}
	}
}

func (s *WSServer) writePump(c *wsClient) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteMessage(msg.kind, msg.data); err != nil {
			return
		}
	}
}

func (s *WSServer) dropClient(c *wsClient) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
}
