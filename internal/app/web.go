package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/inertial_motion/internal/config"
	"github.com/relabs-tech/inertial_motion/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 2 * time.Second

// motionServer keeps the latest motion event and fans events out to
// websocket clients.
type motionServer struct {
	mu      sync.Mutex
	last    telemetry.Event
	have    bool
	clients map[*websocket.Conn]struct{}
}

func newMotionServer() *motionServer {
	return &motionServer{clients: make(map[*websocket.Conn]struct{})}
}

// update records ev and broadcasts it to every connected client.
func (s *motionServer) update(ev telemetry.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("json marshal error (motion): %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = ev
	s.have = true
	for conn := range s.clients {
		if err := s.write(conn, payload); err != nil {
			log.Printf("ws: dropping client %s: %v", conn.RemoteAddr(), err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *motionServer) write(conn *websocket.Conn, payload []byte) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *motionServer) remove(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[conn]; ok {
		conn.Close()
		delete(s.clients, conn)
	}
}

func (s *motionServer) handleMotion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ev, have := s.last, s.have
	s.mu.Unlock()

	if !have {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ev); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// handleWS registers a client and sends it the latest event right away.
func (s *motionServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	if s.have {
		if payload, err := json.Marshal(s.last); err == nil {
			if err := s.write(conn, payload); err != nil {
				conn.Close()
				delete(s.clients, conn)
				s.mu.Unlock()
				return
			}
		}
	}
	s.mu.Unlock()

	// Clients never send anything; reading only surfaces the close.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				s.remove(conn)
				return
			}
		}
	}()
}

func (s *motionServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/motion", s.handleMotion)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

// RunWeb serves the latest motion event over HTTP and streams events to
// websocket clients.
func RunWeb() error {
	cfg := config.Get()
	srv := newMotionServer()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb, nil)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeEvents(client, cfg.TopicMotion, srv.update); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, srv.routes())
}
