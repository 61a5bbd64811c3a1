package present

import (
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"polyviz/internal/logger"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"
)

const (
	CommandNext = "next"
	CommandQuit = "quit"
)

//go:embed viewer.html
var viewerPage []byte

// Frame is the message pushed to browser viewers for every presented image.
type Frame struct {
	Title string `json:"title"`
	Image string `json:"image"` // base64 JPEG
}

// WebPresenter serves a small browser viewer and pushes each image to every
// connected client over a WebSocket. Present returns once any client sends
// "next".
type WebPresenter struct {
	addr     string
	logger   *logger.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	current  []byte
	commands chan string

	server   *http.Server
	listener net.Listener
}

func NewWebPresenter(addr string, logger *logger.Logger) *WebPresenter {
	return &WebPresenter{
		addr:   addr,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*websocket.Conn]bool),
		commands: make(chan string, 16),
	}
}

// Handler returns the viewer routes: the page at / and the socket at /ws.
func (p *WebPresenter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", p.viewerSocketHandler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(viewerPage)
	})
	return mux
}

// Start listens on the configured address and serves the viewer in the background.
func (p *WebPresenter) Start() error {
	listener, err := net.Listen("tcp", p.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", p.addr, err)
	}

	p.listener = listener
	p.server = &http.Server{Handler: p.Handler(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := p.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			p.logger.Error("Viewer server stopped: %v", err)
		}
	}()

	p.logger.Info("Web viewer listening on http://%s", listener.Addr())
	return nil
}

// Addr returns the bound listen address, or the configured one before Start.
func (p *WebPresenter) Addr() string {
	if p.listener != nil {
		return p.listener.Addr().String()
	}
	return p.addr
}

func (p *WebPresenter) Present(ctx context.Context, title string, img gocv.Mat) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.GetBytes())
	buf.Close()

	msg, err := json.Marshal(Frame{Title: title, Image: encoded})
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	p.drainCommands()
	p.broadcast(msg)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-p.commands:
			switch cmd {
			case CommandNext:
				return nil
			case CommandQuit:
				return ErrQuit
			}
		}
	}
}

// Close stops the server and disconnects every viewer.
func (p *WebPresenter) Close() error {
	p.mu.Lock()
	for client := range p.clients {
		client.Close()
		delete(p.clients, client)
	}
	p.mu.Unlock()

	if p.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.server.Shutdown(ctx)
}

// ClientCount returns the number of connected viewers.
func (p *WebPresenter) ClientCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// drainCommands drops commands sent while no image was on screen.
func (p *WebPresenter) drainCommands() {
	for {
		select {
		case <-p.commands:
		default:
			return
		}
	}
}

// broadcast remembers msg as the current frame and sends it to every viewer.
func (p *WebPresenter) broadcast(msg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = msg
	for client := range p.clients {
		if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
			p.logger.Error("Error sending frame: %v", err)
			delete(p.clients, client)
			client.Close()
		}
	}
}

func (p *WebPresenter) register(conn *websocket.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clients[conn] = true
	if p.current != nil {
		if err := conn.WriteMessage(websocket.TextMessage, p.current); err != nil {
			p.logger.Error("Error sending current frame: %v", err)
		}
	}
	p.logger.Info("Viewer connected. Total: %d", len(p.clients))
}

func (p *WebPresenter) unregister(conn *websocket.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.clients[conn]; ok {
		delete(p.clients, conn)
		conn.Close()
	}
	p.logger.Info("Viewer disconnected. Total: %d", len(p.clients))
}

// viewerSocketHandler registers a viewer and forwards its commands to Present.
func (p *WebPresenter) viewerSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.Error("WebSocket upgrade error: %v", err)
		return
	}
	conn.SetReadLimit(512)

	p.register(conn)
	defer p.unregister(conn)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				p.logger.Warning("Viewer disconnected with error: %v", err)
			}
			return
		}

		cmd := string(msg)
		if cmd != CommandNext && cmd != CommandQuit {
			p.logger.Warning("Ignoring unknown viewer command %q", cmd)
			continue
		}

		select {
		case p.commands <- cmd:
		default:
		}
	}
}
