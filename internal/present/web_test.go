package present

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"polyviz/internal/logger"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"
)

func dialViewer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial viewer socket: %v", err)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("Failed to decode frame: %v", err)
	}
	return frame
}

func waitResult(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Present did not return")
		return nil
	}
}

func TestWebPresenter_BlocksUntilNext(t *testing.T) {
	p := NewWebPresenter("127.0.0.1:0", logger.NewNop())
	srv := httptest.NewServer(p.Handler())
	defer srv.Close()
	defer p.Close()

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 255, 0, 0), 16, 16, gocv.MatTypeCV8UC3)
	defer img.Close()

	done := make(chan error, 1)
	go func() { done <- p.Present(context.Background(), "a.jpg", img) }()

	conn := dialViewer(t, srv)
	defer conn.Close()

	frame := readFrame(t, conn)
	if frame.Title != "a.jpg" {
		t.Errorf("Expected title a.jpg, got %s", frame.Title)
	}
	jpeg, err := base64.StdEncoding.DecodeString(frame.Image)
	if err != nil {
		t.Fatalf("Frame image is not base64: %v", err)
	}
	if len(jpeg) < 2 || jpeg[0] != 0xFF || jpeg[1] != 0xD8 {
		t.Error("Frame image is not a JPEG")
	}

	select {
	case err := <-done:
		t.Fatalf("Present returned before dismissal: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(CommandNext)); err != nil {
		t.Fatalf("Failed to send next: %v", err)
	}
	if err := waitResult(t, done); err != nil {
		t.Errorf("Expected nil after next, got %v", err)
	}

	go func() { done <- p.Present(context.Background(), "b.png", img) }()
	if frame := readFrame(t, conn); frame.Title != "b.png" {
		t.Errorf("Expected title b.png, got %s", frame.Title)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(CommandQuit)); err != nil {
		t.Fatalf("Failed to send quit: %v", err)
	}
	if err := waitResult(t, done); !errors.Is(err, ErrQuit) {
		t.Errorf("Expected ErrQuit, got %v", err)
	}
}

func TestWebPresenter_ContextCancel(t *testing.T) {
	p := NewWebPresenter("127.0.0.1:0", logger.NewNop())
	defer p.Close()

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 8, 8, gocv.MatTypeCV8UC3)
	defer img.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Present(ctx, "c.jpg", img) }()

	cancel()
	if err := waitResult(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestWebPresenter_StartServesPage(t *testing.T) {
	p := NewWebPresenter("127.0.0.1:0", logger.NewNop())
	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer p.Close()

	resp, err := http.Get("http://" + p.Addr() + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "/ws") {
		t.Errorf("Expected viewer page, got %d", resp.StatusCode)
	}

	missing, err := http.Get("http://" + p.Addr() + "/nope")
	if err != nil {
		t.Fatalf("GET /nope failed: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", missing.StatusCode)
	}
}
