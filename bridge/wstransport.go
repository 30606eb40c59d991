package bridge

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 90 * time.Second
	wsPingPeriod = 60 * time.Second
)

// WSTransport carries bridge messages over a websocket connection.
type WSTransport struct {
	conn *websocket.Conn

	// gorilla/websocket permits one concurrent writer.
	writeMu sync.Mutex

	pingOnce sync.Once
	done     chan struct{}
}

// Compile-time interface check.
var _ Transport = (*WSTransport)(nil)

// Dial connects to a wallet bridge endpoint.
func Dial(ctx context.Context, url string, header http.Header) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return NewWSTransport(conn), nil
}

// NewWSTransport wraps an established websocket connection.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	t := &WSTransport{
		conn: conn,
		done: make(chan struct{}),
	}
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	t.pingOnce.Do(func() { go t.pingLoop() })
	return t
}

func (t *WSTransport) pingLoop() {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.writeMu.Lock()
			err := t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
			t.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-t.done:
			return
		}
	}
}

// Send writes one request to the wallet side.
func (t *WSTransport) Send(ctx context.Context, req Request) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	deadline := time.Now().Add(wsWriteWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return t.conn.WriteJSON(req)
}

// Receive blocks until the next wallet message arrives.
func (t *WSTransport) Receive(ctx context.Context) (Response, error) {
	var resp Response
	if err := t.conn.ReadJSON(&resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Close tears down the websocket connection.
func (t *WSTransport) Close() error {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	t.writeMu.Lock()
	_ = t.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait),
	)
	t.writeMu.Unlock()
	return t.conn.Close()
}
