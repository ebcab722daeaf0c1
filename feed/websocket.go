package feed

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/coder/websocket"
)

// Handler returns an http.Handler accepting websocket clients. Every text
// message is split into lines and pushed. After each message the client is
// sent the room left in the ring buffer as a decimal string, or "-1" for a
// fixed-text target.
func (f *Feeder) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: f.origins,
		})
		if err != nil {
			f.log.Debug("websocket accept failed", "err", err)
			return
		}
		defer conn.CloseNow()

		logger := f.log.With("remote", r.RemoteAddr)
		logger.Info("feed client connected")
		if err := f.serve(r.Context(), conn); err != nil {
			logger.Warn("feed client failed", "err", err)
			return
		}
		logger.Info("feed client disconnected")
	})
}

func (f *Feeder) serve(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(int64(f.maxLine))
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			return conn.Close(websocket.StatusUnsupportedData, "text messages only")
		}

		room := f.room()
		for _, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
			room = f.Push(line)
		}
		if err := conn.Write(ctx, websocket.MessageText, []byte(strconv.Itoa(room))); err != nil {
			return err
		}
	}
}
