package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/pkg/live"
	"github.com/goliatone/go-contactform/pkg/shell"
)

const (
	liveWriteTimeout = 5 * time.Second
	liveReadLimit    = 64 << 10
)

// handleLive upgrades to a websocket and drives one form session from its
// read loop. Each connection owns its own state.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.AllowedOrigins,
	})
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(liveReadLimit)

	title := s.form.Title
	session := live.NewSession(s.schema, s.sink, func(count int) string {
		return shell.PageTitle(title, count)
	})

	logger := s.logger.With(zap.String("request_id", RequestIDFrom(r.Context())))
	if err := s.serveSession(r.Context(), conn, session, logger); err != nil {
		logger.Warn("live session ended", zap.Error(err))
		conn.Close(websocket.StatusInternalError, "session error")
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) serveSession(ctx context.Context, conn *websocket.Conn, session *live.Session, logger *zap.Logger) error {
	for {
		var evt live.Event
		if err := wsjson.Read(ctx, conn, &evt); err != nil {
			if isClosed(err) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		msg, err := session.Apply(ctx, evt)
		if err != nil {
			if errors.Is(err, live.ErrUnknownEvent) {
				logger.Debug("rejected live event", zap.String("type", string(evt.Type)), zap.Error(err))
			} else {
				logger.Error("live event failed", zap.String("type", string(evt.Type)), zap.Error(err))
			}
		}

		writeCtx, cancel := context.WithTimeout(ctx, liveWriteTimeout)
		err = wsjson.Write(writeCtx, conn, msg)
		cancel()
		if err != nil {
			if isClosed(err) {
				return nil
			}
			return err
		}
	}
}

func isClosed(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
