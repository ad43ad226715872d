package httpapi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const sseKeepalive = 15 * time.Second

// subscribeEvents streams progress snapshots for one project as
// server-sent events. The stream ends after the terminal snapshot, or when
// the client goes away.
func (s *Server) subscribeEvents(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if _, err := s.d.Projects.Get(c.UserContext(), id); err != nil {
		return apiError(c, err)
	}

	sub := s.d.Orchestration.Subscribe(id)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Unsubscribe()
		keepalive := time.NewTicker(sseKeepalive)
		defer keepalive.Stop()

		for {
			select {
			case snap, ok := <-sub.C:
				if !ok {
					return
				}
				data, err := json.Marshal(snap)
				if err != nil {
					return
				}
				fmt.Fprintf(w, "id: %d\nevent: progress\ndata: %s\n\n", snap.Seq, data)
				if err := w.Flush(); err != nil {
					// Client disconnected.
					return
				}
			case <-keepalive.C:
				fmt.Fprint(w, ": keepalive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}
