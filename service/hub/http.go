package hub

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"collabhub/tools/errs"
)

// Internal REST surface for the CRUD layer: an explicit dependency on the
// Notification Dispatcher instead of reaching into ambient server state.

type notifyRequest struct {
	UserIDs []string       `json:"userIds"`
	Email   string         `json:"email"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

// HandleNotify pushes an event to the targets' live connections. Offline
// targets are skipped silently; "delivered" reports connections reached.
func (s *Server) HandleNotify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrBadEvent.WithDetail(err.Error()))
		return
	}
	if req.Event == "" || (len(req.UserIDs) == 0 && req.Email == "") {
		c.JSON(http.StatusBadRequest, errs.ErrBadEvent.WithDetail("event and target required"))
		return
	}

	delivered := 0
	if req.Email != "" {
		delivered += s.notifier.NotifyEmail(c.Request.Context(), req.Email, req.Event, req.Payload)
	}
	if len(req.UserIDs) > 0 {
		delivered += s.notifier.NotifyUsers(req.UserIDs, req.Event, req.Payload)
	}
	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}

// HandleOnline reports a user's live connection count. A user with no
// local connections may still be online on another hub node; the presence
// store is consulted for that case when it supports lookups.
func (s *Server) HandleOnline(c *gin.Context) {
	userID := c.Query("user")
	if userID == "" {
		c.JSON(http.StatusBadRequest, errs.ErrBadEvent.WithDetail("user required"))
		return
	}
	online, n := s.reg.Online(userID)
	resp := gin.H{"userId": userID, "online": online, "connections": n}
	if !online {
		if lk, ok := s.deps.Presence.(PresenceLookup); ok {
			if node, on, err := lk.Lookup(c.Request.Context(), userID); err == nil && on {
				resp["online"] = true
				resp["node"] = node
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}
