package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// lookupPresence mimics a store that sees presence persisted by other nodes.
type lookupPresence struct {
	*fakePresence
	node string
}

func (l *lookupPresence) Lookup(_ context.Context, _ string) (string, bool, error) {
	if l.node == "" {
		return "", false, nil
	}
	return l.node, true, nil
}

func internalRouter(s *Server) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/internal/online", s.HandleOnline)
	r.POST("/internal/notify", s.HandleNotify)
	return r
}

func getJSON(t *testing.T, r *gin.Engine, method, target, body string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	resp := map[string]any{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response body %q: %v", w.Body.String(), err)
		}
	}
	return w.Code, resp
}

func TestHandleOnline(t *testing.T) {
	s := newTestServer(&fakeStore{}, newFakePresence())
	connect(s, testClient("conn-1", "alice"))
	r := internalRouter(s)

	code, resp := getJSON(t, r, http.MethodGet, "/internal/online?user=alice", "")
	if code != http.StatusOK || resp["online"] != true || resp["connections"] != float64(1) {
		t.Fatalf("unexpected response %d %v", code, resp)
	}

	code, resp = getJSON(t, r, http.MethodGet, "/internal/online?user=ghost", "")
	if code != http.StatusOK || resp["online"] != false {
		t.Fatalf("offline user must report online=false, got %d %v", code, resp)
	}

	if code, _ := getJSON(t, r, http.MethodGet, "/internal/online", ""); code != http.StatusBadRequest {
		t.Fatalf("missing user must be rejected, got %d", code)
	}
}

func TestHandleOnlineConsultsPresenceStore(t *testing.T) {
	p := &lookupPresence{fakePresence: newFakePresence(), node: "hub-2"}
	s := NewServer("hub-test", Deps{Msgs: &fakeStore{}, Presence: p})
	r := internalRouter(s)

	// no local connection, but another node persisted the user online
	code, resp := getJSON(t, r, http.MethodGet, "/internal/online?user=alice", "")
	if code != http.StatusOK || resp["online"] != true || resp["node"] != "hub-2" {
		t.Fatalf("expected remote-node presence, got %d %v", code, resp)
	}
}

func TestHandleNotify(t *testing.T) {
	s := newTestServer(&fakeStore{}, newFakePresence())
	c := testClient("conn-1", "alice")
	connect(s, c)
	r := internalRouter(s)

	code, resp := getJSON(t, r, http.MethodPost, "/internal/notify",
		`{"userIds":["alice","ghost"],"event":"meeting-invite","payload":{"meetingId":"m1"}}`)
	if code != http.StatusOK || resp["delivered"] != float64(1) {
		t.Fatalf("unexpected response %d %v", code, resp)
	}
	data := recvEvent(t, c, EvMeetingInvite)
	if data["meetingId"] != "m1" {
		t.Fatalf("unexpected payload %v", data)
	}

	// event name and at least one target are required
	if code, _ := getJSON(t, r, http.MethodPost, "/internal/notify", `{"userIds":["alice"]}`); code != http.StatusBadRequest {
		t.Fatalf("missing event must be rejected, got %d", code)
	}
	if code, _ := getJSON(t, r, http.MethodPost, "/internal/notify", `{"event":"x"}`); code != http.StatusBadRequest {
		t.Fatalf("missing target must be rejected, got %d", code)
	}
}
