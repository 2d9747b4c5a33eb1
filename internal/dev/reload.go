package dev

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReloadPath is the hot reload WebSocket endpoint.
const ReloadPath = "/_wcdk/reload"

// Reload message types.
const (
	MsgReload = "reload"
	MsgError  = "error"
	MsgClear  = "clear"
)

const (
	writeWait   = 5 * time.Second
	sendBacklog = 8
)

// ReloadMessage is one frame pushed to preview pages.
type ReloadMessage struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

// reloadHub fans reload messages out to connected preview pages. Each
// connection has its own writer goroutine fed through a buffered channel; a
// page that falls behind misses messages rather than stalling a rebuild.
type reloadHub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]chan []byte
	upgrader websocket.Upgrader
}

func newReloadHub() *reloadHub {
	return &reloadHub{
		conns: make(map[*websocket.Conn]chan []byte),
		// Preview pages are served by the same dev server on any host name.
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// ServeHTTP upgrades the request and holds the connection until the page
// goes away.
func (h *reloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	out := make(chan []byte, sendBacklog)
	h.mu.Lock()
	h.conns[conn] = out
	h.mu.Unlock()

	go func() {
		for data := range out {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if conn.WriteMessage(websocket.TextMessage, data) != nil {
				conn.Close()
				return
			}
		}
	}()

	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	h.drop(conn)
}

func (h *reloadHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if out, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		close(out)
	}
	h.mu.Unlock()
	conn.Close()
}

// send queues msg for every page and returns how many accepted it.
func (h *reloadHub) send(msg ReloadMessage) int {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, out := range h.conns {
		select {
		case out <- data:
			n++
		default:
		}
	}
	return n
}

func (h *reloadHub) reload() int          { return h.send(ReloadMessage{Type: MsgReload}) }
func (h *reloadHub) fail(text string) int { return h.send(ReloadMessage{Type: MsgError, Error: text}) }
func (h *reloadHub) clear() int           { return h.send(ReloadMessage{Type: MsgClear}) }

func (h *reloadHub) clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// close disconnects every page. The read loops in ServeHTTP then unregister
// them.
func (h *reloadHub) close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}

// reloadScript is appended to preview pages when hot reload is on. Build
// errors are shown in a banner until the next successful build.
const reloadScript = `<script>
(function () {
  var url = (location.protocol === "https:" ? "wss://" : "ws://") + location.host + "` + ReloadPath + `";
  function banner(text) {
    var el = document.getElementById("wcdk-error");
    if (text === null) { if (el) el.remove(); return; }
    if (!el) {
      el = document.createElement("pre");
      el.id = "wcdk-error";
      el.style.cssText = "position:fixed;top:0;left:0;right:0;margin:0;padding:12px;background:#300;color:#fcc;white-space:pre-wrap;z-index:2147483647";
      document.body.prepend(el);
    }
    el.textContent = text;
  }
  function open() {
    var ws = new WebSocket(url);
    ws.onmessage = function (e) {
      var m = JSON.parse(e.data);
      if (m.type === "reload") location.reload();
      else if (m.type === "error") banner(m.error);
      else if (m.type === "clear") banner(null);
    };
    ws.onclose = function () { setTimeout(open, 1000); };
  }
  open();
})();
</script>`
