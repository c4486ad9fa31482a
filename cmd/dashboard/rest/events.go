package rest

import (
	"net/http"
	"sync"
	"time"

	"github.com/banjito/ampcalibration/internal/auth"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const eventsWriteWait = 10 * time.Second

// navigateMessage tells the page to navigate to Path.
type navigateMessage struct {
	Navigate string `json:"navigate"`
}

// socketNavigator navigates a page over its websocket.
type socketNavigator struct {
	logger *zap.Logger
	mutex  sync.Mutex
	conn   *websocket.Conn
	path   string
}

func (n *socketNavigator) Navigate(path string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	_ = n.conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
	if err := n.conn.WriteJSON(navigateMessage{Navigate: path}); err != nil {
		n.logger.Warn("write navigation", zap.Error(err))
		return
	}
	n.path = path
}

func (n *socketNavigator) Path() string {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.path
}

// SessionEvents pushes navigations caused by the browser's session
// transitions to the page over a websocket. The page passes its path in the
// "path" query parameter. Signing in anywhere sends the page home; signing out
// sends it to the login page.
type SessionEvents struct{ API }

func (ep SessionEvents) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pc, ok := ep.page(w, r)
	if !ok {
		return
	}
	browser, ok := ep.browser(w, r)
	if !ok {
		return
	}

	conn, err := ep.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request
		ep.requestLogger(r).Warn("upgrade session events", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := ep.requestLogger(r)
	nav := &socketNavigator{
		logger: logger,
		conn:   conn,
		path:   r.URL.Query().Get("path"),
	}

	stop, err := auth.Listen(r.Context(), logger, browser, pc.Roles(), nav, nil)
	if err != nil {
		logger.Error("listen session events", zap.Error(err))
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "session events unavailable"),
			time.Now().Add(eventsWriteWait),
		)
		return
	}
	pc.OnTeardown(stop)

	// the page sends nothing; reading detects when it goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
