package httpapi

import (
	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/classcord/classcord-server/internal/server"
)

// WSBridge adapts accepted WebSocket connections into the chat engine. Each
// text message carries the same newline-delimited JSON protocol as the TCP
// port, so websocket.NetConn hands the engine an ordinary net.Conn.
type WSBridge struct {
	chat *server.Server
	log  *zerolog.Logger
}

// NewWSBridge builds the bridge over the chat engine.
func NewWSBridge(chat *server.Server, logger *zerolog.Logger) *WSBridge {
	return &WSBridge{chat: chat, log: logger}
}

// Handle upgrades the request and runs the connection handler until the peer
// disconnects.
// GET /ws
func (b *WSBridge) Handle(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		b.log.Warn().Err(err).Msg("ws accept error")
		return
	}

	ctx := c.Request.Context()
	netConn := websocket.NetConn(ctx, conn, websocket.MessageText)
	b.chat.HandleConn(ctx, netConn)

	conn.Close(websocket.StatusNormalClosure, "closing")
}
