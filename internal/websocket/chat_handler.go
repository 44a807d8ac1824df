package websocket

import (
	"context"

	"jotha-be/internal/dto"
	"jotha-be/internal/pkg/logger"
	"jotha-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatHandler answers questions over a websocket bound to one session.
type ChatHandler struct {
	chatService service.IChatService
	hub         *Hub
	logger      logger.ILogger
}

func NewChatHandler(chatService service.IChatService, hub *Hub, log logger.ILogger) *ChatHandler {
	return &ChatHandler{chatService: chatService, hub: hub, logger: log}
}

func (h *ChatHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/chat/v1/ws/:id", h.Upgrade, websocket.New(h.ServeWs))
}

// Upgrade rejects plain HTTP and unknown sessions before the handshake.
func (h *ChatHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, err := h.chatService.GetHistory(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.Next()
}

// ServeWs handles websocket requests from the peer.
func (h *ChatHandler) ServeWs(conn *websocket.Conn) {
	client := newClient(h.hub, conn, conn.Params("id"))
	if !h.hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump(h.handleFrame) // Run readPump in current goroutine (handler)
}

func (h *ChatHandler) handleFrame(c *Client, in Inbound) {
	if in.Type != FrameAsk {
		c.reply(Outbound{Type: FrameError, Message: "unsupported frame type"})
		return
	}
	// One question in flight per socket.
	if !c.busy.CompareAndSwap(false, true) {
		c.reply(Outbound{Type: FrameError, Message: "a question is already being answered"})
		return
	}

	go func() {
		defer c.busy.Store(false)
		h.ask(context.Background(), c, in.Question)
	}()
}

func (h *ChatHandler) ask(ctx context.Context, c *Client, question string) {
	res, err := h.chatService.Ask(ctx, &dto.AskRequest{SessionId: c.SessionID, Question: question})
	if err != nil {
		h.logger.Warn("WS", "Socket question failed", map[string]interface{}{
			"session_id": c.SessionID,
			"error":      err.Error(),
		})
		c.reply(Outbound{Type: FrameError, Message: err.Error()})
		return
	}
	h.hub.Deliver(c.SessionID, encodeFrame(Outbound{Type: FrameAnswer, Data: res}))
}
