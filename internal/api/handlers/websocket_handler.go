package handlers

import (
	"errors"
	"net/http"

	"auction-service/internal/domain"
	ws "auction-service/internal/infrastructure/websocket"
	"auction-service/internal/services"
	"auction-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler serves the live bid feed: clients connect per auction and
// receive bid_update messages as bids are accepted.
type WebSocketHandler struct {
	hub            *ws.Hub
	auctionManager *services.AuctionManager
	log            logger.Logger
}

func NewWebSocketHandler(hub *ws.Hub, auctionManager *services.AuctionManager, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		auctionManager: auctionManager,
		log:            log,
	}
}

func (h *WebSocketHandler) HandleLiveFeed(c echo.Context) error {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid auction id"})
	}

	if _, err := h.auctionManager.GetAuction(c.Request().Context(), auctionID); err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "auction not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "auction_id", auctionID.String(), "error", err)
		return nil
	}

	wrapped := ws.NewConn(conn)
	h.hub.Register(auctionID.String(), wrapped)
	defer func() {
		h.hub.Unregister(auctionID.String(), wrapped)
		wrapped.Close()
	}()

	// The feed is one-way; the read loop only detects client disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
