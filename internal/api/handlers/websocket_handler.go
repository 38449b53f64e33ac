package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	infraws "auction-marketplace/internal/infrastructure/websocket"
	"auction-marketplace/internal/services"
	"auction-marketplace/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades feed subscriptions for a listing's event
// stream. Subscribers authenticate with their token as a query
// parameter; the stream is read-only, inbound messages are discarded.
type WebSocketHandler struct {
	service     *services.AuctionService
	connManager *infraws.ConnectionManager
	readLimit   int64
	log         logger.Logger
}

func NewWebSocketHandler(service *services.AuctionService, connManager *infraws.ConnectionManager, readLimit int64, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		service:     service,
		connManager: connManager,
		readLimit:   readLimit,
		log:         log,
	}
}

func (h *WebSocketHandler) Register(g *echo.Group) {
	g.GET("/listings/:id/feed", h.HandleFeed)
}

func (h *WebSocketHandler) HandleFeed(c echo.Context) error {
	listingID := c.Param("id")

	if _, err := h.service.Authenticate(c.QueryParam("token")); err != nil {
		return writeServiceError(c, err)
	}
	if !h.service.HasListing(listingID) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown listing id"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error("Failed to upgrade feed connection", "listing_id", listingID, "error", err)
		return nil
	}
	conn.SetReadLimit(h.readLimit)

	client := infraws.NewClient(conn)
	h.connManager.Register(listingID, client)

	go h.drain(conn, client, listingID)
	return nil
}

// drain keeps the read side alive so close frames and pings are
// processed, then tears the subscriber down when the peer goes away.
func (h *WebSocketHandler) drain(conn *websocket.Conn, client *infraws.Client, listingID string) {
	defer func() {
		h.connManager.Unregister(listingID, client)
		client.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
