package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"auction-marketplace/internal/domain"
	"auction-marketplace/internal/services"
	"auction-marketplace/pkg/logger"
)

// AuctionHandler is a thin HTTP adapter over the in-process auction
// service. It defines no auction semantics of its own.
type AuctionHandler struct {
	service *services.AuctionService
	log     logger.Logger
}

func NewAuctionHandler(service *services.AuctionService, log logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		service: service,
		log:     log,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type CreateListingRequest struct {
	StartingPrice     float64  `json:"starting_price"`
	BuyItNowPrice     *float64 `json:"buy_it_now_price,omitempty"`
	AuctionLengthDays int      `json:"auction_length_days"`
}

type CreateListingResponse struct {
	ListingID string `json:"listing_id"`
}

type BidRequest struct {
	Amount float64 `json:"amount"`
}

func (h *AuctionHandler) Register(g *echo.Group) {
	g.POST("/login", h.Login)
	g.POST("/listings", h.CreateListing)
	g.POST("/listings/:id/bids", h.Bid)
	g.POST("/listings/:id/buy", h.BuyItNow)
	g.GET("/listings/:id/invoices", h.FetchInvoices)
}

func (h *AuctionHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind login request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	token, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (h *AuctionHandler) CreateListing(c echo.Context) error {
	var req CreateListingRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind create-listing request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.StartingPrice <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Starting price must be positive"})
	}
	if req.AuctionLengthDays <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Auction length must be positive"})
	}

	listingID, err := h.service.CreateListing(c.Request().Context(), bearerToken(c), req.StartingPrice, req.BuyItNowPrice, req.AuctionLengthDays)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, CreateListingResponse{ListingID: listingID})
}

func (h *AuctionHandler) Bid(c echo.Context) error {
	var req BidRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind bid request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	err := h.service.Bid(c.Request().Context(), bearerToken(c), c.Param("id"), req.Amount)
	if err != nil {
		return writeServiceError(c, err)
	}
	// A too-low bid is not an error; the current state tells the story.
	return c.NoContent(http.StatusAccepted)
}

func (h *AuctionHandler) BuyItNow(c echo.Context) error {
	err := h.service.BuyItNow(c.Request().Context(), bearerToken(c), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *AuctionHandler) FetchInvoices(c echo.Context) error {
	lines, err := h.service.FetchInvoices(c.Request().Context(), bearerToken(c), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, lines)
}

// bearerToken extracts the auth token from the Authorization header,
// with or without the Bearer prefix.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	return strings.TrimPrefix(auth, "Bearer ")
}

func writeServiceError(c echo.Context, err error) error {
	return c.JSON(statusForError(err), map[string]string{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnknownListing):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSelfBidding):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNoBuyItNowOption):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
