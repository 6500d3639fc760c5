package handlers

import (
	"errors"
	"net/http"
	"time"

	"auction-service/internal/domain"
	"auction-service/internal/services"
	"auction-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type AuctionHandler struct {
	auctionManager *services.AuctionManager
	bidService     *services.BidService
	log            logger.Logger
}

func NewAuctionHandler(auctionManager *services.AuctionManager, bidService *services.BidService, log logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		auctionManager: auctionManager,
		bidService:     bidService,
		log:            log,
	}
}

type AuctionRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	Image         string          `json:"image"`
	Category      string          `json:"category"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	MinimumPrice  decimal.Decimal `json:"minimum_price"`
	Status        string          `json:"status,omitempty"`
}

type BidRequest struct {
	BidID  uuid.UUID       `json:"bid_id,omitempty"`
	UserID uuid.UUID       `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

type AuctionResponse struct {
	AuctionID     string          `json:"auction_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	Image         string          `json:"image"`
	Category      string          `json:"category"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	Status        string          `json:"status"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	MinimumPrice  decimal.Decimal `json:"minimum_price"`
	Bids          []BidResponse   `json:"bids"`
}

type BidResponse struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

type RejectionResponse struct {
	Error          string          `json:"error"`
	Reason         string          `json:"reason"`
	StartingPrice  decimal.Decimal `json:"starting_price"`
	CurrentHighest decimal.Decimal `json:"current_highest,omitempty"`
}

func (h *AuctionHandler) CreateAuction(c echo.Context) error {
	var req AuctionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	auction, err := h.auctionManager.CreateAuction(c.Request().Context(), services.CreateAuctionInput{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Image:         req.Image,
		Category:      category,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		StartingPrice: req.StartingPrice,
		MinimumPrice:  req.MinimumPrice,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, toAuctionResponse(auction))
}

func (h *AuctionHandler) GetAuction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid auction id"})
	}

	auction, err := h.auctionManager.GetAuction(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, toAuctionResponse(auction))
}

func (h *AuctionHandler) ListAuctions(c echo.Context) error {
	var category *domain.Category
	if raw := c.QueryParam("category"); raw != "" {
		parsed, err := domain.ParseCategory(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		category = &parsed
	}

	auctions, err := h.auctionManager.ListAuctions(c.Request().Context(), category)
	if err != nil {
		return h.writeError(c, err)
	}

	responses := make([]AuctionResponse, 0, len(auctions))
	for _, auction := range auctions {
		responses = append(responses, toAuctionResponse(auction))
	}
	return c.JSON(http.StatusOK, responses)
}

func (h *AuctionHandler) UpdateAuction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid auction id"})
	}

	var req AuctionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	status, err := parseStatus(req.Status)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	auction, err := h.auctionManager.UpdateAuction(c.Request().Context(), id, services.UpdateAuctionInput{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Image:         req.Image,
		Category:      category,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		StartingPrice: req.StartingPrice,
		MinimumPrice:  req.MinimumPrice,
		Status:        status,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, toAuctionResponse(auction))
}

func (h *AuctionHandler) DeleteAuction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid auction id"})
	}

	if err := h.auctionManager.DeleteAuction(c.Request().Context(), id); err != nil {
		return h.writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SubmitBid drives the same application engine as the queue consumer, so a
// synchronous bid and a queued bid obey identical admission rules.
func (h *AuctionHandler) SubmitBid(c echo.Context) error {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid auction id"})
	}

	var req BidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.UserID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}
	if !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
	}

	result, err := h.bidService.PlaceBid(c.Request().Context(), auctionID, domain.Bid{
		ID:     req.BidID,
		UserID: req.UserID,
		Amount: req.Amount,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	if !result.Accepted() {
		return c.JSON(http.StatusBadRequest, RejectionResponse{
			Error:          "bid rejected",
			Reason:         string(result.Rejection.Reason),
			StartingPrice:  result.Rejection.StartingPrice,
			CurrentHighest: result.Rejection.CurrentHighest,
		})
	}

	return c.JSON(http.StatusCreated, toBidResponse(*result.Bid))
}

func (h *AuctionHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "auction not found"})
	case errors.Is(err, domain.ErrInvalidAuction), errors.Is(err, domain.ErrInvalidCategory):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrVersionConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": "auction was modified concurrently, retry"})
	case errors.Is(err, domain.ErrConflictExhausted):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "auction is under heavy contention, retry"})
	default:
		h.log.Error("request failed", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func parseStatus(s string) (domain.AuctionStatus, error) {
	switch s {
	case "draft":
		return domain.AuctionDraft, nil
	case "ongoing":
		return domain.AuctionOnGoing, nil
	case "closed":
		return domain.AuctionClosed, nil
	default:
		return 0, errors.New("status must be one of draft, ongoing, closed")
	}
}

func toAuctionResponse(a *domain.Auction) AuctionResponse {
	bids := make([]BidResponse, 0, len(a.Bids))
	for _, b := range a.Bids {
		bids = append(bids, toBidResponse(b))
	}
	return AuctionResponse{
		AuctionID:     a.ID.String(),
		Title:         a.Title,
		Description:   a.Description,
		Location:      a.Location,
		Image:         a.Image,
		Category:      a.Category.String(),
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Status:        a.Status.String(),
		StartingPrice: a.StartingPrice,
		MinimumPrice:  a.MinimumPrice,
		Bids:          bids,
	}
}

func toBidResponse(b domain.Bid) BidResponse {
	return BidResponse{
		BidID:     b.ID.String(),
		AuctionID: b.AuctionID.String(),
		UserID:    b.UserID.String(),
		Amount:    b.Amount,
		Timestamp: b.Timestamp,
	}
}
