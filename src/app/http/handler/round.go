package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gussgame/src/app/http/dto"
	"gussgame/src/app/http/response"
	"gussgame/src/app/middleware"
	"gussgame/src/core/ports"
	"gussgame/src/core/usecase"
)

// RoundHandler handles round lifecycle and tap endpoints.
type RoundHandler struct {
	roundService *usecase.RoundService
	tapService   *usecase.TapService
}

func NewRoundHandler(roundService *usecase.RoundService, tapService *usecase.TapService) *RoundHandler {
	return &RoundHandler{roundService: roundService, tapService: tapService}
}

// List returns rounds that have not finished yet.
// GET /api/rounds
func (h *RoundHandler) List(c *gin.Context) {
	rounds, err := h.roundService.ListRounds(c.Request.Context())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, dto.RoundListFromSummaries(rounds))
}

// Create schedules a new round. Admin only.
// POST /api/rounds
func (h *RoundHandler) Create(c *gin.Context) {
	round, err := h.roundService.CreateRound(c.Request.Context())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.Created(c, dto.CreatedRoundFromDomain(round))
}

// Details returns the round with the caller's own standing.
// GET /api/rounds/:id
func (h *RoundHandler) Details(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	details, err := h.roundService.GetRoundDetails(c.Request.Context(), roundID, p.UserID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, dto.RoundDetailsFromUsecase(details))
}

// Tap records one tap by the caller.
// POST /api/rounds/:id/tap
func (h *RoundHandler) Tap(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	res, err := h.tapService.Tap(c.Request.Context(), roundID, p.UserID, p.Role.IsSpecial())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, dto.TapFromResult(res))
}

func parseRoundID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid round id", middleware.GetRequestID(c))
		return uuid.Nil, false
	}
	return id, true
}

func principal(c *gin.Context) (*ports.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "authentication required", middleware.GetRequestID(c))
	}
	return p, ok
}
