package dto

import (
	"time"

	"github.com/google/uuid"

	"gussgame/src/core/domain"
	"gussgame/src/core/usecase"
)

// CreatedRoundResponse is returned by POST /api/rounds.
type CreatedRoundResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
}

// RoundListItem is one entry of GET /api/rounds.
type RoundListItem struct {
	ID      uuid.UUID          `json:"id"`
	StartAt time.Time          `json:"startAt"`
	EndAt   time.Time          `json:"endAt"`
	Status  domain.RoundStatus `json:"status"`
}

type WinnerResponse struct {
	Username string `json:"username"`
	Points   int64  `json:"points"`
}

// RoundDetailsResponse is returned by GET /api/rounds/:id. Winner is omitted
// until the round has finished with at least one ordinary participant.
type RoundDetailsResponse struct {
	ID          uuid.UUID          `json:"id"`
	StartAt     time.Time          `json:"startAt"`
	EndAt       time.Time          `json:"endAt"`
	Status      domain.RoundStatus `json:"status"`
	TotalPoints int64              `json:"totalPoints"`
	MyPoints    int64              `json:"myPoints"`
	MyTaps      int64              `json:"myTaps"`
	Winner      *WinnerResponse    `json:"winner,omitempty"`
}

type TapResponse struct {
	Points int64 `json:"points"`
	Taps   int64 `json:"taps"`
}

func CreatedRoundFromDomain(r *domain.Round) CreatedRoundResponse {
	return CreatedRoundResponse{ID: r.ID, CreatedAt: r.CreatedAt, StartAt: r.StartAt, EndAt: r.EndAt}
}

func RoundListFromSummaries(rounds []usecase.RoundSummary) []RoundListItem {
	items := make([]RoundListItem, 0, len(rounds))
	for _, r := range rounds {
		items = append(items, RoundListItem{
			ID:      r.Round.ID,
			StartAt: r.Round.StartAt,
			EndAt:   r.Round.EndAt,
			Status:  r.Status,
		})
	}
	return items
}

func RoundDetailsFromUsecase(d *usecase.RoundDetails) RoundDetailsResponse {
	res := RoundDetailsResponse{
		ID:          d.Round.ID,
		StartAt:     d.Round.StartAt,
		EndAt:       d.Round.EndAt,
		Status:      d.Status,
		TotalPoints: d.Round.TotalPoints,
		MyPoints:    d.MyPoints,
		MyTaps:      d.MyTaps,
	}
	if w, ok := d.Winner(); ok {
		res.Winner = &WinnerResponse{Username: w.Username, Points: w.Points}
	}
	return res
}

func TapFromResult(r *usecase.TapResult) TapResponse {
	return TapResponse{Points: r.Points, Taps: r.Taps}
}
