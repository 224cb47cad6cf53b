package dto

import (
	"time"

	"github.com/tidianesow/medical-e-academy/internal/repository"
)

// UserBadgeResponse is a badge held by the caller.
type UserBadgeResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AwardedAt   time.Time `json:"awarded_at"`
}

// NewUserBadgeResponseSlice converts repository rows.
func NewUserBadgeResponseSlice(rows []repository.UserBadgeRow) []UserBadgeResponse {
	responses := make([]UserBadgeResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, UserBadgeResponse{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			AwardedAt:   row.AwardedAt,
		})
	}
	return responses
}
