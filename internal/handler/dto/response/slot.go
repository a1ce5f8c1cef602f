package response

import (
	"time"

	"slotbook/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

type SlotResponse struct {
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	Available         bool      `json:"available"`
	RemainingCapacity int       `json:"remainingCapacity"`
	Reason            string    `json:"reason,omitempty"`
}

type SlotsResponse struct {
	Slots []SlotResponse `json:"slots"`
}

func FromSlotViews(views []queries.SlotView) SlotsResponse {
	slots := make([]SlotResponse, 0, len(views))
	_ = copier.Copy(&slots, &views)
	return SlotsResponse{Slots: slots}
}
