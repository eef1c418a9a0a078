package dto

import (
	"time"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// StockReportResponse is the stock summary report.
type StockReportResponse struct {
	ItemCount     int            `json:"itemCount"`
	TotalQuantity int            `json:"totalQuantity"`
	LowStock      []ItemResponse `json:"lowStock"`
}

// MovementReportResponse aggregates movements in [from, to).
type MovementReportResponse struct {
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	CheckInCount     int       `json:"checkInCount"`
	CheckInQuantity  int       `json:"checkInQuantity"`
	CheckOutCount    int       `json:"checkOutCount"`
	CheckOutQuantity int       `json:"checkOutQuantity"`
}

// HoldingResponse is what one employee holds of one item.
type HoldingResponse struct {
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity"`
}

// AuditEntryResponse is one audit log row.
type AuditEntryResponse struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actorId"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func NewStockReportResponse(s *domain.StockSummary) StockReportResponse {
	return StockReportResponse{ItemCount: s.ItemCount, TotalQuantity: s.TotalQuantity, LowStock: NewItemList(s.LowStock)}
}

func NewMovementReportResponse(s *domain.MovementSummary) MovementReportResponse {
	return MovementReportResponse{
		From:             s.From,
		To:               s.To,
		CheckInCount:     s.CheckInCount,
		CheckInQuantity:  s.CheckInQuantity,
		CheckOutCount:    s.CheckOutCount,
		CheckOutQuantity: s.CheckOutQuantity,
	}
}

func NewHoldingList(holdings []domain.Holding) []HoldingResponse {
	out := make([]HoldingResponse, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, HoldingResponse(h))
	}
	return out
}

func NewAuditList(entries []domain.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		details := e.Details
		if details == nil {
			details = map[string]any{}
		}
		out = append(out, AuditEntryResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Details:    details,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
