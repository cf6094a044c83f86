package handler

import (
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// View structs shape the JSON returned to clients. Seat maps are
// rendered as sorted code lists so responses are stable across
// requests.

type sessionView struct {
	ID             uint64    `json:"id"`
	MovieID        uint64    `json:"movie_id"`
	RoomID         uint64    `json:"room_id"`
	Capacity       int       `json:"capacity"`
	StartsAt       time.Time `json:"starts_at"`
	BasePriceCents uint32    `json:"base_price_cents"`
	Status         string    `json:"status"`
	AvailableSeats int       `json:"available_seats"`
	Seats          []string  `json:"seats,omitempty"`
}

func newSessionView(s *model.Session, includeSeats bool) sessionView {
	v := sessionView{
		ID:             s.ID,
		MovieID:        s.MovieID,
		RoomID:         s.RoomID,
		Capacity:       s.Capacity,
		StartsAt:       s.StartsAt,
		BasePriceCents: s.BasePriceCents,
		Status:         string(s.Status),
		AvailableSeats: s.Seats.AvailableCount(),
	}
	if includeSeats {
		v.Seats = availableCodes(s)
	}
	return v
}

func availableCodes(s *model.Session) []string {
	out := make([]string, 0, len(s.Seats))
	for _, code := range s.Seats.Codes() {
		if s.Seats[code] {
			out = append(out, code)
		}
	}
	return out
}

type ticketView struct {
	ID         uint64 `json:"id"`
	Code       string `json:"code"`
	PurchaseID uint64 `json:"purchase_id"`
	SessionID  uint64 `json:"session_id"`
	SeatCode   string `json:"seat_code"`
	Fare       string `json:"fare"`
	PriceCents uint32 `json:"price_cents"`
	Status     string `json:"status"`
}

func newTicketView(t *model.Ticket) ticketView {
	return ticketView{
		ID:         t.ID,
		Code:       t.Code,
		PurchaseID: t.PurchaseID,
		SessionID:  t.SessionID,
		SeatCode:   t.SeatCode,
		Fare:       string(t.Fare),
		PriceCents: t.PriceCents,
		Status:     string(t.Status),
	}
}

func newTicketViews(tickets []*model.Ticket) []ticketView {
	out := make([]ticketView, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, newTicketView(t))
	}
	return out
}

type purchaseView struct {
	ID         uint64       `json:"id"`
	Ref        string       `json:"ref"`
	Status     string       `json:"status"`
	TotalCents uint32       `json:"total_cents"`
	CreatedAt  time.Time    `json:"created_at"`
	Tickets    []ticketView `json:"tickets,omitempty"`
}

func newPurchaseView(p *model.Purchase, tickets []*model.Ticket) purchaseView {
	return purchaseView{
		ID:         p.ID,
		Ref:        p.Ref.String(),
		Status:     string(p.Status),
		TotalCents: p.TotalCents,
		CreatedAt:  p.CreatedAt,
		Tickets:    newTicketViews(tickets),
	}
}

type validationRecordView struct {
	ID       string    `json:"id"`
	TicketID uint64    `json:"ticket_id"`
	ActorID  uint64    `json:"actor_id"`
	Valid    bool      `json:"valid"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

type rescheduleRecordView struct {
	ID            string    `json:"id"`
	TicketID      uint64    `json:"ticket_id"`
	FromSessionID uint64    `json:"from_session_id"`
	FromSeat      string    `json:"from_seat"`
	ToSessionID   uint64    `json:"to_session_id"`
	ToSeat        string    `json:"to_seat"`
	ActorID       uint64    `json:"actor_id"`
	Reason        string    `json:"reason"`
	At            time.Time `json:"at"`
}

func newValidationRecordViews(recs []*model.ValidationRecord) []validationRecordView {
	out := make([]validationRecordView, 0, len(recs))
	for _, r := range recs {
		out = append(out, validationRecordView{
			ID:       r.ID.String(),
			TicketID: r.TicketID,
			ActorID:  r.ActorID,
			Valid:    r.Valid,
			Message:  r.Message,
			At:       r.At,
		})
	}
	return out
}

func newRescheduleRecordViews(recs []*model.RescheduleRecord) []rescheduleRecordView {
	out := make([]rescheduleRecordView, 0, len(recs))
	for _, r := range recs {
		out = append(out, rescheduleRecordView{
			ID:            r.ID.String(),
			TicketID:      r.TicketID,
			FromSessionID: r.FromSessionID,
			FromSeat:      r.FromSeat,
			ToSessionID:   r.ToSessionID,
			ToSeat:        r.ToSeat,
			ActorID:       r.ActorID,
			Reason:        r.Reason,
			At:            r.At,
		})
	}
	return out
}
