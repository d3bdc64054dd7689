package database

import (
	"github.com/insiderbookings/backoffice/internal/models"
)

// PaymentEventRepository handles database operations for the payment_events
// table
type PaymentEventRepository struct {
	db DB
}

// NewPaymentEventRepository creates a new PaymentEventRepository
func NewPaymentEventRepository(db DB) *PaymentEventRepository {
	return &PaymentEventRepository{db: db}
}

// Record stores a webhook delivery. The provider event id is the primary
// key so a replayed event overwrites its own row instead of duplicating.
func (r *PaymentEventRepository) Record(event *models.PaymentEvent) error {
	query := `
		INSERT INTO payment_events (event_id, type, session_id, reference, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO UPDATE
		SET type = EXCLUDED.type, session_id = EXCLUDED.session_id,
			reference = EXCLUDED.reference, payload = EXCLUDED.payload,
			received_at = NOW()
		RETURNING received_at
	`

	return r.db.QueryRow(
		query,
		event.EventID, event.Type, event.SessionID, event.Reference, event.Payload,
	).Scan(&event.ReceivedAt)
}

// Seen reports whether an event id has already been processed
func (r *PaymentEventRepository) Seen(eventID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM payment_events WHERE event_id = $1)`

	var exists bool
	err := r.db.QueryRow(query, eventID).Scan(&exists)
	return exists, err
}
