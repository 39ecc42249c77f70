package services

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PushSender delivers push notifications to device tokens. Delivery failure
// is never surfaced into pickup state.
type PushSender interface {
	SendPickupAssignedNotification(token, pickupID, binCode, priority string) error
	SendPickupReminderNotification(token, pickupID, binCode string, minutesUntil int) error
	SendPickupOverdueNotification(token, pickupID, binCode string, minutesOverdue int) error
	SendMulticast(tokens []string, title, body string, data map[string]string) error
}

// Broadcaster fans typed event payloads out to connected observers. Purely a
// sink; no acknowledgement is consumed.
type Broadcaster interface {
	BroadcastToUser(userID string, data interface{})
	BroadcastToRole(role string, data interface{})
}

// DriverPushTokens returns the registered FCM tokens for a driver's user
// account.
func DriverPushTokens(db *sqlx.DB, driverID string) ([]string, error) {
	var tokens []string
	query := `
		SELECT t.token
		FROM fcm_tokens t
		JOIN drivers d ON d.user_id = t.user_id
		WHERE d.id = $1
	`
	if err := db.Select(&tokens, query, driverID); err != nil {
		return nil, fmt.Errorf("fetch driver push tokens: %w", err)
	}
	return tokens, nil
}

// AdminPushTokens returns the registered FCM tokens of every admin user.
func AdminPushTokens(db *sqlx.DB) ([]string, error) {
	var tokens []string
	query := `
		SELECT t.token
		FROM fcm_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE u.role = 'admin'
	`
	if err := db.Select(&tokens, query); err != nil {
		return nil, fmt.Errorf("fetch admin push tokens: %w", err)
	}
	return tokens, nil
}
