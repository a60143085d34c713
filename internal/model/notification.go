package model

import (
	"fmt"
	"time"
)

// NotificationCategory classifies a notification. The set is closed.
type NotificationCategory string

const (
	CategorySystem        NotificationCategory = "system"
	CategoryTestActivity  NotificationCategory = "test_activity"
	CategoryAccount       NotificationCategory = "account"
	CategoryFeatureUpdate NotificationCategory = "feature_update"
	CategoryTip           NotificationCategory = "tip"
	CategoryError         NotificationCategory = "error"
)

// NotificationCategories lists every valid category in display order.
var NotificationCategories = []NotificationCategory{
	CategorySystem,
	CategoryTestActivity,
	CategoryAccount,
	CategoryFeatureUpdate,
	CategoryTip,
	CategoryError,
}

// Valid reports whether c is one of the known categories.
func (c NotificationCategory) Valid() bool {
	for _, known := range NotificationCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseNotificationCategory converts s into a category, rejecting
// anything outside the closed set.
func ParseNotificationCategory(s string) (NotificationCategory, error) {
	c := NotificationCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown notification category %q", s)
	}
	return c, nil
}

// Notification represents one user-facing event, such as a finished
// practice test or a failed generation.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// UserID scopes the notification to its recipient.
	UserID string `json:"user_id"`

	// Title is the short headline.
	Title string `json:"title"`

	// Description is the human-readable body text.
	Description string `json:"description"`

	// Href is the optional navigation target. Empty means non-navigable.
	Href string `json:"href,omitempty"`

	// Read indicates whether the user has seen this notification.
	// It only ever moves from false to true.
	Read bool `json:"read"`

	// Date is when this notification was created.
	Date time.Time `json:"date"`

	// Category is the notification's place in the fixed taxonomy.
	Category NotificationCategory `json:"category"`

	// Icon is a decorative hint for renderers.
	Icon string `json:"icon,omitempty"`
}

// Navigable reports whether the notification links somewhere.
func (n Notification) Navigable() bool {
	return n.Href != ""
}
