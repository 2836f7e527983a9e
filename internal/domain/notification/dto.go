package notification

// CreateRequest is the POST /notifications body.
type CreateRequest struct {
	Type       string `json:"type" validate:"required"`
	Message    string `json:"message" validate:"required"`
	UserID     int64  `json:"userId"`
	EntityID   *int64 `json:"entityId,omitempty"`
	EntityType string `json:"entityType,omitempty"`
}

// UpdateRequest is the PUT /notifications body. Read only transitions
// forward, so the flag is accepted but never un-sets.
type UpdateRequest struct {
	ID   int64 `json:"id" validate:"required"`
	Read *bool `json:"read,omitempty"`
}

// ListResponse is the GET /notifications body.
type ListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unreadCount"`
	Total         int64          `json:"total"`
}

// UnreadCountResponse is the GET /notifications/unread-count body.
type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

// MarkAllReadResponse reports how many rows a read-all touched.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
