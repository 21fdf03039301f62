package domain

import "time"

// RequestContext is built by the auth middleware and lives for one request.
type RequestContext struct {
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"userAgent,omitempty"`
	IP        string    `json:"ip,omitempty"`
}
