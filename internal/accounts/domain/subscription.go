package domain

import "time"

// Subscription links a subscriber to a channel (both are users).
type Subscription struct {
	ID           string
	ChannelID    string
	SubscriberID string
	CreatedAt    time.Time
}

// ChannelProfile is the public view of a user's channel, with subscription
// aggregates computed relative to the viewing user.
type ChannelProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	AvatarURL         string `json:"avatar"`
	CoverImageURL     string `json:"coverImage,omitempty"`
	SubscriberCount   int64  `json:"subscriberCount"`
	SubscribedToCount int64  `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}
