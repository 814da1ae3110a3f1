package bluesky

// Session is the response from com.atproto.server.createSession.
type Session struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
	Handle    string `json:"handle"`
}

// Author is the subset of a Bluesky actor profile the adapter reads.
type Author struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
}

// Record carries the post text for notification reasons that reference
// a post (mention, reply, quote).
type Record struct {
	Text string `json:"text"`
}

// Notification is one entry from app.bsky.notification.listNotifications.
type Notification struct {
	URI       string `json:"uri"`
	Reason    string `json:"reason"`
	Author    Author `json:"author"`
	Record    Record `json:"record"`
	IndexedAt string `json:"indexedAt"`
}

type notificationList struct {
	Notifications []Notification `json:"notifications"`
}
