package mastodon

// Account is the subset of a Mastodon account object the adapter reads.
type Account struct {
	Acct        string `json:"acct"`
	DisplayName string `json:"display_name"`
}

// Status is the subset of a Mastodon status object the adapter reads.
type Status struct {
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Notification is one entry from GET /api/v1/notifications.
type Notification struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Account Account `json:"account"`
	Status  *Status `json:"status"`
}
