package model

import "time"

// URLEntry is a stored short URL. Values are copied in and out of the store;
// the repository is the only place that mutates persisted state.
type URLEntry struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	SecretKey string    `json:"secret_key"`
	TargetURL string    `json:"target_url"`
	IsActive  bool      `json:"is_active"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateURLRequest struct {
	TargetURL string `json:"target_url"`
}

// URLInfo is the public view of an entry returned on create and admin lookup.
type URLInfo struct {
	TargetURL string `json:"target_url"`
	IsActive  bool   `json:"is_active"`
	Clicks    int64  `json:"clicks"`
	URL       string `json:"url"`
	AdminURL  string `json:"admin_url"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}
