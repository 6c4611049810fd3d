package model

// GroupCount is a single (label, count) row from an aggregation query.
type GroupCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Stats holds the admin dashboard aggregates.
type Stats struct {
	TotalUsers       int          `json:"total_users"`
	TotalItems       int          `json:"total_items"`
	TotalRequests    int          `json:"total_requests"`
	PendingRequests  int          `json:"pending_requests"`
	ItemsByCategory  []GroupCount `json:"items_by_category"`
	ItemsByKind      []GroupCount `json:"items_by_kind"`
	RequestsByStatus []GroupCount `json:"requests_by_status"`
}
