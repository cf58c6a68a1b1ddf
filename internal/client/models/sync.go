package models

// TriggerStatus is reported by POST /sync/quick and /sync/full.
type TriggerStatus string

const (
	TriggerStarted        TriggerStatus = "started"
	TriggerAlreadyRunning TriggerStatus = "already_running"
)

// TriggerResult is the response of a sync trigger.
type TriggerResult struct {
	Status  TriggerStatus `json:"status"`
	Type    string        `json:"type,omitempty"`
	Message string        `json:"message,omitempty"`
}

// SyncProgress mirrors GET /sync/progress.
type SyncProgress struct {
	InProgress   bool   `json:"in_progress"`
	Message      string `json:"message"`
	CurrentOwner string `json:"current_owner,omitempty"`
	ItemsAdded   int    `json:"items_added"`
}

// SyncStatus mirrors GET /sync/status.
type SyncStatus struct {
	Running       bool    `json:"running"`
	IntervalHours float64 `json:"interval_hours"`
	TotalOwners   int     `json:"total_owners"`
	TotalItems    int     `json:"total_items"`
}

// BackgroundStatus is returned by the background start/stop endpoints.
type BackgroundStatus struct {
	Status        string  `json:"status"`
	IntervalHours float64 `json:"interval_hours,omitempty"`
}

// SyncHistoryEntry is one row of GET /sync/history/{owner}.
type SyncHistoryEntry struct {
	SyncTime     string `json:"sync_time"`
	ItemsAdded   int    `json:"items_added"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Health mirrors GET /health.
type Health struct {
	Status      string `json:"status"`
	AuthEnabled bool   `json:"auth_enabled"`
	Version     string `json:"version"`
}

// OfflineError is the body of the synthesized 503 response.
type OfflineError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
