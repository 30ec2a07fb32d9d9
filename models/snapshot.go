package models

import "time"

// Notification severities, matching the toolbar's notice styles.
const (
	NoticeInfo    = "info"
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notification is a transient user-visible message
type Notification struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Snapshot is the read-only view handed to the render/UI layer
type Snapshot struct {
	SessionID        string         `json:"sessionId"`
	NetworkID        string         `json:"networkId"`
	Guest            bool           `json:"guest"`
	Money            float64        `json:"money"`
	RevenuePerSecond float64        `json:"revenuePerSecond"`
	StationCount     int            `json:"stationCount"`
	LineCount        int            `json:"lineCount"`
	NextStationCost  float64        `json:"nextStationCost"`
	NextLineCost     float64        `json:"nextLineCost"`
	Tool             string         `json:"tool"`
	SelectedStation  string         `json:"selectedStation,omitempty"`
	Stations         []Station      `json:"stations"`
	Lines            []Line         `json:"lines"`
	Trains           []Train        `json:"trains"`
	Notifications    []Notification `json:"notifications,omitempty"`
}

// CreateSessionRequest starts a simulation session
type CreateSessionRequest struct {
	Guest     bool   `json:"guest"`
	NetworkID string `json:"networkId"`
}

// ToolRequest selects the active tool
type ToolRequest struct {
	Tool string `json:"tool" binding:"required,oneof=none station line delete"`
}

// ClickRequest is a pointer click on the map
type ClickRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TickRequest advances the simulation by one host frame
type TickRequest struct {
	DtMs   float64 `json:"dtMs" binding:"gte=0,lte=60000"`
	Frames int     `json:"frames" binding:"gte=0,lte=10000"`
}

// ActionResponse reports the outcome of a session command
type ActionResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Action   string    `json:"action,omitempty"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}
