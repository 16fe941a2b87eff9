package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Nonce actions accepted by the mutating endpoints.
const (
	ActionUpload      = "upload"
	ActionDeleteFrame = "delete_frame"
	ActionSettings    = "settings"
)

// Actions lists every nonce action.
func Actions() []string {
	return []string{ActionUpload, ActionDeleteFrame, ActionSettings}
}

// Animation describes an animation in a transport-friendly format.
type Animation struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	FrameCount int    `json:"frameCount"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Easing     string `json:"easing"`
	LoopCount  int    `json:"loopCount"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// FrameRef is one frame in display order.
type FrameRef struct {
	Ordinal int    `json:"ordinal"`
	URL     string `json:"url"`
}

// AnimationDetail wraps an animation with its frame list.
type AnimationDetail struct {
	Animation Animation  `json:"animation"`
	Frames    []FrameRef `json:"frames"`
}

// AnimationListResponse wraps a collection of animations.
type AnimationListResponse struct {
	Animations []Animation `json:"animations"`
}

// AnimationResponse wraps a single animation.
type AnimationResponse struct {
	Animation Animation `json:"animation"`
}

// CreateAnimationRequest is the body of POST /api/animations.
type CreateAnimationRequest struct {
	Title string `json:"title"`
}

// DeleteAnimationResponse reports a removed animation.
type DeleteAnimationResponse struct {
	Deleted       bool     `json:"deleted"`
	FramesRemoved int      `json:"framesRemoved"`
	Warnings      []string `json:"warnings,omitempty"`
}

// TitleRequest renames an animation.
type TitleRequest struct {
	Title string `json:"title"`
	Nonce string `json:"nonce"`
}

// SettingsRequest updates playback settings. Nil fields are left unchanged.
type SettingsRequest struct {
	Easing    *string `json:"easing,omitempty"`
	LoopCount *int    `json:"loopCount,omitempty"`
	Nonce     string  `json:"nonce"`
}

// SettingsResponse reports the stored settings and any rejected fields.
type SettingsResponse struct {
	Animation Animation `json:"animation"`
	Rejected  []string  `json:"rejected"`
}

// FrameUploadResponse is the success body of a frame upload.
type FrameUploadResponse struct {
	FrameIndex int      `json:"frameIndex"`
	FrameURL   string   `json:"frameUrl"`
	FrameCount int      `json:"frameCount"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Replaced   bool     `json:"replaced,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// FrameDeleteResponse is the success body of a frame deletion.
type FrameDeleteResponse struct {
	FrameCount int      `json:"frameCount"`
	Warnings   []string `json:"warnings,omitempty"`
}

// NonceResponse carries an anti-forgery token.
type NonceResponse struct {
	Nonce string `json:"nonce"`
}

// EmbedResponse carries rendered embed markup.
type EmbedResponse struct {
	HTML string `json:"html"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// StatusResponse aggregates daemon runtime information.
type StatusResponse struct {
	Version        string `json:"version"`
	PID            int    `json:"pid"`
	AnimationCount int    `json:"animationCount"`
	FrameCount     int    `json:"frameCount"`
	FramesDir      string `json:"framesDir"`
	DBPath         string `json:"dbPath"`
	LockFilePath   string `json:"lockFilePath"`
	FramesBaseURL  string `json:"framesBaseUrl"`
}

// HealthResponse mirrors store.DatabaseHealth.
type HealthResponse struct {
	DBPath           string  `json:"dbPath"`
	DatabaseExists   bool    `json:"databaseExists"`
	DatabaseReadable bool    `json:"databaseReadable"`
	SchemaVersion    int     `json:"schemaVersion"`
	IntegrityCheck   bool    `json:"integrityCheck"`
	Animations       int     `json:"animations"`
	Frames           int     `json:"frames"`
	DriftedCounts    []int64 `json:"driftedCounts,omitempty"`
	FreeBytes        uint64  `json:"freeBytes"`
	Error            string  `json:"error,omitempty"`
}
