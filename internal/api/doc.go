// Package api defines the wire-format types shared by the daemon's HTTP API
// and the CLI client, plus the client itself.
//
// # Key Types
//
// Animation: transport representation of an animation record with derived
// frame metadata and playback settings.
//
// AnimationDetail: an animation plus its frames in display order.
//
// FrameUploadResponse/FrameDeleteResponse: outcomes of the frame mutation
// endpoints, carrying the new frame count and any degradation warnings.
//
// ErrorResponse: the {message} body returned for every failure.
//
// # Converters
//
// FromAnimation: store.Animation -> Animation.
//
// FromHealth: store.DatabaseHealth -> HealthResponse.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for browser consumers. Timestamps use RFC3339
// with milliseconds. Mutating endpoints require an anti-forgery nonce bound to
// the action and the animation; Client fetches one before each mutation.
package api
