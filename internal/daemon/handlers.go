package daemon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"scrollreel/internal/api"
	"scrollreel/internal/blobstore"
	"scrollreel/internal/embed"
	"scrollreel/internal/frames"
	"scrollreel/internal/logging"
	"scrollreel/internal/manifest"
	"scrollreel/internal/services"
	"scrollreel/internal/store"
	"scrollreel/internal/textutil"
	"scrollreel/internal/validation"
)

const (
	maxJSONBody         = 64 << 10
	multipartMemoryBody = 8 << 20
)

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.daemon.Status(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.StatusResponse{
		Version:        status.Version,
		PID:            status.PID,
		AnimationCount: status.AnimationCount,
		FrameCount:     status.FrameCount,
		FramesDir:      status.FramesDir,
		DBPath:         status.DBPath,
		LockFilePath:   status.LockFilePath,
		FramesBaseURL:  status.FramesBaseURL,
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.daemon.store.CheckHealth(r.Context())
	resp := api.FromHealth(health)
	if err != nil && resp.Error == "" {
		resp.Error = err.Error()
	}
	if free, ferr := blobstore.FreeBytes(s.daemon.blobs.Root()); ferr == nil {
		resp.FreeBytes = free
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleListAnimations(w http.ResponseWriter, r *http.Request) {
	anims, err := s.daemon.store.ListAnimations(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.AnimationListResponse{Animations: api.FromAnimations(anims)})
}

func (s *apiServer) handleCreateAnimation(w http.ResponseWriter, r *http.Request) {
	var req api.CreateAnimationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	anim, err := s.daemon.store.CreateAnimation(r.Context(), textutil.SanitizeTitle(req.Title), s.daemon.cfg.DefaultSettings())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.logger.Info("animation created",
		logging.String(logging.FieldEventType, "animation_created"),
		logging.Int64(logging.FieldAnimationID, anim.ID),
		logging.String("title", anim.Title),
	)
	s.writeJSON(w, http.StatusCreated, api.AnimationResponse{Animation: api.FromAnimation(anim)})
}

func (s *apiServer) handleGetAnimation(w http.ResponseWriter, r *http.Request) {
	anim, list, ok := s.loadAnimationWithFrames(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, api.AnimationDetail{
		Animation: api.FromAnimation(anim),
		Frames:    api.FrameRefs(list, s.daemon.blobs.URL),
	})
}

func (s *apiServer) handleDeleteAnimation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.animationID(w, r)
	if !ok {
		return
	}
	res, err := s.daemon.pipeline.DeleteAnimation(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.DeleteAnimationResponse{
		Deleted:       true,
		FramesRemoved: res.FramesRemoved,
		Warnings:      res.Warnings,
	})
}

func (s *apiServer) handleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := s.animationID(w, r)
	if !ok {
		return
	}
	var req api.TitleRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if !s.checkNonce(w, api.ActionSettings, id, req.Nonce) {
		return
	}
	if err := s.daemon.store.UpdateTitle(r.Context(), id, textutil.SanitizeTitle(req.Title)); err != nil {
		s.writeFailure(w, r, animationError(id, err))
		return
	}
	anim, err := s.daemon.store.GetAnimation(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.AnimationResponse{Animation: api.FromAnimation(anim)})
}

func (s *apiServer) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := s.animationID(w, r)
	if !ok {
		return
	}
	var req api.SettingsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if !s.checkNonce(w, api.ActionSettings, id, req.Nonce) {
		return
	}
	result, err := s.daemon.store.UpdateSettings(r.Context(), id, store.SettingsUpdate{Easing: req.Easing, LoopCount: req.LoopCount})
	if err != nil {
		s.writeFailure(w, r, animationError(id, err))
		return
	}
	rejected := result.Rejected
	if rejected == nil {
		rejected = []string{}
	}
	s.writeJSON(w, http.StatusOK, api.SettingsResponse{Animation: api.FromAnimation(result.Animation), Rejected: rejected})
}

func (s *apiServer) handleUploadFrame(w http.ResponseWriter, r *http.Request) {
	id, ok := s.animationID(w, r)
	if !ok {
		return
	}
	ctx := services.WithAnimationID(r.Context(), id)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseMultipartForm(multipartMemoryBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeFailure(w, r, frames.NewError(frames.KindFileTooLarge, err, "upload exceeds the %d byte request limit", tooLarge.Limit))
			return
		}
		s.writeFailure(w, r, frames.NewError(frames.KindTransport, err, "upload did not complete: %v", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	if !s.checkNonce(w, api.ActionUpload, id, r.FormValue("nonce")) {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeFailure(w, r, frames.NewError(frames.KindTransport, err, "upload contained no file"))
		return
	}
	defer file.Close()

	res, err := s.daemon.pipeline.Ingest(ctx, id, validation.Upload{
		FileName: header.Filename,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FrameUploadResponse{
		FrameIndex: res.Entry.Ordinal,
		FrameURL:   res.FrameURL,
		FrameCount: res.FrameCount,
		Width:      res.Width,
		Height:     res.Height,
		Replaced:   res.Replaced,
		Warnings:   res.Warnings,
	})
}

func (s *apiServer) handleDeleteFrame(w http.ResponseWriter, r *http.Request) {
	id, ok := s.animationID(w, r)
	if !ok {
		return
	}
	ordinal, err := strconv.Atoi(r.PathValue("ordinal"))
	if err != nil || ordinal < 1 {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid frame number %q", r.PathValue("ordinal")))
		return
	}
	if !s.checkNonce(w, api.ActionDeleteFrame, id, r.URL.Query().Get("nonce")) {
		return
	}
	res, err := s.daemon.pipeline.Delete(r.Context(), id, ordinal)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FrameDeleteResponse{FrameCount: res.FrameCount, Warnings: res.Warnings})
}

func (s *apiServer) handleNonce(w http.ResponseWriter, r *http.Request) {
	anim, ok := s.loadAnimation(w, r)
	if !ok {
		return
	}
	action := strings.TrimSpace(r.URL.Query().Get("action"))
	if !validAction(action) {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", action))
		return
	}
	s.writeJSON(w, http.StatusOK, api.NonceResponse{Nonce: s.daemon.nonces.sign(action, anim.ID)})
}

func (s *apiServer) handleEmbed(w http.ResponseWriter, r *http.Request) {
	anim, list, ok := s.loadAnimationWithFrames(w, r)
	if !ok {
		return
	}
	html, err := embed.HTML(embed.NewView(anim, list, s.daemon.blobs.URL, s.daemon.cfg.Playback.EmbedClass))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.EmbedResponse{HTML: html})
}

func (s *apiServer) handleManifest(w http.ResponseWriter, r *http.Request) {
	anim, list, ok := s.loadAnimationWithFrames(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := manifest.Write(&buf, manifest.Build(anim, list, s.daemon.blobs.URL)); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *apiServer) animationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid animation id %q", raw))
		return 0, false
	}
	return id, true
}

func (s *apiServer) loadAnimation(w http.ResponseWriter, r *http.Request) (*store.Animation, bool) {
	id, ok := s.animationID(w, r)
	if !ok {
		return nil, false
	}
	anim, err := s.daemon.store.GetAnimation(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return nil, false
	}
	if anim == nil {
		s.writeFailure(w, r, animationError(id, store.ErrAnimationNotFound))
		return nil, false
	}
	return anim, true
}

func (s *apiServer) loadAnimationWithFrames(w http.ResponseWriter, r *http.Request) (*store.Animation, frames.List, bool) {
	anim, ok := s.loadAnimation(w, r)
	if !ok {
		return nil, frames.List{}, false
	}
	list, err := s.daemon.store.Frames(r.Context(), anim.ID)
	if err != nil {
		s.writeFailure(w, r, animationError(anim.ID, err))
		return nil, frames.List{}, false
	}
	return anim, list, true
}

func (s *apiServer) checkNonce(w http.ResponseWriter, action string, id int64, nonce string) bool {
	if s.daemon.nonces.verify(action, id, strings.TrimSpace(nonce)) {
		return true
	}
	s.writeError(w, http.StatusForbidden, "invalid or missing nonce; reload and try again")
	return false
}

func (s *apiServer) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func animationError(id int64, err error) error {
	if errors.Is(err, store.ErrAnimationNotFound) {
		return frames.NewError(frames.KindNotFound, err, "animation %d does not exist", id)
	}
	return err
}
