package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dealerlot/lotposter/captioner"
	"github.com/dealerlot/lotposter/capture"
	"github.com/dealerlot/lotposter/database"
	"github.com/dealerlot/lotposter/model"
	"github.com/dealerlot/lotposter/pipeline"
)

// uploadWait caps how long a publish request waits for its assets' uploads
// to settle before the staged protocol drops the stragglers.
const uploadWait = 30 * time.Second

/*
MediaAPI is the HTTP boundary the dashboard frontend calls. It exposes the
pipeline's caller-facing contract; everything else the dashboard does
(vehicle CRUD, onboarding, sessions) lives elsewhere and never touches this
server.
*/
type MediaAPI struct {
	Server http.Server

	pipeline  *pipeline.Pipeline
	db        *database.Database
	captioner *CaptionerService
}

// NewMediaAPI builds the boundary server. captionerService may be nil when
// no caption backend is configured; the endpoint then answers 503.
func NewMediaAPI(port int, p *pipeline.Pipeline, db *database.Database, captionerService *CaptionerService) *MediaAPI {
	api := &MediaAPI{
		pipeline:  p,
		db:        db,
		captioner: captionerService,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/media", api.handleCapture)
	mux.HandleFunc("/media/display", api.handleDisplay)
	mux.HandleFunc("/publish", api.handlePublish)
	mux.HandleFunc("/activity", api.handleActivity)
	mux.HandleFunc("/caption", api.handleCaption)
	api.Server = http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", port),
		Handler: mux,
	}
	return api
}

type captureResponse struct {
	EphemeralURL string `json:"ephemeralUrl"`
	DurableURL   string `json:"durableUrl,omitempty"`
	MimeType     string `json:"mimeType"`
	Extension    string `json:"extension"`
}

func (a *MediaAPI) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ownerScope := r.FormValue("ownerScope")
	if ownerScope == "" {
		http.Error(w, "ownerScope is required", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	asset, err := a.pipeline.CaptureFromFile(r.Context(), ownerScope, header.Filename, header.Header.Get("Content-Type"), file)
	if errors.Is(err, capture.ErrNotImage) {
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// The ephemeral URL is usable immediately; the durable one may or may
	// not have settled by the time we answer.
	select {
	case <-asset.Resolved():
	case <-time.After(2 * time.Second):
	}

	writeJSON(w, captureResponse{
		EphemeralURL: asset.EphemeralURL,
		DurableURL:   asset.DurableURL(),
		MimeType:     asset.MimeType,
		Extension:    asset.Extension,
	})
}

func (a *MediaAPI) handleDisplay(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"renderableUrl": a.pipeline.ResolveForDisplay(r.Context(), url)})
}

type publishRequestBody struct {
	Text           string   `json:"text"`
	EphemeralURLs  []string `json:"ephemeralUrls"`
	Platform       string   `json:"platform"`
	PageID         string   `json:"pageId"`
	PageCredential string   `json:"pageCredential"`
}

func (a *MediaAPI) handlePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body publishRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	platform, err := model.ParsePlatform(body.Platform)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	assets := a.pipeline.AssetsByEphemeralURL(body.EphemeralURLs)
	waitForUploads(r.Context(), assets)

	result := a.pipeline.Publish(r.Context(), model.PublishRequest{
		Text:                    body.Text,
		Assets:                  assets,
		TargetPlatform:          platform,
		TargetAccountID:         body.PageID,
		TargetAccountCredential: body.PageCredential,
	})
	if !result.Succeeded() {
		log.WithField("stage", result.Failure.Stage).Warnf("publish failed: %s", result.Failure.Detail)
		w.WriteHeader(http.StatusBadGateway)
	}
	writeJSON(w, result)
}

func (a *MediaAPI) handleActivity(w http.ResponseWriter, r *http.Request) {
	records, err := a.db.RecentPublishes(r.Context(), 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

func (a *MediaAPI) handleCaption(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.captioner == nil {
		http.Error(w, "no caption backend configured", http.StatusServiceUnavailable)
		return
	}
	var prompt captioner.CaptionPrompt
	if err := json.NewDecoder(r.Body).Decode(&prompt); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	caption, err := a.captioner.GenerateCaption(prompt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]string{"caption": caption})
}

func waitForUploads(ctx context.Context, assets []*model.MediaAsset) {
	deadline, cancel := context.WithTimeout(ctx, uploadWait)
	defer cancel()
	for _, asset := range assets {
		select {
		case <-asset.Resolved():
		case <-deadline.Done():
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("error writing response: %v", err)
	}
}
