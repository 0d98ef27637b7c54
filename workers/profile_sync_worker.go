// workers/profile_sync_worker.go
package workers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gamification-service/logging"

	"github.com/goccy/go-json"
)

// RemoteProfile is the part of a profile-service record this service mirrors.
type RemoteProfile struct {
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GetProfileChangesResponse is the top-level structure of the sync service response.
type GetProfileChangesResponse struct {
	Users []RemoteProfile `json:"users"`
}

// DisplayNameStore creates the player when missing and sets its display name.
type DisplayNameStore interface {
	UpsertDisplayName(ctx context.Context, userID, name string) error
}

// ProfileSyncWorker polls the profile service and mirrors display names
// into player records.
type ProfileSyncWorker struct {
	store        DisplayNameStore
	interval     time.Duration
	baseURL      string // e.g. "http://localhost:8500"
	endpointPath string // e.g. "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
	since        time.Time
}

func NewProfileSyncWorker(store DisplayNameStore, client *http.Client, baseURL, endpointPath, serviceToken string, interval time.Duration) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		store:        store,
		interval:     interval,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   client,
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	logging.Info().Dur("interval", w.interval).Msg("🔁 starting profile sync worker")
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	if err := w.SyncOnce(ctx); err != nil {
		logging.Warn().Err(err).Msg("[SYNC] initial profile sync failed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := w.SyncOnce(ctx); err != nil {
				logging.Error().Err(err).Msg("[SYNC] profile sync batch failed")
			}
		case <-ctx.Done():
			logging.Info().Msg("⏹️ profile sync worker stopped")
			return
		}
	}
}

// SyncOnce fetches profiles changed since the last successful batch.
func (w *ProfileSyncWorker) SyncOnce(ctx context.Context) error {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid sync service URL %q: %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(w.endpointPath)
	q := endpoint.Query()
	q.Set("since", w.since.UTC().Format(time.RFC3339))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to sync service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sync service returned %d: %s", resp.StatusCode, body)
	}

	var out GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode sync service response: %w", err)
	}

	var upserted, failed int
	latest := w.since
	for _, u := range out.Users {
		if u.ExternalID == "" || u.Username == "" {
			continue
		}
		if err := w.store.UpsertDisplayName(ctx, u.ExternalID, u.Username); err != nil {
			failed++
			logging.Warn().Err(err).Str("user_id", u.ExternalID).Msg("[SYNC] failed to upsert display name")
			continue
		}
		upserted++
		if u.UpdatedAt.After(latest) {
			latest = u.UpdatedAt
		}
	}
	// Keep the cursor in place when anything failed so the batch is retried.
	if failed == 0 {
		w.since = latest
	}
	if len(out.Users) > 0 {
		logging.Info().Int("received", len(out.Users)).Int("upserted", upserted).Int("failed", failed).Msg("[SYNC] ✅ profiles synced")
	}
	return nil
}
