package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/client/services"
	"github.com/dmitrijs2005/readkeeper/internal/client/state"
	"github.com/dmitrijs2005/readkeeper/internal/logging"
	"github.com/dmitrijs2005/readkeeper/internal/validation"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 16

type handlers struct {
	d   Deps
	log logging.Logger
}

type statusResponse struct {
	Mode            state.Mode          `json:"mode"`
	Sync            models.SyncProgress `json:"sync"`
	TriggersEnabled bool                `json:"triggers_enabled"`
	Stored          models.OwnerStats   `json:"stored"`
	// Background is the service's scheduler state; absent while offline.
	Background *models.SyncStatus `json:"background,omitempty"`
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Mode: state.ModeOffline, TriggersEnabled: true}
	online := false
	if h.d.Connectivity != nil {
		resp.Mode = h.d.Connectivity.Mode()
		online = h.d.Connectivity.Online()
	}
	if h.d.Progress != nil {
		resp.Sync = h.d.Progress.Get()
	}
	if h.d.Sync != nil {
		resp.TriggersEnabled = h.d.Sync.TriggersEnabled()
		if online {
			st, err := h.d.Sync.Status(r.Context())
			if err != nil {
				h.log.Debug(r.Context(), "scheduler status unavailable", "error", err)
			} else {
				resp.Background = st
			}
		}
	}
	if h.d.Store != nil {
		resp.Stored = h.d.Store.Stats(r.Context())
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.d.Store.Stats(r.Context()))
}

// listOwners degrades to an empty list when the store fails.
func (h *handlers) listOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.d.Store.ListOwners(r.Context())
	if err != nil || owners == nil {
		owners = []models.OwnerSummary{}
	}
	respondJSON(w, http.StatusOK, owners)
}

func (h *handlers) listItems(w http.ResponseWriter, r *http.Request) {
	list, err := h.d.Store.ListAll(r.Context())
	if err != nil || list == nil {
		list = []models.Item{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *handlers) listOwnerItems(w http.ResponseWriter, r *http.Request) {
	list, err := h.d.Store.ListByOwner(r.Context(), chi.URLParam(r, "owner"))
	if err != nil || list == nil {
		list = []models.Item{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *handlers) getItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.d.Store.Get(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "item"))
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, it)
}

func (h *handlers) clearItems(w http.ResponseWriter, r *http.Request) {
	if err := h.d.Store.Clear(r.Context()); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) retainItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.d.Sync.Retain(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "item"))
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, it)
}

func (h *handlers) forgetItem(w http.ResponseWriter, r *http.Request) {
	if err := h.d.Sync.Forget(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "item")); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) setRead(w http.ResponseWriter, r *http.Request) {
	isRead, err := strconv.ParseBool(r.URL.Query().Get("isRead"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "isRead must be true or false")
		return
	}

	err = h.d.Sync.SetRead(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "item"), isRead)
	switch {
	case errors.Is(err, services.ErrReadStateReverted):
		respondError(w, http.StatusConflict, err.Error())
	case err != nil:
		respondError(w, statusFor(err), err.Error())
	default:
		respondJSON(w, http.StatusOK, map[string]bool{"is_read": isRead})
	}
}

func (h *handlers) getPosition(w http.ResponseWriter, r *http.Request) {
	p, err := h.d.Positions.Get(r.Context(), chi.URLParam(r, "item"))
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *handlers) savePosition(w http.ResponseWriter, r *http.Request) {
	var p models.Position
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid position body")
		return
	}
	p.ItemID = chi.URLParam(r, "item")
	p.SavedAt = time.Now().UTC()
	if err := validation.Struct(&p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// A lost position is tolerated.
	if err := h.d.Positions.Save(r.Context(), &p); err != nil {
		h.log.Debug(r.Context(), "position not saved", "item", p.ItemID, "error", err)
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) deletePosition(w http.ResponseWriter, r *http.Request) {
	if err := h.d.Positions.Delete(r.Context(), chi.URLParam(r, "item")); err != nil {
		h.log.Debug(r.Context(), "position not deleted", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) progress(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.d.Progress.Get())
}

func (h *handlers) trigger(quick bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			res models.TriggerResult
			err error
		)
		if quick {
			res, err = h.d.Sync.TriggerQuickSync(r.Context())
		} else {
			res, err = h.d.Sync.TriggerFullSync(r.Context())
		}
		if err != nil {
			respondError(w, statusFor(err), err.Error())
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

func (h *handlers) startBackground(w http.ResponseWriter, r *http.Request) {
	var hours float64
	if v := r.URL.Query().Get("hours"); v != "" {
		var err error
		if hours, err = strconv.ParseFloat(v, 64); err != nil || hours <= 0 {
			respondError(w, http.StatusBadRequest, "hours must be a positive number")
			return
		}
	}
	st, err := h.d.Sync.StartBackground(r.Context(), hours)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (h *handlers) stopBackground(w http.ResponseWriter, r *http.Request) {
	st, err := h.d.Sync.StopBackground(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, st)
}
