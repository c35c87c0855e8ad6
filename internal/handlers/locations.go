package handlers

import (
	"net/http"

	"github.com/ukydev/ride-booking/internal/app"
)

// LocationHandler suggests trip locations
type LocationHandler struct {
	registry *app.Registry
}

func NewLocationHandler(registry *app.Registry) *LocationHandler {
	return &LocationHandler{registry: registry}
}

// Search returns saved and known places for ?q=. Signed-in callers get
// their saved locations first.
func (h *LocationHandler) Search(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrAnonymous(w, r, h.registry)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.SearchLocations(r.URL.Query().Get("q")))
}
