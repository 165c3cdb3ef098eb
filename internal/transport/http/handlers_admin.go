package httptransport

import (
	"net/http"

	"tickethub/internal/ticketing/models"
	"tickethub/pkg/requestcontext"
)

// HandleAdminPage lists all tickets, filtered by the status query parameter.
func (h *Handler) HandleAdminPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	filter := models.ParseStatusFilter(r.URL.Query().Get("status"))

	view, err := h.admin.List(ctx, sess, filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.InfoContext(ctx, "admin tickets listed",
		"filter", string(filter),
		"count", len(view.Tickets),
		"request_id", requestcontext.RequestID(ctx),
	)
	h.pages.render(w, r, http.StatusOK, "admin", "All tickets", view)
}
