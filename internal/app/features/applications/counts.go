// internal/app/features/applications/counts.go
package applications

import (
	"net/http"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
)

// Count handles GET /applications/count.
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, timeouts.Short())
	defer cancel()

	n, err := h.Apps.Count(ctx)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// Types handles GET /applications/types, listing the distinct
// application types in use.
func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, timeouts.Short())
	defer cancel()

	types, err := h.Apps.Types(ctx)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]string{"types": types})
}
