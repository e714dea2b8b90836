package handler

import (
	"net/http"

	"github.com/healthcrm/inbox-server-go/internal/httputil"
)

func Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
