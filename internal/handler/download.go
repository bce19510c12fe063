package handler

import (
	"net/http"

	"github.com/pratijat22/LetsEarn/internal/domain"
	"github.com/pratijat22/LetsEarn/internal/service"
)

type DownloadHandler struct {
	svc *service.DownloadService
}

func NewDownloadHandler(svc *service.DownloadService) *DownloadHandler {
	return &DownloadHandler{svc: svc}
}

// Resolve handles GET /download?token=... or GET /download?email=... and
// redirects to the short-lived signed file URL.
func (h *DownloadHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var (
		url string
		err error
	)

	switch {
	case r.URL.Query().Get("token") != "":
		url, err = h.svc.ResolveToken(r.Context(), r.URL.Query().Get("token"))
	case r.URL.Query().Get("email") != "":
		url, err = h.svc.ResolveEmail(r.Context(), r.URL.Query().Get("email"))
	default:
		err = domain.ErrBadRequest("token or email is required")
	}

	if err != nil {
		Error(w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}
