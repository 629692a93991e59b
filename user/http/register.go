package http

import (
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/autograde/httpjson"
	"github.com/programme-lv/autograde/user"
)

func (h *UserHttpHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	var request user.RegisterParams
	if err := httpjson.DecodeJson(r, &request); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	u, err := h.userSrvc.Register(r.Context(), request)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteCreatedJson(w, mapUser(u))
}
