package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/autograde/httpjson"
	"github.com/programme-lv/autograde/user/auth"
)

func (h *UserHttpHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var request loginRequest
	if err := httpjson.DecodeJson(r, &request); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	u, err := h.userSrvc.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	token, err := auth.GenerateJWT(auth.Subject{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
	}, h.JwtKey)
	if err != nil {
		httpjson.HandleError(logger, w, fmt.Errorf("failed to generate JWT: %w", err))
		return
	}

	httpjson.WriteSuccessJson(w, token)
}
