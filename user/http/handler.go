package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/programme-lv/autograde/user"
)

type UserHttpHandler struct {
	userSrvc *user.UserSrvc
	JwtKey   []byte
}

func NewUserHttpHandler(userSrvc *user.UserSrvc, jwtKey []byte) *UserHttpHandler {
	return &UserHttpHandler{
		userSrvc: userSrvc,
		JwtKey:   jwtKey,
	}
}

func (h *UserHttpHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users", h.Register)
	r.Post("/auth/login", h.Login)
	r.Get("/auth/whoami", h.WhoAmI)
}
