package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/programme-lv/autograde/logger"
	"github.com/programme-lv/autograde/srvcerror"
	"github.com/programme-lv/autograde/validate"
	"golang.org/x/crypto/bcrypt"
)

type UserSrvc struct {
	repo Repo
}

func NewUserSrvc(repo Repo) *UserSrvc {
	return &UserSrvc{repo: repo}
}

type RegisterParams struct {
	Username  string `json:"username" validate:"required,min=2,max=32,alphanum"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Firstname string `json:"firstname" validate:"max=30"`
	Lastname  string `json:"lastname" validate:"max=30"`
	Password  string `json:"password" validate:"required,min=8,max=1024"`
}

func (s *UserSrvc) Register(ctx context.Context, p RegisterParams) (User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if err := validate.Struct(p); err != nil {
		return User{}, err
	}

	bcryptPwd, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, srvcerror.ErrInternalSE().SetDebug(fmt.Errorf("failed to hash password: %w", err))
	}

	u, err := s.repo.Create(ctx, User{
		Username:  p.Username,
		Email:     p.Email,
		Firstname: p.Firstname,
		Lastname:  p.Lastname,
		BcryptPwd: bcryptPwd,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return User{}, err
	}
	logger.FromContext(ctx).Info("registered user", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *UserSrvc) Login(ctx context.Context, username string, password string) (User, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if srvcerror.HasCode(err, ErrCodeUserNotFound) {
			return User{}, newErrUsernameOrPasswordIncorrect()
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(u.BcryptPwd, []byte(password)); err != nil {
		return User{}, newErrUsernameOrPasswordIncorrect()
	}
	return u, nil
}

func (s *UserSrvc) GetUserByID(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}
