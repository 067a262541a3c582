// Package account contains the HTTP handlers that create API accounts and
// exchange credentials for bearer tokens.
//
//	POST /auth/register   { "name", "email", "password" }  → 201 { user, token }
//	POST /auth/login      { "email", "password" }          → 200 { token, user }
package account

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aanand-mishra/school-api/internal/auth"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
	"github.com/aanand-mishra/school-api/internal/utils/response"
)

const (
	MsgInvalidCredentials = "Invalid credentials"
	ErrRegistration       = "registration failed"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a freshly issued token and the account it
// belongs to.
type TokenResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// Register creates an account and logs it in.
//
//	@Summary	Register an account
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		RegisterRequest	true	"Account"
//	@Success	201		{object}	TokenResponse
//	@Failure	400		{object}	response.Error
//	@Failure	409		{object}	response.Error
//	@Failure	429		{object}	response.Message
//	@Failure	500		{object}	response.Error
//	@Router		/auth/register [post]
func Register(users storage.UserRepository, issuer *auth.Issuer) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())

		var req RegisterRequest
		if !decodeValid(w, r, validate, &req) {
			return
		}
		log.Info().Str("email", req.Email).Msg("registering")

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Error().Err(err).Msg("hash password")
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		user := types.User{Name: req.Name, Email: req.Email, PasswordHash: hash}
		err = users.CreateUser(r.Context(), &user)
		if errors.Is(err, storage.ErrDuplicate) {
			response.WriteJSON(w, http.StatusConflict, response.Error{Error: ErrRegistration})
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("create user")
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		token, err := issuer.MakeToken(user.ID, user.Email)
		if err != nil {
			log.Error().Err(err).Msg("make token")
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		log.Info().Uint("user", user.ID).Msg("registered")
		response.WriteJSON(w, http.StatusCreated, TokenResponse{Token: token, User: user})
	}
}

// Login checks an email/password pair and returns a bearer token.
// Unknown emails and wrong passwords get the same 401.
//
//	@Summary	Log in
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		LoginRequest	true	"Credentials"
//	@Success	200		{object}	TokenResponse
//	@Failure	400		{object}	response.Error
//	@Failure	401		{object}	response.Message
//	@Failure	429		{object}	response.Message
//	@Failure	500		{object}	response.Error
//	@Router		/auth/login [post]
func Login(users storage.UserRepository, issuer *auth.Issuer) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())

		var req LoginRequest
		if !decodeValid(w, r, validate, &req) {
			return
		}

		user, err := users.UserByEmail(r.Context(), req.Email)
		if errors.Is(err, storage.ErrNotFound) {
			log.Info().Str("email", req.Email).Msg("login: unknown email")
			response.WriteJSON(w, http.StatusUnauthorized, response.Msg(MsgInvalidCredentials))
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("lookup user")
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			log.Info().Uint("user", user.ID).Msg("login: wrong password")
			response.WriteJSON(w, http.StatusUnauthorized, response.Msg(MsgInvalidCredentials))
			return
		}

		token, err := issuer.MakeToken(user.ID, user.Email)
		if err != nil {
			log.Error().Err(err).Msg("make token")
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		log.Info().Uint("user", user.ID).Msg("logged in")
		response.WriteJSON(w, http.StatusOK, TokenResponse{Token: token, User: *user})
	}
}

// decodeValid decodes the body into v and validates it, writing a 400
// and returning false on failure.
func decodeValid(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
		} else {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		}
		return false
	}
	return true
}
