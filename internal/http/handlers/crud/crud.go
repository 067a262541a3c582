// Package crud implements the five handlers every school resource shares
// (create, list, get, update, delete) once, for any model type.
//
// The handlers follow the closure / factory pattern: each method takes no
// request data, captures the Resource, and returns the
// func(http.ResponseWriter, *http.Request) the router needs.
//
//	students := crud.Resource[types.Student, *types.Student]{...}
//	r.Post("/", students.New())
//	//          ^^^^^^^^^^^^^^
//	//  called ONCE at startup, the returned func runs per request.
package crud

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aanand-mishra/school-api/internal/http/pagination"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/utils/response"
)

// Model is satisfied by a pointer to a storable entity.
type Model[T any] interface {
	*T
	SetID(id uint)
	GetID() uint
	InitRelations()
}

// Resource binds one model type to its repository and relation set.
type Resource[T any, PT Model[T]] struct {
	// Name is used in log lines, e.g. "student".
	Name string
	Repo storage.Repository[T]

	// Preloads maps the include names of a list request to eager-load
	// paths. Unknown names must be dropped.
	Preloads func(include []string) []string

	// Detail are the associations loaded by GetByID and by the responses
	// of New and Update.
	Detail []string
}

// New handles POST /{resource}. The JSON body is decoded straight into
// the model and inserted. Associations in the body are not written, and
// the response is the row read back with its Detail associations.
//
//	201 Created   the stored record, with its generated id
//	500 Internal  undecodable body or storage failure
func (res Resource[T, PT]) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())
		log.Info().Str("resource", res.Name).Msg("creating")

		var v T
		if err := decode(r, &v); err != nil {
			ServerError(w, log, res.Name, "decode body", err)
			return
		}

		if err := res.Repo.Create(r.Context(), &v); err != nil {
			ServerError(w, log, res.Name, "create", err)
			return
		}

		stored, err := res.load(r, PT(&v).GetID())
		if err != nil {
			ServerError(w, log, res.Name, "reload", err)
			return
		}
		response.WriteJSON(w, http.StatusCreated, stored)
	}
}

// GetList handles GET /{resource}?page&limit&sort&include and returns a
// pagination.Envelope.
func (res Resource[T, PT]) GetList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())

		p := pagination.Parse(r.URL.Query())
		log.Info().
			Str("resource", res.Name).
			Int("page", p.Page).
			Int("limit", p.Limit).
			Str("sort", p.SortOrder()).
			Str("include", p.Include).
			Msg("listing")

		var preloads []string
		if res.Preloads != nil {
			preloads = res.Preloads(p.IncludeNames())
		}

		items, total, err := res.Repo.List(r.Context(), p.Query(preloads))
		if err != nil {
			ServerError(w, log, res.Name, "list", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, pagination.Envelope[T]{
			Meta: pagination.NewMeta(p, total),
			Data: items,
		})
	}
}

// GetByID handles GET /{resource}/{id}. The Detail associations are
// always loaded.
//
//	200 OK        the record
//	404 Not Found no such id, or the id is not a number
func (res Resource[T, PT]) GetByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())
		id, ok := PathID(r, "id")
		log.Info().Str("resource", res.Name).Str("id", chi.URLParam(r, "id")).Msg("getting")
		if !ok {
			NotFound(w)
			return
		}

		v, err := res.load(r, id)
		if errors.Is(err, storage.ErrNotFound) {
			NotFound(w)
			return
		}
		if err != nil {
			ServerError(w, log, res.Name, "get", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, v)
	}
}

// Update handles PUT /{resource}/{id}. The body is decoded over the
// stored record, so absent fields keep their values. The id in the path
// always wins over one in the body.
func (res Resource[T, PT]) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())
		id, ok := PathID(r, "id")
		log.Info().Str("resource", res.Name).Str("id", chi.URLParam(r, "id")).Msg("updating")
		if !ok {
			NotFound(w)
			return
		}

		v, err := res.Repo.GetByID(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			NotFound(w)
			return
		}
		if err != nil {
			ServerError(w, log, res.Name, "get", err)
			return
		}

		if err := decode(r, v); err != nil {
			ServerError(w, log, res.Name, "decode body", err)
			return
		}
		PT(v).SetID(id)

		if err := res.Repo.Update(r.Context(), v); err != nil {
			ServerError(w, log, res.Name, "update", err)
			return
		}

		log.Info().Str("resource", res.Name).Uint("id", id).Msg("updated")
		stored, err := res.load(r, id)
		if err != nil {
			ServerError(w, log, res.Name, "reload", err)
			return
		}
		response.WriteJSON(w, http.StatusOK, stored)
	}
}

// Delete handles DELETE /{resource}/{id}.
//
//	200 OK        { "message": "Deleted" }
//	404 Not Found no such id
func (res Resource[T, PT]) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())
		id, ok := PathID(r, "id")
		log.Info().Str("resource", res.Name).Str("id", chi.URLParam(r, "id")).Msg("deleting")
		if !ok {
			NotFound(w)
			return
		}

		v, err := res.Repo.GetByID(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			NotFound(w)
			return
		}
		if err != nil {
			ServerError(w, log, res.Name, "get", err)
			return
		}

		if err := res.Repo.Delete(r.Context(), v); err != nil {
			ServerError(w, log, res.Name, "delete", err)
			return
		}

		log.Info().Str("resource", res.Name).Uint("id", id).Msg("deleted")
		response.WriteJSON(w, http.StatusOK, response.Msg(response.MsgDeleted))
	}
}

// load reads one row with its Detail associations, empty relations
// encoded as [].
func (res Resource[T, PT]) load(r *http.Request, id uint) (*T, error) {
	v, err := res.Repo.GetByID(r.Context(), id, res.Detail...)
	if err != nil {
		return nil, err
	}
	PT(v).InitRelations()
	return v, nil
}

// PathID reads a numeric path parameter. ok is false when the value is
// missing or not an unsigned integer.
func PathID(r *http.Request, name string) (id uint, ok bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 0)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errors.New("request body is empty")
	}
	return err
}

// NotFound writes the 404 body shared by every resource.
func NotFound(w http.ResponseWriter) {
	response.WriteJSON(w, http.StatusNotFound, response.Msg(response.MsgNotFound))
}

// ServerError logs err and writes it verbatim with a 500.
func ServerError(w http.ResponseWriter, log *zerolog.Logger, resource, op string, err error) {
	log.Error().Err(err).Str("resource", resource).Str("op", op).Msg("request failed")
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}
