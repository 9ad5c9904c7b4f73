package genre

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okoshkin/revu/internal/platform/policy"
	requestutil "github.com/okoshkin/revu/internal/platform/request"
	"github.com/okoshkin/revu/internal/platform/respond"
	"github.com/okoshkin/revu/pkg/pagination"
	"github.com/okoshkin/revu/pkg/query"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listGenres)
	router.Post("/", handler.createGenre)
	router.Delete("/{slug}", handler.deleteGenre)
}

func (handler *Handler) listGenres(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)
	name := query.String(request.URL.Query().Get("search"))

	genres, total, err := handler.service.List(request.Context(), name, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, genres, pagination.NewMeta(page, total))
}

func (handler *Handler) createGenre(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	caps := policy.CapabilitiesFromClaims(requestutil.Claims(request))
	genre, err := handler.service.Create(request.Context(), caps, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, genre)
}

func (handler *Handler) deleteGenre(writer http.ResponseWriter, request *http.Request) {
	caps := policy.CapabilitiesFromClaims(requestutil.Claims(request))

	if err := handler.service.Delete(request.Context(), caps, requestutil.Param(request, "slug")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
