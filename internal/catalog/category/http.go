package category

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
	router.Get("/", handler.listCategories)
	router.Post("/", handler.createCategory)
	router.Delete("/{slug}", handler.deleteCategory)
}

func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)
	name := query.String(request.URL.Query().Get("search"))

	categories, total, err := handler.service.List(request.Context(), name, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, categories, pagination.NewMeta(page, total))
}

func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	caps := policy.CapabilitiesFromClaims(requestutil.Claims(request))
	category, err := handler.service.Create(request.Context(), caps, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, category)
}

func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	caps := policy.CapabilitiesFromClaims(requestutil.Claims(request))

	if err := handler.service.Delete(request.Context(), caps, requestutil.Param(request, "slug")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
