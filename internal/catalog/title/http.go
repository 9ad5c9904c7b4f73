package title

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
	router.Get("/", handler.listTitles)
	router.Post("/", handler.createTitle)
	router.Get("/{titleID}", handler.getTitle)
	router.Put("/{titleID}", handler.updateTitle)
	router.Patch("/{titleID}", handler.patchTitle)
	router.Delete("/{titleID}", handler.deleteTitle)
}

func (handler *Handler) listTitles(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)
	params := request.URL.Query()

	filters := Filters{
		CategorySlug: query.String(params.Get("category")),
		GenreSlug:    query.String(params.Get("genre")),
		Name:         query.String(params.Get("name")),
		Year:         query.Int(params.Get("year")),
	}

	titles, total, err := handler.service.List(request.Context(), filters, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, titles, pagination.NewMeta(page, total))
}

func (handler *Handler) getTitle(writer http.ResponseWriter, request *http.Request) {
	titleID, err := requestutil.IntParam(request, "titleID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	title, err := handler.service.Get(request.Context(), titleID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, title)
}

func (handler *Handler) createTitle(writer http.ResponseWriter, request *http.Request) {
	var input WriteInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	caps := policy.CapabilitiesFromClaims(requestutil.Claims(request))
	title, err := handler.service.Create(request.Context(), caps, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, title)
}

func (handler *Handler) updateTitle(writer http.ResponseWriter, request *http.Request) {
	handler.applyUpdate(writer, request, false)
}

func (handler *Handler) patchTitle(writer http.ResponseWriter, request *http.Request) {
	handler.applyUpdate(writer, request, true)
}

func (handler *Handler) applyUpdate(writer http.ResponseWriter, request *http.Request, partial bool) {
	titleID, err := requestutil.IntParam(request, "titleID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input WriteInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	caps := policy.CapabilitiesFromClaims(requestutil.Claims(request))
	title, err := handler.service.Update(request.Context(), caps, titleID, input, partial)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, title)
}

func (handler *Handler) deleteTitle(writer http.ResponseWriter, request *http.Request) {
	titleID, err := requestutil.IntParam(request, "titleID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	caps := policy.CapabilitiesFromClaims(requestutil.Claims(request))
	if err := handler.service.Delete(request.Context(), caps, titleID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
