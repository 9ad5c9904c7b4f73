package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/okoshkin/revu/internal/platform/request"
	"github.com/okoshkin/revu/internal/platform/respond"
	"github.com/okoshkin/revu/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the comment endpoints. The router is expected to be
// nested under /titles/{titleID}/reviews/{reviewID}.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listComments)
	router.Post("/", handler.createComment)
	router.Get("/{commentID}", handler.getComment)
	router.Put("/{commentID}", handler.updateComment)
	router.Patch("/{commentID}", handler.patchComment)
	router.Delete("/{commentID}", handler.deleteComment)
}

// pathIDs pulls the three nested identifiers out of the URL.
func pathIDs(request *http.Request, withComment bool) (titleID, reviewID, commentID int64, err error) {
	if titleID, err = requestutil.IntParam(request, "titleID"); err != nil {
		return
	}
	if reviewID, err = requestutil.IntParam(request, "reviewID"); err != nil {
		return
	}
	if withComment {
		commentID, err = requestutil.IntParam(request, "commentID")
	}
	return
}

func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	titleID, reviewID, _, err := pathIDs(request, false)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)
	comments, total, err := handler.service.List(request.Context(), titleID, reviewID, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, comments, pagination.NewMeta(page, total))
}

func (handler *Handler) getComment(writer http.ResponseWriter, request *http.Request) {
	titleID, reviewID, commentID, err := pathIDs(request, true)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.Get(request.Context(), titleID, reviewID, commentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comment)
}

func (handler *Handler) createComment(writer http.ResponseWriter, request *http.Request) {
	titleID, reviewID, _, err := pathIDs(request, false)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input WriteInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.Create(request.Context(), requestutil.Claims(request), titleID, reviewID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, comment)
}

func (handler *Handler) updateComment(writer http.ResponseWriter, request *http.Request) {
	handler.applyUpdate(writer, request, false)
}

func (handler *Handler) patchComment(writer http.ResponseWriter, request *http.Request) {
	handler.applyUpdate(writer, request, true)
}

func (handler *Handler) applyUpdate(writer http.ResponseWriter, request *http.Request, partial bool) {
	titleID, reviewID, commentID, err := pathIDs(request, true)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input WriteInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.Update(request.Context(), requestutil.Claims(request), titleID, reviewID, commentID, input, partial)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comment)
}

func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	titleID, reviewID, commentID, err := pathIDs(request, true)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), requestutil.Claims(request), titleID, reviewID, commentID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
