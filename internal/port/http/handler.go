package http

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
	"github.com/srijonashraf/sellswipe-server/internal/platform/metrics"
	"github.com/srijonashraf/sellswipe-server/internal/usecase"
)

// Identity headers set by the upstream gateway after authentication.
// The service trusts them as-is.
const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

const maxUploadMemory = 32 << 20

// Handler serves the public read side and the owner-facing listing
// lifecycle. Admin endpoints live on AdminHandler.
type Handler struct {
	posts   *usecase.PostUsecase
	search  *usecase.SearchUsecase
	mod     *usecase.ModerationUsecase
	tempDir string
	metrics *metrics.MetricsManager
	logger  *logger.Logger
}

func NewHandler(
	posts *usecase.PostUsecase,
	search *usecase.SearchUsecase,
	mod *usecase.ModerationUsecase,
	tempDir string,
	mm *metrics.MetricsManager,
	log *logger.Logger,
) *Handler {
	return &Handler{
		posts:   posts,
		search:  search,
		mod:     mod,
		tempDir: tempDir,
		metrics: mm,
		logger:  log.Named("HTTPHandler"),
	}
}

func actorFromRequest(r *http.Request) (domain.Actor, error) {
	raw := r.Header.Get(headerUserID)
	if raw == "" {
		return domain.Actor{}, errors.New("missing identity header")
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("invalid identity header: %w", err)
	}
	role := domain.Role(r.Header.Get(headerUserRole))
	if role == "" {
		role = domain.RoleUser
	}
	return domain.Actor{ID: id, Role: role}, nil
}

// writeError maps domain errors onto the fail envelope. Unexpected
// errors surface as a generic message; the detail goes to the log.
func (h *Handler) writeError(w http.ResponseWriter, operation string, err error) {
	code, message := classifyError(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("operation", operation), zap.Error(err))
		message = "internal server error"
	}
	if h.metrics != nil {
		h.metrics.APIErrorsTotal.WithLabelValues(operation, http.StatusText(code)).Inc()
	}
	writeFail(w, code, message)
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrWrongImageCount),
		errors.Is(err, domain.ErrFeedbackRequired),
		errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrDetailsDeleteInvalid):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrModeratorRoleNeeded):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrPostNotFound),
		errors.Is(err, domain.ErrDetailsNotFound),
		errors.Is(err, domain.ErrOwnerNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrImageNotFound),
		errors.Is(err, domain.ErrNoData):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, ""
	}
}

func pathObjectID(r *http.Request, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, name))
}

// saveUploads writes every file of the multipart "images" field into
// the temp dir and returns the local paths, in field order. The
// usecases own removal of these files on every path.
func (h *Handler) saveUploads(r *http.Request) ([]string, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	if r.MultipartForm == nil {
		return nil, nil
	}

	var paths []string
	for _, header := range r.MultipartForm.File["images"] {
		src, err := header.Open()
		if err != nil {
			h.cleanupPaths(paths)
			return nil, fmt.Errorf("failed to open uploaded file: %w", err)
		}

		dst, err := os.CreateTemp(h.tempDir, "upload-*"+filepath.Ext(header.Filename))
		if err != nil {
			src.Close()
			h.cleanupPaths(paths)
			return nil, fmt.Errorf("failed to create temp file: %w", err)
		}

		_, copyErr := dst.ReadFrom(src)
		src.Close()
		closeErr := dst.Close()
		paths = append(paths, dst.Name())
		if copyErr != nil || closeErr != nil {
			h.cleanupPaths(paths)
			return nil, fmt.Errorf("failed to persist uploaded file: %w", errors.Join(copyErr, closeErr))
		}
	}
	return paths, nil
}

func (h *Handler) cleanupPaths(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			h.logger.Warn("Failed to remove temp upload", zap.String("path", p), zap.Error(err))
		}
	}
}

func formObjectID(r *http.Request, field string) (primitive.ObjectID, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return primitive.NilObjectID, nil
	}
	return primitive.ObjectIDFromHex(raw)
}

func formInt64(r *http.Request, field string) (int64, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func postInputFromForm(r *http.Request) (usecase.UpdatePostInput, error) {
	var input usecase.UpdatePostInput
	var err error

	input.Title = r.FormValue("title")
	input.Address = r.FormValue("address")
	input.Description = r.FormValue("description")
	input.Keyword = r.FormValue("keyword")
	input.Discount = r.FormValue("discount") == "true"

	if input.Price, err = formInt64(r, "price"); err != nil {
		return input, fmt.Errorf("invalid price: %w", err)
	}
	if input.DiscountPrice, err = formInt64(r, "discountPrice"); err != nil {
		return input, fmt.Errorf("invalid discountPrice: %w", err)
	}
	if input.Stock, err = formInt64(r, "stock"); err != nil {
		return input, fmt.Errorf("invalid stock: %w", err)
	}
	if input.DivisionID, err = formObjectID(r, "divisionID"); err != nil {
		return input, fmt.Errorf("invalid divisionID: %w", err)
	}
	if input.DistrictID, err = formObjectID(r, "districtID"); err != nil {
		return input, fmt.Errorf("invalid districtID: %w", err)
	}
	if input.AreaID, err = formObjectID(r, "areaID"); err != nil {
		return input, fmt.Errorf("invalid areaID: %w", err)
	}
	if input.BrandID, err = formObjectID(r, "brandID"); err != nil {
		return input, fmt.Errorf("invalid brandID: %w", err)
	}
	if input.CategoryID, err = formObjectID(r, "categoryID"); err != nil {
		return input, fmt.Errorf("invalid categoryID: %w", err)
	}
	if input.ModelID, err = formObjectID(r, "modelID"); err != nil {
		return input, fmt.Errorf("invalid modelID: %w", err)
	}
	return input, nil
}

func queryObjectIDPtr(r *http.Request, field string) (*primitive.ObjectID, error) {
	raw := r.URL.Query().Get(field)
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return &id, nil
}

func listingFilterFromQuery(r *http.Request) (domain.ListingFilter, error) {
	var filter domain.ListingFilter
	var err error

	if filter.DivisionID, err = queryObjectIDPtr(r, "divisionID"); err != nil {
		return filter, err
	}
	if filter.DistrictID, err = queryObjectIDPtr(r, "districtID"); err != nil {
		return filter, err
	}
	if filter.AreaID, err = queryObjectIDPtr(r, "areaID"); err != nil {
		return filter, err
	}
	if filter.BrandID, err = queryObjectIDPtr(r, "brandID"); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = queryObjectIDPtr(r, "categoryID"); err != nil {
		return filter, err
	}
	if filter.ModelID, err = queryObjectIDPtr(r, "modelID"); err != nil {
		return filter, err
	}

	for _, bound := range []struct {
		field string
		dst   **int64
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
	} {
		raw := r.URL.Query().Get(bound.field)
		if raw == "" {
			continue
		}
		v, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			return filter, fmt.Errorf("invalid %s: %w", bound.field, parseErr)
		}
		*bound.dst = &v
	}
	return filter, nil
}

// --- Public read side ---

func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	items, err := h.search.Feed(r.Context())
	if err != nil {
		h.writeError(w, "feed", err)
		return
	}
	writeSuccessList(w, items, int64(len(items)), nil)
}

func (h *Handler) HandleFilteredList(w http.ResponseWriter, r *http.Request) {
	filter, err := listingFilterFromQuery(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.search.FilteredList(r.Context(), filter)
	if err != nil {
		h.writeError(w, "filtered_list", err)
		return
	}
	writeSuccessList(w, items, int64(len(items)), nil)
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeFail(w, http.StatusBadRequest, "keyword is required")
		return
	}
	filter, err := listingFilterFromQuery(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.search.Search(r.Context(), keyword, filter)
	if err != nil {
		h.writeError(w, "search", err)
		return
	}
	writeSuccessList(w, items, int64(len(items)), nil)
}

func (h *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathObjectID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid post id")
		return
	}

	view, err := h.search.Detail(r.Context(), id)
	if err != nil {
		h.writeError(w, "detail", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

// --- Owner lifecycle ---

func (h *Handler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeFail(w, http.StatusUnauthorized, err.Error())
		return
	}

	paths, err := h.saveUploads(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	fields, err := postInputFromForm(r)
	if err != nil {
		h.cleanupPaths(paths)
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.posts.Create(r.Context(), usecase.CreatePostInput{
		OwnerID:       actor.ID,
		Title:         fields.Title,
		Price:         fields.Price,
		Discount:      fields.Discount,
		DiscountPrice: fields.DiscountPrice,
		Stock:         fields.Stock,
		DivisionID:    fields.DivisionID,
		DistrictID:    fields.DistrictID,
		AreaID:        fields.AreaID,
		Address:       fields.Address,
		BrandID:       fields.BrandID,
		CategoryID:    fields.CategoryID,
		ModelID:       fields.ModelID,
		Description:   fields.Description,
		Keyword:       fields.Keyword,
		ImagePaths:    paths,
	})
	if err != nil {
		h.writeError(w, "create_post", err)
		return
	}
	writeSuccess(w, http.StatusCreated, post)
}

func (h *Handler) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeFail(w, http.StatusUnauthorized, err.Error())
		return
	}
	postID, err := pathObjectID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid post id")
		return
	}

	paths, err := h.saveUploads(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	input, err := postInputFromForm(r)
	if err != nil {
		h.cleanupPaths(paths)
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	input.ImagePaths = paths

	post, err := h.posts.Update(r.Context(), actor.ID, postID, input)
	if err != nil {
		h.writeError(w, "update_post", err)
		return
	}
	writeSuccess(w, http.StatusOK, post)
}

func (h *Handler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeFail(w, http.StatusUnauthorized, err.Error())
		return
	}
	postID, err := pathObjectID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := h.posts.Delete(r.Context(), actor.ID, postID); err != nil {
		h.writeError(w, "delete_post", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

func (h *Handler) HandleMyPosts(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeFail(w, http.StatusUnauthorized, err.Error())
		return
	}

	posts, err := h.posts.MyPosts(r.Context(), actor.ID)
	if err != nil {
		h.writeError(w, "my_posts", err)
		return
	}
	writeSuccessList(w, posts, int64(len(posts)), nil)
}

func (h *Handler) HandleMyPendingPosts(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeFail(w, http.StatusUnauthorized, err.Error())
		return
	}

	posts, err := h.posts.MyPendingPosts(r.Context(), actor.ID)
	if err != nil {
		h.writeError(w, "my_pending_posts", err)
		return
	}
	writeSuccessList(w, posts, int64(len(posts)), nil)
}

// HandleDeleteImage removes one image slot by its remote object id,
// passed as a query parameter because object keys contain slashes.
func (h *Handler) HandleDeleteImage(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeFail(w, http.StatusUnauthorized, err.Error())
		return
	}
	postID, err := pathObjectID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid post id")
		return
	}
	objectID := r.URL.Query().Get("objectId")
	if objectID == "" {
		writeFail(w, http.StatusBadRequest, "objectId is required")
		return
	}

	if err := h.posts.DeleteImage(r.Context(), actor.ID, postID, objectID); err != nil {
		h.writeError(w, "delete_image", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

// HandleReportPost records a report by the authenticated caller.
func (h *Handler) HandleReportPost(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeFail(w, http.StatusUnauthorized, err.Error())
		return
	}
	postID, err := pathObjectID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := h.mod.Report(r.Context(), actor.ID, postID)
	if err != nil {
		h.writeError(w, "report_post", err)
		return
	}
	writeSuccess(w, http.StatusOK, post)
}
