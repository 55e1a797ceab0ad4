package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
	"github.com/srijonashraf/sellswipe-server/internal/platform/metrics"
	"github.com/srijonashraf/sellswipe-server/internal/port/repository"
	"github.com/srijonashraf/sellswipe-server/internal/usecase"
)

// AdminHandler serves the moderation queues, post transitions and
// account status endpoints. Role checks happen in the usecase; the
// handler only extracts the actor.
type AdminHandler struct {
	mod     *usecase.ModerationUsecase
	metrics *metrics.MetricsManager
	logger  *logger.Logger
}

func NewAdminHandler(mod *usecase.ModerationUsecase, mm *metrics.MetricsManager, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		mod:     mod,
		metrics: mm,
		logger:  log.Named("AdminHandler"),
	}
}

func (h *AdminHandler) writeError(w http.ResponseWriter, operation string, err error) {
	code, message := classifyError(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("Admin request failed", zap.String("operation", operation), zap.Error(err))
		message = "internal server error"
	}
	if h.metrics != nil {
		h.metrics.APIErrorsTotal.WithLabelValues(operation, http.StatusText(code)).Inc()
	}
	writeFail(w, code, message)
}

func pageLimitFromQuery(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return page, limit
}

// HandleQueue lists one moderation queue selected by ?queue=, one of
// review, approved, declined, reported. Default is review.
func (h *AdminHandler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeFail(w, http.StatusUnauthorized, err.Error())
		return
	}

	queue := repository.ModerationQueue(r.URL.Query().Get("queue"))
	switch queue {
	case repository.QueueReview, repository.QueueApproved, repository.QueueDeclined, repository.QueueReported:
	case "":
		queue = repository.QueueReview
	default:
		writeFail(w, http.StatusBadRequest, "unknown queue")
		return
	}

	page, limit := pageLimitFromQuery(r)
	out, err := h.mod.Queue(r.Context(), actor, queue, page, limit)
	if err != nil {
		h.writeError(w, "admin_queue", err)
		return
	}
	writeSuccessList(w, out.Posts, out.Total, NewPagination(page, limit, out.Total))
}

func (h *AdminHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
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

	post, err := h.mod.Approve(r.Context(), actor, postID)
	if err != nil {
		h.writeError(w, "approve", err)
		return
	}
	writeSuccess(w, http.StatusOK, post)
}

func (h *AdminHandler) HandleDecline(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.mod.Decline(r.Context(), actor, postID, body.Feedback)
	if err != nil {
		h.writeError(w, "decline", err)
		return
	}
	writeSuccess(w, http.StatusOK, post)
}

func (h *AdminHandler) HandleWithdrawReport(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		ReporterID string `json:"reporterId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reporterID, err := primitive.ObjectIDFromHex(body.ReporterID)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid reporterId")
		return
	}

	post, err := h.mod.WithdrawReport(r.Context(), actor, reporterID, postID)
	if err != nil {
		h.writeError(w, "withdraw_report", err)
		return
	}
	writeSuccess(w, http.StatusOK, post)
}

func (h *AdminHandler) HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.mod.AdminDelete(r.Context(), actor, postID); err != nil {
		h.writeError(w, "admin_delete", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

func (h *AdminHandler) handleAccountStatus(w http.ResponseWriter, r *http.Request, operation string,
	apply func(r *http.Request, actor domain.Actor, userID primitive.ObjectID) (*domain.User, error)) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeFail(w, http.StatusUnauthorized, err.Error())
		return
	}
	userID, err := pathObjectID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := apply(r, actor, userID)
	if err != nil {
		h.writeError(w, operation, err)
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

func (h *AdminHandler) HandleWarnAccount(w http.ResponseWriter, r *http.Request) {
	h.handleAccountStatus(w, r, "warn_account",
		func(r *http.Request, actor domain.Actor, userID primitive.ObjectID) (*domain.User, error) {
			return h.mod.WarnAccount(r.Context(), actor, userID)
		})
}

func (h *AdminHandler) HandleRestrictAccount(w http.ResponseWriter, r *http.Request) {
	h.handleAccountStatus(w, r, "restrict_account",
		func(r *http.Request, actor domain.Actor, userID primitive.ObjectID) (*domain.User, error) {
			return h.mod.RestrictAccount(r.Context(), actor, userID)
		})
}

func (h *AdminHandler) HandleWithdrawRestrictions(w http.ResponseWriter, r *http.Request) {
	h.handleAccountStatus(w, r, "withdraw_restrictions",
		func(r *http.Request, actor domain.Actor, userID primitive.ObjectID) (*domain.User, error) {
			return h.mod.WithdrawRestrictions(r.Context(), actor, userID)
		})
}

// HandleUserList pages through accounts, optionally filtered by
// ?status= (Validate, Warning or Restricted).
func (h *AdminHandler) HandleUserList(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeFail(w, http.StatusUnauthorized, err.Error())
		return
	}

	var status *domain.AccountStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.AccountStatus(raw)
		switch s {
		case domain.AccountValidate, domain.AccountWarning, domain.AccountRestricted:
			status = &s
		default:
			writeFail(w, http.StatusBadRequest, "unknown account status")
			return
		}
	}

	page, limit := pageLimitFromQuery(r)
	out, err := h.mod.UserList(r.Context(), actor, status, page, limit)
	if err != nil {
		h.writeError(w, "user_list", err)
		return
	}
	writeSuccessList(w, out.Users, out.Total, NewPagination(page, limit, out.Total))
}
