package inquiries

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"agritrade-backend/internal/httpx"
	"agritrade-backend/internal/middleware"
	"agritrade-backend/internal/transport"
	"agritrade-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		val:     val,
		log:     log,
	}
}

func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)

	var req ContactRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("contact create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("contact create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inq, err := h.service.Submit(ctx, req)
	if err != nil {
		log.Error("contact create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	go func(created Inquiry) {
		notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer notifyCancel()
		if err := h.service.NotifyNewInquiry(notifyCtx, created); err != nil {
			h.log.Warn("contact create: notification failed",
				slog.String("inquiry_id", created.ID),
				slog.String("error", err.Error()),
			)
		}
	}(inq)

	log.Info("contact create: ok", slog.String("inquiry_id", inq.ID))
	transport.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "inquiry received",
		"id":      inq.ID,
	})
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 0, 500)
	if err != nil {
		log.Warn("admin inquiries list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, total, err := h.service.ListAdmin(ctx, listFilter(r), limit, offset)
	if err != nil {
		h.writeError(w, log, "admin inquiries list", err)
		return
	}

	log.Info("admin inquiries list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	id, ok := h.idParam(w, r, log, "admin inquiries get")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inq, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeError(w, log, "admin inquiries get", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, inq)
}

func (h *Handler) AdminCreateLead(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)

	var req LeadRequest
	if !h.decode(w, r, log, "admin leads create", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inq, err := h.service.CreateLead(ctx, req)
	if err != nil {
		h.writeError(w, log, "admin leads create", err)
		return
	}

	log.Info("admin leads create: ok", slog.String("inquiry_id", inq.ID), slog.String("status", string(inq.Status)))
	transport.WriteJSON(w, http.StatusCreated, inq)
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	id, ok := h.idParam(w, r, log, "admin inquiries delete")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		h.writeError(w, log, "admin inquiries delete", err)
		return
	}

	log.Info("admin inquiries delete: ok", slog.String("inquiry_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) AdminSetStatus(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	id, ok := h.idParam(w, r, log, "admin inquiries status")
	if !ok {
		return
	}

	var req StatusRequest
	if !h.decode(w, r, log, "admin inquiries status", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	change, err := h.service.SetStatus(ctx, id, req.Status)
	if err != nil {
		h.writeError(w, log, "admin inquiries status", err)
		return
	}

	log.Info("admin inquiries status: ok",
		slog.String("inquiry_id", id),
		slog.String("from", string(change.Previous)),
		slog.String("to", string(change.Current)),
	)
	transport.WriteJSON(w, http.StatusOK, change)
}

func (h *Handler) AdminUpdateNotes(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	id, ok := h.idParam(w, r, log, "admin inquiries notes")
	if !ok {
		return
	}

	var req NotesRequest
	if !h.decode(w, r, log, "admin inquiries notes", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inq, err := h.service.UpdateNotes(ctx, id, req.Notes)
	if err != nil {
		h.writeError(w, log, "admin inquiries notes", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, inq)
}

func (h *Handler) AdminUpdateDealValue(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	id, ok := h.idParam(w, r, log, "admin inquiries deal value")
	if !ok {
		return
	}

	var req DealValueRequest
	if !h.decode(w, r, log, "admin inquiries deal value", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inq, err := h.service.UpdateDealValue(ctx, id, req.DealValue)
	if err != nil {
		h.writeError(w, log, "admin inquiries deal value", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, inq)
}

func (h *Handler) AdminAddLabel(w http.ResponseWriter, r *http.Request) {
	h.label(w, r, "admin inquiries label add", h.service.AddLabel)
}

func (h *Handler) AdminRemoveLabel(w http.ResponseWriter, r *http.Request) {
	h.label(w, r, "admin inquiries label remove", h.service.RemoveLabel)
}

func (h *Handler) label(w http.ResponseWriter, r *http.Request, op string, apply func(context.Context, string, string) (Inquiry, error)) {
	log := middleware.WithRequest(h.log, r)
	id, ok := h.idParam(w, r, log, op)
	if !ok {
		return
	}

	var req LabelRequest
	if !h.decode(w, r, log, op, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inq, err := apply(ctx, id, req.Label)
	if err != nil {
		h.writeError(w, log, op, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":     inq.ID,
		"labels": inq.Labels,
	})
}

func (h *Handler) AdminTemplates(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": Templates(),
	})
}

func (h *Handler) AdminDraft(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	id, ok := h.idParam(w, r, log, "admin inquiries draft")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	draft, err := h.service.Draft(ctx, id, r.URL.Query().Get("template"))
	if err != nil {
		h.writeError(w, log, "admin inquiries draft", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, draft)
}

func (h *Handler) AdminReply(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	id, ok := h.idParam(w, r, log, "admin inquiries reply")
	if !ok {
		return
	}

	var req ReplyRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin inquiries reply: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	inq, err := h.service.SendReply(ctx, id, req.Subject, req.Body)
	if err != nil {
		h.writeError(w, log, "admin inquiries reply", err)
		return
	}

	log.Info("admin inquiries reply: ok",
		slog.String("inquiry_id", inq.ID),
		slog.Int("replies", len(inq.ReplyHistory)),
	)
	transport.WriteJSON(w, http.StatusOK, inq)
}

func (h *Handler) AdminPipeline(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	board, err := h.service.Pipeline(ctx, ListFilter{Query: r.URL.Query().Get("q")})
	if err != nil {
		h.writeError(w, log, "admin pipeline", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, board)
}

func (h *Handler) AdminMove(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)

	var req MoveRequest
	if !h.decode(w, r, log, "admin pipeline move", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	board, change, err := h.service.MoveCard(ctx, req.ID, req.Status)
	if err != nil {
		h.writeError(w, log, "admin pipeline move", err)
		return
	}

	log.Info("admin pipeline move: ok",
		slog.String("inquiry_id", change.ID),
		slog.String("from", string(change.Previous)),
		slog.String("to", string(change.Current)),
	)
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"change": change,
		"board":  board,
	})
}

func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.writeError(w, log, "admin stats", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) AdminExport(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	body, filename, err := h.service.Export(ctx, listFilter(r))
	if err != nil {
		h.writeError(w, log, "admin inquiries export", err)
		return
	}

	log.Info("admin inquiries export: ok", slog.String("filename", filename))
	transport.WriteAttachment(w, "text/csv; charset=utf-8", filename, body)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, v interface{}) bool {
	if err := httpx.DecodeJSON(r.Body, v); err != nil {
		log.Warn(op + ": invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return false
	}
	if err := h.val.Struct(v); err != nil {
		log.Warn(op + ": validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return false
	}
	return true
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn(op + ": missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return "", false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	var dispatchErr *DispatchError
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn(op + ": not found")
		transport.WriteError(w, http.StatusNotFound, "inquiry not found", nil)
	case errors.Is(err, ErrInvalidStatus):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"status": "invalid"})
	case errors.Is(err, ErrInvalidDealValue):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"dealValue": "gte"})
	case errors.Is(err, ErrEmptyReply):
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrUnknownTemplate):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"template": "unknown"})
	case errors.Is(err, ErrNoRecipient):
		transport.WriteError(w, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.As(err, &dispatchErr):
		log.Warn(op+": dispatch failed", slog.String("error", err.Error()))
		msg := dispatchErr.ProviderMessage()
		if msg == "" {
			msg = "failed to send email"
		}
		transport.WriteError(w, http.StatusBadGateway, msg, nil)
	default:
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
	}
}

func listFilter(r *http.Request) ListFilter {
	q := r.URL.Query()
	return ListFilter{
		Query:  q.Get("q"),
		Status: Status(q.Get("status")),
	}
}
