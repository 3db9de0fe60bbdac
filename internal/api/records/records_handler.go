package records

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-interests-api/internal/api"
	"github.com/FACorreiaa/go-interests-api/internal/types"
)

const (
	msgFetchFailed   = "An error occurred while fetching users."
	msgCreateFailed  = "An error occurred while adding a new user."
	msgSearchFailed  = "An error occurred while searching for users."
	msgUpdateFailed  = "An error occurred while updating user interest."
	msgSearchMissing = "A search term is required."
	msgUpdateMissing = "User ID and interest are required."
	msgValueMissing  = "Interest value is required."
	msgInvalidID     = "Invalid user ID."
	msgCreateInvalid = "Name, division and location are required."
	msgNotFound      = "User not found."
	msgUpdated       = "Interest updated successfully."
)

// HandlerImpl serves the record routes.
type HandlerImpl struct {
	recordsService RecordsService
	logger         *slog.Logger
}

// NewHandlerImpl creates a new records handler instance.
func NewHandlerImpl(recordsService RecordsService, logger *slog.Logger) *HandlerImpl {
	if logger == nil {
		panic("PANIC: Attempting to create records HandlerImpl with nil logger!")
	}
	return &HandlerImpl{
		recordsService: recordsService,
		logger:         logger,
	}
}

func startHandlerSpan(r *http.Request, name, route string) (trace.Span, *http.Request) {
	ctx, span := otel.Tracer("RecordsHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return span, r.WithContext(ctx)
}

// ListUsers godoc
// @Summary      List records
// @Description  Returns every record.
// @Tags         Users
// @Produce      json
// @Success      200 {array} types.Record
// @Failure      500 {string} string "Store error"
// @Router       /users [get]
func (h *HandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "ListUsers", "/users")
	defer span.End()
	ctx := r.Context()

	records, err := h.recordsService.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error fetching users", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list records")
		api.ErrorResponse(w, r, http.StatusInternalServerError, msgFetchFailed)
		return
	}

	span.SetStatus(codes.Ok, "Records listed")
	api.WriteJSONResponse(w, r, http.StatusOK, records)
}

// CreateUser godoc
// @Summary      Create record
// @Description  Inserts a record. The value is normally left unset and chosen later.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        record body types.CreateRecordRequest true "Record to create"
// @Success      201 {object} types.CreateRecordResponse
// @Failure      400 {string} string "Invalid input"
// @Failure      500 {string} string "Store error"
// @Router       /update-user-value [post]
func (h *HandlerImpl) CreateUser(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "CreateUser", "/update-user-value")
	defer span.End()
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateUser"))

	var req types.CreateRecordRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.SetStatus(codes.Error, "Failed to decode request")
		api.ErrorResponse(w, r, http.StatusBadRequest, msgCreateInvalid)
		return
	}

	id, err := h.recordsService.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create record")
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, msgCreateInvalid)
			return
		}
		l.ErrorContext(ctx, "Error adding new user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, msgCreateFailed)
		return
	}

	span.SetStatus(codes.Ok, "Record created")
	api.WriteJSONResponse(w, r, http.StatusCreated, types.CreateRecordResponse{ID: id})
}

// SearchUsers godoc
// @Summary      Search records by name
// @Description  Returns records whose name contains searchTerm. Case sensitivity follows configuration.
// @Tags         Users
// @Produce      json
// @Param        searchTerm query string true "Substring of the name"
// @Success      200 {array} types.Record
// @Failure      400 {string} string "Missing search term"
// @Failure      500 {string} string "Store error"
// @Router       /search-users [get]
func (h *HandlerImpl) SearchUsers(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "SearchUsers", "/search-users")
	defer span.End()
	ctx := r.Context()

	term := r.URL.Query().Get("searchTerm")
	if term == "" {
		span.SetStatus(codes.Error, "Missing search term")
		api.ErrorResponse(w, r, http.StatusBadRequest, msgSearchMissing)
		return
	}

	records, err := h.recordsService.Search(ctx, term)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error searching for users", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to search records")
		api.ErrorResponse(w, r, http.StatusInternalServerError, msgSearchFailed)
		return
	}

	span.SetStatus(codes.Ok, "Records searched")
	api.WriteJSONResponse(w, r, http.StatusOK, records)
}

// UpdateInterest godoc
// @Summary      Set interest (id in body)
// @Description  Body-addressed form of PATCH /users/{id}; both share one update path.
// @Tags         Users
// @Accept       json
// @Produce      plain
// @Param        update body types.UpdateInterestRequest true "Record id and interest"
// @Success      200 {string} string "Interest updated successfully."
// @Failure      400 {string} string "Missing id or value"
// @Failure      404 {string} string "User not found."
// @Failure      500 {string} string "Store error"
// @Router       /update-interest [post]
func (h *HandlerImpl) UpdateInterest(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "UpdateInterest", "/update-interest")
	defer span.End()

	var req types.UpdateInterestRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		span.SetStatus(codes.Error, "Failed to decode request")
		api.ErrorResponse(w, r, http.StatusBadRequest, msgUpdateMissing)
		return
	}
	if req.ID <= 0 || types.ValidateInterest(req.Value) != nil {
		span.SetStatus(codes.Error, "Missing id or value")
		api.ErrorResponse(w, r, http.StatusBadRequest, msgUpdateMissing)
		return
	}

	h.updateValue(w, r, span, req.ID, req.Value, msgUpdateMissing)
}

// UpdateUserValue godoc
// @Summary      Set interest
// @Description  Sets the value of record {id} and notifies event stream clients.
// @Tags         Users
// @Accept       json
// @Produce      plain
// @Param        id path int true "Record id"
// @Param        update body types.UpdateValueRequest true "Interest"
// @Success      200 {string} string "Interest updated successfully."
// @Failure      400 {string} string "Missing value or invalid id"
// @Failure      404 {string} string "User not found."
// @Failure      500 {string} string "Store error"
// @Router       /users/{id} [patch]
func (h *HandlerImpl) UpdateUserValue(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "UpdateUserValue", "/users/{id}")
	defer span.End()

	id, err := types.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		span.SetStatus(codes.Error, "Invalid id")
		api.ErrorResponse(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	var req types.UpdateValueRequest
	if err = api.DecodeJSONBody(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		span.SetStatus(codes.Error, "Failed to decode request")
		api.ErrorResponse(w, r, http.StatusBadRequest, msgValueMissing)
		return
	}
	if types.ValidateInterest(req.Value) != nil {
		span.SetStatus(codes.Error, "Missing value")
		api.ErrorResponse(w, r, http.StatusBadRequest, msgValueMissing)
		return
	}

	h.updateValue(w, r, span, id, req.Value, msgValueMissing)
}

func (h *HandlerImpl) updateValue(w http.ResponseWriter, r *http.Request, span trace.Span, id types.RecordID, value, invalidMsg string) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "updateValue"), slog.String("id", id.String()))

	err := h.recordsService.UpdateValue(ctx, id, value)
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "Record value updated")
		api.WriteTextResponse(w, r, http.StatusOK, msgUpdated)
	case errors.Is(err, types.ErrValidation):
		span.SetStatus(codes.Error, "Invalid update")
		api.ErrorResponse(w, r, http.StatusBadRequest, invalidMsg)
	case errors.Is(err, types.ErrNotFound):
		span.SetStatus(codes.Error, "Record not found")
		api.ErrorResponse(w, r, http.StatusNotFound, msgNotFound)
	default:
		l.ErrorContext(ctx, "Error updating user interest", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("Failed to update record %s", id))
		api.ErrorResponse(w, r, http.StatusInternalServerError, msgUpdateFailed)
	}
}

// ListUsersWithInterest godoc
// @Summary      List records with an interest
// @Description  Returns records whose value is set.
// @Tags         Users
// @Produce      json
// @Success      200 {array} types.Record
// @Failure      500 {string} string "Store error"
// @Router       /users-with-interest [get]
func (h *HandlerImpl) ListUsersWithInterest(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "ListUsersWithInterest", "/users-with-interest")
	defer span.End()
	ctx := r.Context()

	records, err := h.recordsService.ListWithInterest(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error fetching users with interest", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list records with interest")
		api.ErrorResponse(w, r, http.StatusInternalServerError, msgFetchFailed)
		return
	}

	span.SetStatus(codes.Ok, "Records with interest listed")
	api.WriteJSONResponse(w, r, http.StatusOK, records)
}
