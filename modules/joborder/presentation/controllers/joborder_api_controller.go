package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pdnportal/portal/modules/core/domain/aggregates/user"
	"github.com/pdnportal/portal/modules/joborder/domain/aggregates/joborder"
	"github.com/pdnportal/portal/modules/joborder/presentation/mappers"
	"github.com/pdnportal/portal/modules/joborder/presentation/viewmodels"
	"github.com/pdnportal/portal/modules/joborder/services"
	"github.com/pdnportal/portal/pkg/application"
	"github.com/pdnportal/portal/pkg/composables"
	"github.com/pdnportal/portal/pkg/configuration"
	"github.com/pdnportal/portal/pkg/constants"
	"github.com/pdnportal/portal/pkg/httpapi"
	"github.com/pdnportal/portal/pkg/middleware"
	"github.com/pdnportal/portal/pkg/serrors"
)

type JobOrderAPIController struct {
	app       application.Application
	workflow  *services.WorkflowService
	stats     *services.StatsService
	apiPrefix string
}

func NewJobOrderAPIController(app application.Application) application.Controller {
	return &JobOrderAPIController{
		app:       app,
		workflow:  app.Service(services.WorkflowService{}).(*services.WorkflowService),
		stats:     app.Service(services.StatsService{}).(*services.StatsService),
		apiPrefix: "/joborder/api",
	}
}

func (c *JobOrderAPIController) Key() string {
	return c.apiPrefix
}

func (c *JobOrderAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	conf := configuration.Use()
	api.Use(
		middleware.WithUserID(conf.UserIDHeader),
	)

	api.HandleFunc("/requests", c.submit).Methods(http.MethodPost)
	api.HandleFunc("/requests", c.list).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id:[0-9]+}:advance", c.advance).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}:reject", c.reject).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}:assign", c.assign).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}:complete", c.complete).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}:close", c.close).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}:cancel", c.cancel).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}:target-date", c.setTargetDate).Methods(http.MethodPost)

	api.HandleFunc("/stats/overview", c.statsOverview).Methods(http.MethodGet)
	api.HandleFunc("/stats/monthly", c.statsMonthly).Methods(http.MethodGet)
	api.HandleFunc("/stats/workload", c.statsWorkload).Methods(http.MethodGet)
	api.HandleFunc("/stats/deadlines", c.statsDeadlines).Methods(http.MethodGet)
}

type submitRequestDTO struct {
	Category       string `json:"category" validate:"required"`
	Tool           string `json:"tool" validate:"required"`
	NatureOfChange string `json:"nature_of_change" validate:"required"`
	Details        string `json:"details"`
	Line           string `json:"line"`
}

type remarksDTO struct {
	Remarks string `json:"remarks"`
}

type assignDTO struct {
	AssigneeID string `json:"assignee_id" validate:"required,uuid"`
}

type completeDTO struct {
	ActionTaken string `json:"action_taken" validate:"required"`
	Remarks     string `json:"remarks"`
}

type targetDateDTO struct {
	TargetDate string `json:"target_date" validate:"required"`
	Reason     string `json:"reason"`
}

type actionResponse struct {
	Request  *viewmodels.JobRequest  `json:"request"`
	NextStep *viewmodels.RoutingStep `json:"next_step,omitempty"`
}

func (c *JobOrderAPIController) submit(w http.ResponseWriter, r *http.Request) {
	actorID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	var dto submitRequestDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	created, err := c.workflow.Submit(r.Context(), services.SubmitParams{
		RequesterID:    actorID,
		Category:       joborder.Category(dto.Category),
		Tool:           dto.Tool,
		NatureOfChange: dto.NatureOfChange,
		Details:        dto.Details,
		Line:           dto.Line,
	})
	if err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	writeJSON(w, http.StatusCreated, mappers.JobRequestToViewModel(created))
}

func (c *JobOrderAPIController) list(w http.ResponseWriter, r *http.Request) {
	actorID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	params, err := c.findParams(r, actorID)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestIDOf(w), "JOBORDER_INVALID_FILTER", err.Error())
		return
	}
	items, err := c.workflow.List(r.Context(), params)
	if err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	total, err := c.workflow.Count(r.Context(), params)
	if err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	vms := make([]*viewmodels.JobRequest, 0, len(items))
	for _, item := range items {
		vms = append(vms, mappers.JobRequestToViewModel(item))
	}
	writeJSON(w, http.StatusOK, &viewmodels.PaginatedJobRequests{Items: vms, Total: total})
}

// findParams translates list query parameters into repository filters. The
// scope parameter resolves against the acting user so clients never pass
// another user's id.
func (c *JobOrderAPIController) findParams(r *http.Request, actorID uuid.UUID) (*joborder.FindParams, error) {
	conf := configuration.Use()
	q := r.URL.Query()

	params := &joborder.FindParams{
		Search: strings.TrimSpace(q.Get("search")),
		Limit:  conf.PageSize,
	}

	if raw := q.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			params.Statuses = append(params.Statuses, joborder.Status(strings.TrimSpace(s)))
		}
	}
	if raw := q.Get("category"); raw != "" {
		category := joborder.Category(raw)
		if !category.Valid() {
			return nil, errors.New("unknown category")
		}
		params.Category = &category
	}
	switch q.Get("scope") {
	case "", "all":
	case "requested":
		params.PreparerID = &actorID
	case "approvals":
		params.ApproverID = &actorID
	case "history":
		params.ActedByID = &actorID
	case "assigned":
		params.InChargeID = &actorID
	case "unassigned":
		params.Unassigned = true
	default:
		return nil, errors.New("unknown scope")
	}
	if raw := q.Get("created_from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, errors.New("created_from must be YYYY-MM-DD")
		}
		params.CreatedFrom = &from
	}
	if raw := q.Get("created_to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, errors.New("created_to must be YYYY-MM-DD")
		}
		params.CreatedTo = &to
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, errors.New("limit must be a positive integer")
		}
		if limit > conf.MaxPageSize {
			limit = conf.MaxPageSize
		}
		params.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return nil, errors.New("offset must be a non-negative integer")
		}
		params.Offset = offset
	}
	return params, nil
}

func (c *JobOrderAPIController) get(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.requireUser(w, r); !ok {
		return
	}
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	request, steps, err := c.workflow.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.JobRequestDetailToViewModel(request, steps))
}

func (c *JobOrderAPIController) advance(w http.ResponseWriter, r *http.Request) {
	c.stepAction(w, r, func(ctx *actionContext) (*joborder.RoutingStep, error) {
		return c.workflow.Advance(ctx.r.Context(), ctx.id, ctx.actorID, ctx.remarks.Remarks)
	})
}

func (c *JobOrderAPIController) reject(w http.ResponseWriter, r *http.Request) {
	c.stepAction(w, r, func(ctx *actionContext) (*joborder.RoutingStep, error) {
		return c.workflow.Reject(ctx.r.Context(), ctx.id, ctx.actorID, ctx.remarks.Remarks)
	})
}

func (c *JobOrderAPIController) assign(w http.ResponseWriter, r *http.Request) {
	actorID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	var dto assignDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	assigneeID, err := uuid.Parse(dto.AssigneeID)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestIDOf(w), "JOBORDER_INVALID_ASSIGNEE", "assignee_id must be a uuid")
		return
	}
	nextStep, err := c.workflow.AssignInCharge(r.Context(), id, actorID, assigneeID)
	if err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	c.respondWithRequest(w, r, id, nextStep)
}

func (c *JobOrderAPIController) complete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	var dto completeDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	nextStep, err := c.workflow.Complete(r.Context(), id, actorID, dto.ActionTaken, dto.Remarks)
	if err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	c.respondWithRequest(w, r, id, nextStep)
}

func (c *JobOrderAPIController) close(w http.ResponseWriter, r *http.Request) {
	actorID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	var dto remarksDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	if err := c.workflow.Close(r.Context(), id, actorID, dto.Remarks); err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	c.respondWithRequest(w, r, id, nil)
}

func (c *JobOrderAPIController) cancel(w http.ResponseWriter, r *http.Request) {
	actorID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	if err := c.workflow.Cancel(r.Context(), id, actorID); err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	c.respondWithRequest(w, r, id, nil)
}

func (c *JobOrderAPIController) setTargetDate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	var dto targetDateDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	target, err := time.Parse("2006-01-02", dto.TargetDate)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestIDOf(w), "JOBORDER_INVALID_DATE", "target_date must be YYYY-MM-DD")
		return
	}
	if err := c.workflow.SetTargetDate(r.Context(), id, actorID, target, dto.Reason); err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	c.respondWithRequest(w, r, id, nil)
}

func (c *JobOrderAPIController) statsOverview(w http.ResponseWriter, r *http.Request) {
	actorID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	overview, err := c.stats.Overview(r.Context(), actorID)
	if err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.OverviewToViewModel(overview))
}

func (c *JobOrderAPIController) statsMonthly(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.requireUser(w, r); !ok {
		return
	}
	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeAPIError(w, http.StatusBadRequest, requestIDOf(w), "JOBORDER_INVALID_FILTER", "months must be a positive integer")
			return
		}
		months = parsed
	}
	series, err := c.stats.Monthly(r.Context(), months)
	if err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	vms := make([]*viewmodels.MonthlyCount, 0, len(series))
	for _, count := range series {
		vms = append(vms, mappers.MonthlyCountToViewModel(count))
	}
	writeJSON(w, http.StatusOK, vms)
}

func (c *JobOrderAPIController) statsWorkload(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.requireUser(w, r); !ok {
		return
	}
	entries, err := c.stats.Workload(r.Context())
	if err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	vms := make([]*viewmodels.WorkloadEntry, 0, len(entries))
	for _, entry := range entries {
		vms = append(vms, mappers.WorkloadEntryToViewModel(entry))
	}
	writeJSON(w, http.StatusOK, vms)
}

func (c *JobOrderAPIController) statsDeadlines(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.requireUser(w, r); !ok {
		return
	}
	buckets, err := c.stats.Deadlines(r.Context())
	if err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.DeadlineBucketsToViewModel(buckets))
}

type actionContext struct {
	r       *http.Request
	id      int64
	actorID uuid.UUID
	remarks remarksDTO
}

// stepAction factors the advance and reject handlers: both take an optional
// remarks body and return the request with the step the workflow moved to.
func (c *JobOrderAPIController) stepAction(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx *actionContext) (*joborder.RoutingStep, error),
) {
	actorID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	var dto remarksDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	nextStep, err := fn(&actionContext{r: r, id: id, actorID: actorID, remarks: dto})
	if err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	c.respondWithRequest(w, r, id, nextStep)
}

func (c *JobOrderAPIController) respondWithRequest(
	w http.ResponseWriter,
	r *http.Request,
	id int64,
	nextStep *joborder.RoutingStep,
) {
	request, _, err := c.workflow.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestIDOf(w), err)
		return
	}
	resp := &actionResponse{Request: mappers.JobRequestToViewModel(request)}
	if nextStep != nil {
		resp.NextStep = mappers.RoutingStepToViewModel(nextStep)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *JobOrderAPIController) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	actorID, err := composables.UseUserID(r.Context())
	if err != nil {
		writeAPIError(w, http.StatusUnauthorized, requestIDOf(w), "UNAUTHENTICATED", "request is missing a valid user identity")
		return uuid.Nil, false
	}
	return actorID, true
}

func requestID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestIDOf(w), "JOBORDER_INVALID_ID", "id must be an integer")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dto any) bool {
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestIDOf(w), "INVALID_BODY", "request body must be valid JSON")
		return false
	}
	if err := constants.Validate.Struct(dto); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestIDOf(w), "VALIDATION_ERROR", err.Error())
		return false
	}
	return true
}

// requestIDOf reads the id the logging middleware stamped on the response.
func requestIDOf(w http.ResponseWriter) string {
	return w.Header().Get("X-Request-Id")
}

func writeServiceError(w http.ResponseWriter, requestID string, err error) {
	var base *serrors.BaseError
	switch {
	case errors.Is(err, joborder.ErrNotFound):
		writeAPIError(w, http.StatusNotFound, requestID, "JOBORDER_NOT_FOUND", "job order request not found")
	case errors.Is(err, user.ErrNotFound):
		writeAPIError(w, http.StatusNotFound, requestID, "USER_NOT_FOUND", "referenced user not found")
	case errors.Is(err, joborder.ErrNotAuthorized):
		writeAPIError(w, http.StatusForbidden, requestID, "JOBORDER_FORBIDDEN", "acting user cannot perform this action on the request")
	case errors.Is(err, joborder.ErrAlreadyProcessed):
		writeAPIError(w, http.StatusConflict, requestID, "JOBORDER_ALREADY_PROCESSED", "request has already moved past this action")
	case errors.Is(err, joborder.ErrInvalidAction):
		writeAPIError(w, http.StatusConflict, requestID, "JOBORDER_INVALID_ACTION", "action is not valid at the current stage")
	case errors.Is(err, joborder.ErrNoCurrentStep):
		writeAPIError(w, http.StatusConflict, requestID, "JOBORDER_NO_CURRENT_STEP", "request has no step awaiting action")
	case errors.Is(err, joborder.ErrNoNextApprover):
		writeAPIError(w, http.StatusConflict, requestID, "JOBORDER_NO_NEXT_APPROVER", "no approver is configured for the next stage")
	case errors.Is(err, joborder.ErrMissingReason):
		writeAPIError(w, http.StatusBadRequest, requestID, "JOBORDER_MISSING_REASON", "rejection requires remarks")
	case errors.Is(err, joborder.ErrMissingAction):
		writeAPIError(w, http.StatusBadRequest, requestID, "JOBORDER_MISSING_ACTION", "completion requires the action taken")
	case errors.Is(err, joborder.ErrInvalidAssignee):
		writeAPIError(w, http.StatusBadRequest, requestID, "JOBORDER_INVALID_ASSIGNEE", "assignee is not maintenance staff")
	case errors.As(err, &base):
		writeAPIError(w, http.StatusBadRequest, requestID, base.Code, base.Message)
	default:
		writeAPIError(w, http.StatusInternalServerError, requestID, "JOBORDER_INTERNAL", "internal error")
	}
}

func writeAPIError(w http.ResponseWriter, status int, requestID, code, message string) {
	_ = httpapi.WriteError(w, status, code, message, map[string]string{"request_id": requestID})
}

func writeJSON[T any](w http.ResponseWriter, status int, payload T) {
	_ = httpapi.WriteJSON(w, status, payload)
}
