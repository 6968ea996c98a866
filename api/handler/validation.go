package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/regioncheck/api/transport"
	"github.com/fastygo/regioncheck/domain"
	"github.com/fastygo/regioncheck/pkg/httpcontext"
	appLogger "github.com/fastygo/regioncheck/pkg/logger"
	validationUC "github.com/fastygo/regioncheck/usecase/validation"
)

// RunRecorder receives the outcome of every validation run.
type RunRecorder interface {
	ObserveRun(summary *domain.Summary, err error)
}

// ValidationOptions tune how the handler runs validations.
type ValidationOptions struct {
	Parallel bool
	Workers  int
	Recorder RunRecorder
}

type ValidationHandler struct {
	baseHandler
	uc   *validationUC.UseCase
	opts ValidationOptions
}

func NewValidationHandler(uc *validationUC.UseCase, opts ValidationOptions, adapter *httpcontext.Adapter, logger *zap.Logger) *ValidationHandler {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &ValidationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		opts:        opts,
	}
}

// @Summary Run a region validation
// @Tags validation
// @Router /api/v1/validation [get]
func (h *ValidationHandler) Validate(ctx *fasthttp.RequestCtx) {
	query, err := parseValidationQuery(ctx.QueryArgs())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	uc := h.uc
	if query.Overrides() {
		criteria := query.Apply(uc.Criteria())
		if err := criteria.Validate(); err != nil {
			h.respondError(ctx, err)
			return
		}
		uc = uc.WithCriteria(criteria)
	}
	parallel := h.opts.Parallel
	if query.Parallel != nil {
		parallel = *query.Parallel
	}

	runID := uuid.NewString()
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	stdCtx = appLogger.ContextWithRunID(stdCtx, runID)
	log := appLogger.FromContext(stdCtx, h.logger)

	var summary *domain.Summary
	if parallel {
		summary, err = uc.ValidateAllConcurrent(stdCtx, h.opts.Workers)
	} else {
		summary, err = uc.ValidateAll(stdCtx)
	}
	if h.opts.Recorder != nil {
		h.opts.Recorder.ObserveRun(summary, err)
	}
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	log.Info("validation run served",
		zap.Bool("parallel", parallel),
		zap.Int("total", summary.TotalUsers),
		zap.Bool("overall_result", summary.OverallResult))
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(summary, transport.RunMeta{
		RunID:    runID,
		Criteria: uc.Criteria(),
	}))
}

// @Summary List users inside the region
// @Tags validation
// @Router /api/v1/users/in-region [get]
func (h *ValidationHandler) InRegion(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	users, err := h.uc.InRegionUsers(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewUserViews(users))
}

// @Summary Validate a single user
// @Tags validation
// @Router /api/v1/users/{id}/validation [get]
func (h *ValidationHandler) User(ctx *fasthttp.RequestCtx) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		h.respondError(ctx, domain.NewError(domain.ErrCodeInvalid, "invalid user id"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.FindUser(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	result, err := h.uc.ValidateUser(stdCtx, user)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.UserValidation{
		InRegion: h.uc.Criteria().Region.ContainsUser(user),
		Result:   result,
	})
}

func parseValidationQuery(args *fasthttp.Args) (transport.ValidationQuery, error) {
	var q transport.ValidationQuery
	floats := []struct {
		key string
		dst **float64
	}{
		{"lat_min", &q.LatMin},
		{"lat_max", &q.LatMax},
		{"lng_min", &q.LngMin},
		{"lng_max", &q.LngMax},
		{"threshold", &q.Threshold},
	}
	for _, f := range floats {
		raw := string(args.Peek(f.key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, domain.WrapError(domain.ErrCodeInvalid, "invalid query parameter "+f.key, err)
		}
		*f.dst = &v
	}
	if raw := string(args.Peek("parallel")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return q, domain.WrapError(domain.ErrCodeInvalid, "invalid query parameter parallel", err)
		}
		q.Parallel = &v
	}
	return q, nil
}
