// Package http provides http transport for ingestion
package http

import (
	stdhttp "net/http"
	"sync"

	"evidencegate/internal/core/ingestion"
	"evidencegate/internal/modkit/httpkit"
	"evidencegate/internal/services/api/ingestion/domain"
	svc "evidencegate/internal/services/api/ingestion/service"
)

var tagsOnce sync.Once

// Register mounts ingestion endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	tagsOnce.Do(func() {
		if err := httpkit.RegisterTag("sha256hex", ingestion.IsSHA256Hex, "{0} must be a hex SHA-256"); err != nil {
			panic(err)
		}
	})
	h := &handlers{svc: s}

	// rule table
	httpkit.Get(r, "/methods", h.methods)
	httpkit.Get(r, "/methods/{method_id}", h.method)
	httpkit.Get(r, "/methods/{method_id}/fields/{field}/visible", h.fieldVisible)

	// wizard checks
	httpkit.PostJSON[domain.ValidateInput](r, "/validate", h.validate)
	httpkit.PostJSON[domain.AdvanceInput](r, "/advance", h.advance)
	httpkit.PostJSON[domain.SealCheckInput](r, "/seal/check", h.sealCheck)

	// sealing writes evidence and needs a tenant
	r.Group(func(g httpkit.Router) {
		g.Use(httpkit.RequireTenant())
		httpkit.PostJSON[domain.SealInput](g, "/seal", h.seal)
	})

	httpkit.Get(r, "/audit", h.audit)
}

type handlers struct{ svc svc.Service }

// @Summary List ingestion methods
// @Tags Ingestion
// @Produce json
// @Success 200 {array} domain.MethodSummary "ok"
// @Router /ingestion/methods [get]
func (h *handlers) methods(r *stdhttp.Request) (any, error) {
	return h.svc.Methods(r.Context()), nil
}

// @Summary Get one ingestion method
// @Tags Ingestion
// @Produce json
// @Param method_id path string true "Method id"
// @Success 200 {object} domain.MethodView "ok"
// @Failure 404 {object} net.Wire "unknown method"
// @Router /ingestion/methods/{method_id} [get]
func (h *handlers) method(r *stdhttp.Request) (any, error) {
	return h.svc.Method(r.Context(), httpkit.Param(r, "method_id"))
}

// @Summary Is a field control shown for a method
// @Tags Ingestion
// @Produce json
// @Param method_id path string true "Method id"
// @Param field path string true "Field name"
// @Success 200 {object} domain.VisibleOutput "ok"
// @Router /ingestion/methods/{method_id}/fields/{field}/visible [get]
func (h *handlers) fieldVisible(r *stdhttp.Request) (any, error) {
	return h.svc.FieldVisible(r.Context(), httpkit.Param(r, "method_id"), httpkit.Param(r, "field")), nil
}

// @Summary Validate one wizard step
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param payload body domain.ValidateInput true "Draft"
// @Success 200 {object} domain.StepOutput "ok"
// @Router /ingestion/validate [post]
func (h *handlers) validate(r *stdhttp.Request, in domain.ValidateInput) (any, error) {
	return h.svc.Validate(r.Context(), in), nil
}

// @Summary May the wizard leave the current step
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param payload body domain.AdvanceInput true "Draft"
// @Success 200 {object} domain.AdvanceOutput "ok"
// @Router /ingestion/advance [post]
func (h *handlers) advance(r *stdhttp.Request, in domain.AdvanceInput) (any, error) {
	return h.svc.Advance(r.Context(), in), nil
}

// @Summary May the draft be sealed
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param payload body domain.SealCheckInput true "Draft"
// @Success 200 {object} domain.SealCheckOutput "ok"
// @Router /ingestion/seal/check [post]
func (h *handlers) sealCheck(r *stdhttp.Request, in domain.SealCheckInput) (any, error) {
	return h.svc.SealCheck(r.Context(), in), nil
}

// @Summary Seal a draft
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param payload body domain.SealInput true "Draft"
// @Success 201 {object} domain.SealOutput "sealed"
// @Failure 409 {object} net.Wire "refused"
// @Failure 502 {object} net.Wire "receipt rejected"
// @Failure 503 {object} net.Wire "no sealing backend"
// @Router /ingestion/seal [post]
func (h *handlers) seal(r *stdhttp.Request, in domain.SealInput) (any, error) {
	out, err := h.svc.Seal(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// @Summary Run the rule audit
// @Tags Ingestion
// @Produce json
// @Param method query string false "Only this method"
// @Success 200 {object} domain.AuditOutput "ok"
// @Router /ingestion/audit [get]
func (h *handlers) audit(r *stdhttp.Request) (any, error) {
	return h.svc.Audit(r.Context(), domain.AuditQuery{Method: r.URL.Query().Get("method")})
}
