// Package service contains the ingestion workflows: rule lookups, step
// checks and sealing
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"evidencegate/internal/core/ingestion"
	"evidencegate/internal/core/ingestion/audit"
	perr "evidencegate/internal/platform/errors"
	"evidencegate/internal/platform/logger"
	pnet "evidencegate/internal/platform/net"
	"evidencegate/internal/services/api/ingestion/domain"
)

// Service is the public service port
type Service interface{ domain.ServicePort }

// Refusal messages added when the seal predicate refuses a draft whose
// fields all pass
const (
	MsgSimulation    = "Only production drafts can be sealed"
	MsgAlreadySealed = "Draft is already sealed"
	MsgGateRefused   = "Draft does not meet the sealing requirements for this method"
	MsgNoSealer      = "sealing backend is not configured"
)

// Svc implements the service port
type Svc struct {
	reg    *ingestion.Registry
	sealer domain.SealPort
	log    logger.Logger

	now    func() time.Time
	newKey func() string
}

// Options control service behavior
type Options struct {
	// Registry defaults to ingestion.Default()
	Registry *ingestion.Registry

	// Sealer is optional; without one Seal answers unavailable
	Sealer domain.SealPort
}

// New constructs the service
func New(opt Options) *Svc {
	reg := opt.Registry
	if reg == nil {
		reg = ingestion.Default()
	}
	return &Svc{
		reg:    reg,
		sealer: opt.Sealer,
		log:    *logger.Named("ingestion"),
		now:    time.Now,
		newKey: uuid.NewString,
	}
}

// Registry returns the registry the service reads
func (s *Svc) Registry() *ingestion.Registry { return s.reg }

// Methods lists the methods in table order
func (s *Svc) Methods(context.Context) []domain.MethodSummary {
	ms := s.reg.Methods()
	out := make([]domain.MethodSummary, 0, len(ms))
	for _, m := range ms {
		out = append(out, domain.MethodSummary{
			ID:          m.ID,
			Label:       m.Label,
			Description: m.Description,
			ComputedBy:  m.HashBehavior.ComputedBy,
			Idempotent:  m.Idempotency != nil && m.Idempotency.Enforced,
		})
	}
	return out
}

// Method returns one method with its required fields resolved
func (s *Svc) Method(_ context.Context, id string) (domain.MethodView, error) {
	m := s.reg.GetMethodConfig(ingestion.MethodID(id))
	if m == nil {
		return domain.MethodView{}, perr.WithField(perr.NotFoundf("%s: %s", ingestion.ErrTextInvalidMethod, id), "method_id")
	}
	fields := make(map[string]domain.FieldView)
	for _, name := range append(append([]string{}, m.Step1Required...), m.Step2Required...) {
		if f, ok := s.reg.Field(name); ok {
			fields[name] = domain.FieldView{Label: f.Label, Message: f.Message, Example: f.Example}
		}
	}
	return domain.MethodView{MethodConfig: *m, Fields: fields}, nil
}

// FieldVisible reports whether the field control is rendered
func (s *Svc) FieldVisible(_ context.Context, id, field string) domain.VisibleOutput {
	mid := ingestion.MethodID(id)
	return domain.VisibleOutput{MethodID: mid, Field: field, Visible: s.reg.ShouldShowField(mid, field)}
}

// Validate runs the field check for one step
func (s *Svc) Validate(_ context.Context, in domain.ValidateInput) domain.StepOutput {
	res := s.reg.ValidateStep(ingestion.MethodID(in.MethodID), in.Step, in.Draft, domain.Attachments(in.Attachments))
	return domain.StepOutput{Valid: res.Valid, Errors: res.Errors}
}

// Advance runs the method's step gate
func (s *Svc) Advance(_ context.Context, in domain.AdvanceInput) domain.AdvanceOutput {
	ok := s.reg.CanProceedToNextStep(ingestion.MethodID(in.MethodID), in.CurrentStep, in.Draft,
		domain.Attachments(in.Attachments))
	return domain.AdvanceOutput{CanProceed: ok}
}

// SealCheck runs the method's seal gate
func (s *Svc) SealCheck(_ context.Context, in domain.SealCheckInput) domain.SealCheckOutput {
	ok := s.reg.CanSeal(ingestion.MethodID(in.MethodID), in.Draft, modeOf(in.Mode), domain.Attachments(in.Attachments))
	return domain.SealCheckOutput{CanSeal: ok}
}

// Audit runs the harness over the whole registry or one method
func (s *Svc) Audit(_ context.Context, q domain.AuditQuery) (domain.AuditOutput, error) {
	var opts audit.Options
	if q.Method != "" {
		id := ingestion.MethodID(q.Method)
		if s.reg.GetMethodConfig(id) == nil {
			return domain.AuditOutput{}, perr.WithField(perr.NotFoundf("%s: %s", ingestion.ErrTextInvalidMethod, q.Method), "method")
		}
		opts.Methods = []ingestion.MethodID{id}
	}
	rep := audit.Run(s.reg, opts)
	return domain.AuditOutput{OK: rep.OK(), Report: rep}, nil
}

// Seal checks the draft, stamps and hashes it, hands it to the sealer and
// checks the receipt. Any refusal carries every reason in its details.
func (s *Svc) Seal(ctx context.Context, in domain.SealInput) (domain.SealOutput, error) {
	id := ingestion.MethodID(in.MethodID)
	m := s.reg.GetMethodConfig(id)
	if m == nil {
		return domain.SealOutput{}, perr.WithField(perr.NotFoundf("%s: %s", ingestion.ErrTextInvalidMethod, in.MethodID), "method_id")
	}
	tenant := pnet.TenantID(ctx)
	if tenant == "" {
		return domain.SealOutput{}, perr.New(perr.ErrorCodeUnauthorized, "tenant is required to seal")
	}

	d := ingestion.Draft(in.Draft)
	atts := domain.Attachments(in.Attachments)
	mode := modeOf(in.Mode)
	if reasons := s.refusals(id, d, mode, atts); len(reasons) > 0 {
		return domain.SealOutput{}, perr.WithDetails(perr.GatingRefusedf("draft cannot be sealed"), reasons...)
	}

	channel := ingestion.SubmissionChannel(in.Channel)
	if channel == "" {
		channel = ingestion.ChannelInternalUser
	}
	meta := ingestion.Stamp(m, d, channel)
	payloadHash, err := ingestion.PayloadDigest(m, d, atts)
	if err != nil {
		return domain.SealOutput{}, perr.WithDetails(perr.Wrap(err, perr.ErrorCodeGatingRefused, "draft cannot be sealed"), err.Error())
	}
	metaHash, err := ingestion.MetadataDigest(meta)
	if err != nil {
		return domain.SealOutput{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "metadata is not hashable")
	}

	key := ingestion.IdempotencyKey(m, d)
	if key == "" {
		key = s.newKey()
	}

	if s.sealer == nil {
		s.log.Warn().Str("method_id", string(id)).Msg("seal requested without a backend")
		return domain.SealOutput{}, perr.New(perr.ErrorCodeUnavailable, MsgNoSealer)
	}
	req := ingestion.SealRequest{
		TenantID:           tenant,
		MethodID:           id,
		Mode:               mode,
		IdempotencyKey:     key,
		PayloadHashSHA256:  payloadHash,
		MetadataHashSHA256: metaHash,
		Metadata:           meta,
		Attachments:        atts,
		SubmittedBy:        pnet.Actor(ctx),
	}
	log := logger.C(ctx).With().Str("method_id", string(id)).Str("idempotency_key", key).Logger()

	start := s.now()
	rc, err := s.sealer.Seal(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("seal failed")
		return domain.SealOutput{}, err
	}
	if err := checkReceipt(rc, req); err != nil {
		log.Error().Err(err).Interface("receipt", rc).Msg("seal receipt rejected")
		return domain.SealOutput{}, err
	}
	log.Info().Str("evidence_id", rc.EvidenceID).Dur("elapsed", s.now().Sub(start)).Msg("sealed")

	return domain.SealOutput{
		Receipt:        rc,
		MethodID:       id,
		IdempotencyKey: key,
		Metadata:       meta,
	}, nil
}

// refusals lists why a draft cannot be sealed: unmet fields of both steps,
// declarations outside the method's sets, then the seal gate itself
func (s *Svc) refusals(id ingestion.MethodID, d ingestion.Draft, mode ingestion.Mode, atts []ingestion.Attachment) []string {
	var out []string
	for step := 1; step <= 2; step++ {
		out = append(out, s.reg.ValidateStep(id, step, d, atts).Errors...)
	}
	out = append(out, s.reg.CheckDeclaration(id, d)...)
	if s.reg.CanSeal(id, d, mode, atts) {
		return out
	}
	switch {
	case mode != ingestion.ModeProduction:
		out = append(out, MsgSimulation)
	case d.Text(ingestion.FieldStatus) == ingestion.StatusSealed:
		out = append(out, MsgAlreadySealed)
	case len(out) == 0:
		out = append(out, MsgGateRefused)
	}
	return out
}

// checkReceipt applies the receipt contract and ties the receipt to what
// was sent
func checkReceipt(rc ingestion.SealReceipt, req ingestion.SealRequest) error {
	if err := ingestion.CheckSealReceipt(rc); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUpstreamContract, "seal receipt rejected")
	}
	if !strings.EqualFold(rc.PayloadHashSHA256, req.PayloadHashSHA256) {
		return perr.WithField(perr.UpstreamContractf("seal receipt payload hash does not match the request"),
			"payload_hash_sha256")
	}
	if rc.IdempotencyKey != "" && rc.IdempotencyKey != req.IdempotencyKey {
		return perr.WithField(perr.UpstreamContractf("seal receipt idempotency key does not match the request"),
			"idempotency_key")
	}
	return nil
}

func modeOf(s string) ingestion.Mode {
	if s == "" {
		return ingestion.ModeProduction
	}
	return ingestion.Mode(s)
}
