package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/GoPolymarket/econgate/internal/model"
	"github.com/GoPolymarket/econgate/internal/pkg/logger"
	"github.com/GoPolymarket/econgate/internal/pkg/metrics"
	"github.com/GoPolymarket/econgate/internal/schema"
)

// ErrNotEvent is returned when publishing a contract that is not an event.
var ErrNotEvent = errors.New("contract is not publishable as an event")

const (
	// Rejected payloads are stored up to this size.
	maxRejectedPayload = 8 << 10
	// Caller supplied names never become metric labels.
	unknownLabel = "unknown"
)

type RejectionRepo interface {
	Insert(ctx context.Context, rec *model.ContractRejection) error
	List(ctx context.Context, filter model.RejectionFilter) ([]*model.ContractRejection, error)
}

type UsageRepo interface {
	AddUsage(ctx context.Context, clientID, contract string, accepted bool) error
	GetDailyUsage(ctx context.Context, clientID string, day time.Time) (*model.DailyUsage, error)
}

// EventPublisher fans a validated event out to subscribers and reports how
// many received it.
type EventPublisher interface {
	Publish(contract string, payload []byte) int
}

type ContractOptions struct {
	DisallowUnknownFields bool
	SchemaPrecheck        bool
}

// ContractResult is a payload that decoded and validated.
type ContractResult struct {
	Contract  string          `json:"contract"`
	Value     any             `json:"value"`
	Canonical json.RawMessage `json:"canonical"`
	Rendered  string          `json:"rendered"`
}

type PublishResult struct {
	Contract  string          `json:"contract"`
	Delivered int             `json:"delivered"`
	Payload   json.RawMessage `json:"payload"`
}

type ContractService struct {
	registry   *schema.Registry
	opts       ContractOptions
	rejections RejectionRepo
	usage      UsageRepo
	publisher  EventPublisher
}

func NewContractService(registry *schema.Registry, opts ContractOptions) *ContractService {
	return &ContractService{registry: registry, opts: opts}
}

func (s *ContractService) WithRejections(repo RejectionRepo) *ContractService {
	s.rejections = repo
	return s
}

func (s *ContractService) WithUsage(repo UsageRepo) *ContractService {
	s.usage = repo
	return s
}

func (s *ContractService) WithPublisher(p EventPublisher) *ContractService {
	s.publisher = p
	return s
}

type callerKey struct{}

type caller struct {
	clientID  string
	requestID string
}

// WithCaller tags ctx with the client and request behind a contract check so
// rejections and usage can be attributed.
func WithCaller(ctx context.Context, clientID, requestID string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller{clientID: clientID, requestID: requestID})
}

func callerFrom(ctx context.Context) caller {
	c, _ := ctx.Value(callerKey{}).(caller)
	return c
}

// Validate decodes body as the named contract, applying defaults and every
// declared constraint.
func (s *ContractService) Validate(ctx context.Context, name string, body []byte) (*ContractResult, error) {
	v, err := s.decode(ctx, name, body)
	if err != nil {
		return nil, err
	}
	canonical, err := schema.Canonical(v)
	if err != nil {
		return nil, fmt.Errorf("canonical %s: %w", name, err)
	}
	return &ContractResult{
		Contract:  name,
		Value:     v,
		Canonical: canonical,
		Rendered:  schema.Render(v),
	}, nil
}

// Normalize returns the wire form of a valid payload with defaults filled in
// and unset collections written as empty.
func (s *ContractService) Normalize(ctx context.Context, name string, body []byte) ([]byte, error) {
	v, err := s.decode(ctx, name, body)
	if err != nil {
		return nil, err
	}
	return schema.Encode(v)
}

// Render returns the indented text form of a valid payload.
func (s *ContractService) Render(ctx context.Context, name string, body []byte) (string, error) {
	v, err := s.decode(ctx, name, body)
	if err != nil {
		return "", err
	}
	return schema.Render(v), nil
}

func (s *ContractService) Catalog() []*schema.Descriptor {
	return s.registry.Descriptors()
}

func (s *ContractService) Families() map[string][]string {
	return s.registry.Families()
}

func (s *ContractService) Schema(name string) (map[string]any, error) {
	return s.registry.JSONSchema(name)
}

func (s *ContractService) Enums() map[string][]string {
	return schema.Enums()
}

// ParseEnum resolves label against the named closed set.
func (s *ContractService) ParseEnum(name, label string) (string, error) {
	v, err := schema.ParseEnum(name, label)
	if errors.Is(err, schema.ErrUnrecognizedEnum) {
		metrics.EnumRejects.WithLabelValues(name).Inc()
	}
	return v, err
}

// Publish validates an event payload and fans it out on the stream.
func (s *ContractService) Publish(ctx context.Context, name string, body []byte) (*PublishResult, error) {
	d, ok := s.registry.Lookup(name)
	if !ok {
		metrics.ContractDecodes.WithLabelValues(unknownLabel, metrics.OutcomeUnknown).Inc()
		return nil, fmt.Errorf("%w: %s", schema.ErrUnknownContract, name)
	}
	if !d.Event {
		return nil, fmt.Errorf("%w: %s", ErrNotEvent, name)
	}

	v, err := s.decode(ctx, name, body)
	if err != nil {
		return nil, err
	}
	wire, err := schema.Encode(v)
	if err != nil {
		return nil, err
	}

	delivered := 0
	if s.publisher != nil {
		delivered = s.publisher.Publish(name, wire)
	}
	metrics.EventsPublished.WithLabelValues(name).Inc()
	return &PublishResult{Contract: name, Delivered: delivered, Payload: wire}, nil
}

func (s *ContractService) decode(ctx context.Context, name string, body []byte) (any, error) {
	if _, ok := s.registry.Lookup(name); !ok {
		metrics.ContractDecodes.WithLabelValues(unknownLabel, metrics.OutcomeUnknown).Inc()
		return nil, fmt.Errorf("%w: %s", schema.ErrUnknownContract, name)
	}

	if s.opts.SchemaPrecheck {
		if err := s.registry.ValidateRaw(name, body); err != nil {
			s.reject(ctx, name, body, err)
			return nil, err
		}
	}

	var opts []schema.DecodeOption
	if s.opts.DisallowUnknownFields {
		opts = append(opts, schema.DisallowUnknownFields())
	}
	v, err := s.registry.Decode(name, body, opts...)
	if err != nil {
		s.reject(ctx, name, body, err)
		return nil, err
	}

	metrics.ContractDecodes.WithLabelValues(name, metrics.OutcomeOK).Inc()
	s.addUsage(ctx, name, true)
	return v, nil
}

// reject counts a failed check and stores it when a rejection repo is set.
// Storage failures are logged, never returned to the caller.
func (s *ContractService) reject(ctx context.Context, name string, body []byte, err error) {
	rec := &model.ContractRejection{
		Contract:  name,
		Message:   err.Error(),
		Payload:   truncatePayload(body),
		CreatedAt: time.Now().UTC(),
	}

	var ves schema.ValidationErrors
	var enumErr *schema.UnrecognizedEnumValueError
	var malformed *schema.MalformedPayloadError
	switch {
	case errors.As(err, &ves):
		rec.Kind = metrics.OutcomeInvalid
		rec.Fields = strings.Join(ves.Fields(), ",")
		for _, ve := range ves {
			metrics.ContractViolations.WithLabelValues(name, ve.Rule).Inc()
		}
	case errors.As(err, &enumErr):
		rec.Kind = metrics.OutcomeEnum
		rec.Fields = enumErr.Label
		metrics.EnumRejects.WithLabelValues(enumErr.Type).Inc()
	case errors.As(err, &malformed):
		rec.Kind = metrics.OutcomeMalformed
		rec.Fields = malformed.Field
	default:
		rec.Kind = metrics.OutcomeMalformed
	}
	metrics.ContractDecodes.WithLabelValues(name, rec.Kind).Inc()
	s.addUsage(ctx, name, false)

	if s.rejections == nil {
		return
	}
	who := callerFrom(ctx)
	rec.ClientID = who.clientID
	rec.RequestID = who.requestID
	if insertErr := s.rejections.Insert(ctx, rec); insertErr != nil {
		logger.LogError(ctx, insertErr, "failed to record contract rejection", "contract", name)
	}
}

func (s *ContractService) addUsage(ctx context.Context, name string, accepted bool) {
	if s.usage == nil {
		return
	}
	who := callerFrom(ctx)
	if who.clientID == "" {
		return
	}
	if err := s.usage.AddUsage(ctx, who.clientID, name, accepted); err != nil {
		logger.LogError(ctx, err, "failed to record usage", "client", who.clientID)
	}
}

// Rejections lists stored rejections, newest first.
func (s *ContractService) Rejections(ctx context.Context, filter model.RejectionFilter) ([]*model.ContractRejection, error) {
	if s.rejections == nil {
		return []*model.ContractRejection{}, nil
	}
	return s.rejections.List(ctx, filter)
}

// Usage reports today's counters for a client.
func (s *ContractService) Usage(ctx context.Context, clientID string) (*model.DailyUsage, error) {
	if s.usage == nil {
		return &model.DailyUsage{
			ClientID:   clientID,
			Day:        time.Now().UTC().Format(time.DateOnly),
			ByContract: map[string]int64{},
		}, nil
	}
	return s.usage.GetDailyUsage(ctx, clientID, time.Now().UTC())
}

// truncatePayload keeps at most maxRejectedPayload bytes, cut on a rune
// boundary. Invalid UTF-8 is replaced so the text column accepts it.
func truncatePayload(body []byte) string {
	if len(body) > maxRejectedPayload {
		cut := maxRejectedPayload
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	return strings.ToValidUTF8(string(body), "\uFFFD")
}
