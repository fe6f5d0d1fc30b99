package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/lifeflow/bloodlink/core/blood"
	"github.com/lifeflow/bloodlink/core/events"
	"github.com/lifeflow/bloodlink/core/logger"
	"github.com/lifeflow/bloodlink/core/metrics"
	"github.com/lifeflow/bloodlink/core/model"
	"github.com/lifeflow/bloodlink/core/sms"
	"github.com/lifeflow/bloodlink/core/store"
	"github.com/lifeflow/bloodlink/internal/eventbus"
)

// Delivery is one planned donor notification: the token that tracks the
// response channel and the composed message text.
type Delivery struct {
	Donor   model.Donor
	Token   string
	Message string
}

// Summary is the aggregate outcome reported to the caller.
type Summary struct {
	RequestID   string           `json:"request_id"`
	BloodGroup  model.BloodGroup `json:"blood_group"`
	TotalDonors int              `json:"total_donors"`
	Delivered   int              `json:"sms_delivered"`
}

// Result carries the summary plus per-donor delivery errors.
type Result struct {
	Summary
	Errors map[string]error `json:"-"`
}

// Dispatcher issues one single-use response token per compatible donor and
// triggers the outbound message for each.
type Dispatcher struct {
	registry    store.DonorRegistry
	tokens      store.TokenStore
	sender      sms.Sender
	bus         eventbus.EventBus
	metrics     metrics.Sink
	logger      logger.Logger
	linkBaseURL string
	now         func() time.Time
}

// New creates a Dispatcher. bus and sink may be nil; registry, tokens and
// sender are required.
func New(registry store.DonorRegistry, tokens store.TokenStore, sender sms.Sender, bus eventbus.EventBus, sink metrics.Sink, log logger.Logger, linkBaseURL string) (*Dispatcher, error) {
	if registry == nil || tokens == nil || sender == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to New")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Dispatcher{
		registry:    registry,
		tokens:      tokens,
		sender:      sender,
		bus:         bus,
		metrics:     sink,
		logger:      log,
		linkBaseURL: linkBaseURL,
		now:         time.Now,
	}, nil
}

// Plan filters the registry to donors compatible with the request and
// composes one delivery per donor. Donors without a phone number are
// skipped, not counted as failures. Plan has no side effects, which keeps
// the decision testable without a transport.
func (d *Dispatcher) Plan(req model.BloodRequest, donors []model.Donor) []Delivery {
	var plan []Delivery
	for _, donor := range donors {
		if !blood.Compatible(req.BloodGroup, donor.BloodGroup) {
			continue
		}
		if !donor.HasPhone() {
			d.logger.Debugf("donor %s has no phone, skipping", donor.ID)
			continue
		}
		tok := NewToken()
		plan = append(plan, Delivery{
			Donor:   donor,
			Token:   tok,
			Message: d.composeMessage(req, tok),
		})
	}
	return plan
}

// Dispatch runs the full dispatch for an accepted request: load the
// registry, plan deliveries, then execute them sequentially. One donor
// failing never aborts the batch. The returned error is non-nil only when
// the registry itself could not be read; the enclosing request creation is
// still considered successful in that case.
func (d *Dispatcher) Dispatch(ctx context.Context, req model.BloodRequest) (Result, error) {
	donors, err := d.registry.List(ctx)
	if err != nil {
		return Result{Summary: Summary{RequestID: req.ID, BloodGroup: req.BloodGroup}}, fmt.Errorf("load donor registry: %w", err)
	}
	plan := d.Plan(req, donors)
	d.logger.Infof("dispatching request %s (%s) to %d donors", req.ID, req.BloodGroup, len(plan))

	result := Result{
		Summary: Summary{RequestID: req.ID, BloodGroup: req.BloodGroup, TotalDonors: len(plan)},
		Errors:  make(map[string]error),
	}
	var recs []metrics.DeliveryResult
	for _, del := range plan {
		start := d.now()
		err := d.deliver(ctx, req, del)
		lat := d.now().Sub(start)
		if err != nil {
			result.Errors[del.Donor.ID] = err
			messagesFailed.WithLabelValues(string(req.BloodGroup)).Inc()
			d.logger.Warnf("delivery to donor %s failed: %v", del.Donor.ID, err)
			d.publish(events.MessageFailedEvent{RequestID: req.ID, DonorID: del.Donor.ID, Err: err})
		} else {
			result.Delivered++
			messagesSent.WithLabelValues(string(req.BloodGroup)).Inc()
			d.publish(events.MessageSentEvent{RequestID: req.ID, DonorID: del.Donor.ID, Phone: del.Donor.Phone})
		}
		sendLatency.WithLabelValues(string(req.BloodGroup)).Observe(lat.Seconds())
		recs = append(recs, metrics.DeliveryResult{
			RequestID:  req.ID,
			DonorID:    del.Donor.ID,
			BloodGroup: req.BloodGroup,
			Delivered:  err == nil,
			Latency:    lat,
			SentAt:     start,
		})
	}
	if result.TotalDonors > 0 {
		deliveredRatio.WithLabelValues(string(req.BloodGroup)).Set(float64(result.Delivered) / float64(result.TotalDonors))
	}
	d.publish(events.DispatchSummaryEvent{
		RequestID:  req.ID,
		BloodGroup: req.BloodGroup,
		Total:      result.TotalDonors,
		Delivered:  result.Delivered,
	})
	if err := d.metrics.RecordDeliveryResults(recs); err != nil {
		d.logger.Errorf("metrics error: %v", err)
	}
	return result, nil
}

// deliver persists the token and sends the message for a single donor.
func (d *Dispatcher) deliver(ctx context.Context, req model.BloodRequest, del Delivery) error {
	tok := model.ResponseToken{
		Token:     del.Token,
		RequestID: req.ID,
		DonorID:   del.Donor.ID,
		CreatedAt: d.now(),
	}
	if err := d.tokens.Create(ctx, tok); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := d.sender.Send(ctx, del.Donor.Phone, del.Message); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (d *Dispatcher) composeMessage(req model.BloodRequest, token string) string {
	return fmt.Sprintf("URGENT: %s blood needed (qty %d, %s). If you can help, share your location: %s/respond/%s",
		req.BloodGroup, req.Quantity, req.Urgency, d.linkBaseURL, token)
}

func (d *Dispatcher) publish(e events.Event) {
	if d.bus != nil {
		d.bus.Publish(e)
	}
}
