package listing

import (
	"context"
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
)

// SimulatedPublisher walks through the publish steps without contacting
// the site. It is the default when no browser is available.
type SimulatedPublisher struct {
	stepDelay time.Duration
	logger    *logging.LoggerV2
	now       func() time.Time
}

func NewSimulatedPublisher(stepDelay time.Duration, logger *logging.LoggerV2) *SimulatedPublisher {
	return &SimulatedPublisher{stepDelay: stepDelay, logger: logger, now: time.Now}
}

func (p *SimulatedPublisher) Publish(ctx context.Context, creds Credentials, l Listing) (*Result, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	p.logger.Info("Starting simulated publish", logging.Fields{
		"product_id":   l.ProductID,
		"title":        l.Title,
		"phone":        creds.PhoneNumber,
		"password":     creds.MaskedPassword(),
		"repost_hours": l.RepostTimerHours,
	})

	steps := []string{StepNavigate, StepLogin, StepUploadImages, StepSubmit, StepAutoRepost}
	done := make([]string, 0, len(steps))
	for _, step := range steps {
		if err := p.wait(ctx); err != nil {
			return nil, err
		}
		p.logger.Debug("Publish step", logging.Fields{"product_id": l.ProductID, "step": step})
		done = append(done, step)
	}

	return newResult(l, done, true, p.now().UTC()), nil
}

func (p *SimulatedPublisher) wait(ctx context.Context) error {
	if p.stepDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.stepDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
