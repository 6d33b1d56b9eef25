package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
)

// Selectors locate the site's form fields. They change with the site's
// markup, so they are data rather than code.
type Selectors struct {
	LoginPath     string
	Phone         string
	Password      string
	LoginSubmit   string
	LoggedIn      string
	PostPath      string
	Title         string
	Price         string
	Description   string
	ImageInput    string
	ListingSubmit string
	Published     string
	AutoRepost    string
}

func DefaultSelectors() Selectors {
	return Selectors{
		LoginPath:     "/en/login",
		Phone:         `input[name="phone"]`,
		Password:      `input[name="password"]`,
		LoginSubmit:   `button[type="submit"]`,
		LoggedIn:      `#myAccountMenu`,
		PostPath:      "/en/post-ad",
		Title:         `input[name="title"]`,
		Price:         `input[name="price"]`,
		Description:   `textarea[name="description"]`,
		ImageInput:    `input[type="file"]`,
		ListingSubmit: `button[data-action="publish"]`,
		Published:     `.post-success`,
		AutoRepost:    `input[name="auto_repost"]`,
	}
}

// BrowserPublisher drives a headless Chrome through the site's login and
// post forms.
type BrowserPublisher struct {
	baseURL    string
	chromePath string
	timeout    time.Duration
	selectors  Selectors
	logger     *logging.LoggerV2
}

func NewBrowserPublisher(cfg config.ListingConfig, logger *logging.LoggerV2) *BrowserPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &BrowserPublisher{
		baseURL:    cfg.BaseURL,
		chromePath: cfg.ChromePath,
		timeout:    timeout,
		selectors:  DefaultSelectors(),
		logger:     logger,
	}
}

func (p *BrowserPublisher) Publish(ctx context.Context, creds Credentials, l Listing) (*Result, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox)
	if p.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(p.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	p.logger.Info("Publishing listing", logging.Fields{
		"product_id": l.ProductID,
		"phone":      creds.PhoneNumber,
		"password":   creds.MaskedPassword(),
	})

	var done []string
	for _, step := range p.plan(creds, l) {
		if err := chromedp.Run(browserCtx, step.actions...); err != nil {
			p.logger.Error("Publish step failed", logging.Fields{
				"product_id": l.ProductID,
				"step":       step.name,
				"error":      err.Error(),
			})
			return nil, fmt.Errorf("listing step %s: %w", step.name, err)
		}
		done = append(done, step.name)
	}

	return newResult(l, done, false, time.Now().UTC()), nil
}

type step struct {
	name    string
	actions []chromedp.Action
}

// plan builds the browser steps. Image upload is skipped when the product
// has no stored image; auto-repost only when a timer is configured.
func (p *BrowserPublisher) plan(creds Credentials, l Listing) []step {
	s := p.selectors
	steps := []step{
		{StepNavigate, []chromedp.Action{
			chromedp.ActionFunc(func(ctx context.Context) error {
				return network.ClearBrowserCookies().Do(ctx)
			}),
			chromedp.Navigate(p.baseURL + s.LoginPath),
			chromedp.WaitVisible(s.Phone, chromedp.ByQuery),
		}},
		{StepLogin, []chromedp.Action{
			chromedp.SendKeys(s.Phone, creds.PhoneNumber, chromedp.ByQuery),
			chromedp.SendKeys(s.Password, creds.Password, chromedp.ByQuery),
			chromedp.Click(s.LoginSubmit, chromedp.ByQuery),
			chromedp.WaitVisible(s.LoggedIn, chromedp.ByQuery),
			chromedp.Navigate(p.baseURL + s.PostPath),
			chromedp.WaitVisible(s.Title, chromedp.ByQuery),
		}},
	}

	if l.ImagePath != "" {
		steps = append(steps, step{StepUploadImages, []chromedp.Action{
			chromedp.SetUploadFiles(s.ImageInput, []string{l.ImagePath}, chromedp.ByQuery),
		}})
	}

	// The repost checkbox lives on the post form, so it is ticked before
	// the listing is submitted.
	if l.RepostTimerHours > 0 {
		steps = append(steps, step{StepAutoRepost, []chromedp.Action{
			chromedp.Click(s.AutoRepost, chromedp.ByQuery),
		}})
	}

	steps = append(steps, step{StepSubmit, []chromedp.Action{
		chromedp.SendKeys(s.Title, l.Title, chromedp.ByQuery),
		chromedp.SendKeys(s.Price, l.Price.String(), chromedp.ByQuery),
		chromedp.SendKeys(s.Description, l.Description, chromedp.ByQuery),
		chromedp.Click(s.ListingSubmit, chromedp.ByQuery),
		chromedp.WaitVisible(s.Published, chromedp.ByQuery),
	}})

	return steps
}
