package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/session"
)

// DrawerView is a register's drawer with the expected cash on hand.
type DrawerView struct {
	RegisterID string          `json:"register_id"`
	Drawer     session.Drawer  `json:"drawer"`
	Current    decimal.Decimal `json:"current"`
}

// CashService manages the cash drawer of each register.
type CashService struct {
	sessions  *session.Manager
	store     repository.ZReportStore
	publisher EventPublisher
	config    *config.Config
	metrics   MetricsRecorder
	logger    *logging.LoggerV2
}

func NewCashService(
	sessions *session.Manager,
	store repository.ZReportStore,
	publisher EventPublisher,
	metrics MetricsRecorder,
	cfg *config.Config,
) *CashService {
	return &CashService{
		sessions:  sessions,
		store:     store,
		publisher: publisher,
		config:    cfg,
		metrics:   metrics,
		logger:    logging.NewLoggerV2("cash-service"),
	}
}

// Drawer returns the register's drawer.
func (s *CashService) Drawer(ctx context.Context, registerID string) *DrawerView {
	return drawerView(s.sessions.Snapshot(registerID))
}

// CashIn records cash put into the drawer.
func (s *CashService) CashIn(ctx context.Context, registerID string, amount decimal.Decimal) (*DrawerView, error) {
	if !amount.IsPositive() {
		return nil, errors.NewValidationError("amount", "amount must be positive")
	}

	reg, _ := s.sessions.Update(registerID, func(r *session.Register) error {
		r.Drawer.CashIn = r.Drawer.CashIn.Add(amount)
		return nil
	})

	s.logger.Info("Cash in", logging.Fields{
		"register_id": registerID,
		"amount":      amount.String(),
	})
	return drawerView(reg), nil
}

// CashOut records cash taken out of the drawer. It cannot take out more
// than the drawer is expected to hold.
func (s *CashService) CashOut(ctx context.Context, registerID string, amount decimal.Decimal) (*DrawerView, error) {
	if !amount.IsPositive() {
		return nil, errors.NewValidationError("amount", "amount must be positive")
	}

	reg, err := s.sessions.Update(registerID, func(r *session.Register) error {
		if amount.GreaterThan(r.Drawer.Current()) {
			return errors.NewValidationError("amount", "not enough cash in drawer")
		}
		r.Drawer.CashOut = r.Drawer.CashOut.Add(amount)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cash out", logging.Fields{
		"register_id": registerID,
		"amount":      amount.String(),
	})
	return drawerView(reg), nil
}

// GenerateZReport closes the shift: the drawer is saved as a Z-report and
// a new shift starts with the current amount as its float. The drawer is
// only rolled once the report is stored.
func (s *CashService) GenerateZReport(ctx context.Context, registerID string) (*models.ZReport, error) {
	var report *models.ZReport
	_, err := s.sessions.Update(registerID, func(r *session.Register) error {
		d := r.Drawer
		saved, err := s.store.AddZReport(ctx, &models.ZReport{
			RegisterID:  registerID,
			StartAmount: d.StartAmount,
			EndAmount:   d.Current(),
			CashIn:      d.CashIn,
			CashOut:     d.CashOut,
			CashSales:   d.CashSales,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		r.Drawer.Roll()
		report = saved
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to generate Z-report", logging.Fields{
			"register_id": registerID,
			"error":       err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Z-report generated", logging.Fields{
		"register_id": registerID,
		"report_id":   report.ID,
		"end_amount":  report.EndAmount.String(),
	})
	s.metrics.ZReportRecorded()

	if s.config.Features.EnableOrderEvents {
		if err := s.publisher.PublishZReport(ctx, report); err != nil {
			s.logger.Error("Failed to publish Z-report event", logging.Fields{
				"report_id": report.ID,
				"error":     err.Error(),
			})
		}
	}
	return report, nil
}

// ListZReports returns stored Z-reports, optionally for one register.
func (s *CashService) ListZReports(ctx context.Context, registerID string) ([]*models.ZReport, error) {
	return s.store.GetZReports(ctx, registerID)
}

func drawerView(reg session.Register) *DrawerView {
	return &DrawerView{
		RegisterID: reg.ID,
		Drawer:     reg.Drawer,
		Current:    reg.Drawer.Current(),
	}
}
