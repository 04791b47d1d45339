package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ReportGenerator produce el reporte de umbrales (ThresholdReportUseCase).
type ReportGenerator interface {
	GenerateReport(ctx context.Context, departmentID string) (*dto.ThresholdReportDTO, error)
}

// StockAlertJob revisa periódicamente los umbrales de stock y registra un aviso por cada registro fuera de rango.
type StockAlertJob struct {
	reports ReportGenerator
	log     *logger.Logger
	timeout time.Duration
}

// NewStockAlertJob construye la tarea.
func NewStockAlertJob(reports ReportGenerator, log *logger.Logger) *StockAlertJob {
	return &StockAlertJob{reports: reports, log: log.Component("stock_alerts"), timeout: 30 * time.Second}
}

// Run ejecuta una revisión. Devuelve cuántos registros están fuera de umbral.
func (j *StockAlertJob) Run(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	report, err := j.reports.GenerateReport(ctx, "")
	if err != nil {
		j.log.Error().Err(err).Msg("reporte de umbrales")
		return 0, err
	}
	for _, a := range report.BelowMinimum {
		j.log.Warn().
			Str("department_id", a.DepartmentID).
			Str("medication_id", a.MedicationID).
			Int("quantity", a.Quantity).
			Int("min_quantity", a.MinQuantity).
			Int("suggested_order_qty", a.SuggestedOrder).
			Str("fill_pct", a.FillPct.String()).
			Msg("stock bajo mínimo")
	}
	for _, a := range report.AboveMaximum {
		j.log.Warn().
			Str("department_id", a.DepartmentID).
			Str("medication_id", a.MedicationID).
			Int("quantity", a.Quantity).
			Int("max_quantity", a.MaxQuantity).
			Msg("stock sobre máximo")
	}
	total := len(report.BelowMinimum) + len(report.AboveMaximum)
	j.log.Debug().Int("alerts", total).Msg("revisión de umbrales completada")
	return total, nil
}

// Start registra la tarea con schedule (sintaxis cron estándar o "@every 15m") y arranca el planificador.
// El llamador debe detenerlo con Stop.
func (j *StockAlertJob) Start(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		_, _ = j.Run(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("programar alertas de stock %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
