package inventory

import (
	"context"
	"sort"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	domaininv "github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/inventory"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/repository"
)

// ThresholdReportUseCase lista los registros de stock fuera de sus umbrales.
// Son lecturas sin bloqueo: el resultado es informativo y nunca condiciona una reserva.
type ThresholdReportUseCase struct {
	stockRepo repository.StockRepository
}

// NewThresholdReportUseCase construye el caso de uso con un repositorio de solo lectura (pool).
func NewThresholdReportUseCase(stockRepo repository.StockRepository) *ThresholdReportUseCase {
	return &ThresholdReportUseCase{stockRepo: stockRepo}
}

// GenerateReport devuelve los registros bajo mínimo (mayor déficit primero) y sobre máximo (mayor exceso primero).
// departmentID puede ser vacío para considerar todos los departamentos.
func (uc *ThresholdReportUseCase) GenerateReport(ctx context.Context, departmentID string) (*dto.ThresholdReportDTO, error) {
	below, err := uc.stockRepo.ListBelowMinimum(ctx, departmentID)
	if err != nil {
		return nil, domain.AsPersistence("listar stock bajo mínimo", err)
	}
	above, err := uc.stockRepo.ListAboveMaximum(ctx, departmentID)
	if err != nil {
		return nil, domain.AsPersistence("listar stock sobre máximo", err)
	}

	report := &dto.ThresholdReportDTO{
		BelowMinimum: toAlerts(below),
		AboveMaximum: toAlerts(above),
	}
	sort.SliceStable(report.BelowMinimum, func(i, j int) bool {
		a, b := report.BelowMinimum[i], report.BelowMinimum[j]
		return a.MinQuantity-a.Quantity > b.MinQuantity-b.Quantity
	})
	sort.SliceStable(report.AboveMaximum, func(i, j int) bool {
		a, b := report.AboveMaximum[i], report.AboveMaximum[j]
		return a.Quantity-a.MaxQuantity > b.Quantity-b.MaxQuantity
	})
	return report, nil
}

func toAlerts(records []*entity.StockLevel) []dto.StockAlertDTO {
	out := make([]dto.StockAlertDTO, 0, len(records))
	for _, s := range records {
		out = append(out, dto.StockAlertDTO{
			DepartmentID:   s.DepartmentID,
			MedicationID:   s.MedicationID,
			Quantity:       s.Quantity,
			MinQuantity:    s.MinQuantity,
			MaxQuantity:    s.MaxQuantity,
			FillPct:        s.FillPct,
			SuggestedOrder: domaininv.SuggestedOrder(s.Quantity, s.MaxQuantity),
		})
	}
	return out
}
