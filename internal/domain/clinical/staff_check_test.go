package clinical_test

import (
	"testing"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/clinical"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStaffDepartments(t *testing.T) {
	transfer := &entity.Transfer{ID: "t1", Kind: entity.TransferDerivation, SourceDepartmentID: "dep-a", DestinationDepartmentID: "dep-b"}

	tests := []struct {
		name      string
		doctorDep string
		headDep   string
		wantParty domain.MismatchParty
	}{
		{"both in destination", "dep-b", "dep-b", ""},
		{"doctor elsewhere", "dep-a", "dep-b", domain.MismatchDoctor},
		{"head elsewhere", "dep-b", "dep-c", domain.MismatchDepartmentHead},
		{"both elsewhere", "dep-a", "dep-c", domain.MismatchBoth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := clinical.CheckStaffDepartments(transfer,
				&entity.Doctor{ID: "doc", DepartmentID: tt.doctorDep},
				&entity.DepartmentHead{ID: "head", DepartmentID: tt.headDep},
			)
			if tt.wantParty == "" {
				assert.NoError(t, err)
				return
			}
			var mismatch *domain.DepartmentMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, tt.wantParty, mismatch.Party)
			assert.Equal(t, "dep-b", mismatch.Expected)
			assert.Equal(t, tt.doctorDep, mismatch.DoctorDepartmentID)
			assert.Equal(t, tt.headDep, mismatch.HeadDepartmentID)
			assert.ErrorIs(t, err, domain.ErrDepartmentMismatch)
		})
	}
}
