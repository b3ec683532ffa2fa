package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/medihub/pharmacy/internal/records"
)

type repoMem struct{ mem *records.Memory }

func NewRepoMem(mem *records.Memory) Repository { return &repoMem{mem: mem} }

func (r *repoMem) Create(_ context.Context, p *records.Patient) error {
	return r.mem.CreatePatient(p)
}

func (r *repoMem) ByID(_ context.Context, id uuid.UUID) (*records.Patient, error) {
	return r.mem.PatientByID(id)
}

func (r *repoMem) List(_ context.Context) ([]*records.Patient, error) {
	return r.mem.ListPatients()
}

func (r *repoMem) DeleteCascade(_ context.Context, id uuid.UUID) error {
	return r.mem.DeletePatientCascade(id)
}

func (r *repoMem) History(_ context.Context, patientID uuid.UUID) ([]*records.HistoryEntry, error) {
	return r.mem.PatientHistory(patientID)
}
