package clinic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

type Service struct {
	repo               Repository
	log                zerolog.Logger
	enforceTransitions bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTransitionEnforcement makes UpdateVisit reject status changes that
// CanTransition does not allow.
func WithTransitionEnforcement(on bool) ServiceOption {
	return func(s *Service) { s.enforceTransitions = on }
}

func NewService(repo Repository, logger zerolog.Logger, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, log: logger.With().Str("component", "clinic").Logger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// -- Patients --

func (s *Service) CreatePatient(ctx context.Context, in PatientInput) (*Patient, error) {
	p := in.toPatient()
	if err := s.repo.CreatePatient(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	s.log.Info().Int64("patient_id", p.ID).Msg("patient registered")
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*PatientWithVisits, error) {
	return s.repo.GetPatientWithVisits(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, patch PatientPatch) (*Patient, error) {
	p, err := s.repo.UpdatePatient(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int64("patient_id", id).Msg("patient updated")
	return p, nil
}

// DeletePatient returns ErrNotFound when no patient had the id. Visits of the
// patient are kept.
func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	ok, err := s.repo.DeletePatient(ctx, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.log.Info().Int64("patient_id", id).Msg("patient deleted")
	return nil
}

// ListPatients returns every patient, or the search matches when query is
// non-empty.
func (s *Service) ListPatients(ctx context.Context, query string) ([]*Patient, error) {
	if query != "" {
		return s.repo.SearchPatients(ctx, query)
	}
	return s.repo.ListPatients(ctx)
}

// -- Visits --

func (s *Service) CreateVisit(ctx context.Context, in VisitInput) (*Visit, error) {
	v := in.toVisit()
	if err := s.repo.CreateVisit(ctx, v); err != nil {
		return nil, fmt.Errorf("create visit: %w", err)
	}
	s.log.Info().
		Int64("visit_id", v.ID).
		Int64("patient_id", v.PatientID).
		Str("visit_code", v.VisitCode).
		Str("token", v.TokenNumber).
		Msg("visit checked in")
	return v, nil
}

func (s *Service) GetVisit(ctx context.Context, id int64) (*VisitWithDetails, error) {
	return s.repo.GetVisitWithDetails(ctx, id)
}

func (s *Service) GetVisitByCode(ctx context.Context, code string) (*Visit, error) {
	return s.repo.GetVisitByCode(ctx, code)
}

func (s *Service) UpdateVisit(ctx context.Context, id int64, patch VisitPatch) (*Visit, error) {
	if s.enforceTransitions && patch.Status != nil {
		cur, err := s.repo.GetVisit(ctx, id)
		if err != nil {
			return nil, err
		}
		if !CanTransition(cur.Status, *patch.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, *patch.Status)
		}
	}
	v, err := s.repo.UpdateVisit(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int64("visit_id", id).Str("status", v.Status).Msg("visit updated")
	return v, nil
}

func (s *Service) ListVisits(ctx context.Context, todayOnly bool) ([]*Visit, error) {
	if todayOnly {
		return s.repo.TodaysVisits(ctx)
	}
	return s.repo.ListVisits(ctx)
}

// -- Consultations --

func (s *Service) CreateConsultation(ctx context.Context, in ConsultationInput) (*Consultation, error) {
	c := in.toConsultation()
	if err := s.repo.CreateConsultation(ctx, c); err != nil {
		return nil, fmt.Errorf("create consultation: %w", err)
	}
	s.log.Info().Int64("consultation_id", c.ID).Int64("visit_id", c.VisitID).Msg("consultation recorded")
	return c, nil
}

func (s *Service) GetConsultation(ctx context.Context, id int64) (*Consultation, error) {
	return s.repo.GetConsultation(ctx, id)
}

func (s *Service) UpdateConsultation(ctx context.Context, id int64, patch ConsultationPatch) (*Consultation, error) {
	return s.repo.UpdateConsultation(ctx, id, patch)
}

func (s *Service) ListConsultationsByVisit(ctx context.Context, visitID int64) ([]*Consultation, error) {
	return s.repo.ListConsultationsByVisit(ctx, visitID)
}

// -- Prescriptions --

func (s *Service) CreatePrescription(ctx context.Context, in PrescriptionInput) (*Prescription, error) {
	p := in.toPrescription()
	if err := s.repo.CreatePrescription(ctx, p); err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}
	s.log.Info().Int64("prescription_id", p.ID).Int64("visit_id", p.VisitID).Int("medicines", len(p.Medicines)).Msg("prescription written")
	return p, nil
}

func (s *Service) GetPrescription(ctx context.Context, id int64) (*Prescription, error) {
	return s.repo.GetPrescription(ctx, id)
}

func (s *Service) UpdatePrescription(ctx context.Context, id int64, patch PrescriptionPatch) (*Prescription, error) {
	return s.repo.UpdatePrescription(ctx, id, patch)
}

func (s *Service) ListPrescriptionsByVisit(ctx context.Context, visitID int64) ([]*Prescription, error) {
	return s.repo.ListPrescriptionsByVisit(ctx, visitID)
}

// -- Diagnostics --

func (s *Service) CreateDiagnostic(ctx context.Context, in DiagnosticInput) (*Diagnostic, error) {
	d := in.toDiagnostic()
	if err := s.repo.CreateDiagnostic(ctx, d); err != nil {
		return nil, fmt.Errorf("create diagnostic: %w", err)
	}
	s.log.Info().Int64("diagnostic_id", d.ID).Int64("visit_id", d.VisitID).Str("test_type", d.TestType).Msg("diagnostic ordered")
	return d, nil
}

func (s *Service) GetDiagnostic(ctx context.Context, id int64) (*Diagnostic, error) {
	return s.repo.GetDiagnostic(ctx, id)
}

func (s *Service) UpdateDiagnostic(ctx context.Context, id int64, patch DiagnosticPatch) (*Diagnostic, error) {
	return s.repo.UpdateDiagnostic(ctx, id, patch)
}

func (s *Service) ListDiagnosticsByVisit(ctx context.Context, visitID int64) ([]*Diagnostic, error) {
	return s.repo.ListDiagnosticsByVisit(ctx, visitID)
}

// -- Lab tests --

func (s *Service) CreateLabTest(ctx context.Context, in LabTestInput) (*LabTest, error) {
	l := in.toLabTest()
	if err := s.repo.CreateLabTest(ctx, l); err != nil {
		return nil, fmt.Errorf("create lab test: %w", err)
	}
	s.log.Info().Int64("lab_test_id", l.ID).Int64("visit_id", l.VisitID).Msg("lab test ordered")
	return l, nil
}

func (s *Service) GetLabTest(ctx context.Context, id int64) (*LabTest, error) {
	return s.repo.GetLabTest(ctx, id)
}

func (s *Service) UpdateLabTest(ctx context.Context, id int64, patch LabTestPatch) (*LabTest, error) {
	return s.repo.UpdateLabTest(ctx, id, patch)
}

func (s *Service) ListLabTestsByVisit(ctx context.Context, visitID int64) ([]*LabTest, error) {
	return s.repo.ListLabTestsByVisit(ctx, visitID)
}

// -- Physiotherapy --

func (s *Service) CreatePhysioSession(ctx context.Context, in PhysioSessionInput) (*PhysioSession, error) {
	ps := in.toPhysioSession()
	if err := s.repo.CreatePhysioSession(ctx, ps); err != nil {
		return nil, fmt.Errorf("create physio session: %w", err)
	}
	s.log.Info().Int64("physio_session_id", ps.ID).Int64("visit_id", ps.VisitID).Msg("physio session scheduled")
	return ps, nil
}

func (s *Service) GetPhysioSession(ctx context.Context, id int64) (*PhysioSession, error) {
	return s.repo.GetPhysioSession(ctx, id)
}

func (s *Service) UpdatePhysioSession(ctx context.Context, id int64, patch PhysioSessionPatch) (*PhysioSession, error) {
	return s.repo.UpdatePhysioSession(ctx, id, patch)
}

func (s *Service) ListPhysioSessionsByVisit(ctx context.Context, visitID int64) ([]*PhysioSession, error) {
	return s.repo.ListPhysioSessionsByVisit(ctx, visitID)
}

// -- Payments --

func (s *Service) CreatePayment(ctx context.Context, in PaymentInput) (*Payment, error) {
	p := in.toPayment()
	if p.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: negative payment amount", ErrInvalidInput)
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	s.log.Info().
		Int64("payment_id", p.ID).
		Int64("visit_id", p.VisitID).
		Str("amount", p.Amount.StringFixed(2)).
		Str("method", p.PaymentMethod).
		Msg("payment recorded")
	return p, nil
}

func (s *Service) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

func (s *Service) UpdatePayment(ctx context.Context, id int64, patch PaymentPatch) (*Payment, error) {
	if patch.Amount != nil && patch.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: negative payment amount", ErrInvalidInput)
	}
	p, err := s.repo.UpdatePayment(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int64("payment_id", id).Str("status", p.PaymentStatus).Msg("payment updated")
	return p, nil
}

func (s *Service) ListPaymentsByVisit(ctx context.Context, visitID int64) ([]*Payment, error) {
	return s.repo.ListPaymentsByVisit(ctx, visitID)
}

// -- Statistics --

func (s *Service) TodaysStats(ctx context.Context) (*TodayStats, error) {
	return s.repo.TodaysStats(ctx)
}

func (s *Service) TodaysRevenue(ctx context.Context) (*RevenueSummary, error) {
	return s.repo.TodaysRevenue(ctx)
}
