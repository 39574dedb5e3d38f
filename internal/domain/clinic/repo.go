package clinic

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when visit transition enforcement is
	// enabled and a status change is not allowed.
	ErrInvalidTransition = errors.New("invalid visit status transition")
	// ErrInvalidInput is returned for inputs that pass shape validation but
	// are still unusable (e.g. a negative payment amount).
	ErrInvalidInput = errors.New("invalid input")
)

// Repository is the clinical record store. It owns every collection, assigns
// identifiers and derived codes, and answers the visit/patient joins. It
// performs no cross-entity validation: dangling parent ids simply produce
// empty joins.
type Repository interface {
	// Patients
	CreatePatient(ctx context.Context, p *Patient) error
	GetPatient(ctx context.Context, id int64) (*Patient, error)
	GetPatientWithVisits(ctx context.Context, id int64) (*PatientWithVisits, error)
	UpdatePatient(ctx context.Context, id int64, patch PatientPatch) (*Patient, error)
	DeletePatient(ctx context.Context, id int64) (bool, error)
	ListPatients(ctx context.Context) ([]*Patient, error)
	SearchPatients(ctx context.Context, query string) ([]*Patient, error)

	// Visits
	CreateVisit(ctx context.Context, v *Visit) error
	GetVisit(ctx context.Context, id int64) (*Visit, error)
	GetVisitWithDetails(ctx context.Context, id int64) (*VisitWithDetails, error)
	GetVisitByCode(ctx context.Context, code string) (*Visit, error)
	UpdateVisit(ctx context.Context, id int64, patch VisitPatch) (*Visit, error)
	ListVisits(ctx context.Context) ([]*Visit, error)
	TodaysVisits(ctx context.Context) ([]*Visit, error)
	GenerateVisitCode() string
	GenerateTokenNumber() string

	// Consultations
	CreateConsultation(ctx context.Context, c *Consultation) error
	GetConsultation(ctx context.Context, id int64) (*Consultation, error)
	UpdateConsultation(ctx context.Context, id int64, patch ConsultationPatch) (*Consultation, error)
	ListConsultations(ctx context.Context) ([]*Consultation, error)
	ListConsultationsByVisit(ctx context.Context, visitID int64) ([]*Consultation, error)

	// Prescriptions
	CreatePrescription(ctx context.Context, p *Prescription) error
	GetPrescription(ctx context.Context, id int64) (*Prescription, error)
	UpdatePrescription(ctx context.Context, id int64, patch PrescriptionPatch) (*Prescription, error)
	ListPrescriptions(ctx context.Context) ([]*Prescription, error)
	ListPrescriptionsByVisit(ctx context.Context, visitID int64) ([]*Prescription, error)

	// Diagnostics
	CreateDiagnostic(ctx context.Context, d *Diagnostic) error
	GetDiagnostic(ctx context.Context, id int64) (*Diagnostic, error)
	UpdateDiagnostic(ctx context.Context, id int64, patch DiagnosticPatch) (*Diagnostic, error)
	ListDiagnostics(ctx context.Context) ([]*Diagnostic, error)
	ListDiagnosticsByVisit(ctx context.Context, visitID int64) ([]*Diagnostic, error)

	// Lab tests
	CreateLabTest(ctx context.Context, l *LabTest) error
	GetLabTest(ctx context.Context, id int64) (*LabTest, error)
	UpdateLabTest(ctx context.Context, id int64, patch LabTestPatch) (*LabTest, error)
	ListLabTests(ctx context.Context) ([]*LabTest, error)
	ListLabTestsByVisit(ctx context.Context, visitID int64) ([]*LabTest, error)

	// Physiotherapy
	CreatePhysioSession(ctx context.Context, s *PhysioSession) error
	GetPhysioSession(ctx context.Context, id int64) (*PhysioSession, error)
	UpdatePhysioSession(ctx context.Context, id int64, patch PhysioSessionPatch) (*PhysioSession, error)
	ListPhysioSessions(ctx context.Context) ([]*PhysioSession, error)
	ListPhysioSessionsByVisit(ctx context.Context, visitID int64) ([]*PhysioSession, error)

	// Payments
	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	UpdatePayment(ctx context.Context, id int64, patch PaymentPatch) (*Payment, error)
	ListPayments(ctx context.Context) ([]*Payment, error)
	ListPaymentsByVisit(ctx context.Context, visitID int64) ([]*Payment, error)

	// Statistics
	TodaysStats(ctx context.Context) (*TodayStats, error)
	TodaysRevenue(ctx context.Context) (*RevenueSummary, error)
}
