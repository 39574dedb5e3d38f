package clinic

import (
	"time"

	"github.com/shopspring/decimal"
)

// Create inputs omit every store-assigned field (id, timestamps, visit code,
// token number). Validation tags are enforced at the HTTP boundary.

// PatientInput registers a new patient.
type PatientInput struct {
	FirstName        string  `json:"firstName" validate:"required"`
	LastName         string  `json:"lastName" validate:"required"`
	Age              *int    `json:"age" validate:"required,gte=0,lte=150"`
	Gender           string  `json:"gender" validate:"required"`
	BloodGroup       *string `json:"bloodGroup"`
	Phone            string  `json:"phone" validate:"required"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergencyContact"`
}

func (in PatientInput) toPatient() *Patient {
	p := &Patient{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Gender:           in.Gender,
		BloodGroup:       in.BloodGroup,
		Phone:            in.Phone,
		Address:          in.Address,
		EmergencyContact: in.EmergencyContact,
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	return p
}

// VisitInput checks a patient in at reception.
type VisitInput struct {
	PatientID      int64   `json:"patientId" validate:"required,gt=0"`
	Status         string  `json:"status" validate:"omitempty,oneof=waiting in_consultation completed cancelled"`
	ChiefComplaint *string `json:"chiefComplaint"`
	Notes          *string `json:"notes"`
}

func (in VisitInput) toVisit() *Visit {
	return &Visit{
		PatientID:      in.PatientID,
		Status:         in.Status,
		ChiefComplaint: in.ChiefComplaint,
		Notes:          in.Notes,
	}
}

// ConsultationInput records the doctor's consultation for a visit.
type ConsultationInput struct {
	VisitID                 int64      `json:"visitId" validate:"required,gt=0"`
	ChiefComplaint          *string    `json:"chiefComplaint"`
	HistoryOfPresentIllness *string    `json:"historyOfPresentIllness"`
	PastMedicalHistory      *string    `json:"pastMedicalHistory"`
	FamilyHistory           *string    `json:"familyHistory"`
	SocialHistory           *string    `json:"socialHistory"`
	Allergies               *string    `json:"allergies"`
	CurrentMedications      []string   `json:"currentMedications"`
	VitalSigns              *string    `json:"vitalSigns"`
	GeneralExamination      *string    `json:"generalExamination"`
	SystemicExamination     *string    `json:"systemicExamination"`
	ClinicalFindings        *string    `json:"clinicalFindings"`
	ProvisionalDiagnosis    *string    `json:"provisionalDiagnosis"`
	DifferentialDiagnosis   *string    `json:"differentialDiagnosis"`
	InvestigationsAdvised   []string   `json:"investigationsAdvised"`
	TreatmentPlan           *string    `json:"treatmentPlan"`
	Advice                  *string    `json:"advice"`
	FollowUpDate            *time.Time `json:"followUpDate"`
	FollowUpInstructions    *string    `json:"followUpInstructions"`
	CriticalNotes           *string    `json:"criticalNotes"`
	DoctorName              *string    `json:"doctorName"`
}

func (in ConsultationInput) toConsultation() *Consultation {
	return &Consultation{
		VisitID:                 in.VisitID,
		ChiefComplaint:          in.ChiefComplaint,
		HistoryOfPresentIllness: in.HistoryOfPresentIllness,
		PastMedicalHistory:      in.PastMedicalHistory,
		FamilyHistory:           in.FamilyHistory,
		SocialHistory:           in.SocialHistory,
		Allergies:               in.Allergies,
		CurrentMedications:      in.CurrentMedications,
		VitalSigns:              in.VitalSigns,
		GeneralExamination:      in.GeneralExamination,
		SystemicExamination:     in.SystemicExamination,
		ClinicalFindings:        in.ClinicalFindings,
		ProvisionalDiagnosis:    in.ProvisionalDiagnosis,
		DifferentialDiagnosis:   in.DifferentialDiagnosis,
		InvestigationsAdvised:   in.InvestigationsAdvised,
		TreatmentPlan:           in.TreatmentPlan,
		Advice:                  in.Advice,
		FollowUpDate:            in.FollowUpDate,
		FollowUpInstructions:    in.FollowUpInstructions,
		CriticalNotes:           in.CriticalNotes,
		DoctorName:              in.DoctorName,
	}
}

// PrescriptionInput records prescribed medicines.
type PrescriptionInput struct {
	VisitID      int64    `json:"visitId" validate:"required,gt=0"`
	Medicines    []string `json:"medicines"`
	Dosage       []string `json:"dosage"`
	Instructions *string  `json:"instructions"`
	PrescribedBy *string  `json:"prescribedBy"`
}

func (in PrescriptionInput) toPrescription() *Prescription {
	return &Prescription{
		VisitID:      in.VisitID,
		Medicines:    in.Medicines,
		Dosage:       in.Dosage,
		Instructions: in.Instructions,
		PrescribedBy: in.PrescribedBy,
	}
}

// DiagnosticInput orders an imaging study.
type DiagnosticInput struct {
	VisitID   int64   `json:"visitId" validate:"required,gt=0"`
	TestType  string  `json:"testType" validate:"required"`
	TestName  string  `json:"testName" validate:"required"`
	Results   *string `json:"results"`
	ReportURL *string `json:"reportUrl"`
	Status    string  `json:"status" validate:"omitempty,oneof=pending completed reported"`
	OrderedBy *string `json:"orderedBy"`
}

func (in DiagnosticInput) toDiagnostic() *Diagnostic {
	return &Diagnostic{
		VisitID:   in.VisitID,
		TestType:  in.TestType,
		TestName:  in.TestName,
		Results:   in.Results,
		ReportURL: in.ReportURL,
		Status:    in.Status,
		OrderedBy: in.OrderedBy,
	}
}

// LabTestInput orders a lab test.
type LabTestInput struct {
	VisitID      int64   `json:"visitId" validate:"required,gt=0"`
	TestName     string  `json:"testName" validate:"required"`
	TestCategory *string `json:"testCategory"`
	Results      *string `json:"results"`
	NormalRange  *string `json:"normalRange"`
	Status       string  `json:"status" validate:"omitempty,oneof=pending completed reported"`
	OrderedBy    *string `json:"orderedBy"`
}

func (in LabTestInput) toLabTest() *LabTest {
	return &LabTest{
		VisitID:      in.VisitID,
		TestName:     in.TestName,
		TestCategory: in.TestCategory,
		Results:      in.Results,
		NormalRange:  in.NormalRange,
		Status:       in.Status,
		OrderedBy:    in.OrderedBy,
	}
}

// PhysioSessionInput schedules a physiotherapy session.
type PhysioSessionInput struct {
	VisitID       int64      `json:"visitId" validate:"required,gt=0"`
	SessionType   string     `json:"sessionType" validate:"required"`
	Duration      *int       `json:"duration" validate:"omitempty,gte=0"`
	Exercises     []string   `json:"exercises"`
	Notes         *string    `json:"notes"`
	TherapistName *string    `json:"therapistName"`
	Status        string     `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	SessionDate   *time.Time `json:"sessionDate"`
}

func (in PhysioSessionInput) toPhysioSession() *PhysioSession {
	return &PhysioSession{
		VisitID:       in.VisitID,
		SessionType:   in.SessionType,
		Duration:      in.Duration,
		Exercises:     in.Exercises,
		Notes:         in.Notes,
		TherapistName: in.TherapistName,
		Status:        in.Status,
		SessionDate:   in.SessionDate,
	}
}

// PaymentInput records a payment against a visit. Amount accepts a JSON
// string or number.
type PaymentInput struct {
	VisitID       int64            `json:"visitId" validate:"required,gt=0"`
	Amount        *decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod string           `json:"paymentMethod" validate:"required,oneof=cash card upi"`
	PaymentStatus string           `json:"paymentStatus" validate:"omitempty,oneof=pending completed failed"`
	BillItems     []string         `json:"billItems"`
}

func (in PaymentInput) toPayment() *Payment {
	p := &Payment{
		VisitID:       in.VisitID,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: in.PaymentStatus,
		BillItems:     in.BillItems,
	}
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	return p
}
