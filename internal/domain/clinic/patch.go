package clinic

import (
	"time"

	"github.com/shopspring/decimal"
)

// Patch types carry partial updates. A nil field leaves the stored value
// untouched; a non-nil field replaces it. Slices follow the same rule, so a
// JSON [] clears the array while null or an absent key keeps it.

// PatientPatch is a partial Patient update.
type PatientPatch struct {
	FirstName        *string `json:"firstName" validate:"omitempty,min=1"`
	LastName         *string `json:"lastName" validate:"omitempty,min=1"`
	Age              *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender           *string `json:"gender" validate:"omitempty,min=1"`
	BloodGroup       *string `json:"bloodGroup"`
	Phone            *string `json:"phone" validate:"omitempty,min=1"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergencyContact"`
}

func (p PatientPatch) apply(dst *Patient) {
	setIf(&dst.FirstName, p.FirstName)
	setIf(&dst.LastName, p.LastName)
	setIf(&dst.Age, p.Age)
	setIf(&dst.Gender, p.Gender)
	setPtrIf(&dst.BloodGroup, p.BloodGroup)
	setIf(&dst.Phone, p.Phone)
	setPtrIf(&dst.Address, p.Address)
	setPtrIf(&dst.EmergencyContact, p.EmergencyContact)
}

// VisitPatch is a partial Visit update. Status is not checked against the
// visit state machine here; see Service.UpdateVisit.
type VisitPatch struct {
	PatientID      *int64  `json:"patientId" validate:"omitempty,gt=0"`
	TokenNumber    *string `json:"tokenNumber"`
	Status         *string `json:"status" validate:"omitempty,oneof=waiting in_consultation completed cancelled"`
	ChiefComplaint *string `json:"chiefComplaint"`
	Notes          *string `json:"notes"`
}

func (p VisitPatch) apply(dst *Visit) {
	setIf(&dst.PatientID, p.PatientID)
	setIf(&dst.TokenNumber, p.TokenNumber)
	setIf(&dst.Status, p.Status)
	setPtrIf(&dst.ChiefComplaint, p.ChiefComplaint)
	setPtrIf(&dst.Notes, p.Notes)
}

// ConsultationPatch is a partial Consultation update.
type ConsultationPatch struct {
	VisitID                 *int64     `json:"visitId" validate:"omitempty,gt=0"`
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

func (p ConsultationPatch) apply(dst *Consultation) {
	setIf(&dst.VisitID, p.VisitID)
	setPtrIf(&dst.ChiefComplaint, p.ChiefComplaint)
	setPtrIf(&dst.HistoryOfPresentIllness, p.HistoryOfPresentIllness)
	setPtrIf(&dst.PastMedicalHistory, p.PastMedicalHistory)
	setPtrIf(&dst.FamilyHistory, p.FamilyHistory)
	setPtrIf(&dst.SocialHistory, p.SocialHistory)
	setPtrIf(&dst.Allergies, p.Allergies)
	setSliceIf(&dst.CurrentMedications, p.CurrentMedications)
	setPtrIf(&dst.VitalSigns, p.VitalSigns)
	setPtrIf(&dst.GeneralExamination, p.GeneralExamination)
	setPtrIf(&dst.SystemicExamination, p.SystemicExamination)
	setPtrIf(&dst.ClinicalFindings, p.ClinicalFindings)
	setPtrIf(&dst.ProvisionalDiagnosis, p.ProvisionalDiagnosis)
	setPtrIf(&dst.DifferentialDiagnosis, p.DifferentialDiagnosis)
	setSliceIf(&dst.InvestigationsAdvised, p.InvestigationsAdvised)
	setPtrIf(&dst.TreatmentPlan, p.TreatmentPlan)
	setPtrIf(&dst.Advice, p.Advice)
	setPtrIf(&dst.FollowUpDate, p.FollowUpDate)
	setPtrIf(&dst.FollowUpInstructions, p.FollowUpInstructions)
	setPtrIf(&dst.CriticalNotes, p.CriticalNotes)
	setPtrIf(&dst.DoctorName, p.DoctorName)
}

// PrescriptionPatch is a partial Prescription update.
type PrescriptionPatch struct {
	VisitID      *int64   `json:"visitId" validate:"omitempty,gt=0"`
	Medicines    []string `json:"medicines"`
	Dosage       []string `json:"dosage"`
	Instructions *string  `json:"instructions"`
	PrescribedBy *string  `json:"prescribedBy"`
}

func (p PrescriptionPatch) apply(dst *Prescription) {
	setIf(&dst.VisitID, p.VisitID)
	setSliceIf(&dst.Medicines, p.Medicines)
	setSliceIf(&dst.Dosage, p.Dosage)
	setPtrIf(&dst.Instructions, p.Instructions)
	setPtrIf(&dst.PrescribedBy, p.PrescribedBy)
}

// DiagnosticPatch is a partial Diagnostic update.
type DiagnosticPatch struct {
	VisitID   *int64  `json:"visitId" validate:"omitempty,gt=0"`
	TestType  *string `json:"testType" validate:"omitempty,min=1"`
	TestName  *string `json:"testName" validate:"omitempty,min=1"`
	Results   *string `json:"results"`
	ReportURL *string `json:"reportUrl"`
	Status    *string `json:"status" validate:"omitempty,oneof=pending completed reported"`
	OrderedBy *string `json:"orderedBy"`
}

func (p DiagnosticPatch) apply(dst *Diagnostic) {
	setIf(&dst.VisitID, p.VisitID)
	setIf(&dst.TestType, p.TestType)
	setIf(&dst.TestName, p.TestName)
	setPtrIf(&dst.Results, p.Results)
	setPtrIf(&dst.ReportURL, p.ReportURL)
	setIf(&dst.Status, p.Status)
	setPtrIf(&dst.OrderedBy, p.OrderedBy)
}

// LabTestPatch is a partial LabTest update.
type LabTestPatch struct {
	VisitID      *int64  `json:"visitId" validate:"omitempty,gt=0"`
	TestName     *string `json:"testName" validate:"omitempty,min=1"`
	TestCategory *string `json:"testCategory"`
	Results      *string `json:"results"`
	NormalRange  *string `json:"normalRange"`
	Status       *string `json:"status" validate:"omitempty,oneof=pending completed reported"`
	OrderedBy    *string `json:"orderedBy"`
}

func (p LabTestPatch) apply(dst *LabTest) {
	setIf(&dst.VisitID, p.VisitID)
	setIf(&dst.TestName, p.TestName)
	setPtrIf(&dst.TestCategory, p.TestCategory)
	setPtrIf(&dst.Results, p.Results)
	setPtrIf(&dst.NormalRange, p.NormalRange)
	setIf(&dst.Status, p.Status)
	setPtrIf(&dst.OrderedBy, p.OrderedBy)
}

// PhysioSessionPatch is a partial PhysioSession update.
type PhysioSessionPatch struct {
	VisitID       *int64     `json:"visitId" validate:"omitempty,gt=0"`
	SessionType   *string    `json:"sessionType" validate:"omitempty,min=1"`
	Duration      *int       `json:"duration" validate:"omitempty,gte=0"`
	Exercises     []string   `json:"exercises"`
	Notes         *string    `json:"notes"`
	TherapistName *string    `json:"therapistName"`
	Status        *string    `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	SessionDate   *time.Time `json:"sessionDate"`
}

func (p PhysioSessionPatch) apply(dst *PhysioSession) {
	setIf(&dst.VisitID, p.VisitID)
	setIf(&dst.SessionType, p.SessionType)
	setPtrIf(&dst.Duration, p.Duration)
	setSliceIf(&dst.Exercises, p.Exercises)
	setPtrIf(&dst.Notes, p.Notes)
	setPtrIf(&dst.TherapistName, p.TherapistName)
	setIf(&dst.Status, p.Status)
	setPtrIf(&dst.SessionDate, p.SessionDate)
}

// PaymentPatch is a partial Payment update.
type PaymentPatch struct {
	VisitID       *int64           `json:"visitId" validate:"omitempty,gt=0"`
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod *string          `json:"paymentMethod" validate:"omitempty,oneof=cash card upi"`
	PaymentStatus *string          `json:"paymentStatus" validate:"omitempty,oneof=pending completed failed"`
	BillItems     []string         `json:"billItems"`
}

func (p PaymentPatch) apply(dst *Payment) {
	setIf(&dst.VisitID, p.VisitID)
	setIf(&dst.Amount, p.Amount)
	setIf(&dst.PaymentMethod, p.PaymentMethod)
	setIf(&dst.PaymentStatus, p.PaymentStatus)
	setSliceIf(&dst.BillItems, p.BillItems)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setPtrIf[T any](dst **T, v *T) {
	if v != nil {
		*dst = clonePtr(v)
	}
}

func setSliceIf[T any](dst *[]T, v []T) {
	if v != nil {
		*dst = append([]T{}, v...)
	}
}
