package clinic

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Visit statuses.
const (
	VisitWaiting        = "waiting"
	VisitInConsultation = "in_consultation"
	VisitCompleted      = "completed"
	VisitCancelled      = "cancelled"
)

// Diagnostic and lab test statuses.
const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderReported  = "reported"
)

// Physiotherapy session statuses.
const (
	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

// Payment statuses and methods.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"

	MethodCash = "cash"
	MethodCard = "card"
	MethodUPI  = "upi"
)

// Patient is a registered clinic patient.
type Patient struct {
	ID               int64     `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender"`
	BloodGroup       *string   `json:"bloodGroup"`
	Phone            string    `json:"phone"`
	Address          *string   `json:"address"`
	EmergencyContact *string   `json:"emergencyContact"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Visit is one clinic encounter, from check-in at reception to completion.
type Visit struct {
	ID             int64     `json:"id"`
	PatientID      int64     `json:"patientId"`
	VisitCode      string    `json:"visitCode"`
	TokenNumber    string    `json:"tokenNumber"`
	Status         string    `json:"status"`
	VisitDate      time.Time `json:"visitDate"`
	ChiefComplaint *string   `json:"chiefComplaint"`
	Notes          *string   `json:"notes"`
}

// IsOpen reports whether the visit still counts as the patient's current visit.
func (v *Visit) IsOpen() bool {
	return v.Status == VisitWaiting || v.Status == VisitInConsultation
}

// Consultation holds the doctor's notes for a visit.
type Consultation struct {
	ID                      int64      `json:"id"`
	VisitID                 int64      `json:"visitId"`
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
	ConsultationDate        time.Time  `json:"consultationDate"`
	CreatedAt               time.Time  `json:"createdAt"`
}

// Prescription lists the medicines prescribed during a visit. Medicines and
// Dosage are parallel arrays.
type Prescription struct {
	ID           int64     `json:"id"`
	VisitID      int64     `json:"visitId"`
	Medicines    []string  `json:"medicines"`
	Dosage       []string  `json:"dosage"`
	Instructions *string   `json:"instructions"`
	PrescribedBy *string   `json:"prescribedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Diagnostic is an imaging order (x-ray, MRI, CT scan, ...).
type Diagnostic struct {
	ID        int64     `json:"id"`
	VisitID   int64     `json:"visitId"`
	TestType  string    `json:"testType"`
	TestName  string    `json:"testName"`
	Results   *string   `json:"results"`
	ReportURL *string   `json:"reportUrl"`
	Status    string    `json:"status"`
	OrderedBy *string   `json:"orderedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// LabTest is a laboratory investigation ordered for a visit.
type LabTest struct {
	ID           int64     `json:"id"`
	VisitID      int64     `json:"visitId"`
	TestName     string    `json:"testName"`
	TestCategory *string   `json:"testCategory"`
	Results      *string   `json:"results"`
	NormalRange  *string   `json:"normalRange"`
	Status       string    `json:"status"`
	OrderedBy    *string   `json:"orderedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PhysioSession is a physiotherapy session. Duration is in minutes.
type PhysioSession struct {
	ID            int64      `json:"id"`
	VisitID       int64      `json:"visitId"`
	SessionType   string     `json:"sessionType"`
	Duration      *int       `json:"duration"`
	Exercises     []string   `json:"exercises"`
	Notes         *string    `json:"notes"`
	TherapistName *string    `json:"therapistName"`
	Status        string     `json:"status"`
	SessionDate   *time.Time `json:"sessionDate"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Payment is a bill settlement for a visit.
type Payment struct {
	ID            int64           `json:"id"`
	VisitID       int64           `json:"visitId"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	BillItems     []string        `json:"billItems"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// PatientWithVisits is a patient joined with every visit referencing it.
type PatientWithVisits struct {
	Patient
	Visits       []*Visit `json:"visits"`
	CurrentVisit *Visit   `json:"currentVisit"`
}

// VisitWithDetails is a visit joined with its patient and child records.
// Consultation is the first consultation recorded for the visit.
type VisitWithDetails struct {
	Visit
	Patient        *Patient         `json:"patient"`
	Consultation   *Consultation    `json:"consultation"`
	Consultations  []*Consultation  `json:"consultations"`
	Prescriptions  []*Prescription  `json:"prescriptions"`
	Diagnostics    []*Diagnostic    `json:"diagnostics"`
	LabTests       []*LabTest       `json:"labTests"`
	PhysioSessions []*PhysioSession `json:"physioSessions"`
	Payments       []*Payment       `json:"payments"`
}

// TodayStats summarises today's visits for the reception dashboard.
type TodayStats struct {
	TotalPatients int `json:"totalPatients"`
	Completed     int `json:"completed"`
	InProgress    int `json:"inProgress"`
	Pending       int `json:"pending"`
}

// RevenueSummary totals today's completed payments.
type RevenueSummary struct {
	Date           string                     `json:"date"`
	Total          decimal.Decimal            `json:"total"`
	ByMethod       map[string]decimal.Decimal `json:"byMethod"`
	CompletedCount int                        `json:"completedCount"`
	PendingCount   int                        `json:"pendingCount"`
	FailedCount    int                        `json:"failedCount"`
}

// -- copies handed out by the store --

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (p *Patient) clone() *Patient {
	cp := *p
	cp.BloodGroup = clonePtr(p.BloodGroup)
	cp.Address = clonePtr(p.Address)
	cp.EmergencyContact = clonePtr(p.EmergencyContact)
	return &cp
}

func (v *Visit) clone() *Visit {
	cp := *v
	cp.ChiefComplaint = clonePtr(v.ChiefComplaint)
	cp.Notes = clonePtr(v.Notes)
	return &cp
}

func (c *Consultation) clone() *Consultation {
	cp := *c
	cp.ChiefComplaint = clonePtr(c.ChiefComplaint)
	cp.HistoryOfPresentIllness = clonePtr(c.HistoryOfPresentIllness)
	cp.PastMedicalHistory = clonePtr(c.PastMedicalHistory)
	cp.FamilyHistory = clonePtr(c.FamilyHistory)
	cp.SocialHistory = clonePtr(c.SocialHistory)
	cp.Allergies = clonePtr(c.Allergies)
	cp.CurrentMedications = slices.Clone(c.CurrentMedications)
	cp.VitalSigns = clonePtr(c.VitalSigns)
	cp.GeneralExamination = clonePtr(c.GeneralExamination)
	cp.SystemicExamination = clonePtr(c.SystemicExamination)
	cp.ClinicalFindings = clonePtr(c.ClinicalFindings)
	cp.ProvisionalDiagnosis = clonePtr(c.ProvisionalDiagnosis)
	cp.DifferentialDiagnosis = clonePtr(c.DifferentialDiagnosis)
	cp.InvestigationsAdvised = slices.Clone(c.InvestigationsAdvised)
	cp.TreatmentPlan = clonePtr(c.TreatmentPlan)
	cp.Advice = clonePtr(c.Advice)
	cp.FollowUpDate = clonePtr(c.FollowUpDate)
	cp.FollowUpInstructions = clonePtr(c.FollowUpInstructions)
	cp.CriticalNotes = clonePtr(c.CriticalNotes)
	cp.DoctorName = clonePtr(c.DoctorName)
	return &cp
}

func (p *Prescription) clone() *Prescription {
	cp := *p
	cp.Medicines = slices.Clone(p.Medicines)
	cp.Dosage = slices.Clone(p.Dosage)
	cp.Instructions = clonePtr(p.Instructions)
	cp.PrescribedBy = clonePtr(p.PrescribedBy)
	return &cp
}

func (d *Diagnostic) clone() *Diagnostic {
	cp := *d
	cp.Results = clonePtr(d.Results)
	cp.ReportURL = clonePtr(d.ReportURL)
	cp.OrderedBy = clonePtr(d.OrderedBy)
	return &cp
}

func (l *LabTest) clone() *LabTest {
	cp := *l
	cp.TestCategory = clonePtr(l.TestCategory)
	cp.Results = clonePtr(l.Results)
	cp.NormalRange = clonePtr(l.NormalRange)
	cp.OrderedBy = clonePtr(l.OrderedBy)
	return &cp
}

func (s *PhysioSession) clone() *PhysioSession {
	cp := *s
	cp.Duration = clonePtr(s.Duration)
	cp.Exercises = slices.Clone(s.Exercises)
	cp.Notes = clonePtr(s.Notes)
	cp.TherapistName = clonePtr(s.TherapistName)
	cp.SessionDate = clonePtr(s.SessionDate)
	return &cp
}

func (p *Payment) clone() *Payment {
	cp := *p
	cp.BillItems = slices.Clone(p.BillItems)
	return &cp
}
