// Package sandbox generates synthetic clinic records for demo and developer
// environments. Output is reproducible for a given seed.
package sandbox

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bonejoint/clinic/internal/domain/clinic"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// SeedConfig controls the volume of generated synthetic data.
type SeedConfig struct {
	PatientCount     int   `json:"patientCount"`
	VisitsPerPatient int   `json:"visitsPerPatient"`
	Seed             int64 `json:"seed"`
}

// DefaultSeedConfig returns a SeedConfig sized for a small demo clinic.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		PatientCount:     10,
		VisitsPerPatient: 1,
		Seed:             42,
	}
}

// SeedResult summarises what a Seeder wrote.
type SeedResult struct {
	Patients       int           `json:"patients"`
	Visits         int           `json:"visits"`
	Consultations  int           `json:"consultations"`
	Prescriptions  int           `json:"prescriptions"`
	Diagnostics    int           `json:"diagnostics"`
	LabTests       int           `json:"labTests"`
	PhysioSessions int           `json:"physioSessions"`
	Payments       int           `json:"payments"`
	TotalRecords   int           `json:"totalRecords"`
	Duration       time.Duration `json:"duration"`
}

// ---------------------------------------------------------------------------
// Pools
// ---------------------------------------------------------------------------

var (
	firstNamesMale   = []string{"Arjun", "Rahul", "Vikram", "Sanjay", "Imran", "Karthik", "Rohan", "Anil", "Deepak", "Joseph"}
	firstNamesFemale = []string{"Priya", "Ananya", "Meera", "Lakshmi", "Fatima", "Kavya", "Sneha", "Divya", "Neha", "Mary"}
	lastNames        = []string{"Sharma", "Iyer", "Reddy", "Nair", "Khan", "Patel", "Menon", "Gupta", "Das", "Fernandes"}
	bloodGroups      = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	cities           = []string{"Bengaluru", "Chennai", "Hyderabad", "Pune", "Kochi", "Mumbai"}

	complaints = []string{
		"Knee pain while climbing stairs",
		"Lower back pain radiating to left leg",
		"Shoulder stiffness for three weeks",
		"Wrist swelling after a fall",
		"Neck pain with tingling in fingers",
		"Ankle sprain during football",
		"Hip pain on walking",
	}
	diagnoses = []string{
		"Osteoarthritis of knee",
		"Lumbar disc prolapse",
		"Adhesive capsulitis",
		"Distal radius fracture",
		"Cervical spondylosis",
		"Lateral ankle ligament sprain",
		"Trochanteric bursitis",
	}
	medicines = []string{
		"Paracetamol 650mg",
		"Aceclofenac 100mg",
		"Pantoprazole 40mg",
		"Calcium + Vitamin D3",
		"Thiocolchicoside 4mg",
		"Etoricoxib 90mg",
		"Diclofenac gel",
	}
	dosages  = []string{"1-0-1 after food", "0-0-1 after food", "1-0-0 before food", "apply twice daily"}
	imaging  = []struct{ kind, name string }{{"xray", "X-Ray Knee AP/Lateral"}, {"xray", "X-Ray Wrist"}, {"mri", "MRI Lumbar Spine"}, {"mri", "MRI Shoulder"}, {"ct", "CT Ankle"}}
	labTests = []struct{ name, category, normal string }{
		{"Serum Uric Acid", "biochemistry", "3.5-7.2 mg/dL"},
		{"Vitamin D (25-OH)", "biochemistry", "30-100 ng/mL"},
		{"ESR", "hematology", "0-20 mm/hr"},
		{"CRP", "immunology", "<6 mg/L"},
		{"RA Factor", "immunology", "<14 IU/mL"},
	}
	sessionTypes = []string{"Knee strengthening", "Spinal mobilisation", "Shoulder ROM", "Gait training", "TENS therapy"}
	exercises    = []string{"Quadriceps sets", "Straight leg raise", "Pendulum swings", "Cat-camel stretch", "Heel slides", "Wall push-ups"}
	doctors      = []string{"Dr. Suresh Rao", "Dr. Anjali Mehta", "Dr. Victor Paul"}
	therapists   = []string{"Nisha K", "Ramesh P"}
	paymentModes = []string{clinic.MethodCash, clinic.MethodCard, clinic.MethodUPI}
	fees         = []int64{500, 750, 1200, 1500, 2500}
)

// ---------------------------------------------------------------------------
// Seeder
// ---------------------------------------------------------------------------

// Recorder is the subset of the clinic service the seeder writes through.
type Recorder interface {
	CreatePatient(ctx context.Context, in clinic.PatientInput) (*clinic.Patient, error)
	CreateVisit(ctx context.Context, in clinic.VisitInput) (*clinic.Visit, error)
	CreateConsultation(ctx context.Context, in clinic.ConsultationInput) (*clinic.Consultation, error)
	CreatePrescription(ctx context.Context, in clinic.PrescriptionInput) (*clinic.Prescription, error)
	CreateDiagnostic(ctx context.Context, in clinic.DiagnosticInput) (*clinic.Diagnostic, error)
	CreateLabTest(ctx context.Context, in clinic.LabTestInput) (*clinic.LabTest, error)
	CreatePhysioSession(ctx context.Context, in clinic.PhysioSessionInput) (*clinic.PhysioSession, error)
	CreatePayment(ctx context.Context, in clinic.PaymentInput) (*clinic.Payment, error)
}

// Seeder writes a reproducible set of patients and visits through a Recorder.
type Seeder struct {
	rec    Recorder
	rng    *rand.Rand
	config SeedConfig
	log    zerolog.Logger
}

// NewSeeder creates a Seeder. If config.Seed is 0 a time-based seed is chosen.
func NewSeeder(rec Recorder, config SeedConfig, logger zerolog.Logger) *Seeder {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		rec:    rec,
		rng:    rand.New(rand.NewSource(seed)),
		config: config,
		log:    logger.With().Str("component", "sandbox").Logger(),
	}
}

func (s *Seeder) pick(pool []string) string {
	return pool[s.rng.Intn(len(pool))]
}

func (s *Seeder) pickN(pool []string, n int) []string {
	out := make([]string, 0, n)
	for _, i := range s.rng.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}

func (s *Seeder) randomPhone() string {
	return fmt.Sprintf("9%09d", s.rng.Intn(1000000000))
}

// Generate writes PatientCount patients, each with VisitsPerPatient visits.
// Visit statuses cycle through the lifecycle so a seeded queue has waiting,
// in-consultation and completed entries.
func (s *Seeder) Generate(ctx context.Context) (*SeedResult, error) {
	start := time.Now()
	result := &SeedResult{}

	for i := 0; i < s.config.PatientCount; i++ {
		p, err := s.rec.CreatePatient(ctx, s.patientInput())
		if err != nil {
			return result, fmt.Errorf("seed patient %d: %w", i+1, err)
		}
		result.Patients++

		for j := 0; j < s.config.VisitsPerPatient; j++ {
			if err := s.generateVisit(ctx, p.ID, i*s.config.VisitsPerPatient+j, result); err != nil {
				return result, err
			}
		}
	}

	result.TotalRecords = result.Patients + result.Visits + result.Consultations +
		result.Prescriptions + result.Diagnostics + result.LabTests +
		result.PhysioSessions + result.Payments
	result.Duration = time.Since(start)

	s.log.Info().
		Int("patients", result.Patients).
		Int("visits", result.Visits).
		Int("records", result.TotalRecords).
		Dur("duration", result.Duration).
		Msg("demo data seeded")
	return result, nil
}

func (s *Seeder) patientInput() clinic.PatientInput {
	first, gender := s.pick(firstNamesMale), "male"
	if s.rng.Intn(2) == 0 {
		first, gender = s.pick(firstNamesFemale), "female"
	}
	age := 18 + s.rng.Intn(65)
	blood := s.pick(bloodGroups)
	address := fmt.Sprintf("%d, %d Cross, %s", 1+s.rng.Intn(200), 1+s.rng.Intn(20), s.pick(cities))
	return clinic.PatientInput{
		FirstName:  first,
		LastName:   s.pick(lastNames),
		Age:        &age,
		Gender:     gender,
		BloodGroup: &blood,
		Phone:      s.randomPhone(),
		Address:    &address,
	}
}

// generateVisit checks a patient in. Waiting visits get no clinical records;
// in-consultation visits get a consultation; completed visits get the full
// set of orders and a payment.
func (s *Seeder) generateVisit(ctx context.Context, patientID int64, n int, result *SeedResult) error {
	status := []string{clinic.VisitWaiting, clinic.VisitInConsultation, clinic.VisitCompleted}[n%3]
	idx := s.rng.Intn(len(complaints))
	complaint := complaints[idx]

	v, err := s.rec.CreateVisit(ctx, clinic.VisitInput{
		PatientID:      patientID,
		Status:         status,
		ChiefComplaint: &complaint,
	})
	if err != nil {
		return fmt.Errorf("seed visit for patient %d: %w", patientID, err)
	}
	result.Visits++
	if status == clinic.VisitWaiting {
		return nil
	}

	doctor := s.pick(doctors)
	diagnosis := diagnoses[idx]
	vitals := fmt.Sprintf("BP %d/%d, Pulse %d", 110+s.rng.Intn(30), 70+s.rng.Intn(15), 65+s.rng.Intn(30))
	if _, err := s.rec.CreateConsultation(ctx, clinic.ConsultationInput{
		VisitID:               v.ID,
		ChiefComplaint:        &complaint,
		VitalSigns:            &vitals,
		ProvisionalDiagnosis:  &diagnosis,
		InvestigationsAdvised: []string{"X-Ray", "Vitamin D"},
		DoctorName:            &doctor,
	}); err != nil {
		return fmt.Errorf("seed consultation for visit %d: %w", v.ID, err)
	}
	result.Consultations++
	if status != clinic.VisitCompleted {
		return nil
	}

	count := 1 + s.rng.Intn(3)
	meds := s.pickN(medicines, count)
	doses := make([]string, count)
	for k := range doses {
		doses[k] = s.pick(dosages)
	}
	instructions := "Review after two weeks"
	if _, err := s.rec.CreatePrescription(ctx, clinic.PrescriptionInput{
		VisitID:      v.ID,
		Medicines:    meds,
		Dosage:       doses,
		Instructions: &instructions,
		PrescribedBy: &doctor,
	}); err != nil {
		return fmt.Errorf("seed prescription for visit %d: %w", v.ID, err)
	}
	result.Prescriptions++

	img := imaging[s.rng.Intn(len(imaging))]
	if _, err := s.rec.CreateDiagnostic(ctx, clinic.DiagnosticInput{
		VisitID:   v.ID,
		TestType:  img.kind,
		TestName:  img.name,
		Status:    clinic.OrderPending,
		OrderedBy: &doctor,
	}); err != nil {
		return fmt.Errorf("seed diagnostic for visit %d: %w", v.ID, err)
	}
	result.Diagnostics++

	lab := labTests[s.rng.Intn(len(labTests))]
	category, normal := lab.category, lab.normal
	if _, err := s.rec.CreateLabTest(ctx, clinic.LabTestInput{
		VisitID:      v.ID,
		TestName:     lab.name,
		TestCategory: &category,
		NormalRange:  &normal,
		Status:       clinic.OrderPending,
		OrderedBy:    &doctor,
	}); err != nil {
		return fmt.Errorf("seed lab test for visit %d: %w", v.ID, err)
	}
	result.LabTests++

	duration := 30 + 15*s.rng.Intn(3)
	therapist := s.pick(therapists)
	if _, err := s.rec.CreatePhysioSession(ctx, clinic.PhysioSessionInput{
		VisitID:       v.ID,
		SessionType:   s.pick(sessionTypes),
		Duration:      &duration,
		Exercises:     s.pickN(exercises, 2),
		TherapistName: &therapist,
		Status:        clinic.SessionScheduled,
	}); err != nil {
		return fmt.Errorf("seed physio session for visit %d: %w", v.ID, err)
	}
	result.PhysioSessions++

	amount := decimal.NewFromInt(fees[s.rng.Intn(len(fees))])
	if _, err := s.rec.CreatePayment(ctx, clinic.PaymentInput{
		VisitID:       v.ID,
		Amount:        &amount,
		PaymentMethod: s.pick(paymentModes),
		PaymentStatus: clinic.PaymentCompleted,
		BillItems:     []string{"Consultation", img.name, lab.name},
	}); err != nil {
		return fmt.Errorf("seed payment for visit %d: %w", v.ID, err)
	}
	result.Payments++
	return nil
}
