package clinic

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// table is an insertion-ordered collection with its own id counter. Ids start
// at 1 and are never reused, even after a delete.
type table[T any] struct {
	rows  map[int64]*T
	order []int64
	next  int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int64]*T), next: 1}
}

func (t *table[T]) nextID() int64 {
	id := t.next
	t.next++
	return id
}

func (t *table[T]) put(id int64, row *T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) get(id int64) (*T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) remove(id int64) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(v int64) bool { return v == id })
	return true
}

// filter returns matching rows in insertion order. A nil keep matches all.
func (t *table[T]) filter(keep func(*T) bool) []*T {
	out := make([]*T, 0)
	for _, id := range t.order {
		row := t.rows[id]
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) find(match func(*T) bool) (*T, bool) {
	for _, id := range t.order {
		if row := t.rows[id]; match(row) {
			return row, true
		}
	}
	return nil, false
}

func cloneAll[T any](rows []*T, clone func(*T) *T) []*T {
	out := make([]*T, len(rows))
	for i, r := range rows {
		out[i] = clone(r)
	}
	return out
}

// Option configures a MemRepository.
type Option func(*MemRepository)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *MemRepository) { r.now = now }
}

// WithLocation sets the time zone that defines "today" and the date part of
// visit codes. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(r *MemRepository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// MemRepository is the process-lifetime, in-memory Repository. A single
// RWMutex serialises every mutation, including both code generators, so the
// id and token counters are safe under concurrent requests.
type MemRepository struct {
	mu  sync.RWMutex
	now func() time.Time
	loc *time.Location

	patients       *table[Patient]
	visits         *table[Visit]
	consultations  *table[Consultation]
	prescriptions  *table[Prescription]
	diagnostics    *table[Diagnostic]
	labTests       *table[LabTest]
	physioSessions *table[PhysioSession]
	payments       *table[Payment]

	nextToken int64
}

var _ Repository = (*MemRepository)(nil)

func NewMemRepository(opts ...Option) *MemRepository {
	r := &MemRepository{
		now:            time.Now,
		loc:            time.Local,
		patients:       newTable[Patient](),
		visits:         newTable[Visit](),
		consultations:  newTable[Consultation](),
		prescriptions:  newTable[Prescription](),
		diagnostics:    newTable[Diagnostic](),
		labTests:       newTable[LabTest](),
		physioSessions: newTable[PhysioSession](),
		payments:       newTable[Payment](),
		nextToken:      1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemRepository) clock() time.Time {
	return r.now().In(r.loc)
}

// todayBounds returns [local midnight today, local midnight tomorrow).
func (r *MemRepository) todayBounds() (time.Time, time.Time) {
	now := r.clock()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)
	return start, start.AddDate(0, 0, 1)
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// nullIfEmpty mirrors the "value || null" defaulting of optional text fields.
func nullIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return clonePtr(s)
}

// -- Patients --

func (r *MemRepository) CreatePatient(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.patients.nextID()
	p.BloodGroup = nullIfEmpty(p.BloodGroup)
	p.Address = nullIfEmpty(p.Address)
	p.EmergencyContact = nullIfEmpty(p.EmergencyContact)
	p.CreatedAt = r.clock()
	r.patients.put(p.ID, p.clone())
	return nil
}

func (r *MemRepository) GetPatient(_ context.Context, id int64) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return p.clone(), nil
}

func (r *MemRepository) GetPatientWithVisits(_ context.Context, id int64) (*PatientWithVisits, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	visits := r.visits.filter(func(v *Visit) bool { return v.PatientID == id })

	out := &PatientWithVisits{
		Patient: *p.clone(),
		Visits:  cloneAll(visits, (*Visit).clone),
	}
	// First open visit in insertion order, not the most recent one.
	for _, v := range out.Visits {
		if v.IsOpen() {
			out.CurrentVisit = v
			break
		}
	}
	return out, nil
}

func (r *MemRepository) UpdatePatient(_ context.Context, id int64, patch PatientPatch) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	updated := p.clone()
	patch.apply(updated)
	r.patients.put(id, updated)
	return updated.clone(), nil
}

// DeletePatient removes the patient only; its visits and their child
// records stay in place.
func (r *MemRepository) DeletePatient(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.patients.remove(id), nil
}

func (r *MemRepository) ListPatients(_ context.Context) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.patients.filter(nil), (*Patient).clone), nil
}

// SearchPatients matches the query case-insensitively against first and last
// name, and as a plain substring against the phone number.
func (r *MemRepository) SearchPatients(_ context.Context, query string) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(query)
	matches := r.patients.filter(func(p *Patient) bool {
		return strings.Contains(strings.ToLower(p.FirstName), lower) ||
			strings.Contains(strings.ToLower(p.LastName), lower) ||
			strings.Contains(p.Phone, query)
	})
	return cloneAll(matches, (*Patient).clone), nil
}

// -- Visits --

func (r *MemRepository) CreateVisit(_ context.Context, v *Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	v.ID = r.visits.nextID()
	v.VisitCode = formatVisitCode(now, v.ID)
	v.TokenNumber = formatToken(r.takeTokenLocked())
	if v.Status == "" {
		v.Status = VisitWaiting
	}
	v.VisitDate = now
	v.ChiefComplaint = nullIfEmpty(v.ChiefComplaint)
	v.Notes = nullIfEmpty(v.Notes)
	r.visits.put(v.ID, v.clone())
	return nil
}

func (r *MemRepository) GetVisit(_ context.Context, id int64) (*Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.visits.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.clone(), nil
}

// GetVisitWithDetails fails with ErrNotFound when either the visit or its
// patient is missing.
func (r *MemRepository) GetVisitWithDetails(_ context.Context, id int64) (*VisitWithDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.visits.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	p, ok := r.patients.get(v.PatientID)
	if !ok {
		return nil, ErrNotFound
	}

	out := &VisitWithDetails{
		Visit:   *v.clone(),
		Patient: p.clone(),
		Consultations: cloneAll(r.consultations.filter(func(c *Consultation) bool { return c.VisitID == id }),
			(*Consultation).clone),
		Prescriptions: cloneAll(r.prescriptions.filter(func(p *Prescription) bool { return p.VisitID == id }),
			(*Prescription).clone),
		Diagnostics: cloneAll(r.diagnostics.filter(func(d *Diagnostic) bool { return d.VisitID == id }),
			(*Diagnostic).clone),
		LabTests: cloneAll(r.labTests.filter(func(l *LabTest) bool { return l.VisitID == id }),
			(*LabTest).clone),
		PhysioSessions: cloneAll(r.physioSessions.filter(func(s *PhysioSession) bool { return s.VisitID == id }),
			(*PhysioSession).clone),
		Payments: cloneAll(r.payments.filter(func(p *Payment) bool { return p.VisitID == id }),
			(*Payment).clone),
	}
	if len(out.Consultations) > 0 {
		out.Consultation = out.Consultations[0]
	}
	return out, nil
}

func (r *MemRepository) GetVisitByCode(_ context.Context, code string) (*Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.visits.find(func(v *Visit) bool { return v.VisitCode == code })
	if !ok {
		return nil, ErrNotFound
	}
	return v.clone(), nil
}

func (r *MemRepository) UpdateVisit(_ context.Context, id int64, patch VisitPatch) (*Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.visits.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	updated := v.clone()
	patch.apply(updated)
	r.visits.put(id, updated)
	return updated.clone(), nil
}

func (r *MemRepository) ListVisits(_ context.Context) ([]*Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.visits.filter(nil), (*Visit).clone), nil
}

func (r *MemRepository) TodaysVisits(_ context.Context) ([]*Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.todaysVisitsLocked(), (*Visit).clone), nil
}

func (r *MemRepository) todaysVisitsLocked() []*Visit {
	start, end := r.todayBounds()
	return r.visits.filter(func(v *Visit) bool { return inRange(v.VisitDate, start, end) })
}

// GenerateVisitCode returns the code the next created visit will receive.
// It does not reserve it.
func (r *MemRepository) GenerateVisitCode() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return formatVisitCode(r.clock(), r.visits.next)
}

// GenerateTokenNumber consumes a token from the global queue counter, whether
// or not a visit is created with it.
func (r *MemRepository) GenerateTokenNumber() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return formatToken(r.takeTokenLocked())
}

func (r *MemRepository) takeTokenLocked() int64 {
	n := r.nextToken
	r.nextToken++
	return n
}

// -- Consultations --

func (r *MemRepository) CreateConsultation(_ context.Context, c *Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	c.ID = r.consultations.nextID()
	c.ChiefComplaint = nullIfEmpty(c.ChiefComplaint)
	c.HistoryOfPresentIllness = nullIfEmpty(c.HistoryOfPresentIllness)
	c.PastMedicalHistory = nullIfEmpty(c.PastMedicalHistory)
	c.FamilyHistory = nullIfEmpty(c.FamilyHistory)
	c.SocialHistory = nullIfEmpty(c.SocialHistory)
	c.Allergies = nullIfEmpty(c.Allergies)
	c.VitalSigns = nullIfEmpty(c.VitalSigns)
	c.GeneralExamination = nullIfEmpty(c.GeneralExamination)
	c.SystemicExamination = nullIfEmpty(c.SystemicExamination)
	c.ClinicalFindings = nullIfEmpty(c.ClinicalFindings)
	c.ProvisionalDiagnosis = nullIfEmpty(c.ProvisionalDiagnosis)
	c.DifferentialDiagnosis = nullIfEmpty(c.DifferentialDiagnosis)
	c.TreatmentPlan = nullIfEmpty(c.TreatmentPlan)
	c.Advice = nullIfEmpty(c.Advice)
	c.FollowUpInstructions = nullIfEmpty(c.FollowUpInstructions)
	c.CriticalNotes = nullIfEmpty(c.CriticalNotes)
	c.DoctorName = nullIfEmpty(c.DoctorName)
	c.ConsultationDate = now
	c.CreatedAt = now
	r.consultations.put(c.ID, c.clone())
	return nil
}

func (r *MemRepository) GetConsultation(_ context.Context, id int64) (*Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.consultations.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return c.clone(), nil
}

func (r *MemRepository) UpdateConsultation(_ context.Context, id int64, patch ConsultationPatch) (*Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.consultations.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	updated := c.clone()
	patch.apply(updated)
	r.consultations.put(id, updated)
	return updated.clone(), nil
}

func (r *MemRepository) ListConsultations(_ context.Context) ([]*Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.consultations.filter(nil), (*Consultation).clone), nil
}

func (r *MemRepository) ListConsultationsByVisit(_ context.Context, visitID int64) ([]*Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.consultations.filter(func(c *Consultation) bool { return c.VisitID == visitID })
	return cloneAll(rows, (*Consultation).clone), nil
}

// -- Prescriptions --

func (r *MemRepository) CreatePrescription(_ context.Context, p *Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.prescriptions.nextID()
	p.Instructions = nullIfEmpty(p.Instructions)
	p.PrescribedBy = nullIfEmpty(p.PrescribedBy)
	p.CreatedAt = r.clock()
	r.prescriptions.put(p.ID, p.clone())
	return nil
}

func (r *MemRepository) GetPrescription(_ context.Context, id int64) (*Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prescriptions.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return p.clone(), nil
}

func (r *MemRepository) UpdatePrescription(_ context.Context, id int64, patch PrescriptionPatch) (*Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.prescriptions.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	updated := p.clone()
	patch.apply(updated)
	r.prescriptions.put(id, updated)
	return updated.clone(), nil
}

func (r *MemRepository) ListPrescriptions(_ context.Context) ([]*Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.prescriptions.filter(nil), (*Prescription).clone), nil
}

func (r *MemRepository) ListPrescriptionsByVisit(_ context.Context, visitID int64) ([]*Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.prescriptions.filter(func(p *Prescription) bool { return p.VisitID == visitID })
	return cloneAll(rows, (*Prescription).clone), nil
}

// -- Diagnostics --

func (r *MemRepository) CreateDiagnostic(_ context.Context, d *Diagnostic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d.ID = r.diagnostics.nextID()
	if d.Status == "" {
		d.Status = OrderPending
	}
	d.Results = nullIfEmpty(d.Results)
	d.ReportURL = nullIfEmpty(d.ReportURL)
	d.OrderedBy = nullIfEmpty(d.OrderedBy)
	d.CreatedAt = r.clock()
	r.diagnostics.put(d.ID, d.clone())
	return nil
}

func (r *MemRepository) GetDiagnostic(_ context.Context, id int64) (*Diagnostic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.diagnostics.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return d.clone(), nil
}

func (r *MemRepository) UpdateDiagnostic(_ context.Context, id int64, patch DiagnosticPatch) (*Diagnostic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.diagnostics.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	updated := d.clone()
	patch.apply(updated)
	r.diagnostics.put(id, updated)
	return updated.clone(), nil
}

func (r *MemRepository) ListDiagnostics(_ context.Context) ([]*Diagnostic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.diagnostics.filter(nil), (*Diagnostic).clone), nil
}

func (r *MemRepository) ListDiagnosticsByVisit(_ context.Context, visitID int64) ([]*Diagnostic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.diagnostics.filter(func(d *Diagnostic) bool { return d.VisitID == visitID })
	return cloneAll(rows, (*Diagnostic).clone), nil
}

// -- Lab tests --

func (r *MemRepository) CreateLabTest(_ context.Context, l *LabTest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.ID = r.labTests.nextID()
	if l.Status == "" {
		l.Status = OrderPending
	}
	l.TestCategory = nullIfEmpty(l.TestCategory)
	l.Results = nullIfEmpty(l.Results)
	l.NormalRange = nullIfEmpty(l.NormalRange)
	l.OrderedBy = nullIfEmpty(l.OrderedBy)
	l.CreatedAt = r.clock()
	r.labTests.put(l.ID, l.clone())
	return nil
}

func (r *MemRepository) GetLabTest(_ context.Context, id int64) (*LabTest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.labTests.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return l.clone(), nil
}

func (r *MemRepository) UpdateLabTest(_ context.Context, id int64, patch LabTestPatch) (*LabTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.labTests.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	updated := l.clone()
	patch.apply(updated)
	r.labTests.put(id, updated)
	return updated.clone(), nil
}

func (r *MemRepository) ListLabTests(_ context.Context) ([]*LabTest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.labTests.filter(nil), (*LabTest).clone), nil
}

func (r *MemRepository) ListLabTestsByVisit(_ context.Context, visitID int64) ([]*LabTest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.labTests.filter(func(l *LabTest) bool { return l.VisitID == visitID })
	return cloneAll(rows, (*LabTest).clone), nil
}

// -- Physiotherapy --

func (r *MemRepository) CreatePhysioSession(_ context.Context, s *PhysioSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = r.physioSessions.nextID()
	if s.Status == "" {
		s.Status = SessionScheduled
	}
	s.Notes = nullIfEmpty(s.Notes)
	s.TherapistName = nullIfEmpty(s.TherapistName)
	if s.Duration != nil && *s.Duration == 0 {
		// Zero minutes is stored as unknown.
		s.Duration = nil
	}
	s.CreatedAt = r.clock()
	r.physioSessions.put(s.ID, s.clone())
	return nil
}

func (r *MemRepository) GetPhysioSession(_ context.Context, id int64) (*PhysioSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.physioSessions.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s.clone(), nil
}

func (r *MemRepository) UpdatePhysioSession(_ context.Context, id int64, patch PhysioSessionPatch) (*PhysioSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.physioSessions.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	updated := s.clone()
	patch.apply(updated)
	r.physioSessions.put(id, updated)
	return updated.clone(), nil
}

func (r *MemRepository) ListPhysioSessions(_ context.Context) ([]*PhysioSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.physioSessions.filter(nil), (*PhysioSession).clone), nil
}

func (r *MemRepository) ListPhysioSessionsByVisit(_ context.Context, visitID int64) ([]*PhysioSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.physioSessions.filter(func(s *PhysioSession) bool { return s.VisitID == visitID })
	return cloneAll(rows, (*PhysioSession).clone), nil
}

// -- Payments --

func (r *MemRepository) CreatePayment(_ context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.payments.nextID()
	if p.PaymentStatus == "" {
		p.PaymentStatus = PaymentPending
	}
	p.CreatedAt = r.clock()
	r.payments.put(p.ID, p.clone())
	return nil
}

func (r *MemRepository) GetPayment(_ context.Context, id int64) (*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return p.clone(), nil
}

func (r *MemRepository) UpdatePayment(_ context.Context, id int64, patch PaymentPatch) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	updated := p.clone()
	patch.apply(updated)
	r.payments.put(id, updated)
	return updated.clone(), nil
}

func (r *MemRepository) ListPayments(_ context.Context) ([]*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.payments.filter(nil), (*Payment).clone), nil
}

func (r *MemRepository) ListPaymentsByVisit(_ context.Context, visitID int64) ([]*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.payments.filter(func(p *Payment) bool { return p.VisitID == visitID })
	return cloneAll(rows, (*Payment).clone), nil
}

// -- Statistics --

// TodaysStats is derived from today's visits only: waiting visits count as
// pending and in_consultation visits as in progress.
func (r *MemRepository) TodaysStats(_ context.Context) (*TodayStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	visits := r.todaysVisitsLocked()
	stats := &TodayStats{TotalPatients: len(visits)}
	for _, v := range visits {
		switch v.Status {
		case VisitCompleted:
			stats.Completed++
		case VisitInConsultation:
			stats.InProgress++
		case VisitWaiting:
			stats.Pending++
		}
	}
	return stats, nil
}

// TodaysRevenue totals payments created today. Only completed payments count
// towards the amounts.
func (r *MemRepository) TodaysRevenue(_ context.Context) (*RevenueSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start, end := r.todayBounds()
	sum := &RevenueSummary{
		Date:     start.Format(time.DateOnly),
		Total:    decimal.Zero,
		ByMethod: make(map[string]decimal.Decimal),
	}
	for _, p := range r.payments.filter(func(p *Payment) bool { return inRange(p.CreatedAt, start, end) }) {
		switch p.PaymentStatus {
		case PaymentCompleted:
			sum.CompletedCount++
			sum.Total = sum.Total.Add(p.Amount)
			sum.ByMethod[p.PaymentMethod] = sum.ByMethod[p.PaymentMethod].Add(p.Amount)
		case PaymentPending:
			sum.PendingCount++
		case PaymentFailed:
			sum.FailedCount++
		}
	}
	return sum, nil
}
