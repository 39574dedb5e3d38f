package clinic

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testZone = time.FixedZone("IST", 5*3600+1800)

// fakeClock is a settable clock for MemRepository.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Set(t time.Time) {
	f.mu.Lock()
	f.t = t
	f.mu.Unlock()
}

func newTestRepo() (*MemRepository, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 3, 15, 10, 30, 0, 0, testZone)}
	return NewMemRepository(WithClock(clk.Now), WithLocation(testZone)), clk
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

func mustPatient(t *testing.T, r *MemRepository, first, last, phone string) *Patient {
	t.Helper()
	p := &Patient{FirstName: first, LastName: last, Age: 40, Gender: "female", Phone: phone}
	require.NoError(t, r.CreatePatient(context.Background(), p))
	return p
}

func mustVisit(t *testing.T, r *MemRepository, patientID int64, status string) *Visit {
	t.Helper()
	v := &Visit{PatientID: patientID, Status: status}
	require.NoError(t, r.CreateVisit(context.Background(), v))
	return v
}

func TestMemRepository_CreateAndGetPatient(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()

	p := &Patient{
		FirstName:  "Priya",
		LastName:   "Sharma",
		Age:        34,
		Gender:     "female",
		Phone:      "9876543210",
		BloodGroup: strPtr("B+"),
		Address:    strPtr(""),
	}
	require.NoError(t, r.CreatePatient(ctx, p))
	assert.Equal(t, int64(1), p.ID)

	got, err := r.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Priya", got.FirstName)
	assert.Equal(t, "Sharma", got.LastName)
	assert.Equal(t, 34, got.Age)
	assert.Equal(t, "B+", *got.BloodGroup)
	assert.Nil(t, got.Address, "empty optional text is stored as null")
	assert.Nil(t, got.EmergencyContact)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, p, got)
}

func TestMemRepository_GetPatient_NotFound(t *testing.T) {
	r, _ := newTestRepo()
	_, err := r.GetPatient(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemRepository_ReturnsCopies(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	p := mustPatient(t, r, "Asha", "Rao", "111")

	p.FirstName = "changed"
	got, err := r.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.FirstName)

	got.LastName = "mutated"
	again, err := r.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rao", again.LastName)
}

func TestMemRepository_IDsAreNotReused(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	a := mustPatient(t, r, "A", "One", "1")
	ok, err := r.DeletePatient(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)

	b := mustPatient(t, r, "B", "Two", "2")
	assert.Equal(t, int64(2), b.ID)
}

func TestMemRepository_UpdatePatient(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	p := mustPatient(t, r, "Ravi", "Kumar", "555")

	updated, err := r.UpdatePatient(ctx, p.ID, PatientPatch{Age: intPtr(41), Address: strPtr("Pune")})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, 41, updated.Age)
	assert.Equal(t, "Pune", *updated.Address)
	assert.Equal(t, "Ravi", updated.FirstName)

	_, err = r.UpdatePatient(ctx, 99, PatientPatch{Age: intPtr(1)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemRepository_DeletePatient_KeepsVisits(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	p := mustPatient(t, r, "Neha", "Singh", "777")
	v := mustVisit(t, r, p.ID, "")

	ok, err := r.DeletePatient(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.DeletePatient(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	visits, err := r.ListVisits(ctx)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, v.ID, visits[0].ID)

	_, err = r.GetVisitWithDetails(ctx, v.ID)
	assert.ErrorIs(t, err, ErrNotFound, "details need the patient")
}

func TestMemRepository_SearchPatients(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	mustPatient(t, r, "Priya", "Sharma", "9876500001")
	mustPatient(t, r, "John", "Doe", "9123400002")
	mustPatient(t, r, "Sharmila", "Iyer", "9000000003")

	got, err := r.SearchPatients(ctx, "sharma")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Priya", got[0].FirstName)
	assert.Equal(t, "Sharmila", got[1].FirstName)

	got, err = r.SearchPatients(ctx, "91234")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "John", got[0].FirstName)

	got, err = r.SearchPatients(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemRepository_CreateVisit_Defaults(t *testing.T) {
	r, clk := newTestRepo()
	p := mustPatient(t, r, "A", "B", "1")

	v := &Visit{PatientID: p.ID, ChiefComplaint: strPtr("knee pain"), Notes: strPtr("")}
	require.NoError(t, r.CreateVisit(context.Background(), v))

	assert.Equal(t, int64(1), v.ID)
	assert.Equal(t, VisitWaiting, v.Status)
	assert.Equal(t, "V240315001", v.VisitCode)
	assert.Equal(t, "T-001", v.TokenNumber)
	assert.True(t, v.VisitDate.Equal(clk.Now()))
	assert.Equal(t, "knee pain", *v.ChiefComplaint)
	assert.Nil(t, v.Notes)
}

func TestMemRepository_VisitCodesDistinct(t *testing.T) {
	r, _ := newTestRepo()
	p := mustPatient(t, r, "A", "B", "1")

	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		v := mustVisit(t, r, p.ID, "")
		assert.False(t, seen[v.VisitCode], "duplicate code %s", v.VisitCode)
		seen[v.VisitCode] = true
	}
	assert.Len(t, seen, 25)
}

func TestMemRepository_VisitCodesDistinct_Concurrent(t *testing.T) {
	r, _ := newTestRepo()
	p := mustPatient(t, r, "A", "B", "1")

	const n = 50
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := &Visit{PatientID: p.ID}
			if err := r.CreateVisit(context.Background(), v); err == nil {
				codes <- v.VisitCode + "/" + v.TokenNumber
			}
		}()
	}
	wg.Wait()
	close(codes)

	seen := map[string]bool{}
	for c := range codes {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, n)
}

func TestMemRepository_GenerateVisitCode_PredictsNextVisit(t *testing.T) {
	r, _ := newTestRepo()
	p := mustPatient(t, r, "A", "B", "1")
	mustVisit(t, r, p.ID, "")

	predicted := r.GenerateVisitCode()
	assert.Equal(t, "V240315002", predicted)
	assert.Equal(t, predicted, r.GenerateVisitCode(), "generating a code does not consume it")

	v := mustVisit(t, r, p.ID, "")
	assert.Equal(t, predicted, v.VisitCode)
}

func TestMemRepository_GenerateTokenNumber(t *testing.T) {
	r, _ := newTestRepo()
	assert.Equal(t, "T-001", r.GenerateTokenNumber())
	assert.Equal(t, "T-002", r.GenerateTokenNumber())

	p := mustPatient(t, r, "A", "B", "1")
	v := mustVisit(t, r, p.ID, "")
	assert.Equal(t, "T-003", v.TokenNumber)
}

func TestMemRepository_GetVisitByCode(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	p := mustPatient(t, r, "A", "B", "1")
	v := mustVisit(t, r, p.ID, "")

	got, err := r.GetVisitByCode(ctx, v.VisitCode)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)

	_, err = r.GetVisitByCode(ctx, "V000000999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemRepository_CurrentVisitIsFirstOpen(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	p := mustPatient(t, r, "A", "B", "1")

	mustVisit(t, r, p.ID, VisitCompleted)
	first := mustVisit(t, r, p.ID, VisitWaiting)
	mustVisit(t, r, p.ID, VisitInConsultation)

	pv, err := r.GetPatientWithVisits(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, pv.Visits, 3)
	require.NotNil(t, pv.CurrentVisit)
	assert.Equal(t, first.ID, pv.CurrentVisit.ID)
}

func TestMemRepository_CurrentVisitIgnoresStatusOrder(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	p := mustPatient(t, r, "A", "B", "1")

	inRoom := mustVisit(t, r, p.ID, VisitInConsultation)
	mustVisit(t, r, p.ID, VisitWaiting)

	pv, err := r.GetPatientWithVisits(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, pv.CurrentVisit)
	assert.Equal(t, inRoom.ID, pv.CurrentVisit.ID)
	assert.Equal(t, VisitInConsultation, pv.CurrentVisit.Status)
}

func TestMemRepository_CurrentVisit_NoneOpen(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	p := mustPatient(t, r, "A", "B", "1")
	mustVisit(t, r, p.ID, VisitCancelled)

	pv, err := r.GetPatientWithVisits(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, pv.CurrentVisit)

	other := mustPatient(t, r, "C", "D", "2")
	pv, err = r.GetPatientWithVisits(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, pv.Visits)
	assert.Empty(t, pv.Visits)
}

func TestMemRepository_VisitWithDetails(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	p := mustPatient(t, r, "A", "B", "1")
	v := mustVisit(t, r, p.ID, "")
	other := mustVisit(t, r, p.ID, "")

	require.NoError(t, r.CreatePrescription(ctx, &Prescription{VisitID: v.ID, Medicines: []string{"Paracetamol"}, Dosage: []string{"1-0-1"}}))
	require.NoError(t, r.CreatePrescription(ctx, &Prescription{VisitID: other.ID}))
	first := &Consultation{VisitID: v.ID, DoctorName: strPtr("Dr. Mehta")}
	require.NoError(t, r.CreateConsultation(ctx, first))
	require.NoError(t, r.CreateConsultation(ctx, &Consultation{VisitID: v.ID}))

	d, err := r.GetVisitWithDetails(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, d.ID)
	require.NotNil(t, d.Patient)
	assert.Equal(t, p.ID, d.Patient.ID)
	assert.Len(t, d.Prescriptions, 1)
	assert.Len(t, d.LabTests, 0)
	assert.NotNil(t, d.LabTests)
	assert.NotNil(t, d.Payments)
	assert.Len(t, d.Consultations, 2)
	require.NotNil(t, d.Consultation)
	assert.Equal(t, first.ID, d.Consultation.ID)

	_, err = r.GetVisitWithDetails(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemRepository_TodaysVisits(t *testing.T) {
	r, clk := newTestRepo()
	ctx := context.Background()
	p := mustPatient(t, r, "A", "B", "1")

	clk.Set(time.Date(2024, 3, 14, 23, 59, 0, 0, testZone))
	mustVisit(t, r, p.ID, "")
	clk.Set(time.Date(2024, 3, 15, 0, 0, 0, 0, testZone))
	midnight := mustVisit(t, r, p.ID, "")
	clk.Set(time.Date(2024, 3, 15, 18, 0, 0, 0, testZone))
	evening := mustVisit(t, r, p.ID, "")

	got, err := r.TodaysVisits(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, midnight.ID, got[0].ID)
	assert.Equal(t, evening.ID, got[1].ID)

	clk.Set(time.Date(2024, 3, 16, 0, 0, 0, 0, testZone))
	got, err = r.TodaysVisits(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemRepository_TodaysStats(t *testing.T) {
	r, clk := newTestRepo()
	ctx := context.Background()
	p := mustPatient(t, r, "A", "B", "1")

	clk.Set(time.Date(2024, 3, 14, 12, 0, 0, 0, testZone))
	mustVisit(t, r, p.ID, VisitCompleted)
	clk.Set(time.Date(2024, 3, 15, 9, 0, 0, 0, testZone))
	v1 := mustVisit(t, r, p.ID, "")
	mustVisit(t, r, p.ID, VisitInConsultation)
	mustVisit(t, r, p.ID, VisitCancelled)

	stats, err := r.TodaysStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, TodayStats{TotalPatients: 3, Completed: 0, InProgress: 1, Pending: 1}, *stats)

	_, err = r.UpdateVisit(ctx, v1.ID, VisitPatch{Status: strPtr(VisitCompleted)})
	require.NoError(t, err)

	stats, err = r.TodaysStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPatients)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 0, stats.Pending)
}

func TestMemRepository_ChildDefaults(t *testing.T) {
	r, clk := newTestRepo()
	ctx := context.Background()

	d := &Diagnostic{VisitID: 1, TestType: "xray", TestName: "Knee AP", ReportURL: strPtr("")}
	require.NoError(t, r.CreateDiagnostic(ctx, d))
	assert.Equal(t, OrderPending, d.Status)
	assert.Nil(t, d.ReportURL)

	l := &LabTest{VisitID: 1, TestName: "CBC", Status: OrderCompleted}
	require.NoError(t, r.CreateLabTest(ctx, l))
	assert.Equal(t, OrderCompleted, l.Status)

	s := &PhysioSession{VisitID: 1, SessionType: "ultrasound", Duration: intPtr(20)}
	require.NoError(t, r.CreatePhysioSession(ctx, s))
	assert.Equal(t, SessionScheduled, s.Status)

	pay := &Payment{VisitID: 1, Amount: decimal.RequireFromString("500"), PaymentMethod: MethodCash}
	require.NoError(t, r.CreatePayment(ctx, pay))
	assert.Equal(t, PaymentPending, pay.PaymentStatus)

	c := &Consultation{VisitID: 1, Allergies: strPtr("")}
	require.NoError(t, r.CreateConsultation(ctx, c))
	assert.Nil(t, c.Allergies)
	assert.True(t, c.ConsultationDate.Equal(clk.Now()))
	assert.True(t, c.CreatedAt.Equal(clk.Now()))
}

func TestMemRepository_PhysioZeroDurationStoredAsNull(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()

	s := &PhysioSession{VisitID: 1, SessionType: "ultrasound", Duration: intPtr(0)}
	require.NoError(t, r.CreatePhysioSession(ctx, s))
	assert.Nil(t, s.Duration)

	got, err := r.GetPhysioSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Duration)
}

func TestMemRepository_ChildUpdates(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()

	c := &Consultation{VisitID: 1, CurrentMedications: []string{"aspirin"}}
	require.NoError(t, r.CreateConsultation(ctx, c))
	got, err := r.UpdateConsultation(ctx, c.ID, ConsultationPatch{ProvisionalDiagnosis: strPtr("OA knee")})
	require.NoError(t, err)
	assert.Equal(t, "OA knee", *got.ProvisionalDiagnosis)
	assert.Equal(t, []string{"aspirin"}, got.CurrentMedications)

	got, err = r.UpdateConsultation(ctx, c.ID, ConsultationPatch{CurrentMedications: []string{}})
	require.NoError(t, err)
	assert.Empty(t, got.CurrentMedications)

	_, err = r.UpdateLabTest(ctx, 9, LabTestPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.UpdatePhysioSession(ctx, 9, PhysioSessionPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.UpdateDiagnostic(ctx, 9, DiagnosticPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.UpdatePrescription(ctx, 9, PrescriptionPatch{})
	assert.ErrorIs(t, err, ErrNotFound)

	pay := &Payment{VisitID: 1, Amount: decimal.NewFromInt(300), PaymentMethod: MethodUPI}
	require.NoError(t, r.CreatePayment(ctx, pay))
	status := PaymentCompleted
	updated, err := r.UpdatePayment(ctx, pay.ID, PaymentPatch{PaymentStatus: &status})
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, updated.PaymentStatus)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(300)))
}

func TestMemRepository_ListByVisit(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, r.CreateLabTest(ctx, &LabTest{VisitID: int64(1 + i%2), TestName: fmt.Sprintf("test-%d", i)}))
	}
	got, err := r.ListLabTestsByVisit(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "test-0", got[0].TestName)
	assert.Equal(t, "test-2", got[1].TestName)

	none, err := r.ListPaymentsByVisit(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemRepository_TodaysRevenue(t *testing.T) {
	r, clk := newTestRepo()
	ctx := context.Background()

	clk.Set(time.Date(2024, 3, 14, 20, 0, 0, 0, testZone))
	require.NoError(t, r.CreatePayment(ctx, &Payment{VisitID: 1, Amount: decimal.NewFromInt(999), PaymentMethod: MethodCash, PaymentStatus: PaymentCompleted}))

	clk.Set(time.Date(2024, 3, 15, 9, 0, 0, 0, testZone))
	require.NoError(t, r.CreatePayment(ctx, &Payment{VisitID: 2, Amount: decimal.RequireFromString("500.50"), PaymentMethod: MethodCash, PaymentStatus: PaymentCompleted}))
	require.NoError(t, r.CreatePayment(ctx, &Payment{VisitID: 3, Amount: decimal.NewFromInt(1200), PaymentMethod: MethodCard, PaymentStatus: PaymentCompleted}))
	require.NoError(t, r.CreatePayment(ctx, &Payment{VisitID: 4, Amount: decimal.NewFromInt(50), PaymentMethod: MethodUPI}))
	require.NoError(t, r.CreatePayment(ctx, &Payment{VisitID: 5, Amount: decimal.NewFromInt(70), PaymentMethod: MethodUPI, PaymentStatus: PaymentFailed}))

	sum, err := r.TodaysRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", sum.Date)
	assert.Equal(t, "1700.5", sum.Total.String())
	assert.Equal(t, "500.5", sum.ByMethod[MethodCash].String())
	assert.Equal(t, "1200", sum.ByMethod[MethodCard].String())
	_, hasUPI := sum.ByMethod[MethodUPI]
	assert.False(t, hasUPI)
	assert.Equal(t, 2, sum.CompletedCount)
	assert.Equal(t, 1, sum.PendingCount)
	assert.Equal(t, 1, sum.FailedCount)
}
