package attendance

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-face-attendance/internal/core/geo"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (s *stubClock) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *stubClock) set(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = t
}

type fakeAttendanceRepo struct {
	mu        sync.Mutex
	records   map[string]*Record
	order     []string
	sequence  int
	employees map[string]bool
	readDelay time.Duration
	createErr error
}

func newFakeAttendanceRepo(employeeIDs ...string) *fakeAttendanceRepo {
	r := &fakeAttendanceRepo{records: make(map[string]*Record), employees: make(map[string]bool)}
	for _, id := range employeeIDs {
		r.employees[id] = true
	}
	return r
}

func (r *fakeAttendanceRepo) LockEmployee(_ context.Context, employeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.employees[employeeID] {
		return ErrEmployeeNotFound
	}
	return nil
}

func (r *fakeAttendanceRepo) FindLatestByEmployee(_ context.Context, employeeID string) (*Record, error) {
	if r.readDelay > 0 {
		time.Sleep(r.readDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.order) - 1; i >= 0; i-- {
		rec := r.records[r.order[i]]
		if rec.EmployeeID == employeeID {
			return cloneRecord(rec), nil
		}
	}
	return nil, ErrRecordNotFound
}

func (r *fakeAttendanceRepo) Create(_ context.Context, rec *Record) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.records {
		if existing.EmployeeID == rec.EmployeeID && existing.ClockOutTime == nil {
			return nil, ErrOpenRecordExists
		}
	}
	r.sequence++
	clone := cloneRecord(rec)
	clone.ID = "att-" + strconv.Itoa(r.sequence)
	r.records[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return cloneRecord(clone), nil
}

func (r *fakeAttendanceRepo) Close(_ context.Context, rec *Record) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.records[rec.ID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	if existing.ClockOutTime != nil {
		return nil, ErrRecordAlreadyClosed
	}
	r.records[rec.ID] = cloneRecord(rec)
	return cloneRecord(rec), nil
}

func (r *fakeAttendanceRepo) DeleteByEmployee(_ context.Context, employeeID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	kept := r.order[:0]
	for _, id := range r.order {
		if r.records[id].EmployeeID == employeeID {
			delete(r.records, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return deleted, nil
}

func (r *fakeAttendanceRepo) filtered(employeeID string, status *Status, from, to *time.Time) []*Record {
	var out []*Record
	for _, id := range r.order {
		rec := r.records[id]
		if employeeID != "" && rec.EmployeeID != employeeID {
			continue
		}
		if status != nil && rec.Status != *status {
			continue
		}
		if from != nil && rec.ClockInTime.Before(*from) {
			continue
		}
		if to != nil && rec.ClockInTime.After(*to) {
			continue
		}
		out = append(out, cloneRecord(rec))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ClockInTime.After(out[j].ClockInTime) })
	return out
}

func (r *fakeAttendanceRepo) List(_ context.Context, filter ListFilter) ([]*Record, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filtered(filter.EmployeeID, filter.Status, filter.From, filter.To)
	if filter.Offset > len(all) {
		return []*Record{}, "", nil
	}
	end := min(filter.Offset+filter.Limit, len(all))
	next := ""
	if end < len(all) {
		next = strconv.Itoa(end)
	}
	return all[filter.Offset:end], next, nil
}

func (r *fakeAttendanceRepo) Summarize(_ context.Context, filter SummaryFilter) (*Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s Summary
	for _, rec := range r.filtered(filter.EmployeeID, filter.Status, filter.From, filter.To) {
		s.Total++
		switch rec.Status {
		case StatusLate:
			s.Late++
		case StatusOnTime:
			s.OnTime++
		}
		if !rec.ClockInTime.Before(filter.TodayStart) {
			s.Today++
		}
	}
	return &s, nil
}

func (r *fakeAttendanceRepo) openCount(employeeID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.ClockOutTime == nil {
			n++
		}
	}
	return n
}

func cloneRecord(rec *Record) *Record {
	if rec == nil {
		return nil
	}
	copy := *rec
	if rec.ClockOutTime != nil {
		out := *rec.ClockOutTime
		copy.ClockOutTime = &out
	}
	if rec.Location != nil {
		loc := *rec.Location
		copy.Location = &loc
	}
	return &copy
}

func TestService_Submit_ClockInThenClockOut(t *testing.T) {
	t.Parallel()

	empID := uuid.NewString()
	repo := newFakeAttendanceRepo(empID)
	clockIn := time.Date(2025, 3, 3, 8, 45, 0, 0, time.UTC)
	clk := &stubClock{now: clockIn}
	svc := NewService(repo, clk, nil, DefaultLatenessPolicy(time.UTC))

	outletID := "outlet-hq"
	first, err := svc.Submit(context.Background(), SubmitInput{
		EmployeeID: empID,
		Location:   &geo.Coordinate{Latitude: -6.2, Longitude: 106.8},
		OutletID:   &outletID,
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if first.Action != ActionClockIn {
		t.Fatalf("expected CLOCK_IN, got %s", first.Action)
	}
	if !first.Record.IsOpen() || !first.Record.ClockInTime.Equal(clockIn) {
		t.Fatalf("expected open record at %v, got %+v", clockIn, first.Record)
	}
	if first.Record.Status != StatusOnTime || first.Record.LateMinutes != 0 {
		t.Fatalf("expected on-time clock-in, got %s/%d", first.Record.Status, first.Record.LateMinutes)
	}
	if first.Record.OutletID == nil || *first.Record.OutletID != outletID {
		t.Fatalf("expected outlet id stored, got %+v", first.Record.OutletID)
	}
	if first.Record.Location == nil || first.Record.Location.Latitude != -6.2 {
		t.Fatalf("expected coordinate stored, got %+v", first.Record.Location)
	}

	clockOut := clockIn.Add(8*time.Hour + 29*time.Minute + 59*time.Second)
	clk.set(clockOut)

	second, err := svc.Submit(context.Background(), SubmitInput{EmployeeID: empID})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if second.Action != ActionClockOut {
		t.Fatalf("expected CLOCK_OUT, got %s", second.Action)
	}
	if second.Record.ID != first.Record.ID {
		t.Fatalf("expected the open record to be closed, got %s vs %s", second.Record.ID, first.Record.ID)
	}
	if second.Record.ClockOutTime == nil || !second.Record.ClockOutTime.Equal(clockOut) {
		t.Fatalf("expected clock out time %v, got %+v", clockOut, second.Record.ClockOutTime)
	}
	if second.Record.WorkMinutes != 8*60+29 {
		t.Fatalf("expected 509 work minutes, got %d", second.Record.WorkMinutes)
	}

	third, err := svc.Submit(context.Background(), SubmitInput{EmployeeID: empID})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if third.Action != ActionClockIn || third.Record.ID == first.Record.ID {
		t.Fatalf("expected a fresh clock-in after clock-out, got %+v", third)
	}
}

func TestService_Submit_MultiDaySessionIsNotCapped(t *testing.T) {
	t.Parallel()

	empID := uuid.NewString()
	repo := newFakeAttendanceRepo(empID)
	start := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	clk := &stubClock{now: start}
	svc := NewService(repo, clk, nil, DefaultLatenessPolicy(time.UTC))

	if _, err := svc.Submit(context.Background(), SubmitInput{EmployeeID: empID}); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	clk.set(start.Add(72 * time.Hour))
	res, err := svc.Submit(context.Background(), SubmitInput{EmployeeID: empID})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if res.Record.WorkMinutes != 72*60 {
		t.Fatalf("expected 4320 minutes, got %d", res.Record.WorkMinutes)
	}
}

func TestService_Submit_Lateness(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		hour   int
		minute int
		status Status
		late   int
	}{
		{name: "exactly nine", hour: 9, minute: 0, status: StatusOnTime, late: 0},
		{name: "within grace", hour: 9, minute: 15, status: StatusOnTime, late: 0},
		{name: "one minute past grace", hour: 9, minute: 16, status: StatusLate, late: 16},
		{name: "afternoon", hour: 13, minute: 30, status: StatusLate, late: 270},
		{name: "early", hour: 7, minute: 59, status: StatusOnTime, late: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			empID := uuid.NewString()
			at := time.Date(2025, 3, 3, tc.hour, tc.minute, 0, 0, time.UTC)
			svc := NewService(newFakeAttendanceRepo(empID), &stubClock{now: at}, nil, DefaultLatenessPolicy(time.UTC))

			res, err := svc.Submit(context.Background(), SubmitInput{EmployeeID: empID})
			if err != nil {
				t.Fatalf("Submit returned error: %v", err)
			}
			if res.Record.Status != tc.status || res.Record.LateMinutes != tc.late {
				t.Fatalf("expected %s/%d, got %s/%d", tc.status, tc.late, res.Record.Status, res.Record.LateMinutes)
			}
		})
	}
}

func TestService_Submit_BackdatedClockInIsNeverLate(t *testing.T) {
	t.Parallel()

	empID := uuid.NewString()
	today := time.Date(2025, 3, 4, 0, 30, 0, 0, time.UTC)
	svc := NewService(newFakeAttendanceRepo(empID), &stubClock{now: today}, nil, DefaultLatenessPolicy(time.UTC))

	queued := time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC)
	res, err := svc.Submit(context.Background(), SubmitInput{EmployeeID: empID, At: queued})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if res.Record.Status != StatusOnTime || res.Record.LateMinutes != 0 {
		t.Fatalf("expected ON_TIME for a clock-in on a different day, got %s/%d", res.Record.Status, res.Record.LateMinutes)
	}
	if !res.Record.ClockInTime.Equal(queued) {
		t.Fatalf("expected clock in time %v, got %v", queued, res.Record.ClockInTime)
	}
}

func TestService_Submit_ConcurrentSameEmployee(t *testing.T) {
	t.Parallel()

	empID := uuid.NewString()
	repo := newFakeAttendanceRepo(empID)
	repo.readDelay = 20 * time.Millisecond
	svc := NewService(repo, &stubClock{now: time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)}, nil, DefaultLatenessPolicy(time.UTC))

	start := make(chan struct{})
	results := make([]*SubmitResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = svc.Submit(context.Background(), SubmitInput{EmployeeID: empID})
		}(i)
	}
	close(start)
	wg.Wait()

	clockIns := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("Submit %d returned error: %v", i, errs[i])
		}
		if results[i].Action == ActionClockIn {
			clockIns++
		}
	}
	if clockIns != 1 {
		t.Fatalf("expected exactly one CLOCK_IN, got %d", clockIns)
	}

	repo.mu.Lock()
	created := len(repo.records)
	repo.mu.Unlock()
	if created != 1 {
		t.Fatalf("expected exactly one attendance record, got %d", created)
	}
	if repo.openCount(empID) != 0 {
		t.Fatalf("expected the single record to be closed by the second submit")
	}
}

func TestService_Submit_ConcurrentDifferentEmployees(t *testing.T) {
	t.Parallel()

	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString(), uuid.NewString()}
	repo := newFakeAttendanceRepo(ids...)
	svc := NewService(repo, &stubClock{now: time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)}, nil, DefaultLatenessPolicy(time.UTC))

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := svc.Submit(context.Background(), SubmitInput{EmployeeID: id}); err != nil {
				t.Errorf("Submit returned error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		if repo.openCount(id) != 1 {
			t.Fatalf("expected one open record for %s", id)
		}
	}
}

func TestService_Submit_OpenRecordViolationSurfaces(t *testing.T) {
	t.Parallel()

	empID := uuid.NewString()
	repo := newFakeAttendanceRepo(empID)
	repo.createErr = ErrOpenRecordExists
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil, DefaultLatenessPolicy(time.UTC))

	_, err := svc.Submit(context.Background(), SubmitInput{EmployeeID: empID})
	if !errors.Is(err, ErrOpenRecordExists) {
		t.Fatalf("expected ErrOpenRecordExists, got %v", err)
	}
}

func TestService_Submit_InvalidEmployee(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeAttendanceRepo(), &stubClock{now: time.Now().UTC()}, nil, DefaultLatenessPolicy(time.UTC))

	if _, err := svc.Submit(context.Background(), SubmitInput{EmployeeID: " "}); !errors.Is(err, ErrInvalidEmployeeID) {
		t.Fatalf("expected ErrInvalidEmployeeID, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), SubmitInput{EmployeeID: "not-a-uuid"}); !errors.Is(err, ErrInvalidEmployeeID) {
		t.Fatalf("expected ErrInvalidEmployeeID for malformed id, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), SubmitInput{EmployeeID: uuid.NewString()}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestService_ListAndSummarize(t *testing.T) {
	t.Parallel()

	empA := uuid.NewString()
	empB := uuid.NewString()
	repo := newFakeAttendanceRepo(empA, empB)
	clk := &stubClock{}
	svc := NewService(repo, clk, nil, DefaultLatenessPolicy(time.UTC))

	submitAt := func(id string, at time.Time) {
		t.Helper()
		clk.set(at)
		if _, err := svc.Submit(context.Background(), SubmitInput{EmployeeID: id}); err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
	}

	// 3/3: A 遅刻, B 定刻。3/4: A 定刻 (退勤なし)
	submitAt(empA, time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC))
	submitAt(empB, time.Date(2025, 3, 3, 8, 50, 0, 0, time.UTC))
	submitAt(empA, time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC))
	submitAt(empB, time.Date(2025, 3, 3, 17, 0, 0, 0, time.UTC))
	submitAt(empA, time.Date(2025, 3, 4, 8, 55, 0, 0, time.UTC))

	list, err := svc.ListAttendances(context.Background(), ListAttendancesInput{PageSize: 2})
	if err != nil {
		t.Fatalf("ListAttendances returned error: %v", err)
	}
	if len(list.Records) != 2 || list.NextPageToken != "2" {
		t.Fatalf("expected first page of 2 with token, got %d/%q", len(list.Records), list.NextPageToken)
	}
	if list.Records[0].EmployeeID != empA || list.Records[0].ClockInTime.Day() != 4 {
		t.Fatalf("expected newest record first, got %+v", list.Records[0])
	}

	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	late := StatusLate
	filtered, err := svc.ListAttendances(context.Background(), ListAttendancesInput{Status: &late, From: &day, To: &day})
	if err != nil {
		t.Fatalf("ListAttendances returned error: %v", err)
	}
	if len(filtered.Records) != 1 || filtered.Records[0].EmployeeID != empA {
		t.Fatalf("expected single late record for A, got %+v", filtered.Records)
	}

	summary, err := svc.Summarize(context.Background(), SummaryInput{})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if summary.Total != 3 || summary.Late != 1 || summary.OnTime != 2 || summary.Today != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.LatePercentage != 33.3 {
		t.Fatalf("expected 33.3%% late, got %v", summary.LatePercentage)
	}
}

func TestService_ListAttendances_InvalidInput(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeAttendanceRepo(), &stubClock{now: time.Now().UTC()}, nil, DefaultLatenessPolicy(time.UTC))

	bogus := Status("ABSENT")
	if _, err := svc.ListAttendances(context.Background(), ListAttendancesInput{Status: &bogus}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.ListAttendances(context.Background(), ListAttendancesInput{PageSize: 500}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, err := svc.ListAttendances(context.Background(), ListAttendancesInput{PageToken: "-1"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
	from := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	if _, err := svc.ListAttendances(context.Background(), ListAttendancesInput{From: &from, To: &to}); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}
