package scan

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-face-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
	"github.com/ogurasousui/codex-face-attendance/internal/core/geo"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type stubZones struct {
	zones []geo.Zone
	err   error
	calls int
}

func (s *stubZones) ActiveZones(context.Context) ([]geo.Zone, error) {
	s.calls++
	return s.zones, s.err
}

type stubExtractor struct {
	descriptor face.Descriptor
	err        error
	block      bool
	calls      int
}

func (s *stubExtractor) Extract(ctx context.Context, _ []byte) (face.Descriptor, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.descriptor.Clone(), s.err
}

type stubCandidates struct {
	candidates []face.Candidate
	err        error
}

func (s *stubCandidates) Candidates(context.Context) ([]face.Candidate, error) {
	return s.candidates, s.err
}

type stubSubmitter struct {
	err   error
	calls []attendance.SubmitInput
}

func (s *stubSubmitter) Submit(_ context.Context, in attendance.SubmitInput) (*attendance.SubmitResult, error) {
	s.calls = append(s.calls, in)
	if s.err != nil {
		return nil, s.err
	}
	return &attendance.SubmitResult{
		Action: attendance.ActionClockIn,
		Record: &attendance.Record{ID: "rec-1", EmployeeID: in.EmployeeID, ClockInTime: in.At, Status: attendance.StatusOnTime},
	}, nil
}

// memoryAttendanceRepo は attendance.Service を実際に動かすためのインメモリ実装です。
type memoryAttendanceRepo struct {
	mu      sync.Mutex
	records []*attendance.Record
}

func (r *memoryAttendanceRepo) LockEmployee(context.Context, string) error { return nil }

func (r *memoryAttendanceRepo) FindLatestByEmployee(_ context.Context, employeeID string) (*attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].EmployeeID == employeeID {
			clone := *r.records[i]
			return &clone, nil
		}
	}
	return nil, attendance.ErrRecordNotFound
}

func (r *memoryAttendanceRepo) Create(_ context.Context, rec *attendance.Record) (*attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *rec
	clone.ID = uuid.NewString()
	r.records = append(r.records, &clone)
	out := clone
	return &out, nil
}

func (r *memoryAttendanceRepo) Close(_ context.Context, rec *attendance.Record) (*attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.records {
		if existing.ID == rec.ID {
			clone := *rec
			r.records[i] = &clone
			out := clone
			return &out, nil
		}
	}
	return nil, attendance.ErrRecordNotFound
}

func (r *memoryAttendanceRepo) DeleteByEmployee(context.Context, string) (int64, error) {
	return 0, nil
}

func (r *memoryAttendanceRepo) List(context.Context, attendance.ListFilter) ([]*attendance.Record, string, error) {
	return nil, "", nil
}

func (r *memoryAttendanceRepo) Summarize(context.Context, attendance.SummaryFilter) (*attendance.Summary, error) {
	return &attendance.Summary{}, nil
}

func descriptorOf(seed float32) face.Descriptor {
	d := make(face.Descriptor, face.DefaultDimensions)
	for i := range d {
		d[i] = seed + float32(i)/1000
	}
	return d
}

func shifted(d face.Descriptor, delta float32) face.Descriptor {
	out := d.Clone()
	out[0] += delta
	return out
}

func newMatcher(t *testing.T) *face.Matcher {
	t.Helper()
	m, err := face.NewMatcher(face.DefaultThreshold)
	if err != nil {
		t.Fatalf("NewMatcher returned error: %v", err)
	}
	return m
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

var hq = geo.Zone{
	ID:           "outlet-hq",
	Name:         "HQ",
	Center:       geo.Coordinate{Latitude: -6.2, Longitude: 106.8},
	RadiusMeters: 100,
}

// metersNorthOf は center から真北に meters 進んだ地点を返します。
func metersNorthOf(center geo.Coordinate, meters float64) geo.Coordinate {
	deltaDeg := meters / geo.EarthRadiusMeters * 180 / math.Pi
	return geo.Coordinate{Latitude: center.Latitude + deltaDeg, Longitude: center.Longitude}
}

func TestProcessScan_EndToEndClockIn(t *testing.T) {
	t.Parallel()

	employeeID := uuid.NewString()
	enrolled := descriptorOf(0.1)
	clk := &stubClock{now: time.Date(2025, 6, 2, 8, 45, 0, 0, time.UTC)}

	attendanceSvc := attendance.NewService(&memoryAttendanceRepo{}, clk, nil, attendance.DefaultLatenessPolicy(time.UTC))
	orch, err := NewOrchestrator(Dependencies{
		Zones:      &stubZones{zones: []geo.Zone{hq}},
		Extractor:  &stubExtractor{descriptor: shifted(enrolled, 0.25)},
		Candidates: &stubCandidates{candidates: []face.Candidate{{EmployeeID: employeeID, Name: "Alice", Descriptor: enrolled}}},
		Matcher:    newMatcher(t),
		Attendance: attendanceSvc,
	}, WithClock(clk), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}

	point := metersNorthOf(hq.Center, 42)
	if d := geo.DistanceMeters(point, hq.Center); math.Abs(d-42) > 0.01 {
		t.Fatalf("expected fixture 42m away, got %v", d)
	}

	out, err := orch.ProcessScan(context.Background(), Request{Image: []byte("jpeg"), Coordinate: &point})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}

	if out.Kind != KindSuccess {
		t.Fatalf("expected SUCCESS, got %s (%s)", out.Kind, out.Message)
	}
	if out.Action != attendance.ActionClockIn {
		t.Fatalf("expected CLOCK_IN, got %s", out.Action)
	}
	if out.EmployeeName != "Alice" || out.EmployeeID != employeeID {
		t.Fatalf("unexpected employee: %s %s", out.EmployeeID, out.EmployeeName)
	}
	if out.Confidence < 0.7 {
		t.Fatalf("expected confidence >= 0.7, got %v", out.Confidence)
	}
	if !out.Timestamp.Equal(clk.now) {
		t.Fatalf("expected timestamp %v, got %v", clk.now, out.Timestamp)
	}
	if out.Record == nil || out.Record.OutletID == nil || *out.Record.OutletID != hq.ID {
		t.Fatalf("expected record tagged with outlet, got %+v", out.Record)
	}
	if out.Record.LocationName == nil || *out.Record.LocationName != "HQ" {
		t.Fatalf("expected outlet name as location name, got %+v", out.Record.LocationName)
	}
	if out.Record.Location == nil || out.Record.Location.Latitude != point.Latitude {
		t.Fatalf("expected coordinate stored, got %+v", out.Record.Location)
	}
	if out.ScanID == "" {
		t.Fatalf("expected scan id")
	}

	clk.now = clk.now.Add(8 * time.Hour)
	second, err := orch.ProcessScan(context.Background(), Request{Image: []byte("jpeg"), Coordinate: &point})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}
	if second.Action != attendance.ActionClockOut {
		t.Fatalf("expected CLOCK_OUT on second scan, got %s", second.Action)
	}
	if second.Record.WorkMinutes != 480 {
		t.Fatalf("expected 480 work minutes, got %d", second.Record.WorkMinutes)
	}
}

func TestProcessScan_EnrollThenRescanSamePhoto(t *testing.T) {
	t.Parallel()

	employeeID := uuid.NewString()
	photo := descriptorOf(0.3)
	sub := &stubSubmitter{}

	orch, err := NewOrchestrator(Dependencies{
		Zones:      &stubZones{},
		Extractor:  &stubExtractor{descriptor: photo},
		Candidates: &stubCandidates{candidates: []face.Candidate{{EmployeeID: uuid.NewString(), Name: "Other", Descriptor: descriptorOf(0.9)}, {EmployeeID: employeeID, Name: "Bob", Descriptor: photo.Clone()}}},
		Matcher:    newMatcher(t),
		Attendance: sub,
	}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}

	out, err := orch.ProcessScan(context.Background(), Request{Image: []byte("same-photo")})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}

	if out.Kind != KindSuccess || out.EmployeeID != employeeID {
		t.Fatalf("expected success for %s, got %s %s", employeeID, out.Kind, out.EmployeeID)
	}
	if math.Abs(out.Confidence-1) > 1e-9 {
		t.Fatalf("expected distance ~0, got confidence %v", out.Confidence)
	}
}

func TestProcessScan_OutsideGeofenceStopsPipeline(t *testing.T) {
	t.Parallel()

	extractor := &stubExtractor{descriptor: descriptorOf(0)}
	sub := &stubSubmitter{}
	orch, err := NewOrchestrator(Dependencies{
		Zones:      &stubZones{zones: []geo.Zone{hq}},
		Extractor:  extractor,
		Candidates: &stubCandidates{},
		Matcher:    newMatcher(t),
		Attendance: sub,
	}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}

	far := metersNorthOf(hq.Center, 340)
	out, err := orch.ProcessScan(context.Background(), Request{Image: []byte("jpeg"), Coordinate: &far})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}

	if out.Kind != KindOutsideGeofence {
		t.Fatalf("expected OUTSIDE_GEOFENCE, got %s", out.Kind)
	}
	if out.NearestZoneName == nil || *out.NearestZoneName != "HQ" {
		t.Fatalf("expected nearest zone HQ, got %+v", out.NearestZoneName)
	}
	if out.NearestDistanceMeters == nil || math.Abs(*out.NearestDistanceMeters-340) > 0.5 {
		t.Fatalf("expected nearest distance ~340, got %+v", out.NearestDistanceMeters)
	}
	if !strings.Contains(out.Message, "340m") {
		t.Fatalf("expected actionable message, got %q", out.Message)
	}
	if extractor.calls != 0 || len(sub.calls) != 0 {
		t.Fatalf("expected pipeline to stop, extractor=%d submit=%d", extractor.calls, len(sub.calls))
	}
}

func TestProcessScan_OutsideGeofenceWithoutZones(t *testing.T) {
	t.Parallel()

	orch, err := NewOrchestrator(Dependencies{
		Zones:      &stubZones{},
		Extractor:  &stubExtractor{},
		Candidates: &stubCandidates{},
		Matcher:    newMatcher(t),
		Attendance: &stubSubmitter{},
	}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}

	point := geo.Coordinate{Latitude: 1, Longitude: 1}
	out, err := orch.ProcessScan(context.Background(), Request{Image: []byte("jpeg"), Coordinate: &point})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}
	if out.Kind != KindOutsideGeofence || out.NearestZoneName != nil || out.NearestDistanceMeters != nil {
		t.Fatalf("expected OUTSIDE_GEOFENCE without nearest, got %+v", out)
	}
}

func TestProcessScan_SkipsGeofenceWithoutCoordinate(t *testing.T) {
	t.Parallel()

	zones := &stubZones{err: errors.New("should not be called")}
	orch, err := NewOrchestrator(Dependencies{
		Zones:      zones,
		Extractor:  &stubExtractor{descriptor: descriptorOf(0)},
		Candidates: &stubCandidates{candidates: []face.Candidate{{EmployeeID: uuid.NewString(), Name: "Carol", Descriptor: descriptorOf(0)}}},
		Matcher:    newMatcher(t),
		Attendance: &stubSubmitter{},
	}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}

	out, err := orch.ProcessScan(context.Background(), Request{Image: []byte("jpeg")})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}
	if out.Kind != KindSuccess {
		t.Fatalf("expected SUCCESS, got %s", out.Kind)
	}
	if zones.calls != 0 {
		t.Fatalf("expected zones not consulted, got %d calls", zones.calls)
	}
	if out.OutletID != nil {
		t.Fatalf("expected no outlet, got %v", *out.OutletID)
	}
}

func TestProcessScan_Rejections(t *testing.T) {
	t.Parallel()

	enrolled := descriptorOf(0.5)

	cases := []struct {
		name       string
		extractor  *stubExtractor
		candidates *stubCandidates
		want       Kind
	}{
		{
			name:       "no face",
			extractor:  &stubExtractor{err: face.ErrNoFace},
			candidates: &stubCandidates{candidates: []face.Candidate{{EmployeeID: "e", Descriptor: enrolled}}},
			want:       KindNoFaceDetected,
		},
		{
			name:       "not recognized",
			extractor:  &stubExtractor{descriptor: shifted(enrolled, 0.56)},
			candidates: &stubCandidates{candidates: []face.Candidate{{EmployeeID: "e", Descriptor: enrolled}}},
			want:       KindNotRecognized,
		},
		{
			name:       "no enrolled faces",
			extractor:  &stubExtractor{descriptor: enrolled},
			candidates: &stubCandidates{},
			want:       KindNoEnrolledFaces,
		},
		{
			name:       "extractor crash",
			extractor:  &stubExtractor{err: errors.New("model crashed")},
			candidates: &stubCandidates{},
			want:       KindInternalError,
		},
		{
			name:       "roster unavailable",
			extractor:  &stubExtractor{descriptor: enrolled},
			candidates: &stubCandidates{err: errors.New("db down")},
			want:       KindInternalError,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sub := &stubSubmitter{}
			orch, err := NewOrchestrator(Dependencies{
				Zones:      &stubZones{},
				Extractor:  tc.extractor,
				Candidates: tc.candidates,
				Matcher:    newMatcher(t),
				Attendance: sub,
			}, WithLogger(quietLogger()))
			if err != nil {
				t.Fatalf("NewOrchestrator returned error: %v", err)
			}

			out, err := orch.ProcessScan(context.Background(), Request{Image: []byte("jpeg")})
			if err != nil {
				t.Fatalf("ProcessScan returned error: %v", err)
			}
			if out.Kind != tc.want {
				t.Fatalf("expected %s, got %s (%s)", tc.want, out.Kind, out.Message)
			}
			if len(sub.calls) != 0 {
				t.Fatalf("expected no attendance mutation, got %d", len(sub.calls))
			}
		})
	}
}

func TestProcessScan_NotRecognizedCarriesDistance(t *testing.T) {
	t.Parallel()

	enrolled := descriptorOf(0.5)
	orch, err := NewOrchestrator(Dependencies{
		Zones:      &stubZones{},
		Extractor:  &stubExtractor{descriptor: shifted(enrolled, 0.8)},
		Candidates: &stubCandidates{candidates: []face.Candidate{{EmployeeID: "e", Descriptor: enrolled}}},
		Matcher:    newMatcher(t),
		Attendance: &stubSubmitter{},
	}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}

	out, err := orch.ProcessScan(context.Background(), Request{Image: []byte("jpeg")})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}
	if out.Distance == nil || math.Abs(*out.Distance-0.8) > 1e-6 {
		t.Fatalf("expected distance 0.8, got %+v", out.Distance)
	}
}

func TestProcessScan_ExtractionTimeout(t *testing.T) {
	t.Parallel()

	sub := &stubSubmitter{}
	orch, err := NewOrchestrator(Dependencies{
		Zones:      &stubZones{},
		Extractor:  &stubExtractor{block: true},
		Candidates: &stubCandidates{},
		Matcher:    newMatcher(t),
		Attendance: sub,
	}, WithExtractionTimeout(20*time.Millisecond), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}

	out, err := orch.ProcessScan(context.Background(), Request{Image: []byte("jpeg")})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}
	if out.Kind != KindExtractionTimeout {
		t.Fatalf("expected EXTRACTION_TIMEOUT, got %s", out.Kind)
	}
	if len(sub.calls) != 0 {
		t.Fatalf("expected no attendance mutation")
	}
}

func TestProcessScan_SubmitFailureIsInternalError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	enrolled := descriptorOf(0.2)
	orch, err := NewOrchestrator(Dependencies{
		Zones:      &stubZones{},
		Extractor:  &stubExtractor{descriptor: enrolled},
		Candidates: &stubCandidates{candidates: []face.Candidate{{EmployeeID: uuid.NewString(), Name: "Dan", Descriptor: enrolled}}},
		Matcher:    newMatcher(t),
		Attendance: &stubSubmitter{err: attendance.ErrOpenRecordExists},
	}, WithLogger(log.New(&buf, "", 0)))
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}

	out, err := orch.ProcessScan(context.Background(), Request{Image: []byte("jpeg")})
	if err != nil {
		t.Fatalf("ProcessScan returned error: %v", err)
	}
	if out.Kind != KindInternalError {
		t.Fatalf("expected INTERNAL_ERROR, got %s", out.Kind)
	}
	if !errors.Is(out.Cause, attendance.ErrOpenRecordExists) {
		t.Fatalf("expected cause to wrap ErrOpenRecordExists, got %v", out.Cause)
	}
	if strings.Contains(out.Message, "open") {
		t.Fatalf("expected internal details hidden from message, got %q", out.Message)
	}
	if !strings.Contains(buf.String(), out.ScanID) {
		t.Fatalf("expected log line with scan id, got %q", buf.String())
	}
}

func TestProcessScan_ImageRequired(t *testing.T) {
	t.Parallel()

	extractor := &stubExtractor{}
	orch, err := NewOrchestrator(Dependencies{
		Zones:      &stubZones{},
		Extractor:  extractor,
		Candidates: &stubCandidates{},
		Matcher:    newMatcher(t),
		Attendance: &stubSubmitter{},
	}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}

	if _, err := orch.ProcessScan(context.Background(), Request{}); !errors.Is(err, ErrImageRequired) {
		t.Fatalf("expected ErrImageRequired, got %v", err)
	}
	if extractor.calls != 0 {
		t.Fatalf("expected no stage to run")
	}
}

func TestProcessScan_ScanIDsAreUnique(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	orch, err := NewOrchestrator(Dependencies{
		Zones:      &stubZones{},
		Extractor:  &stubExtractor{err: face.ErrNoFace},
		Candidates: &stubCandidates{},
		Matcher:    newMatcher(t),
		Attendance: &stubSubmitter{},
	}, WithClock(clk), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		out, err := orch.ProcessScan(context.Background(), Request{Image: []byte("jpeg")})
		if err != nil {
			t.Fatalf("ProcessScan returned error: %v", err)
		}
		if _, dup := seen[out.ScanID]; dup {
			t.Fatalf("duplicate scan id %s", out.ScanID)
		}
		seen[out.ScanID] = struct{}{}
	}
}

func TestNewOrchestrator_RequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := NewOrchestrator(Dependencies{}); err == nil {
		t.Fatalf("expected error for missing dependencies")
	}
}
