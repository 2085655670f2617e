package scan

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/ogurasousui/codex-face-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
	"github.com/ogurasousui/codex-face-attendance/internal/core/geo"
)

// DefaultExtractionTimeout は記述子抽出の既定タイムアウトです。
const DefaultExtractionTimeout = 10 * time.Second

// ZoneProvider は有効な店舗区域を保存順で返します。
type ZoneProvider interface {
	ActiveZones(ctx context.Context) ([]geo.Zone, error)
}

// CandidateProvider は照合候補のスナップショットを返します。
type CandidateProvider interface {
	Candidates(ctx context.Context) ([]face.Candidate, error)
}

// IdentityMatcher は記述子を候補と照合します。
type IdentityMatcher interface {
	Match(ctx context.Context, query face.Descriptor, candidates []face.Candidate) (face.MatchResult, error)
}

// AttendanceSubmitter は照合された社員の打刻を記録します。
type AttendanceSubmitter interface {
	Submit(ctx context.Context, in attendance.SubmitInput) (*attendance.SubmitResult, error)
}

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Dependencies は Orchestrator が利用する協調オブジェクトです。
type Dependencies struct {
	Zones      ZoneProvider
	Extractor  face.Extractor
	Candidates CandidateProvider
	Matcher    IdentityMatcher
	Attendance AttendanceSubmitter
}

// Option は Orchestrator の任意設定です。
type Option func(*Orchestrator)

// WithLogger はスキャン結果を出力するロガーを設定します。
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExtractionTimeout は記述子抽出のタイムアウトを設定します。
func WithExtractionTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.extractTimeout = d
		}
	}
}

// WithClock は打刻時刻に用いる時計を設定します。
func WithClock(clock Clock) Option {
	return func(o *Orchestrator) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// Orchestrator はジオフェンス判定、顔抽出、照合、打刻を順に実行します。
// 各段階は前段の結果に依存し、拒否された時点で以降の段階は実行されません。
type Orchestrator struct {
	deps           Dependencies
	clock          Clock
	logger         *log.Logger
	extractTimeout time.Duration

	entropyMu sync.Mutex
	entropy   io.Reader
}

// NewOrchestrator は Orchestrator を生成します。
func NewOrchestrator(deps Dependencies, opts ...Option) (*Orchestrator, error) {
	switch {
	case deps.Zones == nil:
		return nil, errors.New("scan: zone provider is required")
	case deps.Extractor == nil:
		return nil, errors.New("scan: extractor is required")
	case deps.Candidates == nil:
		return nil, errors.New("scan: candidate provider is required")
	case deps.Matcher == nil:
		return nil, errors.New("scan: matcher is required")
	case deps.Attendance == nil:
		return nil, errors.New("scan: attendance submitter is required")
	}

	o := &Orchestrator{
		deps:           deps,
		clock:          realClock{},
		logger:         log.Default(),
		extractTimeout: DefaultExtractionTimeout,
		entropy:        ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Request はスキャン要求です。Coordinate が nil の場合はジオフェンス判定を行いません。
type Request struct {
	Image        []byte
	Coordinate   *geo.Coordinate
	LocationName *string
}

// ProcessScan はスキャン要求を判定します。
// 返却されるエラーは入力エラーのみで、拒否や協調オブジェクトの障害は Outcome で表現します。
func (o *Orchestrator) ProcessScan(ctx context.Context, req Request) (*Outcome, error) {
	if len(req.Image) == 0 {
		return nil, ErrImageRequired
	}

	out := o.run(ctx, req)
	o.logOutcome(out)
	return out, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request) *Outcome {
	scanID := o.newScanID()

	var matchedZone *geo.ZoneHit
	if req.Coordinate != nil {
		zones, err := o.deps.Zones.ActiveZones(ctx)
		if err != nil {
			return internalError(scanID, "load zones", err)
		}

		resolution := geo.ResolveZone(*req.Coordinate, zones)
		if resolution.Matched == nil {
			return outsideGeofence(scanID, resolution.Nearest)
		}
		matchedZone = resolution.Matched
	}

	query, outcome := o.extract(ctx, scanID, req.Image)
	if outcome != nil {
		return outcome
	}

	candidates, err := o.deps.Candidates.Candidates(ctx)
	if err != nil {
		return internalError(scanID, "load candidates", err)
	}

	match, err := o.deps.Matcher.Match(ctx, query, candidates)
	if err != nil {
		return internalError(scanID, "match", err)
	}
	if !match.Matched {
		if math.IsInf(match.Distance, 1) {
			return &Outcome{
				ScanID:  scanID,
				Kind:    KindNoEnrolledFaces,
				Message: "No enrolled faces to compare against",
			}
		}
		distance := match.Distance
		return &Outcome{
			ScanID:   scanID,
			Kind:     KindNotRecognized,
			Message:  fmt.Sprintf("Face not recognized (confidence %.2f)", match.Confidence()),
			Distance: &distance,
		}
	}

	submit := attendance.SubmitInput{
		EmployeeID:   match.EmployeeID,
		At:           o.clock.Now(),
		Location:     req.Coordinate,
		LocationName: req.LocationName,
	}
	var outletID, outletName *string
	if matchedZone != nil {
		id, name := matchedZone.Zone.ID, matchedZone.Zone.Name
		outletID, outletName = &id, &name
		submit.OutletID = outletID
		if submit.LocationName == nil {
			submit.LocationName = outletName
		}
	}

	result, err := o.deps.Attendance.Submit(ctx, submit)
	if err != nil {
		return internalError(scanID, "submit attendance", err)
	}

	out := &Outcome{
		ScanID:       scanID,
		Kind:         KindSuccess,
		Action:       result.Action,
		EmployeeID:   match.EmployeeID,
		EmployeeName: match.Name,
		Confidence:   match.Confidence(),
		Record:       result.Record,
		OutletID:     outletID,
		OutletName:   outletName,
	}
	switch result.Action {
	case attendance.ActionClockOut:
		if result.Record != nil && result.Record.ClockOutTime != nil {
			out.Timestamp = *result.Record.ClockOutTime
		}
		out.Message = fmt.Sprintf("Goodbye, %s. Clock-out recorded.", match.Name)
	default:
		if result.Record != nil {
			out.Timestamp = result.Record.ClockInTime
			if result.Record.Status == attendance.StatusLate {
				out.Message = fmt.Sprintf("Welcome, %s. Clock-in recorded (late by %d min).", match.Name, result.Record.LateMinutes)
				break
			}
		}
		out.Message = fmt.Sprintf("Welcome, %s. Clock-in recorded.", match.Name)
	}
	if out.Timestamp.IsZero() {
		out.Timestamp = submit.At
	}
	return out
}

// extract は記述子を抽出します。抽出できなかった場合は対応する Outcome を返します。
func (o *Orchestrator) extract(ctx context.Context, scanID string, image []byte) (face.Descriptor, *Outcome) {
	extractCtx, cancel := context.WithTimeout(ctx, o.extractTimeout)
	defer cancel()

	descriptor, err := o.deps.Extractor.Extract(extractCtx, image)
	switch {
	case err == nil:
	case errors.Is(err, face.ErrNoFace):
		return nil, &Outcome{ScanID: scanID, Kind: KindNoFaceDetected, Message: "No face detected in the image"}
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return nil, &Outcome{
			ScanID:  scanID,
			Kind:    KindExtractionTimeout,
			Message: fmt.Sprintf("Face extraction timed out after %s", o.extractTimeout),
		}
	default:
		return nil, internalError(scanID, "extract descriptor", err)
	}

	if err := descriptor.Validate(); err != nil {
		return nil, internalError(scanID, "extract descriptor", err)
	}
	return descriptor, nil
}

func (o *Orchestrator) newScanID() string {
	o.entropyMu.Lock()
	defer o.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(o.clock.Now()), o.entropy).String()
}

func (o *Orchestrator) logOutcome(out *Outcome) {
	switch out.Kind {
	case KindSuccess:
		o.logger.Printf("scan %s: %s %s employee=%s confidence=%.3f", out.ScanID, out.Kind, out.Action, out.EmployeeID, out.Confidence)
	case KindNotRecognized:
		o.logger.Printf("scan %s: %s distance=%.3f", out.ScanID, out.Kind, *out.Distance)
	case KindInternalError:
		o.logger.Printf("scan %s: %s %v", out.ScanID, out.Kind, out.Cause)
	default:
		o.logger.Printf("scan %s: %s %s", out.ScanID, out.Kind, out.Message)
	}
}

func outsideGeofence(scanID string, nearest *geo.ZoneHit) *Outcome {
	out := &Outcome{ScanID: scanID, Kind: KindOutsideGeofence, Message: "You are not within any outlet area"}
	if nearest == nil {
		return out
	}
	name := nearest.Zone.Name
	distance := nearest.DistanceMeters
	out.NearestZoneName = &name
	out.NearestDistanceMeters = &distance
	out.Message = fmt.Sprintf("You are %.0fm away from the nearest outlet (%s)", math.Round(distance), name)
	return out
}

func internalError(scanID, stage string, err error) *Outcome {
	return &Outcome{
		ScanID:  scanID,
		Kind:    KindInternalError,
		Message: fmt.Sprintf("Internal error during %s", stage),
		Cause:   fmt.Errorf("%s: %w", stage, err),
	}
}
