package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"go-absensi/internal/events"
	"go-absensi/internal/messaging/kafka"
	"go-absensi/internal/shared/apperror"
	"go-absensi/internal/shared/contextutil"
	"go-absensi/internal/storage"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// PageSize is fixed: the admin dashboard always pages at 50 rows.
	PageSize = 50

	PhotoNamespace = "attendance-photos"

	mapsLinkPrefix = "https://www.google.com/maps?q="

	statsCacheKey = "attendance:stats"
	statsCacheTTL = 60 * time.Second

	dateLayout = "2006-01-02"
)

// BuildMapsLink interpolates the raw submitted coordinate strings into the
// fixed template. No rounding, no URL-encoding.
func BuildMapsLink(latitude, longitude string) string {
	return mapsLinkPrefix + latitude + "," + longitude
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, in SubmissionInput) (AttendanceResponse, error)
	List(ctx context.Context, f FilterInput) (ListResult, error)
	Export(ctx context.Context, f FilterInput) ([]AttendanceResponse, error)
	Stats(ctx context.Context) (StatsResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	store  storage.Store
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, store storage.Store, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, store, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	store storage.Store,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		store:  store,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

// Submit validates, stores the photo, and inserts the record. Validation
// runs before any storage call, so a rejected submission leaves zero rows
// and zero files. If the insert fails after the photo write, the photo is
// removed again.
func (s *service) Submit(ctx context.Context, in SubmissionInput) (AttendanceResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	if fieldErrs := ValidateSubmission(in); fieldErrs != nil {
		s.logger.Debug("submission rejected",
			zap.String("request_id", rid),
			zap.Int("failed_fields", len(fieldErrs)),
		)
		return AttendanceResponse{}, &ValidationError{Fields: fieldErrs}
	}

	// both parse by construction, the rule table already ran ParseFloat
	lat, _ := strconv.ParseFloat(in.Latitude, 64)
	lng, _ := strconv.ParseFloat(in.Longitude, 64)

	photoPath, err := s.store.Save(ctx, PhotoNamespace, in.Photo.Filename, in.Photo.Data)
	if err != nil {
		s.logger.Error("store photo failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, apperror.Wrap(err,
			apperror.CodeStorageFailure, "Failed to persist uploaded photo", 500)
	}

	rec := &Attendance{
		Name:           in.Name,
		PhotoPath:      photoPath,
		Latitude:       lat,
		Longitude:      lng,
		GoogleMapsLink: BuildMapsLink(in.Latitude, in.Longitude),
		Notes:          in.Notes,
		CheckedInAt:    time.Now(),
		IPAddress:      in.IPAddress,
		UserAgent:      in.UserAgent,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.discardPhoto(ctx, photoPath)
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, rec); err != nil {
		s.logger.Error("persist attendance failed", zap.String("request_id", rid), zap.Error(err))
		s.discardPhoto(ctx, photoPath)
		return AttendanceResponse{}, err
	}

	if s.outbox != nil {
		event := events.AttendanceCheckedInEvent{
			EventType:    "attendance_checked_in",
			RequestID:    rid,
			AttendanceID: rec.ID,
			Name:         rec.Name,
			Latitude:     rec.Latitude,
			Longitude:    rec.Longitude,
			CheckedInAt:  rec.CheckedInAt,
			OccurredAt:   time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.discardPhoto(ctx, photoPath)
			return AttendanceResponse{}, err
		}

		outboxRepo := s.outbox.WithTx(tx)
		if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "attendance",
			AggregateID:   strconv.FormatInt(rec.ID, 10),
			EventType:     event.EventType,
			Topic:         events.AttendanceCheckedInTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("attendance outbox persist failed",
				zap.Int64("attendance_id", rec.ID),
				zap.Error(err),
			)
			s.discardPhoto(ctx, photoPath)
			return AttendanceResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		s.discardPhoto(ctx, photoPath)
		return AttendanceResponse{}, err
	}

	s.invalidateStats(ctx)

	s.logger.Info("attendance recorded",
		zap.String("request_id", rid),
		zap.Int64("attendance_id", rec.ID),
		zap.String("photo_path", rec.PhotoPath),
	)

	return mapToResponse(*rec), nil
}

// List returns one dashboard page, newest first. Any combination of the
// three filters is valid; an empty result set is never an error.
func (s *service) List(ctx context.Context, f FilterInput) (ListResult, error) {
	filter := parseFilter(f)

	page := f.Page
	if page < 1 {
		page = 1
	}

	total, err := s.repo.CountFiltered(ctx, filter)
	if err != nil {
		s.logger.Error("count attendances failed", zap.Error(err))
		return ListResult{}, err
	}

	rows, err := s.repo.FindFiltered(ctx, filter, (page-1)*PageSize, PageSize)
	if err != nil {
		s.logger.Error("list attendances failed", zap.Error(err))
		return ListResult{}, err
	}

	return ListResult{
		Data:    mapToListResponse(rows),
		Total:   total,
		Page:    page,
		PerPage: PageSize,
	}, nil
}

func (s *service) Export(ctx context.Context, f FilterInput) ([]AttendanceResponse, error) {
	rows, err := s.repo.FindAllFiltered(ctx, parseFilter(f))
	if err != nil {
		s.logger.Error("export attendances failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) Stats(ctx context.Context) (StatsResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, statsCacheKey).Result(); err == nil {
			var resp StatsResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(statsCacheKey, func() (interface{}, error) {
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		total, err := s.repo.CountAll(ctx)
		if err != nil {
			return StatsResponse{}, err
		}
		today, err := s.repo.CountSince(ctx, midnight)
		if err != nil {
			return StatsResponse{}, err
		}
		names, err := s.repo.CountDistinctNames(ctx)
		if err != nil {
			return StatsResponse{}, err
		}

		resp := StatsResponse{Total: total, Today: today, UniqueNames: names}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, statsCacheKey, jsonData, statsCacheTTL)
			}
		}

		return resp, nil
	})

	if err != nil {
		return StatsResponse{}, err
	}

	return v.(StatsResponse), nil
}

func (s *service) discardPhoto(ctx context.Context, path string) {
	if err := s.store.Remove(ctx, path); err != nil {
		s.logger.Error("remove orphaned photo failed",
			zap.String("photo_path", path),
			zap.Error(err),
		)
	}
}

func (s *service) invalidateStats(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, statsCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate stats cache",
			zap.Error(err),
			zap.String("key", statsCacheKey),
		)
	}
}

// parseFilter converts the raw query into repo predicates. Unparsable date
// bounds are dropped rather than rejected so the dashboard always renders.
func parseFilter(f FilterInput) Filter {
	return Filter{
		DateFrom: parseDateBound(f.DateFrom),
		DateTo:   parseDateBound(f.DateTo),
		Name:     f.Name,
	}
}

func parseDateBound(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
