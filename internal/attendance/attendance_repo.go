package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// Filter is the parsed admin query. Nil / empty members impose no
// constraint; present members AND together.
type Filter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Name     string
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	FindFiltered(ctx context.Context, f Filter, offset, limit int) ([]Attendance, error)
	FindAllFiltered(ctx context.Context, f Filter) ([]Attendance, error)
	CountFiltered(ctx context.Context, f Filter) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, t time.Time) (int64, error)
	CountDistinctNames(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	if r.tx == nil {
		return r.db.WithContext(ctx).Create(a).Error
	}

	// inside the service transaction the insert shares the tx with the
	// outbox row, so both commit or neither does
	query := `
        INSERT INTO attendances (
            name, photo_path, latitude, longitude, google_maps_link,
            notes, checked_in_at, ip_address, user_agent, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
        RETURNING id
    `
	return r.tx.QueryRowContext(
		ctx, query,
		a.Name, a.PhotoPath, a.Latitude, a.Longitude, a.GoogleMapsLink,
		a.Notes, a.CheckedInAt, a.IPAddress, a.UserAgent,
	).Scan(&a.ID)
}

func (r *repository) scopeFilter(ctx context.Context, f Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&Attendance{})
	if f.DateFrom != nil {
		q = q.Where("checked_in_at::date >= ?", f.DateFrom.Format("2006-01-02"))
	}
	if f.DateTo != nil {
		q = q.Where("checked_in_at::date <= ?", f.DateTo.Format("2006-01-02"))
	}
	if f.Name != "" {
		q = q.Where("name ILIKE ?", "%"+f.Name+"%")
	}
	return q
}

func (r *repository) FindFiltered(ctx context.Context, f Filter, offset, limit int) ([]Attendance, error) {
	var rows []Attendance
	err := r.scopeFilter(ctx, f).
		Order("checked_in_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllFiltered(ctx context.Context, f Filter) ([]Attendance, error) {
	var rows []Attendance
	err := r.scopeFilter(ctx, f).
		Order("checked_in_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountFiltered(ctx context.Context, f Filter) (int64, error) {
	var total int64
	err := r.scopeFilter(ctx, f).Count(&total).Error
	return total, err
}

func (r *repository) CountAll(ctx context.Context) (int64, error) {
	return r.CountFiltered(ctx, Filter{})
}

func (r *repository) CountSince(ctx context.Context, t time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("checked_in_at >= ?", t).
		Count(&total).Error
	return total, err
}

func (r *repository) CountDistinctNames(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Distinct("name").
		Count(&total).Error
	return total, err
}
