// Package repo contains all database access logic for the Bike Weather
// service. No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mrizzo/bike-weather/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SubscriberRepo defines the persistence operations for Subscribers.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type SubscriberRepo interface {
	// Create inserts a new subscriber and returns the persisted record (with
	// DB-generated id and created_at populated).
	// Returns domain.ErrDuplicate if the email is already subscribed.
	Create(ctx context.Context, sub domain.Subscriber) (domain.Subscriber, error)

	// GetByUnsubscribeToken retrieves the subscriber holding an unsubscribe token.
	// Returns domain.ErrNotFound if no subscriber holds it.
	GetByUnsubscribeToken(ctx context.Context, token string) (domain.Subscriber, error)

	// GetBySettingsToken retrieves the subscriber holding a settings token.
	// Returns domain.ErrNotFound if no subscriber holds it.
	GetBySettingsToken(ctx context.Context, token string) (domain.Subscriber, error)

	// UpdateSettings overwrites a subscriber's location and preferences,
	// keyed by settings token, and returns the updated record.
	// Returns domain.ErrNotFound if no subscriber holds the token.
	UpdateSettings(ctx context.Context, token string, sub domain.Subscriber) (domain.Subscriber, error)

	// DeleteByUnsubscribeToken removes the subscriber holding the token.
	// Returns domain.ErrNotFound if no subscriber holds it.
	DeleteByUnsubscribeToken(ctx context.Context, token string) error

	// DeleteByEmail removes a subscriber by email address.
	// Returns domain.ErrNotFound if the email is not subscribed.
	DeleteByEmail(ctx context.Context, email string) error

	// ListVerified returns all verified subscribers, oldest first.
	// These are the recipients of the daily report batch.
	ListVerified(ctx context.Context) ([]domain.Subscriber, error)

	// List returns all subscribers, oldest first.
	List(ctx context.Context) ([]domain.Subscriber, error)

	// MarkEmailSent stamps last_email_sent after a successful delivery.
	MarkEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// subscriberColumns is the shared SELECT column list kept in one place so
// every query scans with scanSubscriber.
const subscriberColumns = `id, email, city, state, zip_code, lat, lon, verified,
	verification_token, unsubscribe_token, settings_token,
	min_temp_no_precip, min_temp_with_precip, ride_in_snow,
	created_at, last_email_sent`

// pgSubscriberRepo is the Postgres implementation of SubscriberRepo.
type pgSubscriberRepo struct {
	db db
}

// NewSubscriberRepo constructs a SubscriberRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx for
// rollback isolation.
func NewSubscriberRepo(db db) SubscriberRepo {
	return &pgSubscriberRepo{db: db}
}

// Create inserts a new subscriber row and returns the full persisted record.
func (r *pgSubscriberRepo) Create(ctx context.Context, sub domain.Subscriber) (domain.Subscriber, error) {
	const q = `
		INSERT INTO subscribers (email, city, state, zip_code, lat, lon, verified,
			verification_token, unsubscribe_token, settings_token,
			min_temp_no_precip, min_temp_with_precip, ride_in_snow)
		VALUES (@email, @city, @state, @zip_code, @lat, @lon, @verified,
			@verification_token, @unsubscribe_token, @settings_token,
			@min_temp_no_precip, @min_temp_with_precip, @ride_in_snow)
		RETURNING ` + subscriberColumns

	args := pgx.NamedArgs{
		"email":                sub.Email,
		"city":                 sub.City,
		"state":                sub.State,
		"zip_code":             sub.ZipCode,
		"lat":                  sub.Lat,
		"lon":                  sub.Lon,
		"verified":             sub.Verified,
		"verification_token":   sub.VerificationToken,
		"unsubscribe_token":    sub.UnsubscribeToken,
		"settings_token":       sub.SettingsToken,
		"min_temp_no_precip":   sub.MinTempNoPrecip,
		"min_temp_with_precip": sub.MinTempWithPrecip,
		"ride_in_snow":         sub.RideInSnow,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanSubscriber(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Subscriber{}, fmt.Errorf("repo.SubscriberRepo.Create: %w", domain.ErrDuplicate)
		}
		return domain.Subscriber{}, fmt.Errorf("repo.SubscriberRepo.Create: %w", err)
	}
	return result, nil
}

// GetByUnsubscribeToken retrieves a subscriber by unsubscribe token.
func (r *pgSubscriberRepo) GetByUnsubscribeToken(ctx context.Context, token string) (domain.Subscriber, error) {
	return r.getBy(ctx, "unsubscribe_token", token, "GetByUnsubscribeToken")
}

// GetBySettingsToken retrieves a subscriber by settings token.
func (r *pgSubscriberRepo) GetBySettingsToken(ctx context.Context, token string) (domain.Subscriber, error) {
	return r.getBy(ctx, "settings_token", token, "GetBySettingsToken")
}

func (r *pgSubscriberRepo) getBy(ctx context.Context, column, value, op string) (domain.Subscriber, error) {
	q := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE ` + column + ` = @value`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"value": value})
	result, err := scanSubscriber(row)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("repo.SubscriberRepo.%s: %w", op, err)
	}
	return result, nil
}

// UpdateSettings overwrites location and preference fields, keyed by settings token.
func (r *pgSubscriberRepo) UpdateSettings(ctx context.Context, token string, sub domain.Subscriber) (domain.Subscriber, error) {
	const q = `
		UPDATE subscribers
		SET city                 = @city,
		    state                = @state,
		    zip_code             = @zip_code,
		    lat                  = @lat,
		    lon                  = @lon,
		    min_temp_no_precip   = @min_temp_no_precip,
		    min_temp_with_precip = @min_temp_with_precip,
		    ride_in_snow         = @ride_in_snow
		WHERE settings_token = @settings_token
		RETURNING ` + subscriberColumns

	args := pgx.NamedArgs{
		"settings_token":       token,
		"city":                 sub.City,
		"state":                sub.State,
		"zip_code":             sub.ZipCode,
		"lat":                  sub.Lat,
		"lon":                  sub.Lon,
		"min_temp_no_precip":   sub.MinTempNoPrecip,
		"min_temp_with_precip": sub.MinTempWithPrecip,
		"ride_in_snow":         sub.RideInSnow,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanSubscriber(row)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("repo.SubscriberRepo.UpdateSettings: %w", err)
	}
	return result, nil
}

// DeleteByUnsubscribeToken removes the subscriber holding the token.
func (r *pgSubscriberRepo) DeleteByUnsubscribeToken(ctx context.Context, token string) error {
	const q = `DELETE FROM subscribers WHERE unsubscribe_token = @token`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"token": token})
	if err != nil {
		return fmt.Errorf("repo.SubscriberRepo.DeleteByUnsubscribeToken: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SubscriberRepo.DeleteByUnsubscribeToken: %w", domain.ErrNotFound)
	}
	return nil
}

// DeleteByEmail removes a subscriber by email address.
func (r *pgSubscriberRepo) DeleteByEmail(ctx context.Context, email string) error {
	const q = `DELETE FROM subscribers WHERE email = @email`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"email": email})
	if err != nil {
		return fmt.Errorf("repo.SubscriberRepo.DeleteByEmail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SubscriberRepo.DeleteByEmail: %w", domain.ErrNotFound)
	}
	return nil
}

// ListVerified returns all verified subscribers ordered by signup time.
func (r *pgSubscriberRepo) ListVerified(ctx context.Context) ([]domain.Subscriber, error) {
	q := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE verified ORDER BY created_at`
	return r.list(ctx, q, "ListVerified")
}

// List returns all subscribers ordered by signup time.
func (r *pgSubscriberRepo) List(ctx context.Context) ([]domain.Subscriber, error) {
	q := `SELECT ` + subscriberColumns + ` FROM subscribers ORDER BY created_at`
	return r.list(ctx, q, "List")
}

func (r *pgSubscriberRepo) list(ctx context.Context, q, op string) ([]domain.Subscriber, error) {
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.SubscriberRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var subs []domain.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SubscriberRepo.%s: scan: %w", op, err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SubscriberRepo.%s: rows: %w", op, err)
	}

	return subs, nil
}

// MarkEmailSent stamps last_email_sent for a subscriber.
func (r *pgSubscriberRepo) MarkEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	const q = `UPDATE subscribers SET last_email_sent = @at WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "at": at})
	if err != nil {
		return fmt.Errorf("repo.SubscriberRepo.MarkEmailSent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SubscriberRepo.MarkEmailSent: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanSubscriber
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanSubscriber maps a single database row into a domain.Subscriber.
// It handles the UUID and nullable last_email_sent conversions.
func scanSubscriber(s scanner) (domain.Subscriber, error) {
	var (
		sub      domain.Subscriber
		id       pgtype.UUID
		lastSent pgtype.Timestamptz
	)

	err := s.Scan(&id, &sub.Email, &sub.City, &sub.State, &sub.ZipCode, &sub.Lat, &sub.Lon,
		&sub.Verified, &sub.VerificationToken, &sub.UnsubscribeToken, &sub.SettingsToken,
		&sub.MinTempNoPrecip, &sub.MinTempWithPrecip, &sub.RideInSnow,
		&sub.CreatedAt, &lastSent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Subscriber{}, domain.ErrNotFound
		}
		return domain.Subscriber{}, err
	}

	sub.ID = uuid.UUID(id.Bytes)
	if lastSent.Valid {
		t := lastSent.Time
		sub.LastEmailSent = &t
	}

	return sub, nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
