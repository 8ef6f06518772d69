package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"registration-service/internal/model"
)

const (
	tracerName = "registration-service/internal/repository"
	usersTable = "users"
)

// ErrDuplicateEmail is returned by Create when the email is already stored.
var ErrDuplicateEmail = errors.New("email already exists")

var userColumns = []string{"id", "name", "age", "email", "phone", "dob", "created_at"}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindAll(ctx context.Context) ([]model.User, error)
}

type sqlUserRepository struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
	tracer  trace.Tracer
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	var placeholder sq.PlaceholderFormat = sq.Dollar
	if db.DriverName() == "sqlite3" {
		placeholder = sq.Question
	}

	return &sqlUserRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		tracer:  otel.Tracer(tracerName),
	}
}

// Create inserts user and fills in ID and CreatedAt.
func (r *sqlUserRepository) Create(ctx context.Context, user *model.User) (err error) {
	ctx, span := r.startSpan(ctx, "INSERT")
	defer func() { endSpan(span, err) }()

	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	query, args, err := r.builder.Insert(usersTable).
		Columns("name", "age", "email", "phone", "dob", "created_at").
		Values(user.Name, user.Age, user.Email, user.Phone, user.DOB, createdAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	var newID int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&newID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	user.ID = newID
	user.CreatedAt = createdAt

	return nil
}

// FindAll returns every user in insertion order. The result is never nil.
func (r *sqlUserRepository) FindAll(ctx context.Context) (users []model.User, err error) {
	ctx, span := r.startSpan(ctx, "SELECT")
	defer func() { endSpan(span, err) }()

	query, args, err := r.builder.Select(userColumns...).
		From(usersTable).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	users = []model.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *sqlUserRepository) startSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "users."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", r.db.DriverName()),
			attribute.String("db.operation", operation),
			attribute.String("db.sql.table", usersTable),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrDuplicateEmail) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}
