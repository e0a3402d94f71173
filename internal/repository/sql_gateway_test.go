package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

func TestRebind(t *testing.T) {
	pg := &SQLGateway{Dialect: DialectPostgres}
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1,$2)", pg.rebind("INSERT INTO t (a, b) VALUES (?,?)"))
	my := &SQLGateway{Dialect: DialectMySQL}
	assert.Equal(t, "VALUES (?,?)", my.rebind("VALUES (?,?)"))
}

func TestSQLGatewaySave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	g := NewSQLGateway(db, DialectPostgres, quietLogger())
	sched := model.Schedule{Date: "2025-06-01", Time: "18:00"}
	snap := &Snapshot{
		Users:    []model.User{{Username: "alice", Password: "pw", Role: model.RoleCustomer, DisplayName: "Alice"}},
		Movies:   []model.Movie{{ID: 1, Title: "Inception", Genre: "Sci-Fi", Price: 1250, Schedules: []model.Schedule{sched}}},
		Bookings: []model.Booking{{ID: 1, CustomerUsername: "alice", MovieID: 1, Schedule: sched, Seat: "C5", Price: 1250, PaymentMode: model.PaymentCash}},
		Seats:    []model.SeatRecord{{MovieID: 1, Date: "2025-06-01", Label: "C5", Available: false}},
	}

	mock.ExpectBegin()
	for _, table := range []string{"seats", "bookings", "movie_schedules", "movies", "users"} {
		mock.ExpectExec("DELETE FROM " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, password, role, display_name, position) VALUES ($1,$2,$3,$4,$5)")).
		WithArgs("alice", "pw", "CUSTOMER", "Alice", 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO movies")).
		WithArgs(1, "Inception", "Sci-Fi", int64(1250), 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO movie_schedules")).
		WithArgs(1, 0, "2025-06-01", "18:00").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(1, "alice", 1, "2025-06-01", "18:00", "C5", int64(1250), "Cash").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seats")).
		WithArgs(1, "2025-06-01", "C5", false).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, g.Save(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGatewaySaveRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	g := NewSQLGateway(db, DialectMySQL, quietLogger())
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seats").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = g.Save(context.Background(), &Snapshot{})
	assert.ErrorIs(t, err, model.ErrPersistence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGatewayLoad(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT username, password, role, display_name FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password", "role", "display_name"}).
			AddRow("admin", "admin123", "ADMIN", "").
			AddRow("ghost", "pw", "OWNER", ""))
	mock.ExpectQuery("SELECT id, title, genre, price_cents FROM movies").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "genre", "price_cents"}).
			AddRow(1, "Inception", "Sci-Fi", 1250))
	mock.ExpectQuery("SELECT movie_id, show_date, show_time FROM movie_schedules").
		WillReturnRows(sqlmock.NewRows([]string{"movie_id", "show_date", "show_time"}).
			AddRow(1, "2025-06-01", "18:00").
			AddRow(9, "2025-06-01", "18:00"))
	mock.ExpectQuery("SELECT id, customer_username, movie_id, show_date, show_time, seat, price_cents, payment_mode FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_username", "movie_id", "show_date", "show_time", "seat", "price_cents", "payment_mode"}).
			AddRow(1, "alice", 1, "2025-06-01", "18:00", "C5", 1250, "GCash"))
	mock.ExpectQuery("SELECT movie_id, show_date, seat_label, available FROM seats").
		WillReturnRows(sqlmock.NewRows([]string{"movie_id", "show_date", "seat_label", "available"}))

	snap, err := NewSQLGateway(db, DialectMySQL, quietLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, model.RoleAdmin, snap.Users[0].Role)
	require.Len(t, snap.Movies, 1)
	assert.Equal(t, []model.Schedule{{Date: "2025-06-01", Time: "18:00"}}, snap.Movies[0].Schedules)
	assert.Equal(t, model.Money(1250), snap.Movies[0].Price)
	require.Len(t, snap.Bookings, 1)
	assert.Equal(t, model.PaymentGCash, snap.Bookings[0].PaymentMode)
	assert.True(t, snap.SeatsMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGatewayEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schema {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, NewSQLGateway(db, DialectMySQL, nil).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
