package repository

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSnapshot() *Snapshot {
	sched := model.Schedule{Date: "2025-06-01", Time: "18:00"}
	return &Snapshot{
		Users: []model.User{
			{Username: "admin", Password: "admin123", Role: model.RoleAdmin},
			{Username: "alice", Password: "pw", Role: model.RoleCustomer, DisplayName: "Alice, Liddell"},
		},
		Movies: []model.Movie{
			{ID: 1, Title: "Inception", Genre: "Sci-Fi", Price: 1250, Schedules: []model.Schedule{sched, {Date: "2025-06-02", Time: "20:30"}}},
			{ID: 3, Title: "Up", Genre: "Animation", Price: 900},
		},
		Bookings: []model.Booking{
			{ID: 1, CustomerUsername: "alice", MovieID: 1, Schedule: sched, Seat: "C5", Price: 1250, PaymentMode: model.PaymentCard},
		},
		Seats: []model.SeatRecord{
			{MovieID: 1, Date: "2025-06-01", Label: "C5", Available: false},
			{MovieID: 1, Date: "2025-06-01", Label: "C6", Available: true},
		},
	}
}

func TestFileGatewayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	g := NewFileGateway(dir, quietLogger())
	want := sampleSnapshot()

	require.NoError(t, g.Save(context.Background(), want))
	got, err := g.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileGatewayRecordLayout(t *testing.T) {
	dir := t.TempDir()
	g := NewFileGateway(dir, quietLogger())
	require.NoError(t, g.Save(context.Background(), sampleSnapshot()))

	movies, err := os.ReadFile(filepath.Join(dir, MoviesFile))
	require.NoError(t, err)
	assert.Equal(t, "1,Inception,Sci-Fi,12.50,2025-06-01,18:00,2025-06-02,20:30\n3,Up,Animation,9.00\n", string(movies))

	bookings, err := os.ReadFile(filepath.Join(dir, BookingsFile))
	require.NoError(t, err)
	assert.Equal(t, "1,alice,1,2025-06-01,18:00,C5,12.50,Credit/Debit Card\n", string(bookings))

	seats, err := os.ReadFile(filepath.Join(dir, SeatsFile))
	require.NoError(t, err)
	assert.Equal(t, "1,2025-06-01,C5,0\n1,2025-06-01,C6,1\n", string(seats))

	users, err := os.ReadFile(filepath.Join(dir, UsersFile))
	require.NoError(t, err)
	assert.Equal(t, "ADMIN,admin,admin123\nCUSTOMER,alice,pw,\"Alice, Liddell\"\n", string(users))
}

func TestFileGatewayEmptyDir(t *testing.T) {
	g := NewFileGateway(t.TempDir(), quietLogger())
	snap, err := g.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Users)
	assert.Empty(t, snap.Movies)
	assert.True(t, snap.SeatsMissing)
}

func TestFileGatewaySkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write(MoviesFile, "1,Inception,Sci-Fi,12.50,2025-06-01,18:00\nx,Broken,Drama,1.00\n2,Odd,Drama,5.00,2025-06-01\n4,Late,Drama,7.00,1999-01-01,10:00\n5,Heat,Crime,8.00\n")
	write(BookingsFile, "1,alice,1,2025-06-01,18:00,C5,12.50,Cash\n2,bob,1,2025-06-01,18:00,C6,12.50,Barter\n")
	write(UsersFile, "CUSTOMER,alice,pw,Alice\nOWNER,eve,pw\n")
	write(SeatsFile, "1,2025-06-01,C5,0\n1,2025-06-01,C6,maybe\n")

	snap, err := NewFileGateway(dir, quietLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Movies, 2)
	assert.Equal(t, 1, snap.Movies[0].ID)
	assert.Equal(t, 5, snap.Movies[1].ID)
	require.Len(t, snap.Bookings, 1)
	assert.Equal(t, model.PaymentCash, snap.Bookings[0].PaymentMode)
	require.Len(t, snap.Users, 1)
	require.Len(t, snap.Seats, 1)
	assert.False(t, snap.SeatsMissing)
}

func TestFileGatewaySaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	// a regular file where the data directory should be
	g := NewFileGateway(blocker, quietLogger())
	err := g.Save(context.Background(), sampleSnapshot())
	assert.ErrorIs(t, err, model.ErrPersistence)
}

func TestFileGatewayFailedSaveLeavesStreamsUntouched(t *testing.T) {
	dir := t.TempDir()
	g := NewFileGateway(dir, quietLogger())
	require.NoError(t, g.Save(context.Background(), sampleSnapshot()))
	usersBefore, err := os.ReadFile(filepath.Join(dir, UsersFile))
	require.NoError(t, err)
	moviesBefore, err := os.ReadFile(filepath.Join(dir, MoviesFile))
	require.NoError(t, err)

	// a directory where bookings.txt should be blocks the third stream
	require.NoError(t, os.Remove(filepath.Join(dir, BookingsFile)))
	require.NoError(t, os.Mkdir(filepath.Join(dir, BookingsFile), 0o755))

	next := sampleSnapshot()
	next.Users = append(next.Users, model.User{Username: "bob", Password: "pw", Role: model.RoleCustomer, DisplayName: "Bob"})
	next.Movies[0].Title = "Tenet"
	err = g.Save(context.Background(), next)
	require.ErrorIs(t, err, model.ErrPersistence)

	usersAfter, err := os.ReadFile(filepath.Join(dir, UsersFile))
	require.NoError(t, err)
	assert.Equal(t, string(usersBefore), string(usersAfter))
	moviesAfter, err := os.ReadFile(filepath.Join(dir, MoviesFile))
	require.NoError(t, err)
	assert.Equal(t, string(moviesBefore), string(moviesAfter))

	tmps, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, tmps)
}
