package leave_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"maps"
	"slices"
	"sort"
	"testing"
	"time"

	"go-leave/internal/audit"
	"go-leave/internal/authz"
	"go-leave/internal/calendar"
	"go-leave/internal/employee"
	"go-leave/internal/leave"
	"go-leave/internal/ledger"
	usererrors "go-leave/internal/user/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStore backs every fake below so a test can follow one employee through
// several use cases.
type memStore struct {
	leaves    map[uuid.UUID]leave.Leave
	types     map[uuid.UUID]leave.LeaveType
	employees map[string]employee.Employee
	actors    map[string]authz.Actor
	audit     []audit.Entry
}

func newMemStore() *memStore {
	return &memStore{
		leaves:    map[uuid.UUID]leave.Leave{},
		types:     map[uuid.UUID]leave.LeaveType{},
		employees: map[string]employee.Employee{},
		actors:    map[string]authz.Actor{},
	}
}

func (s *memStore) auditFor(id uuid.UUID) []audit.Entry {
	var out []audit.Entry
	for _, e := range s.audit {
		if e.RequestID == id {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) snapshot() memStore {
	return memStore{
		leaves:    maps.Clone(s.leaves),
		types:     maps.Clone(s.types),
		employees: maps.Clone(s.employees),
		actors:    maps.Clone(s.actors),
		audit:     slices.Clone(s.audit),
	}
}

// newTxDB returns a sqlmock-backed *sql.DB whose transactions snapshot st on
// begin and restore it when the transaction does not commit, so the fakes'
// writes share the fate of the surrounding tx.
func newTxDB(t *testing.T, st *memStore) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	dsn := "leave_harness_" + uuid.NewString()
	raw, mock, err := sqlmock.NewWithDSN(dsn)
	require.NoError(t, err)

	db := sql.OpenDB(&txConnector{drv: raw.Driver(), dsn: dsn, st: st})
	t.Cleanup(func() {
		db.Close()
		raw.Close()
	})
	return db, mock
}

type txConnector struct {
	drv driver.Driver
	dsn string
	st  *memStore
}

func (c *txConnector) Connect(context.Context) (driver.Conn, error) {
	conn, err := c.drv.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &txConn{Conn: conn, st: c.st}, nil
}

func (c *txConnector) Driver() driver.Driver {
	return c.drv
}

type txConn struct {
	driver.Conn
	st *memStore
}

func (c *txConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	tx, err := c.Conn.(driver.ConnBeginTx).BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &txSnapshot{Tx: tx, st: c.st, saved: c.st.snapshot()}, nil
}

type txSnapshot struct {
	driver.Tx
	st    *memStore
	saved memStore
}

func (t *txSnapshot) Commit() error {
	if err := t.Tx.Commit(); err != nil {
		*t.st = t.saved
		return err
	}
	return nil
}

func (t *txSnapshot) Rollback() error {
	*t.st = t.saved
	return t.Tx.Rollback()
}

type fakeLeaveRepository struct {
	st *memStore

	createFn         func(ctx context.Context, l *leave.Leave) error
	updateDecisionFn func(ctx context.Context, id uuid.UUID, upd leave.DecisionUpdate) (bool, error)
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository {
	return f
}

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.Leave) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, l); err != nil {
			return err
		}
	}
	cp := *l
	cp.LeaveType = nil
	f.st.leaves[l.ID] = cp
	return nil
}

func (f *fakeLeaveRepository) FindByID(ctx context.Context, id uuid.UUID) (*leave.Leave, error) {
	l, ok := f.st.leaves[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if lt, ok := f.st.types[l.LeaveTypeID]; ok {
		l.LeaveType = &lt
	}
	return &l, nil
}

func (f *fakeLeaveRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*leave.Leave, error) {
	l, ok := f.st.leaves[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (f *fakeLeaveRepository) FindActiveByEmployee(ctx context.Context, employeeID string) ([]leave.Leave, error) {
	var out []leave.Leave
	for _, l := range f.st.leaves {
		if l.EmployeeID == employeeID && l.Status.IsActive() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLeaveRepository) FindByEmployee(ctx context.Context, employeeID string) ([]leave.Leave, error) {
	var out []leave.Leave
	for _, l := range f.st.leaves {
		if l.EmployeeID == employeeID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (f *fakeLeaveRepository) FindPending(ctx context.Context, employeeIDs []string) ([]leave.Leave, error) {
	var in map[string]bool
	if employeeIDs != nil {
		in = map[string]bool{}
		for _, id := range employeeIDs {
			in[id] = true
		}
	}

	var out []leave.Leave
	for _, l := range f.st.leaves {
		if l.Status != leave.StatusPending {
			continue
		}
		if in != nil && !in[l.EmployeeID] {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (f *fakeLeaveRepository) UpdateDecision(ctx context.Context, id uuid.UUID, upd leave.DecisionUpdate) (bool, error) {
	if f.updateDecisionFn != nil {
		return f.updateDecisionFn(ctx, id, upd)
	}
	l, ok := f.st.leaves[id]
	if !ok || l.Status != leave.StatusPending {
		return false, nil
	}
	decidedAt := upd.DecidedAt
	decidedBy := upd.DecidedBy
	l.Status = upd.Status
	l.TotalDays = upd.TotalDays
	l.DecidedBy = &decidedBy
	l.DecidedAt = &decidedAt
	l.DecisionComment = upd.Comment
	f.st.leaves[id] = l
	return true, nil
}

func (f *fakeLeaveRepository) FindLeaveType(ctx context.Context, id uuid.UUID) (*leave.LeaveType, error) {
	lt, ok := f.st.types[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &lt, nil
}

type fakeLedger struct {
	st *memStore

	debitFn func(ctx context.Context, employeeID string, days int) (int, error)
}

func (f *fakeLedger) WithTx(tx *sql.Tx) ledger.Repository {
	return f
}

func (f *fakeLedger) Balance(ctx context.Context, employeeID string, forUpdate bool) (int, error) {
	e, ok := f.st.employees[employeeID]
	if !ok {
		return 0, ledger.ErrAccountNotFound
	}
	return e.Balance, nil
}

func (f *fakeLedger) CheckSufficient(ctx context.Context, employeeID string, days int) error {
	balance, err := f.Balance(ctx, employeeID, false)
	if err != nil {
		return err
	}
	if balance < days {
		return &ledger.InsufficientBalanceError{EmployeeID: employeeID, Available: balance, Requested: days}
	}
	return nil
}

func (f *fakeLedger) Debit(ctx context.Context, employeeID string, days int) (int, error) {
	if f.debitFn != nil {
		return f.debitFn(ctx, employeeID, days)
	}
	if err := f.CheckSufficient(ctx, employeeID, days); err != nil {
		return 0, err
	}
	e := f.st.employees[employeeID]
	e.Balance -= days
	f.st.employees[employeeID] = e
	return e.Balance, nil
}

func (f *fakeLedger) Credit(ctx context.Context, employeeID string, days int) (int, error) {
	e, ok := f.st.employees[employeeID]
	if !ok {
		return 0, ledger.ErrAccountNotFound
	}
	e.Balance += days
	f.st.employees[employeeID] = e
	return e.Balance, nil
}

type fakeEmployeeRepository struct {
	st *memStore

	fullLoads       int
	superiorLookups int
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository {
	return f
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	f.fullLoads++
	e, ok := f.st.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (f *fakeEmployeeRepository) FindSuperiorID(ctx context.Context, id string) (*string, error) {
	f.superiorLookups++
	e, ok := f.st.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e.SuperiorID, nil
}

func (f *fakeEmployeeRepository) FindByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, id := range ids {
		if e, ok := f.st.employees[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepository) FindSubordinates(ctx context.Context, superiorID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.st.employees {
		if e.SuperiorID != nil && *e.SuperiorID == superiorID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeAuditRepository struct {
	st *memStore

	recordFn func(ctx context.Context, entry *audit.Entry) error
}

func (f *fakeAuditRepository) WithTx(tx *sql.Tx) audit.Repository {
	return f
}

func (f *fakeAuditRepository) Record(ctx context.Context, entry *audit.Entry) error {
	if f.recordFn != nil {
		if err := f.recordFn(ctx, entry); err != nil {
			return err
		}
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.st.audit = append(f.st.audit, *entry)
	return nil
}

func (f *fakeAuditRepository) FindByRequest(ctx context.Context, requestID uuid.UUID) ([]audit.Entry, error) {
	return f.st.auditFor(requestID), nil
}

type fakeCalendar struct {
	holidays []calendar.Holiday
	// cached, when set, is what a stale holiday cache would still return.
	cached      []calendar.Holiday
	freshCalls  int
	cachedCalls int
}

func (f *fakeCalendar) HolidaysInRange(ctx context.Context, start, end time.Time) ([]calendar.Holiday, error) {
	return inRange(f.holidays, start, end), nil
}

func (f *fakeCalendar) ChargeableDays(ctx context.Context, start, end time.Time) (int, error) {
	f.cachedCalls++
	if f.cached != nil {
		return calendar.ChargeableDays(start, end, inRange(f.cached, start, end)), nil
	}
	return calendar.ChargeableDays(start, end, inRange(f.holidays, start, end)), nil
}

func (f *fakeCalendar) FreshChargeableDays(ctx context.Context, start, end time.Time) (int, error) {
	f.freshCalls++
	return calendar.ChargeableDays(start, end, inRange(f.holidays, start, end)), nil
}

func inRange(holidays []calendar.Holiday, start, end time.Time) []calendar.Holiday {
	var out []calendar.Holiday
	for _, h := range holidays {
		if !h.Date.Before(start) && !h.Date.After(end) {
			out = append(out, h)
		}
	}
	return out
}

type fakeActorResolver struct {
	st *memStore
}

func (f *fakeActorResolver) GetActor(ctx context.Context, userID string) (authz.Actor, error) {
	a, ok := f.st.actors[userID]
	if !ok {
		return authz.Actor{}, usererrors.ErrUserNotFound
	}
	return a, nil
}
