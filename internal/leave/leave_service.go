package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-leave/internal/audit"
	"go-leave/internal/authz"
	"go-leave/internal/calendar"
	"go-leave/internal/employee"
	"go-leave/internal/events"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/ledger"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultAnnualLeaveTypeName = "Annual Leave"
	DefaultMaxSpanDays         = 366

	aggregateType = "leave_request"
	tracerName    = "go-leave/internal/leave"
)

// ActorResolver turns an authenticated user id into the role and employee
// profile used for authorization.
type ActorResolver interface {
	GetActor(ctx context.Context, userID string) (authz.Actor, error)
}

type Config struct {
	// AnnualLeaveTypeName is the leave type name that consumes the balance.
	AnnualLeaveTypeName string
	// Location decides what "today" is when rejecting past start dates.
	Location *time.Location
	// MaxSpanDays caps the calendar days one request may cover, bounds included.
	MaxSpanDays int
	Now         func() time.Time
}

type Dependencies struct {
	DB        *sql.DB
	Repo      Repository
	Ledger    ledger.Repository
	Employees employee.Repository
	Audit     audit.Repository
	Outbox    kafka.OutboxRepository
	Calendar  calendar.Service
	Actors    ActorResolver
	Policy    authz.Policy
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, userID string, req SubmitLeaveRequest) (LeaveResponse, error)
	Decide(ctx context.Context, userID, id string, decision Decision, req DecideLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, userID, id string, req DecideLeaveRequest) (LeaveResponse, error)
	Reject(ctx context.Context, userID, id string, req DecideLeaveRequest) (LeaveResponse, error)
	GetByID(ctx context.Context, userID, id string) (LeaveResponse, error)
	ListMine(ctx context.Context, userID string) ([]LeaveResponse, error)
	ListPending(ctx context.Context, userID string) ([]LeaveResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	ledger    ledger.Repository
	employees employee.Repository
	audit     audit.Repository
	outbox    kafka.OutboxRepository
	calendar  calendar.Service
	actors    ActorResolver
	policy    authz.Policy

	annualName  string
	loc         *time.Location
	maxSpanDays int
	now         func() time.Time

	tracer trace.Tracer
	logger *zap.Logger
}

func NewService(deps Dependencies, cfg Config, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}

	if cfg.AnnualLeaveTypeName == "" {
		cfg.AnnualLeaveTypeName = DefaultAnnualLeaveTypeName
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MaxSpanDays <= 0 {
		cfg.MaxSpanDays = DefaultMaxSpanDays
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &service{
		db:          deps.DB,
		repo:        deps.Repo,
		ledger:      deps.Ledger,
		employees:   deps.Employees,
		audit:       deps.Audit,
		outbox:      deps.Outbox,
		calendar:    deps.Calendar,
		actors:      deps.Actors,
		policy:      deps.Policy,
		annualName:  cfg.AnnualLeaveTypeName,
		loc:         cfg.Location,
		maxSpanDays: cfg.MaxSpanDays,
		now:         cfg.Now,
		tracer:      otel.Tracer(tracerName),
		logger:      l,
	}
}

func (s *service) Submit(ctx context.Context, userID string, req SubmitLeaveRequest) (resp LeaveResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "leave.submit")
	defer func() { endSpan(span, err) }()

	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("submit leave requested",
		zap.String("user_id", userID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	actor, err := s.resolveActor(ctx, userID)
	if err != nil {
		return LeaveResponse{}, err
	}
	if actor.EmployeeID == "" {
		return LeaveResponse{}, leaveerrors.ErrNoEmployeeProfile
	}
	span.SetAttributes(attribute.String("leave.employee_id", actor.EmployeeID))

	period, leaveTypeID, err := s.validateSubmitRequest(req)
	if err != nil {
		log.Warn("submit leave validation failed", zap.String("employee_id", actor.EmployeeID), zap.Error(err))
		return LeaveResponse{}, err
	}

	days, err := s.calendar.ChargeableDays(ctx, period.Start, period.End)
	if err != nil {
		log.Error("submit leave chargeable days failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("submit leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ledgerTx := s.ledger.WithTx(tx)

	lt, err := qtx.FindLeaveType(ctx, leaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveTypeNotFound
		}
		log.Error("submit leave find leave type failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	// the employee row lock serializes submissions of one employee, which
	// makes the overlap read below authoritative
	balance, err := ledgerTx.Balance(ctx, actor.EmployeeID, true)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return LeaveResponse{}, leaveerrors.ErrNoEmployeeProfile
		}
		log.Error("submit leave lock employee failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if s.isAnnual(lt) && balance < days {
		log.Warn("submit leave insufficient balance",
			zap.String("employee_id", actor.EmployeeID),
			zap.Int("balance", balance),
			zap.Int("days", days),
		)
		return LeaveResponse{}, leaveerrors.InsufficientBalance(balance, days)
	}

	active, err := qtx.FindActiveByEmployee(ctx, actor.EmployeeID)
	if err != nil {
		log.Error("submit leave load active requests failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if HasOverlap(period, active) {
		log.Warn("submit leave overlap detected",
			zap.String("employee_id", actor.EmployeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrConflictingPeriod
	}

	l := &Leave{
		ID:          uuid.New(),
		EmployeeID:  actor.EmployeeID,
		LeaveTypeID: lt.ID,
		StartDate:   period.Start,
		EndDate:     period.End,
		TotalDays:   days,
		Reason:      strings.TrimSpace(req.Reason),
		Status:      StatusPending,
		SubmittedAt: s.now().UTC(),
	}
	if err := qtx.Create(ctx, l); err != nil {
		log.Error("submit leave persist failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	l.LeaveType = lt

	entry := &audit.Entry{
		ActorID:   actor.UserID,
		Action:    audit.ActionSubmitted,
		RequestID: l.ID,
		Detail:    submissionDetail(l, lt),
		CreatedAt: l.SubmittedAt,
	}
	if err := s.audit.WithTx(tx).Record(ctx, entry); err != nil {
		log.Error("submit leave audit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.enqueueEvent(ctx, tx, events.LeaveSubmitted, l, actor, nil); err != nil {
		log.Error("submit leave enqueue event failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("submit leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	log.Info("submit leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", l.EmployeeID),
		zap.Int("days", days),
	)

	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, userID, id string, req DecideLeaveRequest) (LeaveResponse, error) {
	return s.Decide(ctx, userID, id, DecisionApprove, req)
}

func (s *service) Reject(ctx context.Context, userID, id string, req DecideLeaveRequest) (LeaveResponse, error) {
	return s.Decide(ctx, userID, id, DecisionReject, req)
}

func (s *service) Decide(ctx context.Context, userID, id string, decision Decision, req DecideLeaveRequest) (resp LeaveResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "leave.decide",
		trace.WithAttributes(
			attribute.String("leave.id", id),
			attribute.String("leave.decision", string(decision)),
		),
	)
	defer func() { endSpan(span, err) }()

	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("decide leave requested",
		zap.String("leave_id", id),
		zap.String("user_id", userID),
		zap.String("decision", string(decision)),
	)

	if decision != DecisionApprove && decision != DecisionReject {
		return LeaveResponse{}, leaveerrors.ErrInvalidDecision
	}
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	actor, err := s.resolveActor(ctx, userID)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("decide leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ledgerTx := s.ledger.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		log.Error("decide leave lock request failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if l.Status != StatusPending {
		log.Warn("decide leave already decided",
			zap.String("leave_id", id),
			zap.String("status", string(l.Status)),
		)
		return LeaveResponse{}, leaveerrors.ErrAlreadyDecided
	}

	ownerSuperiorID, err := s.employees.WithTx(tx).FindSuperiorID(ctx, l.EmployeeID)
	if err != nil {
		log.Error("decide leave load owner failed", zap.String("employee_id", l.EmployeeID), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !s.policy.CanDecide(actor, ownerSuperiorID) {
		log.Warn("decide leave forbidden",
			zap.String("leave_id", id),
			zap.String("actor_id", actor.UserID),
			zap.String("role", actor.Role.String()),
		)
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}

	// recomputed from the database so a holiday added after submission is
	// honoured even while the cached year is stale
	days, err := s.calendar.FreshChargeableDays(ctx, l.StartDate, l.EndDate)
	if err != nil {
		log.Error("decide leave chargeable days failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	lt, err := qtx.FindLeaveType(ctx, l.LeaveTypeID)
	if err != nil {
		log.Error("decide leave find leave type failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	var balanceAfter *int
	if decision == DecisionApprove && s.isAnnual(lt) {
		if _, err := ledgerTx.Balance(ctx, l.EmployeeID, true); err != nil {
			log.Error("decide leave lock employee failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		if err := ledgerTx.CheckSufficient(ctx, l.EmployeeID, days); err != nil {
			log.Warn("decide leave insufficient balance",
				zap.String("leave_id", id),
				zap.String("employee_id", l.EmployeeID),
				zap.Int("days", days),
				zap.Error(err),
			)
			return LeaveResponse{}, mapRepositoryError(err)
		}
		newBalance, err := ledgerTx.Debit(ctx, l.EmployeeID, days)
		if err != nil {
			log.Warn("decide leave debit failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, mapRepositoryError(err)
		}
		balanceAfter = &newBalance
	}

	decidedAt := s.now().UTC()
	var comment *string
	if c := strings.TrimSpace(req.Comment); c != "" {
		comment = &c
	}

	updated, err := qtx.UpdateDecision(ctx, l.ID, DecisionUpdate{
		Status:    decision.Status(),
		TotalDays: days,
		DecidedBy: actor.UserID,
		DecidedAt: decidedAt,
		Comment:   comment,
	})
	if err != nil {
		log.Error("decide leave update status failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if !updated {
		return LeaveResponse{}, leaveerrors.ErrAlreadyDecided
	}

	l.Status = decision.Status()
	l.TotalDays = days
	l.DecidedBy = &actor.UserID
	l.DecidedAt = &decidedAt
	l.DecisionComment = comment
	l.LeaveType = lt

	action := audit.ActionRejected
	if decision == DecisionApprove {
		action = audit.ActionApproved
	}
	entry := &audit.Entry{
		ActorID:   actor.UserID,
		Action:    action,
		RequestID: l.ID,
		Detail:    decisionDetail(l, balanceAfter),
		CreatedAt: decidedAt,
	}
	if err := s.audit.WithTx(tx).Record(ctx, entry); err != nil {
		log.Error("decide leave audit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	eventType := events.LeaveRejected
	if decision == DecisionApprove {
		eventType = events.LeaveApproved
	}
	if err := s.enqueueEvent(ctx, tx, eventType, l, actor, balanceAfter); err != nil {
		log.Error("decide leave enqueue event failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("decide leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	log.Info("decide leave success",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.UserID),
		zap.String("status", string(l.Status)),
		zap.Int("days", days),
	)

	resp = mapToResponse(*l)
	resp.BalanceAfter = balanceAfter
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, userID, id string) (LeaveResponse, error) {
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	actor, err := s.resolveActor(ctx, userID)
	if err != nil {
		return LeaveResponse{}, err
	}

	l, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	var superiorID *string
	if l.EmployeeID != actor.EmployeeID {
		superiorID, err = s.employees.FindSuperiorID(ctx, l.EmployeeID)
		if err != nil {
			return LeaveResponse{}, err
		}
	}
	if !s.policy.CanView(actor, l.EmployeeID, superiorID) {
		return LeaveResponse{}, leaveerrors.ErrViewForbidden
	}

	history, err := s.audit.FindByRequest(ctx, l.ID)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("get leave history failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	resp := mapToResponse(*l)
	resp.History = mapHistory(history)
	return resp, nil
}

func (s *service) ListMine(ctx context.Context, userID string) ([]LeaveResponse, error) {
	actor, err := s.resolveActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actor.EmployeeID == "" {
		return nil, leaveerrors.ErrNoEmployeeProfile
	}

	leaves, err := s.repo.FindByEmployee(ctx, actor.EmployeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

// ListPending returns the pending requests actor may decide: everything for
// admin and HR, direct reports' requests for anyone else.
func (s *service) ListPending(ctx context.Context, userID string) ([]LeaveResponse, error) {
	actor, err := s.resolveActor(ctx, userID)
	if err != nil {
		return nil, err
	}

	var scope []string
	if !s.policy.DecidesAll(actor) {
		if actor.EmployeeID == "" {
			return []LeaveResponse{}, nil
		}
		subs, err := s.employees.FindSubordinates(ctx, actor.EmployeeID)
		if err != nil {
			return nil, err
		}
		scope = make([]string, 0, len(subs))
		for _, e := range subs {
			scope = append(scope, e.ID)
		}
	}

	leaves, err := s.repo.FindPending(ctx, scope)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) resolveActor(ctx context.Context, userID string) (authz.Actor, error) {
	actor, err := s.actors.GetActor(ctx, userID)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("resolve actor failed", zap.String("user_id", userID), zap.Error(err))
		return authz.Actor{}, err
	}
	return actor, nil
}

func (s *service) isAnnual(lt *LeaveType) bool {
	return lt != nil && lt.Name == s.annualName
}

func (s *service) today() time.Time {
	return calendar.DateOf(s.now().In(s.loc))
}

func (s *service) validateSubmitRequest(req SubmitLeaveRequest) (DateRange, uuid.UUID, error) {
	leaveTypeID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return DateRange{}, uuid.Nil, leaveerrors.ErrInvalidLeaveTypeID
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return DateRange{}, uuid.Nil, leaveerrors.ErrInvalidDateFormat
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return DateRange{}, uuid.Nil, leaveerrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return DateRange{}, uuid.Nil, leaveerrors.ErrInvalidDateRange
	}
	// checked before the calendar walks the range
	if start.AddDate(0, 0, s.maxSpanDays-1).Before(end) {
		return DateRange{}, uuid.Nil, leaveerrors.ErrInvalidDateRange
	}
	if start.Before(s.today()) {
		return DateRange{}, uuid.Nil, leaveerrors.ErrStartDateInPast
	}

	return DateRange{Start: start, End: end}, leaveTypeID, nil
}

func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, eventType string, l *Leave, actor authz.Actor, balanceAfter *int) error {
	payload := events.LeaveLifecycleEvent{
		EventType:    eventType,
		LeaveID:      l.ID.String(),
		EmployeeID:   l.EmployeeID,
		ActorID:      actor.UserID,
		LeaveTypeID:  l.LeaveTypeID.String(),
		Status:       string(l.Status),
		StartDate:    l.StartDate.Format(calendar.DateLayout),
		EndDate:      l.EndDate.Format(calendar.DateLayout),
		Days:         l.TotalDays,
		BalanceAfter: balanceAfter,
		OccurredAt:   s.now().UTC(),
	}
	if l.DecisionComment != nil {
		payload.Comment = *l.DecisionComment
	}

	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		aggregateType,
		l.ID.String(),
		eventType,
		events.LeaveLifecycleTopic,
		payload,
	)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, event)
}

func submissionDetail(l *Leave, lt *LeaveType) string {
	return fmt.Sprintf("%s from %s to %s (%d day(s))",
		lt.Name,
		l.StartDate.Format(calendar.DateLayout),
		l.EndDate.Format(calendar.DateLayout),
		l.TotalDays,
	)
}

func decisionDetail(l *Leave, balanceAfter *int) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(l.Status)))
	fmt.Fprintf(&b, " %s to %s", l.StartDate.Format(calendar.DateLayout), l.EndDate.Format(calendar.DateLayout))
	if balanceAfter != nil {
		fmt.Fprintf(&b, "; %d day(s) deducted, balance %d", l.TotalDays, *balanceAfter)
	}
	if l.DecisionComment != nil {
		fmt.Fprintf(&b, "; comment: %s", *l.DecisionComment)
	}
	return b.String()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func parseDate(v string) (time.Time, error) {
	return time.Parse(calendar.DateLayout, strings.TrimSpace(v))
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		EmployeeID:      l.EmployeeID,
		LeaveTypeID:     l.LeaveTypeID.String(),
		StartDate:       l.StartDate.Format(calendar.DateLayout),
		EndDate:         l.EndDate.Format(calendar.DateLayout),
		TotalDays:       l.TotalDays,
		Reason:          l.Reason,
		Status:          string(l.Status),
		SubmittedAt:     l.SubmittedAt.Format(time.RFC3339),
		DecidedBy:       l.DecidedBy,
		DecisionComment: l.DecisionComment,
	}
	if l.LeaveType != nil {
		resp.LeaveTypeName = l.LeaveType.Name
	}
	if l.DecidedAt != nil {
		v := l.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		resp = append(resp, mapToResponse(l))
	}
	return resp
}

func mapHistory(entries []audit.Entry) []HistoryEntryResponse {
	resp := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, HistoryEntryResponse{
			ActorID:   e.ActorID,
			Action:    string(e.Action),
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
