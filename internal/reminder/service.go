// Package reminder runs the recurring calendar poll that emits meeting prep requests.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/memohai/meetprep/internal/calendar"
	"github.com/memohai/meetprep/internal/users"
)

var (
	ErrRunInProgress  = errors.New("reminder run already in progress")
	ErrAlreadyStarted = errors.New("reminder scheduler already started")
)

type Service struct {
	users      UserLister
	source     MeetingSource
	ledger     Ledger
	dispatcher Dispatcher
	interval   time.Duration
	now        func() time.Time
	logger     *slog.Logger

	// running serialises runs; a tick that finds it held is skipped.
	running sync.Mutex

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

func NewService(log *slog.Logger, lister UserLister, source MeetingSource, ledger Ledger, dispatcher Dispatcher, interval time.Duration) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		users:      lister,
		source:     source,
		ledger:     ledger,
		dispatcher: dispatcher,
		interval:   interval,
		now:        time.Now,
		logger:     log.With(slog.String("service", "reminder")),
	}
}

// Start registers the recurring run. The first run happens one interval after Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return ErrAlreadyStarted
	}
	if s.interval <= 0 {
		return fmt.Errorf("invalid reminder interval %s", s.interval)
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{s.logger}), cron.SkipIfStillRunning(cronLogger{s.logger})))
	if _, err := c.AddFunc("@every "+s.interval.String(), func() { s.tick(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("schedule reminder run: %w", err)
	}
	c.Start()
	s.cron = c
	s.cancel = cancel
	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))
	return nil
}

// Stop unregisters the recurring run and waits for an active run to finish or ctx to end.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	done := c.Stop()
	select {
	case <-done.Done():
		cancel()
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

func (s *Service) tick(ctx context.Context) {
	report, err := s.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			s.logger.Warn("previous run still active, tick skipped")
			return
		}
		s.logger.Error("reminder run failed", slog.String("run_id", report.RunID), slog.Any("error", err))
	}
}

// RunOnce performs one full pass over the authorized users. Per-user and
// per-meeting failures are collected into the report; only a failure to list
// users fails the run.
func (s *Service) RunOnce(ctx context.Context) (Report, error) {
	if !s.running.TryLock() {
		return Report{}, ErrRunInProgress
	}
	defer s.running.Unlock()

	report := Report{RunID: uuid.NewString(), StartedAt: s.now().UTC()}
	log := s.logger.With(slog.String("run_id", report.RunID))
	log.Info("checking calendars")

	list, err := s.users.ListAuthorized(ctx)
	if err != nil {
		report.FinishedAt = s.now().UTC()
		return report, fmt.Errorf("load authorized users: %w", err)
	}
	for _, u := range list {
		if !u.Authorized() {
			continue
		}
		report.Users = append(report.Users, s.processUser(ctx, log, u))
	}
	report.FinishedAt = s.now().UTC()

	log.Info("run finished",
		slog.Int("users", len(report.Users)),
		slog.Int("dispatched", report.Count(StatusDispatched)),
		slog.Int("failed", report.Count(StatusFailed)),
		slog.Int("failed_users", len(report.FailedUsers())),
		slog.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}

func (s *Service) processUser(ctx context.Context, log *slog.Logger, u users.User) UserResult {
	result := UserResult{UserID: u.SlackUserID}
	log = log.With(slog.String("user_id", u.SlackUserID))

	meetings, err := s.source.DueMeetings(ctx, u, s.now())
	if err != nil {
		log.Error("calendar fetch failed, user skipped", slog.Any("error", err))
		result.Err = err
		result.Error = err.Error()
		return result
	}
	for m := range meetings {
		result.Meetings = append(result.Meetings, s.processMeeting(ctx, log, u, m))
	}
	return result
}

func (s *Service) processMeeting(ctx context.Context, log *slog.Logger, u users.User, m calendar.Meeting) MeetingResult {
	result := MeetingResult{MeetingID: m.ID, Title: m.Title}
	log = log.With(slog.String("meeting_id", m.ID))

	if s.ledger.HasBeenSent(ctx, u.SlackUserID, m.ID) {
		result.Status = StatusAlreadySent
		return result
	}
	log.Info("meeting due", slog.String("title", m.Title), slog.Time("start", m.Start))

	if err := s.dispatcher.Dispatch(ctx, u, m); err != nil {
		log.Error("dispatch failed", slog.Any("error", err))
		result.Status = StatusFailed
		result.Err = err
		result.Error = err.Error()
		return result
	}
	result.Status = StatusDispatched

	if err := s.ledger.RecordSent(ctx, u.SlackUserID, m.ID); err != nil {
		log.Error("record sent failed, reminder may repeat", slog.Any("error", err))
		result.RecordErr = err
		result.Error = err.Error()
	}
	return result
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, slog.Any("error", err))...)
}
