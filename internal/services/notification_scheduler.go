package services

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/creatorcoach-backend/internal/data/repos"
	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/modules/schedule"
	"github.com/yungbote/creatorcoach-backend/internal/observability"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/breaker"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
	"github.com/yungbote/creatorcoach-backend/internal/platform/redis"
	"github.com/yungbote/creatorcoach-backend/internal/platform/sendgrid"
	"github.com/yungbote/creatorcoach-backend/internal/platform/twilio"
)

// Reminder is the content of one daily nudge.
type Reminder struct {
	Date      string
	PlanTitle string
	DayNumber int
	TaskTitle string
	Tip       string
	Platform  string
}

// ReminderSender delivers reminders over one channel.
type ReminderSender interface {
	Channel() string
	Send(ctx context.Context, to string, r Reminder) error
}

type NotificationConfig struct {
	// Tolerance is how far the wall clock may be from the user's notification time.
	Tolerance   time.Duration
	Concurrency int
	ClaimTTL    time.Duration
}

func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{Tolerance: 5 * time.Minute, Concurrency: 8, ClaimTTL: 36 * time.Hour}
}

type NotificationSummary struct {
	Channel    string `json:"channel"`
	Considered int    `json:"considered"`
	Sent       int    `json:"sent"`
	Skipped    int    `json:"skipped"`
	Errors     int    `json:"errors"`
}

type NotificationScheduler interface {
	Run(ctx context.Context, channel string, now time.Time) (*NotificationSummary, error)
}

type notificationScheduler struct {
	log          *logger.Logger
	cfg          NotificationConfig
	claims       redis.Claims
	settingsRepo repos.UserSettingsRepo
	planRepo     repos.ContentPlanRepo
	taskRepo     repos.PlanTaskRepo
	senders      map[string]ReminderSender
	breakers     map[string]*breaker.Breaker
}

// NewNotificationScheduler wires one sender per channel. Nil senders mean the
// channel is not configured.
func NewNotificationScheduler(
	log *logger.Logger,
	cfg NotificationConfig,
	claims redis.Claims,
	settingsRepo repos.UserSettingsRepo,
	planRepo repos.ContentPlanRepo,
	taskRepo repos.PlanTaskRepo,
	senders ...ReminderSender,
) NotificationScheduler {
	def := DefaultNotificationConfig()
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = def.ClaimTTL
	}
	ns := &notificationScheduler{
		log:          log.With("service", "NotificationScheduler"),
		cfg:          cfg,
		claims:       claims,
		settingsRepo: settingsRepo,
		planRepo:     planRepo,
		taskRepo:     taskRepo,
		senders:      map[string]ReminderSender{},
		breakers:     map[string]*breaker.Breaker{},
	}
	for _, s := range senders {
		if s == nil {
			continue
		}
		bcfg := breaker.DefaultConfig("notify_" + s.Channel())
		bcfg.OnStateChange = func(name string, open bool) {
			observability.Current().SetBreakerOpen(name, open)
		}
		ns.senders[s.Channel()] = s
		ns.breakers[s.Channel()] = breaker.New(ns.log, bcfg)
	}
	return ns
}

type dueReminder struct {
	settings *types.UserSettings
	to       string
	date     string
	reminder Reminder
}

func (ns *notificationScheduler) Run(ctx context.Context, channel string, now time.Time) (*NotificationSummary, error) {
	channel = strings.ToLower(strings.TrimSpace(channel))
	if channel != types.ChannelEmail && channel != types.ChannelSMS {
		return nil, apierr.BadRequest("unknown channel %q", channel)
	}
	sender, ok := ns.senders[channel]
	if !ok {
		return nil, apierr.New(http.StatusServiceUnavailable, apierr.CodeUpstream, fmt.Errorf("%s reminders are not configured", channel))
	}
	start := time.Now()
	defer func() { observability.Current().ObserveNotificationSweep(channel, time.Since(start)) }()

	dbc := dbctx.Context{Ctx: ctx}
	candidates, err := ns.settingsRepo.ListNotifiable(dbc, channel)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list notifiable users: %w", err))
	}
	summary := &NotificationSummary{Channel: channel, Considered: len(candidates)}

	inWindow := make([]*types.UserSettings, 0, len(candidates))
	for _, st := range candidates {
		if ns.inWindow(st, channel, now) {
			inWindow = append(inWindow, st)
		} else {
			summary.Skipped++
		}
	}

	due, skipped, err := ns.resolveDue(dbc, channel, inWindow, now)
	if err != nil {
		return nil, err
	}
	summary.Skipped += skipped

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ns.cfg.Concurrency)
	for _, d := range due {
		d := d
		g.Go(func() error {
			outcome := ns.dispatch(gctx, channel, sender, d)
			observability.Current().IncNotification(channel, outcome)
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case "sent":
				summary.Sent++
			case "claimed":
				summary.Skipped++
			default:
				summary.Errors++
			}
			return nil
		})
	}
	_ = g.Wait()

	ns.log.Info("notification sweep finished",
		"channel", channel,
		"considered", summary.Considered,
		"sent", summary.Sent,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
	)
	return summary, ctx.Err()
}

// inWindow checks the cheap per-user conditions: not yet sent today and the
// local clock within tolerance of the notification time.
func (ns *notificationScheduler) inWindow(st *types.UserSettings, channel string, now time.Time) bool {
	loc := userLocation(st.Timezone)
	local := now.In(loc)
	today := local.Format("2006-01-02")
	if st.LastSentDate(channel) == today {
		return false
	}
	hm, err := time.Parse("15:04", st.NotificationTime)
	if err != nil {
		return false
	}
	y, m, d := local.Date()
	target := time.Date(y, m, d, hm.Hour(), hm.Minute(), 0, 0, loc)
	diff := local.Sub(target)
	if diff < 0 {
		diff = -diff
	}
	return diff <= ns.cfg.Tolerance
}

// resolveDue loads plans and tasks for the users in the window and keeps those
// with an incomplete task on a posting day of a current plan.
func (ns *notificationScheduler) resolveDue(dbc dbctx.Context, channel string, users []*types.UserSettings, now time.Time) ([]dueReminder, int, error) {
	if len(users) == 0 {
		return nil, 0, nil
	}
	userIDs := make([]uuid.UUID, 0, len(users))
	for _, st := range users {
		userIDs = append(userIDs, st.UserID)
	}
	plans, err := ns.planRepo.ListByUserIDs(dbc, userIDs)
	if err != nil {
		return nil, 0, apierr.Internal(fmt.Errorf("list plans: %w", err))
	}

	type current struct {
		plan      *types.ContentPlan
		dayNumber int
	}
	byUser := map[uuid.UUID][]current{}
	localNow := map[uuid.UUID]time.Time{}
	for _, st := range users {
		localNow[st.UserID] = now.In(userLocation(st.Timezone))
	}
	planIDs := []uuid.UUID{}
	for _, p := range plans {
		local, ok := localNow[p.UserID]
		if !ok {
			continue
		}
		n, inside := schedule.DayNumberOn(p.StartDate, p.Duration, local)
		if !inside || !schedule.IsPostingDay(p.StartDate, n, schedule.SetFromStored(p.PostingDays)) {
			continue
		}
		byUser[p.UserID] = append(byUser[p.UserID], current{plan: p, dayNumber: n})
		planIDs = append(planIDs, p.ID)
	}

	tasksByPlanDay := map[uuid.UUID]map[int]*types.PlanTask{}
	if len(planIDs) > 0 {
		tasks, err := ns.taskRepo.ListByPlanIDs(dbc, planIDs)
		if err != nil {
			return nil, 0, apierr.Internal(fmt.Errorf("list tasks: %w", err))
		}
		for _, t := range tasks {
			if tasksByPlanDay[t.PlanID] == nil {
				tasksByPlanDay[t.PlanID] = map[int]*types.PlanTask{}
			}
			tasksByPlanDay[t.PlanID][t.DayNumber] = t
		}
	}

	due := []dueReminder{}
	skipped := 0
	for _, st := range users {
		to, ok := st.Destination(channel)
		if !ok {
			skipped++
			continue
		}
		cands := byUser[st.UserID]
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].plan.StartDate.Before(cands[j].plan.StartDate) })
		var picked *dueReminder
		for _, c := range cands {
			t := tasksByPlanDay[c.plan.ID][c.dayNumber]
			if t == nil || t.Completed {
				continue
			}
			r := Reminder{
				Date:      localNow[st.UserID].Format("2006-01-02"),
				PlanTitle: c.plan.Title,
				DayNumber: c.dayNumber,
				TaskTitle: t.PostTitle,
				Platform:  t.Platform,
			}
			if d, ok := c.plan.Descriptor(c.dayNumber); ok {
				if r.TaskTitle == "" {
					r.TaskTitle = d.Task
				}
				r.Tip = d.Tip
			}
			picked = &dueReminder{settings: st, to: to, date: r.Date, reminder: r}
			break
		}
		if picked == nil {
			skipped++
			continue
		}
		due = append(due, *picked)
	}
	return due, skipped, nil
}

func claimKey(channel string, userID uuid.UUID, date string) string {
	return fmt.Sprintf("notify:%s:%s:%s", channel, userID, date)
}

// dispatch returns the outcome label: sent, claimed or error.
func (ns *notificationScheduler) dispatch(ctx context.Context, channel string, sender ReminderSender, d dueReminder) string {
	userID := d.settings.UserID
	key := claimKey(channel, userID, d.date)
	ok, err := ns.claims.Claim(ctx, key, ns.cfg.ClaimTTL)
	if err != nil {
		ns.log.Warn("notification claim failed", "user_id", userID, "channel", channel, "error", err)
		return "error"
	}
	if !ok {
		return "claimed"
	}

	err = ns.breakers[channel].Run(func() error {
		return sender.Send(ctx, d.to, d.reminder)
	})
	if err != nil {
		if rerr := ns.claims.Release(context.WithoutCancel(ctx), key); rerr != nil {
			ns.log.Warn("notification claim release failed", "user_id", userID, "error", rerr)
		}
		if breaker.IsOpen(err) {
			ns.log.Warn("notification provider breaker open", "channel", channel)
		} else {
			ns.log.Warn("notification send failed", "user_id", userID, "channel", channel, "error", err)
		}
		return "error"
	}

	if err := ns.settingsRepo.StampSentDate(dbctx.Context{Ctx: context.WithoutCancel(ctx)}, userID, channel, d.date); err != nil {
		// The claim outlives the day, so a missed stamp cannot cause a resend.
		ns.log.Error("stamp sent date failed", "user_id", userID, "channel", channel, "error", err)
	}
	return "sent"
}

func userLocation(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

type emailSender struct {
	client sendgrid.Client
	from   sendgrid.EmailAddress
	appURL string
}

// NewEmailSender sends reminders through SendGrid.
func NewEmailSender(client sendgrid.Client, from sendgrid.EmailAddress, appURL string) ReminderSender {
	if client == nil {
		return nil
	}
	return &emailSender{client: client, from: from, appURL: appURL}
}

func (s *emailSender) Channel() string { return types.ChannelEmail }

func (s *emailSender) Send(ctx context.Context, to string, r Reminder) error {
	var text strings.Builder
	fmt.Fprintf(&text, "Day %d of %s\n\nToday's task: %s\n", r.DayNumber, r.PlanTitle, r.TaskTitle)
	if r.Platform != "" {
		fmt.Fprintf(&text, "Platform: %s\n", r.Platform)
	}
	if r.Tip != "" {
		fmt.Fprintf(&text, "Tip: %s\n", r.Tip)
	}
	if s.appURL != "" {
		fmt.Fprintf(&text, "\nOpen your calendar: %s\n", s.appURL)
	}
	_, err := s.client.Send(ctx, sendgrid.SendEmailRequest{
		From:       s.from,
		To:         []sendgrid.EmailAddress{{Email: to}},
		Subject:    "Today's content task: " + r.TaskTitle,
		Text:       text.String(),
		Categories: []string{"daily_reminder"},
		CustomArgs: map[string]string{"reminder_date": r.Date},
	})
	return err
}

type smsSender struct {
	client twilio.Client
}

// NewSMSSender sends reminders through Twilio.
func NewSMSSender(client twilio.Client) ReminderSender {
	if client == nil {
		return nil
	}
	return &smsSender{client: client}
}

func (s *smsSender) Channel() string { return types.ChannelSMS }

func (s *smsSender) Send(ctx context.Context, to string, r Reminder) error {
	body := fmt.Sprintf("Day %d: %s", r.DayNumber, r.TaskTitle)
	if r.Tip != "" {
		body += " Tip: " + r.Tip
	}
	_, err := s.client.SendSMS(ctx, to, truncateRunes(body, 300))
	return err
}
