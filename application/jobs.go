package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"guildkeeper/domain/interfaces"
	"guildkeeper/domain/services"
	"guildkeeper/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

const (
	JobVoiceScan    = "voice_scan"
	JobMonthlyReset = "monthly_reset"
	JobBanExpiry    = "ban_expiry"
)

// VoiceScanJob pays members who are actively talking together in voice
type VoiceScanJob struct {
	uowFactory UnitOfWorkFactory
	discovery  GuildDiscoveryService
	presence   interfaces.PresenceSource
	interval   time.Duration
	now        func() time.Time
}

// NewVoiceScanJob creates the voice scan job
func NewVoiceScanJob(uowFactory UnitOfWorkFactory, discovery GuildDiscoveryService, presence interfaces.PresenceSource, interval time.Duration) *VoiceScanJob {
	return &VoiceScanJob{
		uowFactory: uowFactory,
		discovery:  discovery,
		presence:   presence,
		interval:   interval,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used to stamp awards
func (j *VoiceScanJob) WithClock(now func() time.Time) *VoiceScanJob {
	j.now = now
	return j
}

func (j *VoiceScanJob) Name() string            { return JobVoiceScan }
func (j *VoiceScanJob) Interval() time.Duration { return j.interval }

func (j *VoiceScanJob) Run(ctx context.Context) error {
	guildIDs, err := j.discovery.ConnectedGuildIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list guilds: %w", err)
	}

	at := j.now()
	failed := forEachGuild(ctx, JobVoiceScan, guildIDs, func(ctx context.Context, guildID int64) error {
		return j.scanGuild(ctx, guildID, at)
	})
	if failed > 0 {
		return fmt.Errorf("voice scan failed for %d of %d guilds", failed, len(guildIDs))
	}
	return nil
}

func (j *VoiceScanJob) scanGuild(ctx context.Context, guildID int64, at time.Time) error {
	channels, err := j.presence.VoiceChannels(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to read voice presence: %w", err)
	}

	var awarded []int64
	for _, channel := range channels {
		awarded = append(awarded, channel.QualifyingMembers()...)
	}
	if len(awarded) == 0 {
		return nil
	}

	uow := j.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger := services.NewLedgerService(uow.MemberLedgerRepository(), uow.MonthlyResetRepository(), uow.EventBus())
	for _, memberID := range awarded {
		if _, err := ledger.AwardVoiceActivity(ctx, memberID, at); err != nil {
			return err
		}
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit voice awards: %w", err)
	}

	for range awarded {
		observability.GetMetrics().RecordActivityAward(observability.AwardSourceVoice)
	}
	log.WithFields(log.Fields{
		"guild_id": guildID,
		"awarded":  len(awarded),
	}).Debug("Voice activity awarded")
	return nil
}

// MonthlyResetJob zeroes monthly activity on the first day of each month.
// The in-memory guard avoids repeated work within a day; the persisted
// period marker keeps a restart on day 1 from resetting twice.
type MonthlyResetJob struct {
	uowFactory UnitOfWorkFactory
	discovery  GuildDiscoveryService
	interval   time.Duration
	now        func() time.Time

	mu        sync.Mutex
	doneToday string
}

// NewMonthlyResetJob creates the monthly reset job
func NewMonthlyResetJob(uowFactory UnitOfWorkFactory, discovery GuildDiscoveryService, interval time.Duration) *MonthlyResetJob {
	return &MonthlyResetJob{
		uowFactory: uowFactory,
		discovery:  discovery,
		interval:   interval,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used to decide when a month starts
func (j *MonthlyResetJob) WithClock(now func() time.Time) *MonthlyResetJob {
	j.now = now
	return j
}

func (j *MonthlyResetJob) Name() string            { return JobMonthlyReset }
func (j *MonthlyResetJob) Interval() time.Duration { return j.interval }

func (j *MonthlyResetJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	today := now.Format("2006-01-02")

	j.mu.Lock()
	defer j.mu.Unlock()

	if now.Day() != 1 {
		j.doneToday = ""
		return nil
	}
	if j.doneToday == today {
		return nil
	}

	guildIDs, err := j.knownGuilds(ctx)
	if err != nil {
		return err
	}

	period := now.Format("2006-01")
	failed := forEachGuild(ctx, JobMonthlyReset, guildIDs, func(ctx context.Context, guildID int64) error {
		return j.resetGuild(ctx, guildID, period, now)
	})
	if failed > 0 {
		// Leave the guard unset so the next tick retries the failed guilds
		return fmt.Errorf("monthly reset failed for %d of %d guilds", failed, len(guildIDs))
	}

	j.doneToday = today
	log.WithFields(log.Fields{
		"period": period,
		"guilds": len(guildIDs),
	}).Info("Monthly activity reset completed")
	return nil
}

// knownGuilds merges connected guilds with guilds that have stored ledgers
func (j *MonthlyResetJob) knownGuilds(ctx context.Context) ([]int64, error) {
	connected, err := j.discovery.ConnectedGuildIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list connected guilds: %w", err)
	}

	uow := j.uowFactory.CreateForGuild(0)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger := services.NewLedgerService(uow.MemberLedgerRepository(), uow.MonthlyResetRepository(), uow.EventBus())
	stored, err := ledger.ListGuildIDs(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(connected)+len(stored))
	var guildIDs []int64
	for _, ids := range [][]int64{connected, stored} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			guildIDs = append(guildIDs, id)
		}
	}
	sort.Slice(guildIDs, func(a, b int) bool { return guildIDs[a] < guildIDs[b] })
	return guildIDs, nil
}

func (j *MonthlyResetJob) resetGuild(ctx context.Context, guildID int64, period string, at time.Time) error {
	uow := j.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger := services.NewLedgerService(uow.MemberLedgerRepository(), uow.MonthlyResetRepository(), uow.EventBus())
	performed, err := ledger.ResetMonthly(ctx, guildID, period, at)
	if err != nil {
		return err
	}
	if !performed {
		return nil
	}
	return uow.Commit()
}

// BanExpiryJob lifts timed bans that have run out
type BanExpiryJob struct {
	coordinator *EnforcementCoordinator
	interval    time.Duration
	now         func() time.Time
}

// NewBanExpiryJob creates the ban expiry job
func NewBanExpiryJob(coordinator *EnforcementCoordinator, interval time.Duration) *BanExpiryJob {
	return &BanExpiryJob{
		coordinator: coordinator,
		interval:    interval,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (j *BanExpiryJob) Name() string            { return JobBanExpiry }
func (j *BanExpiryJob) Interval() time.Duration { return j.interval }

func (j *BanExpiryJob) Run(ctx context.Context) error {
	report, err := j.coordinator.SweepExpiredBans(ctx, j.now())
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d expired bans could not be lifted", report.Failed, report.Expired)
	}
	return nil
}
