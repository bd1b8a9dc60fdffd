package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"guildkeeper/domain/interfaces"
	"guildkeeper/domain/services"

	log "github.com/sirupsen/logrus"
)

// VoiceReconciler rebuilds open voice sessions after a restart. Leaves that
// happened while the process was down were never observed, so stale sessions
// are dropped and members still in voice get a fresh session. Guilds listed
// in the first Ready start those sessions at the restart time; any guild
// resynced later (a join, a re-identify) starts them when it is seen.
type VoiceReconciler struct {
	uowFactory UnitOfWorkFactory
	presence   interfaces.PresenceSource
	now        func() time.Time

	mu            sync.Mutex
	cleared       bool
	readySeen     bool
	restartedAt   time.Time
	restartGuilds map[int64]bool
	resynced      map[int64]bool
}

// NewVoiceReconciler creates a reconciler
func NewVoiceReconciler(uowFactory UnitOfWorkFactory, presence interfaces.PresenceSource) *VoiceReconciler {
	return &VoiceReconciler{
		uowFactory: uowFactory,
		presence:   presence,
		now:        func() time.Time { return time.Now().UTC() },

		restartGuilds: make(map[int64]bool),
		resynced:      make(map[int64]bool),
	}
}

// WithClock replaces the time source used to stamp resynced sessions
func (r *VoiceReconciler) WithClock(now func() time.Time) *VoiceReconciler {
	r.now = now
	return r
}

// HandleReady clears stale sessions the first time the gateway reports
// ready and remembers which guilds were part of that first Ready.
func (r *VoiceReconciler) HandleReady(ctx context.Context, guildIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.clearOnce(ctx); err != nil {
		return err
	}
	if r.readySeen {
		return nil
	}
	r.readySeen = true
	for _, guildID := range guildIDs {
		if !r.resynced[guildID] {
			r.restartGuilds[guildID] = true
		}
	}
	return nil
}

// ResyncGuild opens sessions for every human member currently in one of the
// guild's voice channels. It returns the number of sessions opened.
func (r *VoiceReconciler) ResyncGuild(ctx context.Context, guildID int64) (int, error) {
	r.mu.Lock()
	// Guild events can race the ready handler
	if err := r.clearOnce(ctx); err != nil {
		r.mu.Unlock()
		return 0, err
	}
	startedAt := r.now()
	if r.restartGuilds[guildID] {
		startedAt = r.restartedAt
		delete(r.restartGuilds, guildID)
	}
	r.resynced[guildID] = true
	r.mu.Unlock()

	channels, err := r.presence.VoiceChannels(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to read voice presence: %w", err)
	}

	var memberIDs []int64
	for _, channel := range channels {
		memberIDs = append(memberIDs, channel.HumanMemberIDs()...)
	}
	if len(memberIDs) == 0 {
		return 0, nil
	}

	uow := r.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tracker := services.NewVoiceTracker(uow.VoiceSessionRepository(), uow.MemberLedgerRepository(), uow.EventBus())
	opened, err := tracker.ResyncMembers(ctx, memberIDs, startedAt)
	if err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit voice resync: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":   guildID,
		"in_voice":   len(memberIDs),
		"opened":     opened,
		"started_at": startedAt,
	}).Info("Resynced voice sessions")

	return opened, nil
}

// clearOnce must be called with r.mu held
func (r *VoiceReconciler) clearOnce(ctx context.Context) error {
	if r.cleared {
		return nil
	}

	restartedAt := r.now()

	// Guild 0 spans every guild
	uow := r.uowFactory.CreateForGuild(0)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tracker := services.NewVoiceTracker(uow.VoiceSessionRepository(), uow.MemberLedgerRepository(), uow.EventBus())
	cleared, err := tracker.ClearActiveSessions(ctx)
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit voice session cleanup: %w", err)
	}

	r.cleared = true
	r.restartedAt = restartedAt

	log.WithFields(log.Fields{
		"cleared":      cleared,
		"restarted_at": restartedAt,
	}).Info("Cleared voice sessions left over from the previous run")
	return nil
}
