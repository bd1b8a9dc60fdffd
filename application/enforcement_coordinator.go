package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/interfaces"
	"guildkeeper/domain/services"
	"guildkeeper/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// WarnResult is a recorded warning plus what happened to the enforcement it triggered
type WarnResult struct {
	*entities.WarnOutcome

	// Applied is true when the actuator carried out the enforcement
	Applied bool

	// EnforcementErr is set when the limit was reached but the action failed.
	// The warning itself is recorded either way.
	EnforcementErr error
}

// SweepReport summarises one pass over expired bans
type SweepReport struct {
	Expired int
	Lifted  int
	Failed  int
}

// EnforcementCoordinator applies warning enforcement and lifts expired bans.
// Platform calls happen between transactions, never inside one.
type EnforcementCoordinator struct {
	uowFactory UnitOfWorkFactory
	actuator   interfaces.EnforcementActuator
	locks      *MemberLocks
	now        func() time.Time
}

// NewEnforcementCoordinator creates the coordinator
func NewEnforcementCoordinator(uowFactory UnitOfWorkFactory, actuator interfaces.EnforcementActuator) *EnforcementCoordinator {
	return &EnforcementCoordinator{
		uowFactory: uowFactory,
		actuator:   actuator,
		locks:      NewMemberLocks(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func newEnforcementService(uow UnitOfWork) interfaces.EnforcementService {
	return services.NewEnforcementService(
		uow.WarningRepository(),
		uow.ActiveBanRepository(),
		uow.GuildSettingsRepository(),
		uow.EventBus(),
	)
}

// Warn records a warning and, when the member reached the guild limit,
// kicks or bans them. Warnings for one member are issued one at a time so
// every call sees the count its own insert produced.
func (c *EnforcementCoordinator) Warn(ctx context.Context, guildID, memberID, moderatorID int64, reason string) (*WarnResult, error) {
	release := c.locks.Lock(guildID, memberID)
	defer release()

	now := c.now()

	uow := c.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	outcome, err := newEnforcementService(uow).IssueWarning(ctx, guildID, memberID, moderatorID, reason, now)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit warning: %w", err)
	}

	result := &WarnResult{WarnOutcome: outcome}
	if !outcome.LimitReached() {
		return result, nil
	}

	decision := outcome.Enforcement
	if err := c.apply(ctx, decision); err != nil {
		log.WithFields(log.Fields{
			"guild_id":  guildID,
			"member_id": memberID,
			"action":    decision.Action,
			"error":     err,
		}).Warn("Warning limit reached but enforcement failed")
		observability.GetMetrics().RecordEnforcementAction(string(decision.Action), observability.OutcomeFailure)
		result.EnforcementErr = err
		return result, nil
	}
	observability.GetMetrics().RecordEnforcementAction(string(decision.Action), observability.OutcomeSuccess)
	result.Applied = true

	if err := c.record(ctx, decision); err != nil {
		// The member is already kicked or banned; losing the record only
		// means a timed ban will not be lifted automatically
		log.WithFields(log.Fields{
			"guild_id":  guildID,
			"member_id": memberID,
			"action":    decision.Action,
			"error":     err,
		}).Error("Enforcement applied but could not be recorded")
		result.EnforcementErr = err
	}

	return result, nil
}

func (c *EnforcementCoordinator) apply(ctx context.Context, decision *entities.EnforcementDecision) error {
	notice := enforcementNotice(decision)
	if err := c.actuator.NotifyMember(ctx, decision.GuildID, decision.MemberID, notice); err != nil {
		log.WithFields(log.Fields{
			"guild_id":  decision.GuildID,
			"member_id": decision.MemberID,
			"error":     err,
		}).Debug("Could not deliver enforcement notice")
	}

	switch decision.Action {
	case entities.EnforcementKick:
		return c.actuator.Kick(ctx, decision.GuildID, decision.MemberID, decision.Reason)
	case entities.EnforcementBan:
		return c.actuator.Ban(ctx, decision.GuildID, decision.MemberID, decision.Reason)
	default:
		return fmt.Errorf("unsupported enforcement action %q", decision.Action)
	}
}

func enforcementNotice(decision *entities.EnforcementDecision) string {
	if decision.Action == entities.EnforcementBan && decision.UnbanAt != nil {
		return fmt.Sprintf("You have been banned until %s. %s",
			decision.UnbanAt.UTC().Format("2006-01-02 15:04 MST"), decision.Reason)
	}
	return fmt.Sprintf("You have been kicked. %s", decision.Reason)
}

func (c *EnforcementCoordinator) record(ctx context.Context, decision *entities.EnforcementDecision) error {
	uow := c.uowFactory.CreateForGuild(decision.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := newEnforcementService(uow).RecordEnforcement(ctx, decision); err != nil {
		return err
	}
	return uow.Commit()
}

// SweepExpiredBans unbans every member whose timed ban has run out. Bans the
// platform no longer knows about are cleared too; any other failure keeps
// the record for the next sweep.
func (c *EnforcementCoordinator) SweepExpiredBans(ctx context.Context, now time.Time) (*SweepReport, error) {
	bans, err := c.listExpired(ctx, now)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Expired: len(bans)}
	for _, ban := range bans {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		outcome := entities.BanLiftUnbanned
		if err := c.actuator.Unban(ctx, ban.GuildID, ban.MemberID); err != nil {
			if !errors.Is(err, interfaces.ErrTargetNotFound) {
				log.WithFields(log.Fields{
					"guild_id":  ban.GuildID,
					"member_id": ban.MemberID,
					"unban_at":  ban.UnbanAt,
					"error":     err,
				}).Warn("Failed to lift expired ban, will retry next sweep")
				observability.GetMetrics().RecordEnforcementAction("unban", observability.OutcomeFailure)
				report.Failed++
				continue
			}
			outcome = entities.BanLiftAlreadyLifted
		}

		if err := c.liftBan(ctx, ban, outcome); err != nil {
			log.WithFields(log.Fields{
				"guild_id":  ban.GuildID,
				"member_id": ban.MemberID,
				"error":     err,
			}).Error("Ban lifted but record could not be cleared")
			report.Failed++
			continue
		}

		observability.GetMetrics().RecordEnforcementAction("unban", observability.OutcomeSuccess)
		report.Lifted++
	}

	if report.Expired > 0 {
		log.WithFields(log.Fields{
			"expired": report.Expired,
			"lifted":  report.Lifted,
			"failed":  report.Failed,
		}).Info("Completed expired ban sweep")
	}

	return report, nil
}

func (c *EnforcementCoordinator) listExpired(ctx context.Context, now time.Time) ([]*entities.ActiveBan, error) {
	// Guild 0 reads across every guild
	uow := c.uowFactory.CreateForGuild(0)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return newEnforcementService(uow).ListExpiredBans(ctx, now)
}

func (c *EnforcementCoordinator) liftBan(ctx context.Context, ban *entities.ActiveBan, outcome entities.BanLiftOutcome) error {
	uow := c.uowFactory.CreateForGuild(ban.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := newEnforcementService(uow).LiftBan(ctx, ban, outcome); err != nil {
		return err
	}
	return uow.Commit()
}
