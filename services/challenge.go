package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamification-service/logging"
	"gamification-service/metrics"
	"gamification-service/models"

	"gorm.io/gorm"
)

// ChallengeCompletion is the reward summary of a completed challenge.
type ChallengeCompletion struct {
	ChallengeID string         `json:"challenge_id"`
	XPEarned    int64          `json:"xp_earned"`
	Level       int            `json:"level"`
	LeveledUp   bool           `json:"level_up"`
	Badges      []AwardedBadge `json:"badges"`
}

// ChallengeStatus is a player's standing on one challenge requirement.
type ChallengeStatus struct {
	ChallengeID string `json:"challenge_id"`
	Requirement string `json:"requirement"`
	// Progress and Target are set for requirements counted from activity.
	Progress    int64  `json:"progress"`
	Target      int64  `json:"target"`
	Met         bool   `json:"met"`
	Tracked     bool   `json:"tracked"`
	Completed   bool   `json:"completed"`
}

type ChallengeService struct {
	awarder
	progress ChallengeProgressRepository
	streaks  StreakRepository
	now      func() time.Time
}

func NewChallengeService(players PlayerRepository, progress ChallengeProgressRepository, streaks StreakRepository,
	catalog *Catalog, now func() time.Time) *ChallengeService {
	if now == nil {
		now = time.Now
	}
	return &ChallengeService{
		awarder:  awarder{players: players, catalog: catalog},
		progress: progress,
		streaks:  streaks,
		now:      now,
	}
}

func (s *ChallengeService) ListActive() []models.Challenge {
	return s.catalog.ActiveChallenges(s.now())
}

func (s *ChallengeService) activeChallenge(id string) (*models.Challenge, error) {
	ch, ok := s.catalog.Challenge(id)
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if !ch.IsActive(s.now()) {
		return nil, ErrChallengeInactive
	}
	return ch, nil
}

// TrackChallenge adds an active challenge to the player's tracked set,
// holding at most models.MaxTrackedChallenges.
func (s *ChallengeService) TrackChallenge(ctx context.Context, userID, challengeID string) error {
	ch, err := s.activeChallenge(challengeID)
	if err != nil {
		return err
	}
	player, err := ensurePlayer(ctx, s.players, userID)
	if err != nil {
		return err
	}
	if player.Has(models.SetCompletedChallenges, ch.ID) {
		return ErrChallengeCompleted
	}
	if player.Has(models.SetTrackedChallenges, ch.ID) {
		return ErrAlreadyTracked
	}

	added, err := s.players.AddToBoundedSet(ctx, userID, models.SetTrackedChallenges, ch.ID, models.MaxTrackedChallenges)
	if err != nil {
		return fmt.Errorf("failed to track challenge %s: %w", ch.ID, err)
	}
	if added {
		return nil
	}
	// Lost a race: either the same challenge went in first or the set filled up.
	player, err = s.players.GetPlayer(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to reload player %s: %w", userID, err)
	}
	if player.Has(models.SetTrackedChallenges, ch.ID) {
		return ErrAlreadyTracked
	}
	return ErrMaxTrackedExceeded
}

func (s *ChallengeService) UntrackChallenge(ctx context.Context, userID, challengeID string) error {
	if _, ok := s.catalog.Challenge(challengeID); !ok {
		return ErrChallengeNotFound
	}
	removed, err := s.players.RemoveFromSet(ctx, userID, models.SetTrackedChallenges, challengeID)
	if err != nil {
		return fmt.Errorf("failed to untrack challenge %s: %w", challengeID, err)
	}
	if !removed {
		return ErrNotTracked
	}
	return nil
}

// CompleteChallenge credits an active challenge once its requirement is met:
// the completed-set add decides, then XP and badge rewards follow and the
// challenge is untracked.
func (s *ChallengeService) CompleteChallenge(ctx context.Context, userID, challengeID string) (*ChallengeCompletion, error) {
	ch, err := s.activeChallenge(challengeID)
	if err != nil {
		return nil, err
	}
	player, err := ensurePlayer(ctx, s.players, userID)
	if err != nil {
		return nil, err
	}
	if player.Has(models.SetCompletedChallenges, ch.ID) {
		return nil, ErrChallengeCompleted
	}
	status, err := s.status(ctx, player, ch)
	if err != nil {
		return nil, err
	}
	if !status.Met {
		return nil, ErrRequirementUnmet
	}
	added, err := s.players.AddToSet(ctx, userID, models.SetCompletedChallenges, ch.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to complete challenge %s: %w", ch.ID, err)
	}
	if !added {
		return nil, ErrChallengeCompleted
	}
	metrics.ChallengesCompleted.Inc()
	logging.Info().Str("user_id", userID).Str("challenge", ch.Title).Msg("🏅 challenge completed")

	out := &ChallengeCompletion{ChallengeID: ch.ID, XPEarned: ch.XPReward, Badges: []AwardedBadge{}}
	xp, err := s.grantXP(ctx, userID, ch.XPReward, "challenge:"+ch.Code)
	if err != nil {
		return nil, err
	}
	out.Level, out.LeveledUp = xp.Level, xp.LeveledUp

	for _, id := range ch.BadgeRewards.Data() {
		b, ok := s.catalog.Badge(id)
		if !ok {
			logging.Warn().Str("challenge", ch.ID).Str("badge_id", id).Msg("challenge rewards an unknown badge")
			continue
		}
		awarded, err := s.awardBadge(ctx, userID, b)
		if err != nil {
			return nil, err
		}
		if awarded != nil {
			out.Badges = append(out.Badges, *awarded)
		}
	}

	if _, err := s.players.RemoveFromSet(ctx, userID, models.SetTrackedChallenges, ch.ID); err != nil {
		return nil, fmt.Errorf("failed to untrack completed challenge %s: %w", ch.ID, err)
	}
	return out, nil
}

// PruneExpired drops every closed challenge from all tracked sets.
func (s *ChallengeService) PruneExpired(ctx context.Context) (int64, error) {
	var total int64
	for _, ch := range s.catalog.ExpiredChallenges(s.now()) {
		n, err := s.players.PruneFromSet(ctx, models.SetTrackedChallenges, ch.ID)
		if err != nil {
			return total, fmt.Errorf("failed to prune challenge %s: %w", ch.ID, err)
		}
		total += n
	}
	return total, nil
}

// requirementTarget returns the count a requirement needs when it is counted
// from activity events. Requirements on the player's standing (streak, level,
// category levels) report false and are judged on current stats instead.
func requirementTarget(c models.Condition) (int64, bool) {
	switch c.Kind {
	case models.ConditionQuizzesCompleted, models.ConditionPerfectScores, models.ConditionUniqueCategories:
		return max(c.Threshold, 1), true
	case models.ConditionPerfectScore, models.ConditionTimeUnder:
		return 1, true
	}
	return 0, false
}

// requirementDelta is how much one processed activity counts toward c.
func requirementDelta(c models.Condition, sig ActivitySignal) int64 {
	ev := sig.Event
	switch c.Kind {
	case models.ConditionQuizzesCompleted:
		if ev.QuizCompleted {
			return 1
		}
	case models.ConditionPerfectScore, models.ConditionPerfectScores:
		if ev.PerfectScore {
			return 1
		}
	case models.ConditionUniqueCategories:
		if sig.CategoryAdded {
			return 1
		}
	case models.ConditionTimeUnder:
		if ev.QuizCompleted && ev.CompletionTime != nil && *ev.CompletionTime < float64(c.Threshold) {
			return 1
		}
	}
	return 0
}

// AdvanceFromActivity counts a processed activity toward every tracked,
// active challenge whose requirement it matches.
func (s *ChallengeService) AdvanceFromActivity(ctx context.Context, userID string, sig ActivitySignal) ([]ChallengeStatus, error) {
	player, err := s.players.GetPlayer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", userID, err)
	}
	now := s.now()
	var out []ChallengeStatus
	for _, id := range player.TrackedChallenges {
		ch, ok := s.catalog.Challenge(id)
		if !ok || !ch.IsActive(now) {
			continue
		}
		cond := ch.Requirement.Data()
		target, counted := requirementTarget(cond)
		if !counted {
			continue
		}
		delta := requirementDelta(cond, sig)
		if delta == 0 {
			continue
		}
		n, err := s.progress.IncrementChallengeProgress(ctx, userID, ch.ID, delta, target)
		if err != nil {
			return out, fmt.Errorf("failed to advance challenge %s: %w", ch.ID, err)
		}
		out = append(out, ChallengeStatus{
			ChallengeID: ch.ID,
			Requirement: cond.String(),
			Progress:    n,
			Target:      target,
			Met:         n >= target,
			Tracked:     true,
		})
	}
	return out, nil
}

// Status reports where the player stands on a challenge.
func (s *ChallengeService) Status(ctx context.Context, userID, challengeID string) (*ChallengeStatus, error) {
	ch, ok := s.catalog.Challenge(challengeID)
	if !ok {
		return nil, ErrChallengeNotFound
	}
	player, err := ensurePlayer(ctx, s.players, userID)
	if err != nil {
		return nil, err
	}
	return s.status(ctx, player, ch)
}

func (s *ChallengeService) status(ctx context.Context, player *models.Player, ch *models.Challenge) (*ChallengeStatus, error) {
	cond := ch.Requirement.Data()
	out := &ChallengeStatus{
		ChallengeID: ch.ID,
		Requirement: cond.String(),
		Tracked:     player.Has(models.SetTrackedChallenges, ch.ID),
		Completed:   player.Has(models.SetCompletedChallenges, ch.ID),
	}
	if cond.Kind == models.ConditionNone {
		out.Met = true
		return out, nil
	}
	if target, counted := requirementTarget(cond); counted {
		cp, err := s.progress.GetChallengeProgress(ctx, player.UserID, ch.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return nil, fmt.Errorf("failed to load challenge progress %s: %w", ch.ID, err)
		default:
			out.Progress = cp.Progress
		}
		out.Target = target
		out.Met = out.Progress >= target
		return out, nil
	}
	streak, err := overallStreak(ctx, s.streaks, player.UserID)
	if err != nil {
		return nil, err
	}
	out.Met = snapshotOf(player, streak.CurrentStreak).Satisfies(cond)
	return out, nil
}
