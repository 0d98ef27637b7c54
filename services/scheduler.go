package services

import (
	"context"
	"fmt"
	"time"

	"gamification-service/logging"
	"gamification-service/metrics"

	"github.com/go-co-op/gocron/v2"
)

const jobChallengeSweep = "challenge_sweep"

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	sched      gocron.Scheduler
	challenges *ChallengeService
	interval   time.Duration
}

func NewScheduler(challenges *ChallengeService, interval time.Duration) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{sched: sched, challenges: challenges, interval: interval}, nil
}

// Start registers the jobs and starts the scheduler. The challenge sweep
// also runs once immediately.
func (s *Scheduler) Start() error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.SweepChallenges),
		gocron.WithName(jobChallengeSweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to register %s job: %w", jobChallengeSweep, err)
	}
	s.sched.Start()
	logging.Info().Dur("interval", s.interval).Msg("⏰ scheduler started")
	return nil
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// SweepChallenges untracks expired challenges for every player.
func (s *Scheduler) SweepChallenges() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	n, err := s.challenges.PruneExpired(ctx)
	metrics.RecordJob(jobChallengeSweep, err)
	if err != nil {
		logging.Error().Err(err).Msg("[Scheduler] challenge sweep failed")
		return
	}
	if n > 0 {
		logging.Info().Int64("players", n).Msg("[Scheduler] expired challenges untracked")
	}
}
