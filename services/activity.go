package services

import (
	"context"

	"gamification-service/metrics"
)

// IngestResult combines everything one activity event changed.
type IngestResult struct {
	Streak     *StreakResult     `json:"streak,omitempty"`
	Rewards    *ActivityResult   `json:"rewards"`
	Campaign   *QuestAdvance     `json:"campaign,omitempty"`
	Challenges []ChallengeStatus `json:"challenges,omitempty"`
}

// ActivityService runs the full pipeline for an activity event: streaks,
// reward resolution, campaign objectives, then tracked challenges.
type ActivityService struct {
	streaks    *StreakService
	rewards    *RewardService
	campaigns  *CampaignService
	challenges *ChallengeService
}

func NewActivityService(streaks *StreakService, rewards *RewardService, campaigns *CampaignService, challenges *ChallengeService) *ActivityService {
	return &ActivityService{streaks: streaks, rewards: rewards, campaigns: campaigns, challenges: challenges}
}

func (s *ActivityService) Ingest(ctx context.Context, userID string, ev ActivityEvent) (res *IngestResult, err error) {
	defer func() { metrics.RecordActivity(err) }()

	res = &IngestResult{}
	if ev.Empty() {
		res.Rewards = emptyActivityResult()
		return res, nil
	}

	if ev.QuizCompleted {
		if res.Streak, err = s.streaks.RecordStreakActivity(ctx, userID, ev.Category); err != nil {
			return nil, err
		}
	}
	if res.Rewards, err = s.rewards.ProcessActivity(ctx, userID, ev); err != nil {
		return nil, err
	}

	sig := ActivitySignal{Event: ev, CategoryAdded: res.Rewards.CategoryAdded}
	if res.Rewards.UpdatedStats != nil {
		sig.StreakDays = res.Rewards.UpdatedStats.CurrentStreak
	}
	if res.Campaign, err = s.campaigns.AdvanceFromActivity(ctx, userID, sig); err != nil {
		return nil, err
	}
	if res.Challenges, err = s.challenges.AdvanceFromActivity(ctx, userID, sig); err != nil {
		return nil, err
	}
	return res, nil
}
