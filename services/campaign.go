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

type ObjectiveView struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Current     int    `json:"current"`
	Required    int    `json:"required"`
	Complete    bool   `json:"complete"`
}

// CampaignProgress is a player's view of one campaign.
type CampaignProgress struct {
	CampaignID      string          `json:"campaign_id"`
	Title           string          `json:"title"`
	Active          bool            `json:"active"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedQuests []string        `json:"completed_quests"`
	CurrentQuestID  *string         `json:"current_quest_id"`
	CurrentQuest    string          `json:"current_quest,omitempty"`
	Objectives      []ObjectiveView `json:"objectives"`
	Completed       bool            `json:"completed"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// QuestAdvance is the outcome of applying objective progress to a quest.
type QuestAdvance struct {
	QuestID           string                       `json:"quest_id"`
	QuestCompleted    bool                         `json:"quest_completed"`
	CampaignCompleted bool                         `json:"campaign_completed"`
	XPEarned          int64                        `json:"xp_earned"`
	Rewards           []models.CustomizationReward `json:"customization_rewards"`
	Progress          *CampaignProgress            `json:"progress"`
}

type CampaignService struct {
	awarder
	campaigns CampaignRepository
	now       func() time.Time
}

func NewCampaignService(players PlayerRepository, campaigns CampaignRepository, catalog *Catalog, now func() time.Time) *CampaignService {
	if now == nil {
		now = time.Now
	}
	return &CampaignService{awarder: awarder{players: players, catalog: catalog}, campaigns: campaigns, now: now}
}

func (s *CampaignService) ListCampaigns() []models.Campaign {
	return s.catalog.Campaigns()
}

// Quests returns a campaign's quests ordered by Order.
func (s *CampaignService) Quests(campaignID string) ([]models.Quest, error) {
	if _, ok := s.catalog.Campaign(campaignID); !ok {
		return nil, ErrCampaignNotFound
	}
	return s.catalog.Quests(campaignID), nil
}

// ActivateCampaign makes campaignID the player's single active campaign.
// The first activation starts it at its lowest-order quest; a finished
// campaign cannot be activated again.
func (s *CampaignService) ActivateCampaign(ctx context.Context, userID, campaignID string) (*CampaignProgress, error) {
	camp, ok := s.catalog.Campaign(campaignID)
	if !ok {
		return nil, ErrCampaignNotFound
	}
	player, err := ensurePlayer(ctx, s.players, userID)
	if err != nil {
		return nil, err
	}
	if player.Level < camp.RequiredLevel {
		return nil, ErrLevelTooLow
	}
	switch existing, err := s.campaigns.GetUserCampaign(ctx, userID, campaignID); {
	case err == nil && existing.IsComplete():
		return nil, ErrCampaignCompleted
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to load campaign %s of %s: %w", campaignID, userID, err)
	}

	var first *string
	if qs := s.catalog.Quests(campaignID); len(qs) > 0 {
		first = &qs[0].ID
	}
	uc, err := s.campaigns.ActivateUserCampaign(ctx, userID, campaignID, first, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to activate campaign %s: %w", campaignID, err)
	}
	logging.Info().Str("user_id", userID).Str("campaign", camp.Title).Msg("🗺️ campaign activated")
	return s.progressOf(ctx, camp, uc)
}

// Progress returns the player's view of a started campaign.
func (s *CampaignService) Progress(ctx context.Context, userID, campaignID string) (*CampaignProgress, error) {
	camp, ok := s.catalog.Campaign(campaignID)
	if !ok {
		return nil, ErrCampaignNotFound
	}
	uc, err := s.userCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	return s.progressOf(ctx, camp, uc)
}

func (s *CampaignService) userCampaign(ctx context.Context, userID, campaignID string) (*models.UserCampaign, error) {
	uc, err := s.campaigns.GetUserCampaign(ctx, userID, campaignID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCampaignNotStarted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign %s of %s: %w", campaignID, userID, err)
	}
	return uc, nil
}

func (s *CampaignService) progressOf(ctx context.Context, camp *models.Campaign, uc *models.UserCampaign) (*CampaignProgress, error) {
	p := &CampaignProgress{
		CampaignID:      camp.ID,
		Title:           camp.Title,
		Active:          uc.Active,
		StartedAt:       uc.StartedAt,
		CompletedQuests: uc.CompletedQuests,
		CurrentQuestID:  uc.CurrentQuestID,
		Objectives:      []ObjectiveView{},
		Completed:       uc.IsComplete(),
		CompletedAt:     uc.CompletedAt,
	}
	if uc.CurrentQuestID == nil {
		return p, nil
	}
	quest, ok := s.catalog.Quest(*uc.CurrentQuestID)
	if !ok {
		return p, nil
	}
	p.CurrentQuest = quest.Title
	counts, err := s.objectiveCounts(ctx, uc.UserID, camp.ID, quest.ID)
	if err != nil {
		return nil, err
	}
	for i, obj := range quest.Objectives.Data() {
		p.Objectives = append(p.Objectives, ObjectiveView{
			Type:        obj.Type,
			Description: obj.Description,
			Category:    obj.Category,
			Current:     counts[i],
			Required:    obj.Required,
			Complete:    counts[i] >= obj.Required,
		})
	}
	return p, nil
}

func (s *CampaignService) objectiveCounts(ctx context.Context, userID, campaignID, questID string) (map[int]int, error) {
	rows, err := s.campaigns.ListObjectiveProgress(ctx, userID, campaignID, questID)
	if err != nil {
		return nil, fmt.Errorf("failed to load objective progress: %w", err)
	}
	counts := make(map[int]int, len(rows))
	for _, r := range rows {
		counts[r.ObjectiveIndex] = r.Current
	}
	return counts, nil
}

// AdvanceQuestObjective adds delta to every objective of objectiveType in
// the campaign's current quest. Progress against any other quest is rejected;
// a non-positive delta changes nothing.
func (s *CampaignService) AdvanceQuestObjective(ctx context.Context, userID, campaignID, questID, objectiveType string, delta int) (*QuestAdvance, error) {
	camp, ok := s.catalog.Campaign(campaignID)
	if !ok {
		return nil, ErrCampaignNotFound
	}
	quest, ok := s.catalog.Quest(questID)
	if !ok || quest.CampaignID != campaignID {
		return nil, ErrQuestNotFound
	}
	uc, err := s.userCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if uc.CurrentQuestID == nil || *uc.CurrentQuestID != questID {
		return nil, ErrQuestNotCurrent
	}

	deltas := map[int]int{}
	if delta > 0 {
		for i, obj := range quest.Objectives.Data() {
			if obj.Type == objectiveType {
				deltas[i] = delta
			}
		}
	}
	return s.advance(ctx, camp, quest, uc, deltas)
}

// advance applies per-objective deltas and completes the quest once every
// objective reaches its required count.
func (s *CampaignService) advance(ctx context.Context, camp *models.Campaign, quest *models.Quest, uc *models.UserCampaign, deltas map[int]int) (*QuestAdvance, error) {
	objectives := quest.Objectives.Data()
	for i, d := range deltas {
		if d <= 0 || i >= len(objectives) {
			continue
		}
		key := models.ObjectiveKey{UserID: uc.UserID, CampaignID: camp.ID, QuestID: quest.ID, ObjectiveIndex: i}
		if _, err := s.campaigns.IncrementObjective(ctx, key, d, objectives[i].Required); err != nil {
			return nil, fmt.Errorf("failed to advance objective %d of quest %s: %w", i, quest.ID, err)
		}
	}

	out := &QuestAdvance{QuestID: quest.ID, Rewards: []models.CustomizationReward{}}
	counts, err := s.objectiveCounts(ctx, uc.UserID, camp.ID, quest.ID)
	if err != nil {
		return nil, err
	}
	complete := len(deltas) > 0
	for i, obj := range objectives {
		if counts[i] < obj.Required {
			complete = false
			break
		}
	}
	if complete {
		if err := s.completeQuest(ctx, camp, quest, uc.UserID, out); err != nil {
			return nil, err
		}
	}

	if uc, err = s.userCampaign(ctx, uc.UserID, camp.ID); err != nil {
		return nil, err
	}
	if out.Progress, err = s.progressOf(ctx, camp, uc); err != nil {
		return nil, err
	}
	return out, nil
}

// completeQuest moves the campaign past quest. Only the caller whose
// conditional update succeeds credits the rewards.
func (s *CampaignService) completeQuest(ctx context.Context, camp *models.Campaign, quest *models.Quest, userID string, out *QuestAdvance) error {
	var nextID *string
	if next := s.catalog.NextQuest(camp.ID, quest.ID); next != nil {
		nextID = &next.ID
	}
	moved, err := s.campaigns.CompleteQuest(ctx, userID, camp.ID, quest.ID, nextID, s.now())
	if err != nil {
		return fmt.Errorf("failed to complete quest %s: %w", quest.ID, err)
	}
	if !moved {
		return nil
	}

	out.QuestCompleted = true
	metrics.QuestsCompleted.Inc()
	logging.Info().Str("user_id", userID).Str("quest", quest.Title).Msg("✅ quest completed")
	if err := s.credit(ctx, userID, quest.XPReward, quest.CustomizationRewards.Data(), "quest:"+quest.Code, out); err != nil {
		return err
	}

	if nextID == nil {
		out.CampaignCompleted = true
		metrics.CampaignsCompleted.Inc()
		logging.Info().Str("user_id", userID).Str("campaign", camp.Title).Msg("🏁 campaign completed")
		if err := s.credit(ctx, userID, camp.XPReward, camp.CustomizationRewards.Data(), "campaign:"+camp.Code, out); err != nil {
			return err
		}
	}
	return nil
}

func (s *CampaignService) credit(ctx context.Context, userID string, xp int64, rewards []models.CustomizationReward, reason string, out *QuestAdvance) error {
	if xp > 0 {
		if _, err := s.grantXP(ctx, userID, xp, reason); err != nil {
			return err
		}
		out.XPEarned += xp
	}
	if err := s.unlockRewards(ctx, userID, rewards); err != nil {
		return err
	}
	out.Rewards = append(out.Rewards, rewards...)
	return nil
}

// ActivitySignal is what the activity pipeline knows after processing an event.
type ActivitySignal struct {
	Event         ActivityEvent
	StreakDays    int
	CategoryAdded bool
}

// AdvanceFromActivity routes a processed activity to the current quest of
// the player's active campaign. Returns nil when nothing applies.
func (s *CampaignService) AdvanceFromActivity(ctx context.Context, userID string, sig ActivitySignal) (*QuestAdvance, error) {
	uc, err := s.campaigns.GetActiveUserCampaign(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active campaign of %s: %w", userID, err)
	}
	if uc.CurrentQuestID == nil {
		return nil, nil
	}
	camp, ok := s.catalog.Campaign(uc.CampaignID)
	if !ok {
		return nil, nil
	}
	quest, ok := s.catalog.Quest(*uc.CurrentQuestID)
	if !ok {
		return nil, nil
	}

	counts, err := s.objectiveCounts(ctx, userID, camp.ID, quest.ID)
	if err != nil {
		return nil, err
	}
	deltas := map[int]int{}
	for i, obj := range quest.Objectives.Data() {
		if d := objectiveDelta(obj, sig, counts[i]); d > 0 {
			deltas[i] = d
		}
	}
	if len(deltas) == 0 {
		return nil, nil
	}
	return s.advance(ctx, camp, quest, uc, deltas)
}

// objectiveDelta maps an activity onto one objective. Objective types that
// activities cannot express (quiz creation and the like) only move through
// AdvanceQuestObjective.
func objectiveDelta(obj models.Objective, sig ActivitySignal, current int) int {
	ev := sig.Event
	categoryOK := obj.Category == "" || (ev.Category != "" && sameText(obj.Category, ev.Category))
	scoreOK := ev.score() >= obj.MinScore

	switch obj.Type {
	case models.ObjectiveCompleteCategoryQuiz:
		if ev.QuizCompleted && categoryOK {
			return 1
		}
	case models.ObjectivePerfectCategoryQuiz:
		if ev.PerfectScore && categoryOK {
			return 1
		}
	case models.ObjectiveCompleteCategoryQuizWithScore:
		if ev.QuizCompleted && categoryOK && scoreOK {
			return 1
		}
	case models.ObjectiveMaintainStreak:
		return sig.StreakDays - current
	case models.ObjectiveUniqueCategories:
		if sig.CategoryAdded {
			return 1
		}
	case models.ObjectiveTimedQuiz:
		if ev.QuizCompleted && ev.CompletionTime != nil && *ev.CompletionTime <= obj.TimeLimit && scoreOK {
			return 1
		}
	case models.ObjectiveHighScoreDifferentCategories:
		if ev.QuizCompleted && sig.CategoryAdded && scoreOK {
			return 1
		}
	}
	return 0
}
