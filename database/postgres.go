package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamification-service/models"
	"gamification-service/progression"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore implements every repository on top of gorm. Set and counter
// updates are single UPDATE statements; XP and streak changes run in a
// transaction holding the row lock.
type PostgresStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func setColumn(set models.PlayerSet) (string, error) {
	switch set {
	case models.SetAchievements, models.SetBadges, models.SetCompletedCategories,
		models.SetCompletedChallenges, models.SetTrackedChallenges:
		return string(set), nil
	}
	return "", fmt.Errorf("unknown player set %q", set)
}

func (s *PostgresStore) players(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Player{})
}

// ---- players ----

func (s *PostgresStore) GetPlayer(ctx context.Context, userID string) (*models.Player, error) {
	var p models.Player
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) CreatePlayer(ctx context.Context, p *models.Player) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(p).Error
}

// IncrementField bumps a counter and returns the value the row ended up with.
func (s *PostgresStore) IncrementField(ctx context.Context, userID string, counter models.PlayerCounter, delta int64) (int64, error) {
	switch counter {
	case models.CounterQuizzesCompleted, models.CounterPerfectScores:
	default:
		return 0, fmt.Errorf("unknown player counter %q", counter)
	}
	col := string(counter)
	var p models.Player
	res := s.db.WithContext(ctx).Model(&p).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: col}}}).
		Where("user_id = ?", userID).
		Update(col, gorm.Expr(col+" + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	if counter == models.CounterPerfectScores {
		return p.PerfectScores, nil
	}
	return p.QuizzesCompleted, nil
}

func (s *PostgresStore) AddToSet(ctx context.Context, userID string, set models.PlayerSet, value string) (bool, error) {
	col, err := setColumn(set)
	if err != nil {
		return false, err
	}
	res := s.players(ctx).
		Where("user_id = ? AND NOT (? = ANY("+col+"))", userID, value).
		Update(col, gorm.Expr("array_append("+col+", ?)", value))
	return res.RowsAffected == 1, res.Error
}

func (s *PostgresStore) AddToBoundedSet(ctx context.Context, userID string, set models.PlayerSet, value string, limit int) (bool, error) {
	col, err := setColumn(set)
	if err != nil {
		return false, err
	}
	res := s.players(ctx).
		Where("user_id = ? AND NOT (? = ANY("+col+")) AND cardinality("+col+") < ?", userID, value, limit).
		Update(col, gorm.Expr("array_append("+col+", ?)", value))
	return res.RowsAffected == 1, res.Error
}

func (s *PostgresStore) RemoveFromSet(ctx context.Context, userID string, set models.PlayerSet, value string) (bool, error) {
	col, err := setColumn(set)
	if err != nil {
		return false, err
	}
	res := s.players(ctx).
		Where("user_id = ? AND ? = ANY("+col+")", userID, value).
		Update(col, gorm.Expr("array_remove("+col+", ?)", value))
	return res.RowsAffected == 1, res.Error
}

func (s *PostgresStore) PruneFromSet(ctx context.Context, set models.PlayerSet, value string) (int64, error) {
	col, err := setColumn(set)
	if err != nil {
		return 0, err
	}
	res := s.players(ctx).
		Where("? = ANY("+col+")", value).
		Update(col, gorm.Expr("array_remove("+col+", ?)", value))
	return res.RowsAffected, res.Error
}

func (s *PostgresStore) PushToList(ctx context.Context, userID string, list models.PlayerList, value string) error {
	if list != models.ListUnlockedRewards {
		return fmt.Errorf("unknown player list %q", list)
	}
	col := string(list)
	res := s.players(ctx).Where("user_id = ?", userID).Update(col, gorm.Expr("array_append("+col+", ?)", value))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *PostgresStore) SetField(ctx context.Context, userID string, field models.PlayerField, value any) error {
	var v any
	switch field {
	case models.FieldDisplayName:
		name, ok := value.(string)
		if !ok {
			return fmt.Errorf("display_name wants a string, got %T", value)
		}
		v = name
	case models.FieldCategoryLevels:
		levels, ok := value.(models.CategoryLevels)
		if !ok {
			return fmt.Errorf("category_levels wants models.CategoryLevels, got %T", value)
		}
		v = datatypes.NewJSONType(levels)
	case models.FieldCustomization:
		doc, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("customization wants a map, got %T", value)
		}
		v = datatypes.JSONMap(doc)
	default:
		return fmt.Errorf("unknown player field %q", field)
	}
	res := s.players(ctx).Where("user_id = ?", userID).Update(string(field), v)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertDisplayName creates the player when missing, otherwise renames it.
func (s *PostgresStore) UpsertDisplayName(ctx context.Context, userID, name string) error {
	p := models.NewPlayer(userID)
	p.ID = uuid.NewString()
	p.DisplayName = name
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "updated_at"}),
	}).Create(p).Error
}

func (s *PostgresStore) ApplyXP(ctx context.Context, userID string, delta int64) (progression.Result, error) {
	var out progression.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Player
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&p).Error; err != nil {
			return err
		}
		out = progression.ApplyXP(p.XP, p.Level, delta, progression.GlobalBaseXP)
		updates := map[string]any{"xp": out.XP, "level": out.Level}
		if out.LeveledUp {
			updates["last_level_up_at"] = s.now().UTC()
		}
		return tx.Model(&p).Updates(updates).Error
	})
	return out, err
}

// ---- streaks ----

func (s *PostgresStore) GetStreak(ctx context.Context, userID, category string) (*models.Streak, error) {
	var st models.Streak
	if err := s.db.WithContext(ctx).Where("user_id = ? AND category = ?", userID, category).First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

// ListStreaks orders by category, so the overall streak ("") comes first.
func (s *PostgresStore) ListStreaks(ctx context.Context, userID string) ([]models.Streak, error) {
	var out []models.Streak
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("category ASC").Find(&out).Error
	return out, err
}

func (s *PostgresStore) RecordStreak(ctx context.Context, userID, category string, today time.Time) (*models.Streak, progression.StreakOutcome, error) {
	var (
		st      models.Streak
		outcome progression.StreakOutcome
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.Streak{ID: uuid.NewString(), UserID: userID, Category: category}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "category"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND category = ?", userID, category).First(&st).Error; err != nil {
			return err
		}

		var next progression.StreakState
		if st.CurrentStreak == 0 {
			next, outcome = progression.NewStreak(today), progression.StreakStarted
		} else {
			next, outcome = progression.AdvanceStreak(st.State(), today)
		}
		if outcome == progression.StreakUnchanged {
			return nil
		}
		st.SetState(next)
		return tx.Model(&st).Updates(map[string]any{
			"current_streak":     st.CurrentStreak,
			"highest_streak":     st.HighestStreak,
			"last_activity_date": st.LastActivityDate,
		}).Error
	})
	if err != nil {
		return nil, "", err
	}
	return &st, outcome, nil
}

// ---- catalog ----

func (s *PostgresStore) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	var out []models.Achievement
	err := s.db.WithContext(ctx).Order("created_at ASC, code ASC").Find(&out).Error
	return out, err
}

func (s *PostgresStore) ListBadges(ctx context.Context) ([]models.Badge, error) {
	var out []models.Badge
	err := s.db.WithContext(ctx).Order("created_at ASC, code ASC").Find(&out).Error
	return out, err
}

func (s *PostgresStore) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	var out []models.Challenge
	err := s.db.WithContext(ctx).Order("start_date ASC, code ASC").Find(&out).Error
	return out, err
}

func (s *PostgresStore) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	var out []models.Campaign
	err := s.db.WithContext(ctx).Order("required_level ASC, created_at ASC").Find(&out).Error
	return out, err
}

func (s *PostgresStore) ListQuests(ctx context.Context, campaignID string) ([]models.Quest, error) {
	var out []models.Quest
	err := s.db.WithContext(ctx).Where("campaign_id = ?", campaignID).Order("position ASC").Find(&out).Error
	return out, err
}

func (s *PostgresStore) upsert(ctx context.Context, v any) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(v).Error
}

func (s *PostgresStore) UpsertAchievement(ctx context.Context, a *models.Achievement) error {
	return s.upsert(ctx, a)
}

func (s *PostgresStore) UpsertBadge(ctx context.Context, b *models.Badge) error {
	return s.upsert(ctx, b)
}

func (s *PostgresStore) UpsertChallenge(ctx context.Context, c *models.Challenge) error {
	return s.upsert(ctx, c)
}

func (s *PostgresStore) UpsertCampaign(ctx context.Context, c *models.Campaign) error {
	return s.upsert(ctx, c)
}

func (s *PostgresStore) UpsertQuest(ctx context.Context, q *models.Quest) error {
	return s.upsert(ctx, q)
}

// ---- campaigns ----

func (s *PostgresStore) GetUserCampaign(ctx context.Context, userID, campaignID string) (*models.UserCampaign, error) {
	var uc models.UserCampaign
	err := s.db.WithContext(ctx).Where("user_id = ? AND campaign_id = ?", userID, campaignID).First(&uc).Error
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (s *PostgresStore) GetActiveUserCampaign(ctx context.Context, userID string) (*models.UserCampaign, error) {
	var uc models.UserCampaign
	if err := s.db.WithContext(ctx).Where("user_id = ? AND active", userID).First(&uc).Error; err != nil {
		return nil, err
	}
	return &uc, nil
}

func (s *PostgresStore) ActivateUserCampaign(ctx context.Context, userID, campaignID string, firstQuestID *string, now time.Time) (*models.UserCampaign, error) {
	var uc models.UserCampaign
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The player row lock serialises activations of one user.
		var lock models.Player
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").
			Where("user_id = ?", userID).First(&lock).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Model(&models.UserCampaign{}).
			Where("user_id = ? AND campaign_id <> ? AND active", userID, campaignID).
			Update("active", false).Error; err != nil {
			return err
		}
		fresh := models.UserCampaign{
			ID:              uuid.NewString(),
			UserID:          userID,
			CampaignID:      campaignID,
			StartedAt:       now.UTC(),
			CompletedQuests: []string{},
			CurrentQuestID:  firstQuestID,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "campaign_id"}},
			DoNothing: true,
		}).Create(&fresh).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.UserCampaign{}).
			Where("user_id = ? AND campaign_id = ?", userID, campaignID).
			Update("active", true).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND campaign_id = ?", userID, campaignID).First(&uc).Error
	})
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (s *PostgresStore) IncrementObjective(ctx context.Context, key models.ObjectiveKey, delta, required int) (int, error) {
	var current int
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO objective_progresses (id, user_id, campaign_id, quest_id, objective_index, current, updated_at)
		VALUES (?, ?, ?, ?, ?, LEAST(?, ?), NOW())
		ON CONFLICT (user_id, campaign_id, quest_id, objective_index)
		DO UPDATE SET current = LEAST(objective_progresses.current + ?, ?), updated_at = NOW()
		RETURNING current
	`, uuid.NewString(), key.UserID, key.CampaignID, key.QuestID, key.ObjectiveIndex,
		delta, required, delta, required).Scan(&current).Error
	return current, err
}

func (s *PostgresStore) ListObjectiveProgress(ctx context.Context, userID, campaignID, questID string) ([]models.ObjectiveProgress, error) {
	var out []models.ObjectiveProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND campaign_id = ? AND quest_id = ?", userID, campaignID, questID).
		Order("objective_index ASC").Find(&out).Error
	return out, err
}

func (s *PostgresStore) CompleteQuest(ctx context.Context, userID, campaignID, questID string, next *string, now time.Time) (bool, error) {
	updates := map[string]any{
		"completed_quests": gorm.Expr("array_append(completed_quests, ?)", questID),
		"current_quest_id": next,
	}
	if next == nil {
		t := now.UTC()
		updates["completed_at"] = &t
		updates["active"] = false
	}
	res := s.db.WithContext(ctx).Model(&models.UserCampaign{}).
		Where("user_id = ? AND campaign_id = ? AND current_quest_id = ?", userID, campaignID, questID).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

// ---- challenge progress ----

func (s *PostgresStore) GetChallengeProgress(ctx context.Context, userID, challengeID string) (*models.ChallengeProgress, error) {
	var cp models.ChallengeProgress
	err := s.db.WithContext(ctx).Where("user_id = ? AND challenge_id = ?", userID, challengeID).First(&cp).Error
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *PostgresStore) IncrementChallengeProgress(ctx context.Context, userID, challengeID string, delta, target int64) (int64, error) {
	var progress int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO challenge_progresses (id, user_id, challenge_id, progress, updated_at)
		VALUES (?, ?, ?, LEAST(?, ?), NOW())
		ON CONFLICT (user_id, challenge_id)
		DO UPDATE SET progress = LEAST(challenge_progresses.progress + ?, ?), updated_at = NOW()
		RETURNING progress
	`, uuid.NewString(), userID, challengeID, delta, target, delta, target).Scan(&progress).Error
	return progress, err
}
