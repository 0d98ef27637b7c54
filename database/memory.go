package database

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"gamification-service/models"
	"gamification-service/progression"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MemoryStore keeps everything in maps behind one mutex. Every method is one
// critical section, which gives it the same atomicity as the SQL primitives.
// Values are copied in and out.
type MemoryStore struct {
	mu  sync.Mutex
	now func() time.Time

	players    map[string]*models.Player
	streaks    map[streakKey]*models.Streak
	campaigns  map[campaignKey]*models.UserCampaign
	progress   map[models.ObjectiveKey]*models.ObjectiveProgress
	chProgress map[challengeKey]*models.ChallengeProgress

	achievements catalogTable[models.Achievement]
	badges       catalogTable[models.Badge]
	challenges   catalogTable[models.Challenge]
	campaignDefs catalogTable[models.Campaign]
	quests       catalogTable[models.Quest]
}

type streakKey struct{ userID, category string }
type campaignKey struct{ userID, campaignID string }
type challengeKey struct{ userID, challengeID string }

// catalogTable keeps insertion order so listings are stable.
type catalogTable[T any] struct {
	order []string
	rows  map[string]T
}

func (t *catalogTable[T]) upsert(id string, v T) {
	if t.rows == nil {
		t.rows = map[string]T{}
	}
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *catalogTable[T]) list() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:        time.Now,
		players:    map[string]*models.Player{},
		streaks:    map[streakKey]*models.Streak{},
		campaigns:  map[campaignKey]*models.UserCampaign{},
		progress:   map[models.ObjectiveKey]*models.ObjectiveProgress{},
		chProgress: map[challengeKey]*models.ChallengeProgress{},
	}
}

func clonePlayer(p *models.Player) *models.Player {
	c := *p
	c.Achievements = slices.Clone(p.Achievements)
	c.Badges = slices.Clone(p.Badges)
	c.CompletedCategories = slices.Clone(p.CompletedCategories)
	c.CompletedChallenges = slices.Clone(p.CompletedChallenges)
	c.TrackedChallenges = slices.Clone(p.TrackedChallenges)
	c.UnlockedRewards = slices.Clone(p.UnlockedRewards)
	c.CategoryLevels = datatypes.NewJSONType(maps.Clone(p.Categories()))
	c.Customization = maps.Clone(p.Customization)
	if p.LastLevelUpAt != nil {
		t := *p.LastLevelUpAt
		c.LastLevelUpAt = &t
	}
	return &c
}

func cloneUserCampaign(uc *models.UserCampaign) *models.UserCampaign {
	c := *uc
	c.CompletedQuests = slices.Clone(uc.CompletedQuests)
	if uc.CurrentQuestID != nil {
		id := *uc.CurrentQuestID
		c.CurrentQuestID = &id
	}
	if uc.CompletedAt != nil {
		t := *uc.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// ---- players ----

func (m *MemoryStore) player(userID string) (*models.Player, error) {
	p, ok := m.players[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (m *MemoryStore) GetPlayer(_ context.Context, userID string) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.player(userID)
	if err != nil {
		return nil, err
	}
	return clonePlayer(p), nil
}

func (m *MemoryStore) CreatePlayer(_ context.Context, p *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.players[p.UserID]; exists {
		return nil
	}
	c := clonePlayer(p)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := m.now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	m.players[p.UserID] = c
	return nil
}

func (m *MemoryStore) IncrementField(_ context.Context, userID string, counter models.PlayerCounter, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.player(userID)
	if err != nil {
		return 0, err
	}
	switch counter {
	case models.CounterQuizzesCompleted:
		p.QuizzesCompleted += delta
		return p.QuizzesCompleted, nil
	case models.CounterPerfectScores:
		p.PerfectScores += delta
		return p.PerfectScores, nil
	}
	return 0, fmt.Errorf("unknown player counter %q", counter)
}

func (m *MemoryStore) addToSet(userID string, set models.PlayerSet, value string, limit int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[userID]
	if !ok {
		return false, nil
	}
	members := p.Members(set)
	if members == nil {
		return false, fmt.Errorf("unknown player set %q", set)
	}
	if slices.Contains(*members, value) || (limit > 0 && len(*members) >= limit) {
		return false, nil
	}
	*members = append(*members, value)
	return true, nil
}

func (m *MemoryStore) AddToSet(_ context.Context, userID string, set models.PlayerSet, value string) (bool, error) {
	return m.addToSet(userID, set, value, 0)
}

func (m *MemoryStore) AddToBoundedSet(_ context.Context, userID string, set models.PlayerSet, value string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	return m.addToSet(userID, set, value, limit)
}

func removeMember(p *models.Player, set models.PlayerSet, value string) (bool, error) {
	members := p.Members(set)
	if members == nil {
		return false, fmt.Errorf("unknown player set %q", set)
	}
	i := slices.Index(*members, value)
	if i < 0 {
		return false, nil
	}
	*members = slices.Delete(*members, i, i+1)
	return true, nil
}

func (m *MemoryStore) RemoveFromSet(_ context.Context, userID string, set models.PlayerSet, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[userID]
	if !ok {
		return false, nil
	}
	return removeMember(p, set, value)
}

func (m *MemoryStore) PruneFromSet(_ context.Context, set models.PlayerSet, value string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.players {
		removed, err := removeMember(p, set, value)
		if err != nil {
			return n, err
		}
		if removed {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) PushToList(_ context.Context, userID string, list models.PlayerList, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.player(userID)
	if err != nil {
		return err
	}
	items := p.Items(list)
	if items == nil {
		return fmt.Errorf("unknown player list %q", list)
	}
	*items = append(*items, value)
	return nil
}

func (m *MemoryStore) SetField(_ context.Context, userID string, field models.PlayerField, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.player(userID)
	if err != nil {
		return err
	}
	switch field {
	case models.FieldDisplayName:
		name, ok := value.(string)
		if !ok {
			return fmt.Errorf("display_name wants a string, got %T", value)
		}
		p.DisplayName = name
	case models.FieldCategoryLevels:
		levels, ok := value.(models.CategoryLevels)
		if !ok {
			return fmt.Errorf("category_levels wants models.CategoryLevels, got %T", value)
		}
		p.CategoryLevels = datatypes.NewJSONType(maps.Clone(levels))
	case models.FieldCustomization:
		doc, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("customization wants a map, got %T", value)
		}
		p.Customization = maps.Clone(doc)
	default:
		return fmt.Errorf("unknown player field %q", field)
	}
	return nil
}

func (m *MemoryStore) UpsertDisplayName(_ context.Context, userID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.players[userID]; ok {
		p.DisplayName = name
		return nil
	}
	p := models.NewPlayer(userID)
	p.ID = uuid.NewString()
	p.DisplayName = name
	m.players[userID] = p
	return nil
}

func (m *MemoryStore) ApplyXP(_ context.Context, userID string, delta int64) (progression.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.player(userID)
	if err != nil {
		return progression.Result{}, err
	}
	res := progression.ApplyXP(p.XP, p.Level, delta, progression.GlobalBaseXP)
	p.XP, p.Level = res.XP, res.Level
	if res.LeveledUp {
		t := m.now().UTC()
		p.LastLevelUpAt = &t
	}
	return res, nil
}

// SetPlayer stores p as-is, replacing any record of the same user.
// Tests use it to arrange state.
func (m *MemoryStore) SetPlayer(p *models.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.UserID] = clonePlayer(p)
}

// ---- streaks ----

func (m *MemoryStore) GetStreak(_ context.Context, userID, category string) (*models.Streak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.streaks[streakKey{userID, category}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *st
	return &c, nil
}

func (m *MemoryStore) ListStreaks(_ context.Context, userID string) ([]models.Streak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Streak
	for k, st := range m.streaks {
		if k.userID == userID {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (m *MemoryStore) RecordStreak(_ context.Context, userID, category string, today time.Time) (*models.Streak, progression.StreakOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := streakKey{userID, category}
	st, ok := m.streaks[key]
	var outcome progression.StreakOutcome
	if !ok {
		st = &models.Streak{ID: uuid.NewString(), UserID: userID, Category: category}
		st.SetState(progression.NewStreak(today))
		m.streaks[key] = st
		outcome = progression.StreakStarted
	} else {
		var next progression.StreakState
		next, outcome = progression.AdvanceStreak(st.State(), today)
		st.SetState(next)
	}
	c := *st
	return &c, outcome, nil
}

// SetStreak stores st as-is. Tests use it to arrange state.
func (m *MemoryStore) SetStreak(st models.Streak) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streaks[streakKey{st.UserID, st.Category}] = &st
}

// ---- catalog ----

func (m *MemoryStore) ListAchievements(context.Context) ([]models.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.achievements.list(), nil
}

func (m *MemoryStore) ListBadges(context.Context) ([]models.Badge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.badges.list(), nil
}

func (m *MemoryStore) ListChallenges(context.Context) ([]models.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.challenges.list(), nil
}

func (m *MemoryStore) ListCampaigns(context.Context) ([]models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.campaignDefs.list(), nil
}

func (m *MemoryStore) ListQuests(_ context.Context, campaignID string) ([]models.Quest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Quest
	for _, q := range m.quests.list() {
		if q.CampaignID == campaignID {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *MemoryStore) UpsertAchievement(_ context.Context, a *models.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.achievements.upsert(a.ID, *a)
	return nil
}

func (m *MemoryStore) UpsertBadge(_ context.Context, b *models.Badge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badges.upsert(b.ID, *b)
	return nil
}

func (m *MemoryStore) UpsertChallenge(_ context.Context, c *models.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.challenges.upsert(c.ID, *c)
	return nil
}

func (m *MemoryStore) UpsertCampaign(_ context.Context, c *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaignDefs.upsert(c.ID, *c)
	return nil
}

func (m *MemoryStore) UpsertQuest(_ context.Context, q *models.Quest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quests.upsert(q.ID, *q)
	return nil
}

// ---- campaigns ----

func (m *MemoryStore) GetUserCampaign(_ context.Context, userID, campaignID string) (*models.UserCampaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uc, ok := m.campaigns[campaignKey{userID, campaignID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneUserCampaign(uc), nil
}

func (m *MemoryStore) GetActiveUserCampaign(_ context.Context, userID string) (*models.UserCampaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, uc := range m.campaigns {
		if k.userID == userID && uc.Active {
			return cloneUserCampaign(uc), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MemoryStore) ActivateUserCampaign(_ context.Context, userID, campaignID string, firstQuestID *string, now time.Time) (*models.UserCampaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, uc := range m.campaigns {
		if k.userID == userID && k.campaignID != campaignID {
			uc.Active = false
		}
	}
	key := campaignKey{userID, campaignID}
	uc, ok := m.campaigns[key]
	if !ok {
		uc = &models.UserCampaign{
			ID:              uuid.NewString(),
			UserID:          userID,
			CampaignID:      campaignID,
			StartedAt:       now.UTC(),
			CompletedQuests: pq.StringArray{},
		}
		if firstQuestID != nil {
			id := *firstQuestID
			uc.CurrentQuestID = &id
		}
		m.campaigns[key] = uc
	}
	uc.Active = true
	uc.UpdatedAt = now.UTC()
	return cloneUserCampaign(uc), nil
}

func (m *MemoryStore) IncrementObjective(_ context.Context, key models.ObjectiveKey, delta, required int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	op, ok := m.progress[key]
	if !ok {
		op = &models.ObjectiveProgress{
			ID:             uuid.NewString(),
			UserID:         key.UserID,
			CampaignID:     key.CampaignID,
			QuestID:        key.QuestID,
			ObjectiveIndex: key.ObjectiveIndex,
		}
		m.progress[key] = op
	}
	op.Current = min(op.Current+delta, required)
	op.UpdatedAt = m.now().UTC()
	return op.Current, nil
}

func (m *MemoryStore) ListObjectiveProgress(_ context.Context, userID, campaignID, questID string) ([]models.ObjectiveProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ObjectiveProgress
	for k, op := range m.progress {
		if k.UserID == userID && k.CampaignID == campaignID && k.QuestID == questID {
			out = append(out, *op)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObjectiveIndex < out[j].ObjectiveIndex })
	return out, nil
}

func (m *MemoryStore) CompleteQuest(_ context.Context, userID, campaignID, questID string, next *string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uc, ok := m.campaigns[campaignKey{userID, campaignID}]
	if !ok || uc.CurrentQuestID == nil || *uc.CurrentQuestID != questID {
		return false, nil
	}
	uc.CompletedQuests = append(uc.CompletedQuests, questID)
	uc.CurrentQuestID = nil
	if next != nil {
		id := *next
		uc.CurrentQuestID = &id
	} else {
		t := now.UTC()
		uc.CompletedAt = &t
		uc.Active = false
	}
	uc.UpdatedAt = now.UTC()
	return true, nil
}

// ---- challenge progress ----

func (m *MemoryStore) GetChallengeProgress(_ context.Context, userID, challengeID string) (*models.ChallengeProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp, ok := m.chProgress[challengeKey{userID, challengeID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *cp
	return &out, nil
}

func (m *MemoryStore) IncrementChallengeProgress(_ context.Context, userID, challengeID string, delta, target int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := challengeKey{userID, challengeID}
	cp, ok := m.chProgress[key]
	if !ok {
		cp = &models.ChallengeProgress{ID: uuid.NewString(), UserID: userID, ChallengeID: challengeID}
		m.chProgress[key] = cp
	}
	cp.Progress = min(cp.Progress+delta, target)
	cp.UpdatedAt = m.now().UTC()
	return cp.Progress, nil
}
