package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gamification-service/logging"
	"gamification-service/models"
	"gamification-service/progression"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
)

// Bundle is the seed document for the catalog. Conditions use the loose map
// form ({"streak_days": 7}) and are parsed into typed conditions on seeding.
type Bundle struct {
	Achievements []AchievementSeed `json:"achievements"`
	Badges       []BadgeSeed       `json:"badges"`
	Challenges   []ChallengeSeed   `json:"challenges"`
	Campaigns    []CampaignSeed    `json:"campaigns"`
}

type AchievementSeed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Category    string         `json:"category"`
	XPReward    int64          `json:"xp_reward"`
	Condition   map[string]any `json:"condition"`
	Hidden      bool           `json:"hidden"`
}

type BadgeSeed struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Icon             string `json:"icon"`
	Category         string `json:"category"`
	SubjectType      string `json:"subject_type"`
	Rarity           string `json:"rarity"`
	LevelRequirement int    `json:"level_requirement"`
}

// ChallengeSeed windows are either absolute or DurationDays long starting
// at the UTC day of seeding.
type ChallengeSeed struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Category     string         `json:"category"`
	StartDate    *time.Time     `json:"start_date"`
	EndDate      *time.Time     `json:"end_date"`
	DurationDays int            `json:"duration_days"`
	XPReward     int64          `json:"xp_reward"`
	BadgeRewards []string       `json:"badge_rewards"` // badge names
	Requirement  map[string]any `json:"requirement"`
}

type CampaignSeed struct {
	Title                string                       `json:"title"`
	Description          string                       `json:"description"`
	Theme                models.CampaignTheme         `json:"theme"`
	Category             string                       `json:"category"`
	RequiredLevel        int                          `json:"required_level"`
	XPReward             int64                        `json:"xp_reward"`
	CustomizationRewards []models.CustomizationReward `json:"customization_rewards"`
	Quests               []QuestSeed                  `json:"quests"`
}

type QuestSeed struct {
	Title                string                       `json:"title"`
	Description          string                       `json:"description"`
	Order                int                          `json:"order"`
	XPReward             int64                        `json:"xp_reward"`
	Objectives           []models.Objective           `json:"objectives"`
	CustomizationRewards []models.CustomizationReward `json:"customization_rewards"`
}

// DecodeBundle parses a JSON seed document.
func DecodeBundle(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode catalog bundle: %w", err)
	}
	return &b, nil
}

// BundleSource opens a seed document kept outside the binary.
type BundleSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads the bundle from a local path.
type FileSource string

func (f FileSource) Open(context.Context) (io.ReadCloser, error) {
	return os.Open(string(f))
}

// LoadBundle fetches and decodes a bundle from src.
func LoadBundle(ctx context.Context, src BundleSource) (*Bundle, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog bundle: %w", err)
	}
	defer rc.Close()
	return DecodeBundle(rc)
}

var catalogNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:gamification-service:catalog"))

// CatalogID derives the stable id of a catalog entry from its kind and code,
// so reseeding updates rows in place.
func CatalogID(kind, code string) string {
	return uuid.NewSHA1(catalogNamespace, []byte(kind+":"+code)).String()
}

// SeedReport counts the upserted definitions.
type SeedReport struct {
	Achievements int `json:"achievements"`
	Badges       int `json:"badges"`
	Challenges   int `json:"challenges"`
	Campaigns    int `json:"campaigns"`
	Quests       int `json:"quests"`
}

// Seeder writes a bundle into the catalog tables. Seeding is idempotent:
// ids come from slug codes and every write is an upsert.
type Seeder struct {
	repo CatalogRepository
	now  func() time.Time
}

func NewSeeder(repo CatalogRepository, now func() time.Time) *Seeder {
	if now == nil {
		now = time.Now
	}
	return &Seeder{repo: repo, now: now}
}

func (s *Seeder) Seed(ctx context.Context, b *Bundle) (*SeedReport, error) {
	// A quest completes when all its objectives are met, so it needs at least one.
	for _, cs := range b.Campaigns {
		for _, qs := range cs.Quests {
			if len(qs.Objectives) == 0 {
				return nil, fmt.Errorf("quest %q of campaign %q has no objectives", qs.Title, cs.Title)
			}
		}
	}

	report := &SeedReport{}
	badgeIDs := make(map[string]string, len(b.Badges))

	for _, bs := range b.Badges {
		code := slug.Make(bs.Name)
		rarity := bs.Rarity
		if rarity == "" {
			rarity = models.RarityCommon
		}
		badge := &models.Badge{
			ID:               CatalogID("badge", code),
			Code:             code,
			Name:             bs.Name,
			Description:      bs.Description,
			Icon:             bs.Icon,
			Category:         bs.Category,
			SubjectType:      bs.SubjectType,
			Rarity:           rarity,
			LevelRequirement: bs.LevelRequirement,
		}
		if err := s.repo.UpsertBadge(ctx, badge); err != nil {
			return nil, fmt.Errorf("failed to seed badge %q: %w", bs.Name, err)
		}
		badgeIDs[bs.Name] = badge.ID
		report.Badges++
	}

	for _, as := range b.Achievements {
		code := slug.Make(as.Title)
		cond := models.ParseCondition(as.Condition)
		if cond.Kind == models.ConditionUnknown {
			logging.Warn().Str("achievement", as.Title).Msg("achievement condition not recognised, it will never unlock")
		}
		ach := &models.Achievement{
			ID:          CatalogID("achievement", code),
			Code:        code,
			Title:       as.Title,
			Description: as.Description,
			Icon:        as.Icon,
			Category:    as.Category,
			XPReward:    as.XPReward,
			Condition:   datatypes.NewJSONType(cond),
			Hidden:      as.Hidden,
		}
		if err := s.repo.UpsertAchievement(ctx, ach); err != nil {
			return nil, fmt.Errorf("failed to seed achievement %q: %w", as.Title, err)
		}
		report.Achievements++
	}

	today := progression.Day(s.now())
	for _, cs := range b.Challenges {
		code := slug.Make(cs.Title)
		start, end := today, today.AddDate(0, 0, max(cs.DurationDays, 1))
		if cs.StartDate != nil {
			start = cs.StartDate.UTC()
		}
		if cs.EndDate != nil {
			end = cs.EndDate.UTC()
		}
		rewards := make([]string, 0, len(cs.BadgeRewards))
		for _, name := range cs.BadgeRewards {
			id, ok := badgeIDs[name]
			if !ok {
				return nil, fmt.Errorf("challenge %q rewards unknown badge %q", cs.Title, name)
			}
			rewards = append(rewards, id)
		}
		requirement := models.Condition{Kind: models.ConditionNone}
		if len(cs.Requirement) > 0 {
			requirement = models.ParseCondition(cs.Requirement)
		}
		ch := &models.Challenge{
			ID:           CatalogID("challenge", code),
			Code:         code,
			Title:        cs.Title,
			Description:  cs.Description,
			Category:     cs.Category,
			StartDate:    start,
			EndDate:      end,
			XPReward:     cs.XPReward,
			BadgeRewards: datatypes.NewJSONType(rewards),
			Requirement:  datatypes.NewJSONType(requirement),
		}
		if err := s.repo.UpsertChallenge(ctx, ch); err != nil {
			return nil, fmt.Errorf("failed to seed challenge %q: %w", cs.Title, err)
		}
		report.Challenges++
	}

	for _, cs := range b.Campaigns {
		code := slug.Make(cs.Title)
		requiredLevel := cs.RequiredLevel
		if requiredLevel < 1 {
			requiredLevel = 1
		}
		camp := &models.Campaign{
			ID:                   CatalogID("campaign", code),
			Code:                 code,
			Title:                cs.Title,
			Description:          cs.Description,
			Theme:                datatypes.NewJSONType(cs.Theme),
			Category:             cs.Category,
			RequiredLevel:        requiredLevel,
			XPReward:             cs.XPReward,
			CustomizationRewards: datatypes.NewJSONType(nonNil(cs.CustomizationRewards)),
		}
		if err := s.repo.UpsertCampaign(ctx, camp); err != nil {
			return nil, fmt.Errorf("failed to seed campaign %q: %w", cs.Title, err)
		}
		report.Campaigns++

		for _, qs := range cs.Quests {
			qcode := slug.Make(cs.Title + " " + qs.Title)
			quest := &models.Quest{
				ID:                   CatalogID("quest", qcode),
				CampaignID:           camp.ID,
				Code:                 qcode,
				Title:                qs.Title,
				Description:          qs.Description,
				Order:                qs.Order,
				Objectives:           datatypes.NewJSONType(qs.Objectives),
				XPReward:             qs.XPReward,
				CustomizationRewards: datatypes.NewJSONType(nonNil(qs.CustomizationRewards)),
			}
			if err := s.repo.UpsertQuest(ctx, quest); err != nil {
				return nil, fmt.Errorf("failed to seed quest %q of %q: %w", qs.Title, cs.Title, err)
			}
			report.Quests++
		}
	}

	logging.Info().
		Int("achievements", report.Achievements).
		Int("badges", report.Badges).
		Int("challenges", report.Challenges).
		Int("campaigns", report.Campaigns).
		Int("quests", report.Quests).
		Msg("🌱 catalog seeded")
	return report, nil
}

func nonNil(r []models.CustomizationReward) []models.CustomizationReward {
	if r == nil {
		return []models.CustomizationReward{}
	}
	return r
}
