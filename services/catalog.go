package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gamification-service/models"

	"golang.org/x/text/cases"
)

// sameText compares two labels case-insensitively ("Mathematics" == "mathematics").
// Casers keep state, so each call gets its own.
func sameText(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

// Catalog is an immutable snapshot of the seeded definitions. It is loaded
// once after seeding and never mutated.
type Catalog struct {
	achievements []models.Achievement
	badges       []models.Badge
	challenges   []models.Challenge
	campaigns    []models.Campaign

	badgeByID     map[string]*models.Badge
	badgeByName   map[string]*models.Badge
	challengeByID map[string]*models.Challenge
	campaignByID  map[string]*models.Campaign
	quests        map[string][]models.Quest // campaign id → quests by order
	questByID     map[string]*models.Quest
}

// LoadCatalog reads every definition from repo into a new snapshot.
func LoadCatalog(ctx context.Context, repo CatalogRepository) (*Catalog, error) {
	achievements, err := repo.ListAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	badges, err := repo.ListBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	challenges, err := repo.ListChallenges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	campaigns, err := repo.ListCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	quests := make(map[string][]models.Quest, len(campaigns))
	for _, c := range campaigns {
		qs, err := repo.ListQuests(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list quests of campaign %s: %w", c.ID, err)
		}
		quests[c.ID] = qs
	}
	return NewCatalog(achievements, badges, challenges, campaigns, quests), nil
}

// NewCatalog indexes the given definitions. Quests are re-sorted by Order.
func NewCatalog(achievements []models.Achievement, badges []models.Badge, challenges []models.Challenge,
	campaigns []models.Campaign, quests map[string][]models.Quest) *Catalog {
	c := &Catalog{
		achievements:  achievements,
		badges:        badges,
		challenges:    challenges,
		campaigns:     campaigns,
		badgeByID:     make(map[string]*models.Badge, len(badges)),
		badgeByName:   make(map[string]*models.Badge, len(badges)),
		challengeByID: make(map[string]*models.Challenge, len(challenges)),
		campaignByID:  make(map[string]*models.Campaign, len(campaigns)),
		quests:        make(map[string][]models.Quest, len(quests)),
		questByID:     make(map[string]*models.Quest),
	}
	for i := range c.badges {
		b := &c.badges[i]
		c.badgeByID[b.ID] = b
		if _, dup := c.badgeByName[b.Name]; !dup {
			c.badgeByName[b.Name] = b
		}
	}
	for i := range c.challenges {
		c.challengeByID[c.challenges[i].ID] = &c.challenges[i]
	}
	for i := range c.campaigns {
		camp := &c.campaigns[i]
		c.campaignByID[camp.ID] = camp

		qs := append([]models.Quest(nil), quests[camp.ID]...)
		sort.SliceStable(qs, func(a, b int) bool { return qs[a].Order < qs[b].Order })
		c.quests[camp.ID] = qs
		camp.QuestIDs = make([]string, len(qs))
		for j := range qs {
			camp.QuestIDs[j] = qs[j].ID
			c.questByID[qs[j].ID] = &c.quests[camp.ID][j]
		}
	}
	return c
}

func (c *Catalog) Achievements() []models.Achievement { return c.achievements }
func (c *Catalog) Badges() []models.Badge             { return c.badges }
func (c *Catalog) Campaigns() []models.Campaign       { return c.campaigns }

func (c *Catalog) Badge(id string) (*models.Badge, bool) {
	b, ok := c.badgeByID[id]
	return b, ok
}

// BadgeByName finds the badge an achievement title links to.
func (c *Catalog) BadgeByName(name string) (*models.Badge, bool) {
	b, ok := c.badgeByName[name]
	return b, ok
}

// BadgesForSubjectLevel returns the level-milestone badges of a subject.
func (c *Catalog) BadgesForSubjectLevel(subject string, level int) []*models.Badge {
	var out []*models.Badge
	for i := range c.badges {
		b := &c.badges[i]
		if b.SubjectType != "" && b.LevelRequirement == level && sameText(b.SubjectType, subject) {
			out = append(out, b)
		}
	}
	return out
}

func (c *Catalog) Challenge(id string) (*models.Challenge, bool) {
	ch, ok := c.challengeByID[id]
	return ch, ok
}

// ActiveChallenges returns the challenges whose window contains now.
func (c *Catalog) ActiveChallenges(now time.Time) []models.Challenge {
	out := make([]models.Challenge, 0, len(c.challenges))
	for _, ch := range c.challenges {
		if ch.IsActive(now) {
			out = append(out, ch)
		}
	}
	return out
}

// ExpiredChallenges returns the challenges whose window closed before now.
func (c *Catalog) ExpiredChallenges(now time.Time) []models.Challenge {
	var out []models.Challenge
	for _, ch := range c.challenges {
		if !now.Before(ch.EndDate) {
			out = append(out, ch)
		}
	}
	return out
}

func (c *Catalog) Campaign(id string) (*models.Campaign, bool) {
	camp, ok := c.campaignByID[id]
	return camp, ok
}

// Quests returns the campaign's quests ordered by Order.
func (c *Catalog) Quests(campaignID string) []models.Quest {
	return c.quests[campaignID]
}

func (c *Catalog) Quest(id string) (*models.Quest, bool) {
	q, ok := c.questByID[id]
	return q, ok
}

// NextQuest returns the quest after questID in its campaign, or nil.
func (c *Catalog) NextQuest(campaignID, questID string) *models.Quest {
	qs := c.quests[campaignID]
	for i := range qs {
		if qs[i].ID == questID && i+1 < len(qs) {
			return &qs[i+1]
		}
	}
	return nil
}
