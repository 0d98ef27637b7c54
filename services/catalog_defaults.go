package services

import "gamification-service/models"

// DefaultBundle is the catalog shipped with the service.
func DefaultBundle() *Bundle {
	return &Bundle{
		Achievements: []AchievementSeed{
			{Title: "First Steps", Description: "Complete your first quiz", Icon: "🎯", Category: "quiz", XPReward: 50, Condition: map[string]any{"quizzes_completed": 1}},
			{Title: "Quiz Enthusiast", Description: "Complete 10 quizzes", Icon: "🔥", Category: "quiz", XPReward: 100, Condition: map[string]any{"quizzes_completed": 10}},
			{Title: "Quiz Master", Description: "Complete 50 quizzes", Icon: "🏆", Category: "quiz", XPReward: 250, Condition: map[string]any{"quizzes_completed": 50}},
			{Title: "Perfect Score", Description: "Score 100% on a quiz", Icon: "⭐", Category: "accuracy", XPReward: 100, Condition: map[string]any{"perfect_score": true}},
			{Title: "Accuracy Expert", Description: "Score 5 perfect quizzes", Icon: "🥇", Category: "accuracy", XPReward: 200, Condition: map[string]any{"perfect_scores": 5}},
			{Title: "Getting Started", Description: "Maintain a 3-day streak", Icon: "🔥", Category: "streak", XPReward: 75, Condition: map[string]any{"streak_days": 3}},
			{Title: "Commitment", Description: "Maintain a 7-day streak", Icon: "🔥", Category: "streak", XPReward: 150, Condition: map[string]any{"streak_days": 7}},
			{Title: "Dedication", Description: "Maintain a 30-day streak", Icon: "🔥", Category: "streak", XPReward: 500, Condition: map[string]any{"streak_days": 30}},
			{Title: "Category Explorer", Description: "Complete quizzes in 3 different categories", Icon: "🧠", Category: "category", XPReward: 100, Condition: map[string]any{"unique_categories": 3}},
			{Title: "Level 5 Scholar", Description: "Reach level 5", Icon: "📚", Category: "level", XPReward: 150, Condition: map[string]any{"level": 5}},
			{Title: "Level 10 Expert", Description: "Reach level 10", Icon: "📚", Category: "level", XPReward: 300, Condition: map[string]any{"level": 10}},
			{Title: "Speed Demon", Description: "Complete a quiz in under 2 minutes", Icon: "⚡", Category: "time", XPReward: 100, Condition: map[string]any{"time_under": 120}},
			{Title: "Subject Specialist", Description: "Reach level 3 in any category", Icon: "🎓", Category: "category", XPReward: 150, Condition: map[string]any{"category_level": 3}},
			{Title: "Well Rounded", Description: "Reach level 2 in 3 categories", Icon: "🌐", Category: "category", XPReward: 200, Condition: map[string]any{"diverse_categories": map[string]any{"count": 3, "level": 2}}},
			{Title: "Challenger", Description: "Complete your first challenge", Icon: "🏁", Category: "challenge", XPReward: 100, Condition: map[string]any{"challenges_completed": 1}, Hidden: true},
		},
		Badges: []BadgeSeed{
			{Name: "First Steps", Description: "Complete your first quiz", Icon: "👣", Category: "achievement", Rarity: models.RarityCommon},
			{Name: "Quiz Master", Description: "Complete 50 quizzes", Icon: "🏆", Category: "achievement", Rarity: models.RarityRare},
			{Name: "Quiz Expert", Description: "Complete 50 quizzes with a score of 80% or higher", Icon: "🎓", Category: "achievement", Rarity: models.RarityEpic},
			{Name: "Perfect Score", Description: "Achieve a perfect score in a quiz", Icon: "💯", Category: "achievement", Rarity: models.RarityUncommon},
			{Name: "Quick Learner", Description: "Complete a quiz in under 2 minutes", Icon: "⚡", Category: "speed", Rarity: models.RarityUncommon},
			{Name: "Math Master", Description: "Reach level 5 in mathematics", Icon: "➗", Category: "subject", SubjectType: "mathematics", LevelRequirement: 5, Rarity: models.RarityRare},
			{Name: "Code Wizard", Description: "Reach level 5 in programming", Icon: "🧙", Category: "subject", SubjectType: "programming", LevelRequirement: 5, Rarity: models.RarityEpic},
			{Name: "Science Scout", Description: "Reach level 2 in science", Icon: "🔬", Category: "subject", SubjectType: "science", LevelRequirement: 2, Rarity: models.RarityCommon},
		},
		Challenges: []ChallengeSeed{
			{Title: "Daily Quiz Master", Description: "Complete 3 quizzes today", Category: "daily", DurationDays: 1, XPReward: 150, Requirement: map[string]any{"quizzes_completed": 3}},
			{Title: "Perfect Score Challenge", Description: "Get a 100% score on any quiz today", Category: "daily", DurationDays: 1, XPReward: 200, BadgeRewards: []string{"Perfect Score"}, Requirement: map[string]any{"perfect_score": true}},
		},
		Campaigns: []CampaignSeed{
			{
				Title:       "Quiz Master Creator",
				Description: "Learn to create engaging and effective quizzes",
				Theme:       models.CampaignTheme{PrimaryColor: "#9333ea", SecondaryColor: "#c4b5fd"},
				Category:    "creation", RequiredLevel: 1, XPReward: 200,
				CustomizationRewards: []models.CustomizationReward{{Type: "avatar_frame", ID: "quiz_master_frame", Name: "Quiz Master Frame"}},
				Quests: []QuestSeed{
					{Title: "First Steps", Description: "Create your first quiz", Order: 0, XPReward: 50,
						Objectives: []models.Objective{{Type: "create_quiz", Description: "Create your first quiz", Required: 1}}},
					{Title: "Add Some Images", Description: "Create a quiz with at least 3 images", Order: 1, XPReward: 75,
						Objectives:           []models.Objective{{Type: "quiz_with_images", Description: "Add at least 3 images to a quiz", Required: 1}},
						CustomizationRewards: []models.CustomizationReward{{Type: "avatar_background", ID: "quiz_creator_bg", Name: "Quiz Creator Background"}}},
					{Title: "AI Assistant", Description: "Create a quiz using AI generation", Order: 2, XPReward: 100,
						Objectives: []models.Objective{{Type: "create_ai_quiz", Description: "Create a quiz using AI generation", Required: 1}}},
					{Title: "Quiz Portfolio", Description: "Create 5 quizzes in total", Order: 3, XPReward: 150,
						Objectives:           []models.Objective{{Type: "create_quiz", Description: "Create quizzes", Required: 5}},
						CustomizationRewards: []models.CustomizationReward{{Type: "title", ID: "quiz_creator", Name: "Quiz Creator"}}},
				},
			},
			{
				Title:       "Science Explorer",
				Description: "Master scientific knowledge through quizzes",
				Theme:       models.CampaignTheme{PrimaryColor: "#2563eb", SecondaryColor: "#93c5fd"},
				Category:    "science", RequiredLevel: 2, XPReward: 250,
				CustomizationRewards: []models.CustomizationReward{{Type: "avatar", ID: "scientist_avatar", Name: "Scientist Avatar"}},
				Quests: []QuestSeed{
					{Title: "Beginner Scientist", Description: "Complete 3 science quizzes", Order: 0, XPReward: 50,
						Objectives: []models.Objective{{Type: models.ObjectiveCompleteCategoryQuiz, Category: "science", Description: "Complete science quizzes", Required: 3}}},
					{Title: "Perfect Score", Description: "Get a perfect score on a science quiz", Order: 1, XPReward: 100,
						Objectives:           []models.Objective{{Type: models.ObjectivePerfectCategoryQuiz, Category: "science", Description: "Get 100% on a science quiz", Required: 1}},
						CustomizationRewards: []models.CustomizationReward{{Type: "badge", ID: "science_perfect", Name: "Science Perfect"}}},
					{Title: "Science Expert", Description: "Complete 10 science quizzes with a score of 80% or higher", Order: 2, XPReward: 150,
						Objectives: []models.Objective{{Type: models.ObjectiveCompleteCategoryQuizWithScore, Category: "science", MinScore: 80, Description: "Complete science quizzes with high scores", Required: 10}}},
				},
			},
			{
				Title:       "Streak Master",
				Description: "Build your consistency and daily learning habit",
				Theme:       models.CampaignTheme{PrimaryColor: "#dc2626", SecondaryColor: "#fca5a5"},
				Category:    "consistency", RequiredLevel: 1, XPReward: 300,
				CustomizationRewards: []models.CustomizationReward{{Type: "profile_effect", ID: "flame_aura", Name: "Flame Aura"}},
				Quests: []QuestSeed{
					{Title: "First Week", Description: "Maintain a 7-day streak", Order: 0, XPReward: 75,
						Objectives:           []models.Objective{{Type: models.ObjectiveMaintainStreak, Description: "Complete at least one quiz every day", Required: 7}},
						CustomizationRewards: []models.CustomizationReward{{Type: "badge", ID: "weekly_streak", Name: "Weekly Streak"}}},
					{Title: "Two Week Challenge", Description: "Maintain a 14-day streak", Order: 1, XPReward: 150,
						Objectives: []models.Objective{{Type: models.ObjectiveMaintainStreak, Description: "Complete at least one quiz every day", Required: 14}}},
					{Title: "Month Master", Description: "Maintain a 30-day streak", Order: 2, XPReward: 300,
						Objectives:           []models.Objective{{Type: models.ObjectiveMaintainStreak, Description: "Complete at least one quiz every day", Required: 30}},
						CustomizationRewards: []models.CustomizationReward{{Type: "title", ID: "streak_master", Name: "Streak Master"}}},
				},
			},
			{
				Title:       "Trivia Champion",
				Description: "Test your knowledge across various trivia categories",
				Theme:       models.CampaignTheme{PrimaryColor: "#047857", SecondaryColor: "#6ee7b7"},
				Category:    "trivia", RequiredLevel: 3, XPReward: 350,
				CustomizationRewards: []models.CustomizationReward{{Type: "avatar_accessory", ID: "knowledge_crown", Name: "Crown of Knowledge"}},
				Quests: []QuestSeed{
					{Title: "Trivia Beginner", Description: "Complete 5 different category quizzes", Order: 0, XPReward: 100,
						Objectives: []models.Objective{{Type: models.ObjectiveUniqueCategories, Description: "Complete quizzes from different categories", Required: 5}}},
					{Title: "Quick Thinker", Description: "Complete a quiz in under 3 minutes with a score of at least 70%", Order: 1, XPReward: 150,
						Objectives:           []models.Objective{{Type: models.ObjectiveTimedQuiz, Description: "Complete quiz quickly with good score", Required: 1, TimeLimit: 180, MinScore: 70}},
						CustomizationRewards: []models.CustomizationReward{{Type: "badge", ID: "quick_thinker", Name: "Quick Thinker"}}},
					{Title: "Knowledge Master", Description: "Score 90% or higher on 3 different category quizzes", Order: 2, XPReward: 200,
						Objectives:           []models.Objective{{Type: models.ObjectiveHighScoreDifferentCategories, Description: "High scores across different categories", Required: 3, MinScore: 90}},
						CustomizationRewards: []models.CustomizationReward{{Type: "title", ID: "trivia_master", Name: "Trivia Master"}}},
				},
			},
		},
	}
}
