// Package metrics exposes Prometheus counters for rewards and progression.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Level tracks.
const (
	TrackGlobal   = "global"
	TrackCategory = "category"
)

var (
	ActivityEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamification_activity_events_total",
			Help: "Activity events processed, by outcome",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	AchievementsAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamification_achievements_awarded_total",
			Help: "Achievements newly added to a player",
		},
	)

	BadgesAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamification_badges_awarded_total",
			Help: "Badges newly added to a player",
		},
	)

	LevelUps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamification_level_ups_total",
			Help: "Levels gained, by track",
		},
		[]string{"track"},
	)

	XPGranted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamification_xp_granted_total",
			Help: "XP credited, by track",
		},
		[]string{"track"},
	)

	QuestsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamification_quests_completed_total",
			Help: "Quests completed",
		},
	)

	CampaignsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamification_campaigns_completed_total",
			Help: "Campaigns completed",
		},
	)

	ChallengesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamification_challenges_completed_total",
			Help: "Challenges completed",
		},
	)

	ScheduledJobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamification_scheduled_job_runs_total",
			Help: "Scheduled job runs, by job and outcome",
		},
		[]string{"job", "outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamification_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordXP counts an XP grant and the levels it produced on the given track.
func RecordXP(track string, amount int64, levelsGained int) {
	if amount > 0 {
		XPGranted.WithLabelValues(track).Add(float64(amount))
	}
	if levelsGained > 0 {
		LevelUps.WithLabelValues(track).Add(float64(levelsGained))
	}
}

func RecordActivity(err error) {
	ActivityEvents.WithLabelValues(outcome(err)).Inc()
}

func RecordJob(job string, err error) {
	ScheduledJobRuns.WithLabelValues(job, outcome(err)).Inc()
}

func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
