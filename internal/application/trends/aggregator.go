// Package trends implements the trend aggregator: a reporting view that
// rolls recent records up into topic frequencies, emerging-topic detection,
// and risk-pattern summaries over a sliding time window.
package trends

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/turtacn/MedReg-Intelligence/internal/domain/record"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// TopicFrequency is one ranked topic with its mention count inside the
// window.
type TopicFrequency struct {
	Topic    string `json:"topic"`
	Mentions int    `json:"mentions"`
}

// Report is the aggregated trend view for one window.
type Report struct {
	WindowDays     int              `json:"window_days"`
	From           time.Time        `json:"from"`
	To             time.Time        `json:"to"`
	RecordCount    int              `json:"record_count"`
	TopTopics      []TopicFrequency `json:"top_topics"`
	EmergingTopics []string         `json:"emerging_topics"`
	RiskPatterns   []TopicFrequency `json:"risk_patterns"`
}

// Emerging-topic rule: more than this share of a topic's mentions must fall
// in the most recent recencyShare of the window, with at least
// emergingMinMentions total to guard against single-occurrence noise.
const (
	emergingRecentShare = 0.6
	recencyShare        = 0.3
	emergingMinMentions = 3
)

// trendTopics is the tracked topic keyword list.
var trendTopics = []string{
	"recall",
	"cybersecurity",
	"artificial intelligence",
	"software as a medical device",
	"clinical evaluation",
	"post-market surveillance",
	"unique device identification",
	"mdr",
	"ivdr",
	"510(k)",
	"de novo",
	"breakthrough device",
}

// riskTopics is the tracked risk-indicator keyword list.
var riskTopics = []string{
	"recall",
	"safety alert",
	"serious injury",
	"death",
	"malfunction",
	"contamination",
	"cybersecurity",
	"counterfeit",
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service aggregates corpus trends.
type Service interface {
	// AnalyzeTrends builds the trend report for the trailing windowDays.
	// A non-positive windowDays falls back to the configured default.
	AnalyzeTrends(ctx context.Context, corpus *record.Corpus, windowDays int) *Report
}

// Deps holds the service dependencies.
type Deps struct {
	DefaultWindowDays int
	TopK              int
	Logger            logging.Logger
	Now               func() time.Time
}

type serviceImpl struct {
	defaultWindowDays int
	topK              int
	logger            logging.Logger
	now               func() time.Time
}

// NewService creates a trend aggregator.
func NewService(deps Deps) Service {
	windowDays := deps.DefaultWindowDays
	if windowDays < 1 {
		windowDays = 90
	}
	topK := deps.TopK
	if topK < 1 {
		topK = 5
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &serviceImpl{
		defaultWindowDays: windowDays,
		topK:              topK,
		logger:            logger,
		now:               now,
	}
}

func (s *serviceImpl) AnalyzeTrends(_ context.Context, corpus *record.Corpus, windowDays int) *Report {
	if windowDays < 1 {
		windowDays = s.defaultWindowDays
	}
	to := s.now().UTC()
	from := to.AddDate(0, 0, -windowDays)
	recentCutoff := to.Add(-time.Duration(float64(windowDays) * recencyShare * 24 * float64(time.Hour)))

	report := &Report{
		WindowDays:     windowDays,
		From:           from,
		To:             to,
		TopTopics:      make([]TopicFrequency, 0, s.topK),
		EmergingTopics: make([]string, 0),
		RiskPatterns:   make([]TopicFrequency, 0),
	}
	if corpus == nil {
		return report
	}

	windowed := make([]*record.Record, 0, corpus.Len())
	for _, r := range corpus.All() {
		at := r.PublishedAtUTC()
		if at.Before(from) || at.After(to) {
			continue
		}
		windowed = append(windowed, r)
	}
	report.RecordCount = len(windowed)

	total, recent := countMentions(windowed, trendTopics, recentCutoff)

	ranked := make([]TopicFrequency, 0, len(trendTopics))
	for _, topic := range trendTopics {
		if total[topic] == 0 {
			continue
		}
		ranked = append(ranked, TopicFrequency{Topic: topic, Mentions: total[topic]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Mentions != ranked[j].Mentions {
			return ranked[i].Mentions > ranked[j].Mentions
		}
		return ranked[i].Topic < ranked[j].Topic
	})
	if len(ranked) > s.topK {
		ranked = ranked[:s.topK]
	}
	report.TopTopics = ranked

	for _, topic := range trendTopics {
		mentions := total[topic]
		if mentions < emergingMinMentions {
			continue
		}
		if float64(recent[topic]) > emergingRecentShare*float64(mentions) {
			report.EmergingTopics = append(report.EmergingTopics, topic)
		}
	}

	riskTotal, _ := countMentions(windowed, riskTopics, recentCutoff)
	for _, topic := range riskTopics {
		if riskTotal[topic] == 0 {
			continue
		}
		report.RiskPatterns = append(report.RiskPatterns, TopicFrequency{
			Topic:    topic,
			Mentions: riskTotal[topic],
		})
	}
	sort.SliceStable(report.RiskPatterns, func(i, j int) bool {
		if report.RiskPatterns[i].Mentions != report.RiskPatterns[j].Mentions {
			return report.RiskPatterns[i].Mentions > report.RiskPatterns[j].Mentions
		}
		return report.RiskPatterns[i].Topic < report.RiskPatterns[j].Topic
	})

	s.logger.Debug("trend report assembled",
		logging.Int("window_days", windowDays),
		logging.Int("records", report.RecordCount),
		logging.Int("topics", len(report.TopTopics)),
		logging.Int("emerging", len(report.EmergingTopics)),
	)
	return report
}

// countMentions tallies, per topic, how many windowed records mention it at
// all and how many of those fall after the recency cutoff.
func countMentions(records []*record.Record, topics []string, recentCutoff time.Time) (total, recent map[string]int) {
	total = make(map[string]int, len(topics))
	recent = make(map[string]int, len(topics))
	for _, r := range records {
		text := strings.ToLower(r.ComparableText())
		isRecent := !r.PublishedAtUTC().Before(recentCutoff)
		for _, topic := range topics {
			if !strings.Contains(text, topic) {
				continue
			}
			total[topic]++
			if isRecent {
				recent[topic]++
			}
		}
	}
	return total, recent
}
