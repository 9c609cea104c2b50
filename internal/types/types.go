package types

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Weight maps a severity onto the 1-4 scale used for averages.
func (s Severity) Weight() int {
	switch s {
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 1
}

func ParseSeverity(value string) (Severity, error) {
	for _, severity := range Severities {
		if string(severity) == value {
			return severity, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q", value)
}

type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformNaverBlog Platform = "naver_blog"
	PlatformKakaoTalk Platform = "kakao_talk"
)

var Platforms = []Platform{PlatformTwitter, PlatformInstagram, PlatformNaverBlog, PlatformKakaoTalk}

func ParsePlatform(value string) (Platform, error) {
	for _, platform := range Platforms {
		if string(platform) == value {
			return platform, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", value)
}

type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Address   string  `json:"address,omitempty" bson:"address,omitempty"`
	District  string  `json:"district,omitempty" bson:"district,omitempty"`
	City      string  `json:"city,omitempty" bson:"city,omitempty"`
}

type Report struct {
	ID         *bson.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TweetID    string         `json:"tweet_id,omitempty" bson:"tweet_id,omitempty"`
	Platform   Platform       `json:"platform" bson:"platform"`
	Content    string         `json:"content" bson:"content"`
	Location   *Location      `json:"location,omitempty" bson:"location,omitempty"`
	Severity   Severity       `json:"severity" bson:"severity"`
	Confidence float64        `json:"confidence" bson:"confidence"`
	Sentiment  float64        `json:"sentiment" bson:"sentiment"`
	Keywords   []string       `json:"keywords" bson:"keywords"`
	ImageUrls  []string       `json:"image_urls" bson:"image_urls"`
	Author     string         `json:"author,omitempty" bson:"author,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" bson:"updated_at"`
}

type KeywordCount struct {
	Keyword string `json:"keyword" bson:"_id"`
	Count   int    `json:"count" bson:"count"`
}

type Stats struct {
	TotalReports         int              `json:"total_reports"`
	ReportsByHour        map[int]int      `json:"reports_by_hour"`
	ReportsByDistrict    map[string]int   `json:"reports_by_district"`
	SeverityDistribution map[Severity]int `json:"severity_distribution"`
	TopKeywords          []KeywordCount   `json:"top_keywords"`
	AverageSentiment     float64          `json:"average_sentiment"`
	LastUpdated          time.Time        `json:"last_updated"`
}

type HotSpot struct {
	Location        Location  `json:"location"`
	ReportCount     int       `json:"report_count"`
	AverageSeverity float64   `json:"average_severity"`
	Radius          float64   `json:"radius"`
	LastActivity    time.Time `json:"last_activity"`
}

type DistrictSummary struct {
	District        string    `json:"district" bson:"_id"`
	Count           int       `json:"count" bson:"count"`
	AverageSeverity float64   `json:"average_severity" bson:"avg_severity"`
	LastActivity    time.Time `json:"last_activity" bson:"last_activity"`
}

type RealTimeUpdate struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

const UpdateTypeLovebug = "lovebug_update"
