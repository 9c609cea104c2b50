package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/ferretcode/lovebug/pkg/types"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	searchPath         = "/2/tweets/search/recent"
	tokenPath          = "/oauth2/token"
	resultsPerKeyword  = 10
	searchWindow       = 24 * time.Hour
	httpTimeout        = 15 * time.Second
	defaultRequestGap  = time.Second
	maxErrorBodyLength = 512
)

var ErrRateLimited = errors.New("twitter api rate limit reached")

type TwitterSourceConfig struct {
	BaseUrl    string
	Keywords   []string
	MaxResults int
	// RequestInterval paces consecutive search requests.
	RequestInterval time.Duration
}

type TwitterSource struct {
	httpClient *http.Client
	config     TwitterSourceConfig
	limiter    *rate.Limiter
	logger     *slog.Logger
	now        func() time.Time
}

func NewTwitterSource(httpClient *http.Client, config TwitterSourceConfig, logger *slog.Logger) *TwitterSource {
	if config.RequestInterval <= 0 {
		config.RequestInterval = defaultRequestGap
	}

	return &TwitterSource{
		httpClient: httpClient,
		config:     config,
		limiter:    rate.NewLimiter(rate.Every(config.RequestInterval), 1),
		logger:     logger,
		now:        time.Now,
	}
}

// NewTwitterHTTPClient picks the strongest configured credential: a bearer
// token, then OAuth1 user context, then OAuth2 client credentials.
func NewTwitterHTTPClient(ctx context.Context, config *types.LovebugConfig) *http.Client {
	var client *http.Client

	switch {
	case config.TwitterBearerToken != "":
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: config.TwitterBearerToken,
			TokenType:   "Bearer",
		}))
	case config.TwitterAccessToken != "" && config.TwitterApiKey != "":
		consumer := oauth1.NewConfig(config.TwitterApiKey, config.TwitterApiSecret)
		client = consumer.Client(ctx, oauth1.NewToken(config.TwitterAccessToken, config.TwitterAccessTokenSecret))
	default:
		credentials := clientcredentials.Config{
			ClientID:     config.TwitterApiKey,
			ClientSecret: config.TwitterApiSecret,
			TokenURL:     strings.TrimSuffix(config.TwitterApiBaseUrl, "/") + tokenPath,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		client = credentials.Client(ctx)
	}

	client.Timeout = httpTimeout
	return client
}

func (s *TwitterSource) Name() string {
	return "twitter"
}

func (s *TwitterSource) Fetch(ctx context.Context) ([]Tweet, error) {
	var tweets []Tweet
	var errs []error
	seen := make(map[string]bool)

	for _, keyword := range s.config.Keywords {
		if err := s.limiter.Wait(ctx); err != nil {
			return tweets, err
		}

		found, err := s.search(ctx, keyword)
		if err != nil {
			s.logger.Warn("error searching keyword", "keyword", keyword, "err", err)
			errs = append(errs, err)
			if errors.Is(err, ErrRateLimited) {
				break
			}
			continue
		}

		for _, tweet := range found {
			if seen[tweet.ID] {
				continue
			}
			seen[tweet.ID] = true
			tweets = append(tweets, tweet)

			if s.config.MaxResults > 0 && len(tweets) >= s.config.MaxResults {
				return tweets, nil
			}
		}
	}

	if len(tweets) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return tweets, nil
}

func (s *TwitterSource) search(ctx context.Context, keyword string) ([]Tweet, error) {
	params := url.Values{}
	params.Set("query", fmt.Sprintf("%s -is:retweet lang:ko", keyword))
	params.Set("max_results", strconv.Itoa(resultsPerKeyword))
	params.Set("start_time", s.now().Add(-searchWindow).UTC().Format(time.RFC3339))
	params.Set("tweet.fields", "created_at,author_id,geo,attachments")
	params.Set("expansions", "author_id,attachments.media_keys,geo.place_id")
	params.Set("user.fields", "username")
	params.Set("media.fields", "url")
	params.Set("place.fields", "full_name")

	uri := strings.TrimSuffix(s.config.BaseUrl, "/") + searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("error create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		if len(body) > maxErrorBodyLength {
			body = body[:maxErrorBodyLength]
		}
		return nil, fmt.Errorf("search status %d: %s", resp.StatusCode, string(body))
	}

	return ParseSearchResponse(body)
}
