package crawler

import (
	"errors"
	"fmt"
	"time"

	"github.com/buger/jsonparser"
)

// ParseSearchResponse reads a Twitter v2 recent search body, resolving author
// usernames, media URLs and place names from the includes block.
func ParseSearchResponse(data []byte) ([]Tweet, error) {
	usernames := make(map[string]string)
	_, err := jsonparser.ArrayEach(data, func(user []byte, dataType jsonparser.ValueType, offset int, err error) {
		id, idErr := jsonparser.GetString(user, "id")
		username, nameErr := jsonparser.GetString(user, "username")
		if idErr == nil && nameErr == nil {
			usernames[id] = username
		}
	}, "includes", "users")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, fmt.Errorf("error parsing includes.users: %w", err)
	}

	mediaUrls := make(map[string]string)
	_, err = jsonparser.ArrayEach(data, func(media []byte, dataType jsonparser.ValueType, offset int, err error) {
		key, keyErr := jsonparser.GetString(media, "media_key")
		url, urlErr := jsonparser.GetString(media, "url")
		if keyErr == nil && urlErr == nil && url != "" {
			mediaUrls[key] = url
		}
	}, "includes", "media")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, fmt.Errorf("error parsing includes.media: %w", err)
	}

	places := make(map[string]string)
	_, err = jsonparser.ArrayEach(data, func(place []byte, dataType jsonparser.ValueType, offset int, err error) {
		id, idErr := jsonparser.GetString(place, "id")
		name, nameErr := jsonparser.GetString(place, "full_name")
		if idErr == nil && nameErr == nil && name != "" {
			places[id] = name
		}
	}, "includes", "places")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, fmt.Errorf("error parsing includes.places: %w", err)
	}

	var tweets []Tweet
	var parseErrors []error

	_, err = jsonparser.ArrayEach(data, func(item []byte, dataType jsonparser.ValueType, offset int, err error) {
		if err != nil {
			parseErrors = append(parseErrors, err)
			return
		}

		tweet := Tweet{Author: "Unknown", Images: []string{}}

		if tweet.ID, err = jsonparser.GetString(item, "id"); err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("tweet at offset %d has no id: %w", offset, err))
			return
		}

		if tweet.Text, err = jsonparser.GetString(item, "text"); err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("tweet %s has no text: %w", tweet.ID, err))
			return
		}

		if authorID, err := jsonparser.GetString(item, "author_id"); err == nil {
			if username, ok := usernames[authorID]; ok {
				tweet.Author = username
			}
		}

		if createdAt, err := jsonparser.GetString(item, "created_at"); err == nil {
			if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
				tweet.CreatedAt = parsed
			}
		}

		jsonparser.ArrayEach(item, func(key []byte, dataType jsonparser.ValueType, offset int, err error) {
			if url, ok := mediaUrls[string(key)]; ok {
				tweet.Images = append(tweet.Images, url)
			}
		}, "attachments", "media_keys")

		if placeID, err := jsonparser.GetString(item, "geo", "place_id"); err == nil {
			tweet.Place = places[placeID]
		}

		tweets = append(tweets, tweet)
	}, "data")

	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, fmt.Errorf("error parsing data: %w", err)
	}

	if len(tweets) == 0 && len(parseErrors) > 0 {
		return nil, errors.Join(parseErrors...)
	}

	return tweets, nil
}
