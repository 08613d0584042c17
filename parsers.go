package twitter

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// problem is one entry of a v2 "errors" array.
type problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

func (p problem) message() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// parsePost parses a single-tweet envelope, resolving the author from includes.users.
func parsePost(body []byte) (*Post, error) {
	var raw struct {
		Data     *Post `json:"data"`
		Includes struct {
			Users []*User `json:"users"`
		} `json:"includes"`
		Errors []problem `json:"errors"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal tweet: %w", err)
	}
	if raw.Data == nil {
		if len(raw.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, raw.Errors[0].message())
		}
		return nil, fmt.Errorf("%w: tweet", ErrNotFound)
	}
	for _, u := range raw.Includes.Users {
		if u != nil && u.ID == raw.Data.AuthorID {
			raw.Data.Author = u
			break
		}
	}
	return raw.Data, nil
}

// parseCreatedPost parses the POST /2/tweets response ({data:{id,text}}).
// A response without an id is an error: the caller cannot reference the tweet.
func parseCreatedPost(body []byte) (*Post, error) {
	var raw struct {
		Data *Post `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal create tweet: %w", err)
	}
	if raw.Data == nil || raw.Data.ID == "" {
		return nil, &MissingIDError{Body: body}
	}
	return raw.Data, nil
}

// parsePostList parses a timeline page. An absent data array is an empty page.
func parsePostList(body []byte) ([]*Post, error) {
	var raw struct {
		Data []*Post `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal tweet list: %w", err)
	}
	posts := make([]*Post, 0, len(raw.Data))
	for _, p := range raw.Data {
		if p != nil {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// parseUser parses a single-user envelope.
func parseUser(body []byte) (*User, error) {
	var raw struct {
		Data   *User     `json:"data"`
		Errors []problem `json:"errors"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	if raw.Data == nil {
		if len(raw.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, raw.Errors[0].message())
		}
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	return raw.Data, nil
}

// parseDMEvents parses a dm_events page.
func parseDMEvents(body []byte) ([]*DMEvent, error) {
	var raw struct {
		Data []*DMEvent `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal dm events: %w", err)
	}
	events := make([]*DMEvent, 0, len(raw.Data))
	for _, e := range raw.Data {
		if e != nil {
			events = append(events, e)
		}
	}
	return events, nil
}

// parseDMResult parses the send-message response.
func parseDMResult(body []byte) (DMResult, error) {
	if !gjson.ValidBytes(body) {
		return DMResult{}, errors.New("invalid dm response")
	}
	return DMResult{
		EventID:        gjson.GetBytes(body, "data.dm_event_id").String(),
		ConversationID: gjson.GetBytes(body, "data.dm_conversation_id").String(),
	}, nil
}

// parseDeleted reads data.deleted.
func parseDeleted(body []byte) (DeleteResult, error) {
	if !gjson.ValidBytes(body) {
		return DeleteResult{}, errors.New("invalid delete response")
	}
	return DeleteResult{Deleted: gjson.GetBytes(body, "data.deleted").Bool()}, nil
}

// parseLiked reads data.liked.
func parseLiked(body []byte) (LikeResult, error) {
	if !gjson.ValidBytes(body) {
		return LikeResult{}, errors.New("invalid like response")
	}
	return LikeResult{Liked: gjson.GetBytes(body, "data.liked").Bool()}, nil
}

// parseFollowing reads data.following and data.pending_follow.
func parseFollowing(body []byte) (FollowResult, error) {
	if !gjson.ValidBytes(body) {
		return FollowResult{}, errors.New("invalid follow response")
	}
	return FollowResult{
		Following:     gjson.GetBytes(body, "data.following").Bool(),
		PendingFollow: gjson.GetBytes(body, "data.pending_follow").Bool(),
	}, nil
}

// parseMedia reads the uploaded media id. Both the v2 shape and the v1.1 shape are accepted.
func parseMedia(body []byte) (Media, error) {
	if !gjson.ValidBytes(body) {
		return Media{}, errors.New("invalid media response")
	}
	m := Media{
		ID:       gjson.GetBytes(body, "data.id").String(),
		MediaKey: gjson.GetBytes(body, "data.media_key").String(),
	}
	if m.ID == "" {
		m.ID = gjson.GetBytes(body, "media_id_string").String()
	}
	if m.ID == "" {
		return Media{}, fmt.Errorf("media upload returned no id: %s", truncateBytes(body, 200))
	}
	return m, nil
}
