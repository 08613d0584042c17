package twitter

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	defaultBaseURL   = "https://api.x.com"
	defaultUploadURL = "https://api.x.com/2/media/upload"
	webBaseURL       = "https://x.com"
)

// Endpoint names, used as rate-limit buckets and in error messages.
const (
	epCreatePost     = "CreatePost"
	epDeletePost     = "DeletePost"
	epSearchRecent   = "SearchRecent"
	epGetPost        = "GetPost"
	epUserByUsername = "UserByUsername"
	epMe             = "Me"
	epMentions       = "Mentions"
	epLike           = "Like"
	epUnlike         = "Unlike"
	epFollow         = "Follow"
	epSendDM         = "SendDM"
	epDMEvents       = "DMEvents"
	epMediaUpload    = "MediaUpload"
)

var (
	timelineTweetFields = []string{"created_at", "author_id", "public_metrics", "conversation_id"}
	detailTweetFields   = []string{"created_at", "author_id", "public_metrics", "conversation_id", "in_reply_to_user_id", "lang", "source"}
	authorUserFields    = []string{"name", "username", "verified", "profile_image_url"}
	profileUserFields   = []string{"description", "public_metrics", "verified", "profile_image_url", "url", "created_at", "location", "pinned_tweet_id"}
	dmEventFields       = []string{"created_at", "sender_id", "dm_conversation_id", "text"}
)

// endpointURL joins the API base with a path built from escaped segments.
func endpointURL(base string, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/2/%s", strings.TrimRight(base, "/"), strings.Join(escaped, "/"))
}

// fieldList renders a comma-joined field selector.
func fieldList(fields []string) string {
	return strings.Join(fields, ",")
}
