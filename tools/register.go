package tools

import (
	"github.com/google/jsonschema-go/jsonschema"
)

const tweetRefDescription = "Tweet ID or status URL (e.g. '1234567890' or 'https://x.com/user/status/1234567890')"

const imageDescription = "Optional image to attach: an http(s) URL or a local file path"

// handlers binds tool implementations to their shared collaborators.
type handlers struct {
	Deps
}

// RegisterAll registers every X tool on reg. No credentials are read here:
// clients are requested from d.Clients on each call.
func RegisterAll(reg *Registry, d Deps) error {
	d.defaults()
	h := &handlers{Deps: d}

	for _, t := range h.tools() {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func (h *handlers) tools() []Tool {
	return []Tool{
		newTool("x_post_tweet",
			"Post a tweet to X/Twitter, optionally with one image. Returns the tweet ID, text, URL and estimated API cost.",
			object(map[string]*jsonschema.Schema{
				"text":  str("Tweet text (max 280 characters)"),
				"image": str(imageDescription),
			}, "text"),
			h.postTweet),

		newTool("x_post_thread",
			"Post a thread to X/Twitter. Each tweet replies to the previous one, in order. Returns every tweet ID, text and URL.",
			object(map[string]*jsonschema.Schema{
				"tweets": stringArray("Tweet texts in thread order", 1),
			}, "tweets"),
			h.postThread),

		newTool("x_reply_tweet",
			"Reply to a tweet on X/Twitter by ID or URL, optionally with one image. Returns the reply ID, text, URL and the tweet replied to.",
			object(map[string]*jsonschema.Schema{
				"tweetId": str(tweetRefDescription),
				"text":    str("Reply text (max 280 characters)"),
				"image":   str(imageDescription),
			}, "tweetId", "text"),
			h.replyTweet),

		newTool("x_like_tweet",
			"Like a tweet on X/Twitter by ID or URL. Returns confirmation and estimated API cost.",
			object(map[string]*jsonschema.Schema{
				"tweetId": str(tweetRefDescription),
			}, "tweetId"),
			h.likeTweet),

		newTool("x_unlike_tweet",
			"Remove a like from a tweet on X/Twitter by ID or URL. Returns confirmation and estimated API cost.",
			object(map[string]*jsonschema.Schema{
				"tweetId": str(tweetRefDescription),
			}, "tweetId"),
			h.unlikeTweet),

		newTool("x_delete_tweet",
			"Delete a tweet on X/Twitter by ID or URL. Only tweets posted by the authenticated account can be deleted.",
			object(map[string]*jsonschema.Schema{
				"tweetId": str(tweetRefDescription),
			}, "tweetId"),
			h.deleteTweet),

		newTool("x_search_tweets",
			"Search tweets from the last 7 days on X/Twitter. Supports search operators such as 'from:user', '#hashtag' and quoted phrases.",
			object(map[string]*jsonschema.Schema{
				"query":      str("Search query, X search operators allowed"),
				"maxResults": integer("Maximum number of results (10-100, default 10)", 10, 100),
			}, "query"),
			h.searchTweets),

		newTool("x_get_user_profile",
			"Get an X/Twitter profile by username: bio, follower and following counts, tweet count, verification and more.",
			object(map[string]*jsonschema.Schema{
				"username": str("X/Twitter username, with or without a leading @"),
			}, "username"),
			h.getUserProfile),

		newTool("x_get_mentions",
			"Get recent tweets mentioning the authenticated X/Twitter account, with metadata and estimated API cost.",
			object(map[string]*jsonschema.Schema{
				"maxResults": integer("Maximum number of mentions (5-100, default 10)", 5, 100),
			}),
			h.getMentions),

		newTool("x_follow_user",
			"Follow an X/Twitter account by username. Returns confirmation and the followed account.",
			object(map[string]*jsonschema.Schema{
				"username": str("Username to follow, with or without a leading @"),
			}, "username"),
			h.followUser),

		newTool("x_send_dm",
			"Send a direct message to an X/Twitter user by username. Returns confirmation, the conversation ID and estimated API cost.",
			object(map[string]*jsonschema.Schema{
				"username": str("Recipient username, with or without a leading @"),
				"text":     str("Message text"),
			}, "username", "text"),
			h.sendDM),

		newTool("x_get_dms",
			"Get recent direct messages on X/Twitter, optionally only the conversation with one user.",
			object(map[string]*jsonschema.Schema{
				"username":   str("Only return messages exchanged with this username (optional)"),
				"maxResults": integer("Maximum number of message events (1-100, default 10)", 1, 100),
			}),
			h.getDMs),

		newTool("x_get_tweet",
			"Get a single tweet from X/Twitter by ID or URL, with its author, metrics and metadata.",
			object(map[string]*jsonschema.Schema{
				"tweetId": str(tweetRefDescription),
			}, "tweetId"),
			h.getTweet),

		newTool("x_get_interaction_log",
			"List the write actions performed on X/Twitter (posts, replies, likes, follows, DMs). Use it to avoid repeating an action.",
			object(map[string]*jsonschema.Schema{
				"limit": integer("Return only the most recent N entries (default: all)", 1, 0),
			}),
			h.getInteractionLog),

		newTool("x_get_cost_summary",
			"Summarize estimated X/Twitter API spend for this process: total and per-action breakdown.",
			object(nil),
			h.getCostSummary),
	}
}
