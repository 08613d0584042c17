package tools

import (
	"context"
	"fmt"

	twitter "github.com/anatolykoptev/go-xtools"
	"github.com/anatolykoptev/go-xtools/costs"
)

type sendDMParams struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

type getDMsParams struct {
	Username   string `json:"username,omitempty"`
	MaxResults *int   `json:"maxResults,omitempty"`
}

type sentDM struct {
	Sent           bool                   `json:"sent"`
	EventID        *string                `json:"eventId"`
	ConversationID *string                `json:"conversationId"`
	Recipient      userRef                `json:"recipient"`
	EstimatedCost  string                 `json:"estimatedCost"`
	RateLimit      *twitter.RateLimitInfo `json:"rateLimit,omitempty"`
}

type dmMessage struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	SenderID       string `json:"senderId,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	EventType      string `json:"eventType,omitempty"`
}

type dmList struct {
	ResultCount   int                    `json:"resultCount"`
	Messages      []dmMessage            `json:"messages"`
	WithUser      string                 `json:"withUser,omitempty"`
	EstimatedCost string                 `json:"estimatedCost"`
	RateLimit     *twitter.RateLimitInfo `json:"rateLimit,omitempty"`
}

func (h *handlers) sendDM(ctx context.Context, p sendDMParams) Result {
	if blank(p.Text) {
		return Err("DM text cannot be empty")
	}
	username := twitter.NormalizeUsername(p.Username)
	if username == "" {
		return Err("Recipient username cannot be empty")
	}

	w, err := h.Clients.WriteClient()
	if err != nil {
		return Err(err.Error())
	}
	r, err := h.Clients.ReadClient()
	if err != nil {
		return Err(err.Error())
	}

	recipient, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		if notFound(err) {
			return Err(fmt.Sprintf("User @%s not found", username))
		}
		return failure("send DM", err)
	}
	resp, err := w.SendDM(ctx, recipient.Data.ID, p.Text)
	if err != nil {
		return failure("send DM", err)
	}

	h.Costs.Track("dm_send", costs.DMSend)
	h.Audit.Log("x_send_dm", fmt.Sprintf("Sent DM to @%s: %q", username, summaryText(p.Text)), map[string]any{
		"eventId":           nullable(resp.Data.EventID),
		"conversationId":    nullable(resp.Data.ConversationID),
		"recipientId":       recipient.Data.ID,
		"recipientUsername": username,
	})

	return OK(sentDM{
		Sent:           true,
		EventID:        nullable(resp.Data.EventID),
		ConversationID: nullable(resp.Data.ConversationID),
		Recipient:      userRef{ID: recipient.Data.ID, Username: username},
		EstimatedCost:  estimatedCost(costs.DMSend),
		RateLimit:      resp.RateLimit,
	})
}

// getDMs lists recent message events, optionally with one participant.
// DM endpoints need user context, so events are read through the write client.
func (h *handlers) getDMs(ctx context.Context, p getDMsParams) Result {
	var username string
	if p.Username != "" {
		username = twitter.NormalizeUsername(p.Username)
		if username == "" {
			return Err("Username cannot be empty")
		}
	}

	w, err := h.Clients.WriteClient()
	if err != nil {
		return Err(err.Error())
	}

	var participantID string
	if username != "" {
		r, err := h.Clients.ReadClient()
		if err != nil {
			return Err(err.Error())
		}
		u, err := r.GetUserByUsername(ctx, username)
		if err != nil {
			if notFound(err) {
				return Err(fmt.Sprintf("User @%s not found", username))
			}
			return failure("get DMs", err)
		}
		participantID = u.Data.ID
	}

	resp, err := w.ListDMEvents(ctx, participantID, maxResultsOr(p.MaxResults, defaultMaxResults))
	if err != nil {
		return failure("get DMs", err)
	}

	messages := make([]dmMessage, 0, len(resp.Data))
	for _, e := range resp.Data {
		messages = append(messages, dmMessage{
			ID:             e.ID,
			Text:           e.Text,
			SenderID:       e.SenderID,
			CreatedAt:      e.CreatedAt,
			ConversationID: e.ConversationID,
			EventType:      e.EventType,
		})
	}
	cost := costs.DMReadPerResult * float64(len(messages))
	h.Costs.Track("dm_read", cost)

	return OK(dmList{
		ResultCount:   len(messages),
		Messages:      messages,
		WithUser:      username,
		EstimatedCost: estimatedCost(cost),
		RateLimit:     resp.RateLimit,
	})
}
