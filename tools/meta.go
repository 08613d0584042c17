package tools

import (
	"context"

	"github.com/anatolykoptev/go-xtools/auditlog"
	"github.com/anatolykoptev/go-xtools/costs"
)

type interactionLogParams struct {
	Limit int `json:"limit,omitempty"`
}

type interactionLog struct {
	TotalEntries int              `json:"totalEntries"`
	Returned     int              `json:"returned"`
	LogFile      string           `json:"logFile"`
	Entries      []auditlog.Entry `json:"entries"`
}

type costLine struct {
	Calls     int    `json:"calls"`
	TotalCost string `json:"totalCost"`
}

type costSummary struct {
	TotalCost string              `json:"totalCost"`
	Breakdown map[string]costLine `json:"breakdown"`
}

func (h *handlers) getInteractionLog(_ context.Context, p interactionLogParams) Result {
	entries := h.Audit.Entries()
	limited := entries
	if p.Limit > 0 && p.Limit < len(entries) {
		limited = entries[len(entries)-p.Limit:]
	}
	return OK(interactionLog{
		TotalEntries: len(entries),
		Returned:     len(limited),
		LogFile:      h.Audit.Path(),
		Entries:      limited,
	})
}

func (h *handlers) getCostSummary(context.Context, struct{}) Result {
	s := h.Costs.Summary()
	out := costSummary{
		TotalCost: costs.FormatUSD(s.TotalCost),
		Breakdown: make(map[string]costLine, len(s.Breakdown)),
	}
	for _, action := range s.Actions() {
		e := s.Breakdown[action]
		out.Breakdown[action] = costLine{Calls: e.Calls, TotalCost: costs.FormatUSD(e.TotalCost)}
	}
	return OK(out)
}
