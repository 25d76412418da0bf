// Package callfilter narrows a client-side copy of the call log.
package callfilter

import (
	"fmt"
	"strings"
	"time"

	"github.com/templui/calldesk/internal/model"
)

const (
	RangeAllTime   = "All Time"
	RangeToday     = "Today"
	RangeThisWeek  = "This Week"
	RangeThisMonth = "This Month"
)

const (
	QuickToday   = "today"
	QuickUrgent  = "urgent"
	QuickOverdue = "overdue"
)

var DateRanges = []string{RangeAllTime, RangeToday, RangeThisWeek, RangeThisMonth}

var QuickFilters = []string{QuickToday, QuickUrgent, QuickOverdue}

// Criteria selects calls. Zero values match everything.
type Criteria struct {
	Search    string
	DateRange string
	Status    string
	Priority  string
	Quick     string
}

// Validate rejects unknown enum values so typos do not silently match nothing.
func (c Criteria) Validate() error {
	if c.DateRange != "" && !contains(DateRanges, c.DateRange) {
		return fmt.Errorf("unknown date range %q (want one of %s)", c.DateRange, strings.Join(DateRanges, ", "))
	}
	if c.Status != "" && !model.ValidCallStatus(c.Status) {
		return fmt.Errorf("unknown status %q", c.Status)
	}
	if c.Priority != "" && !model.ValidPriority(c.Priority) {
		return fmt.Errorf("unknown priority %q", c.Priority)
	}
	if c.Quick != "" && !contains(QuickFilters, c.Quick) {
		return fmt.Errorf("unknown quick filter %q (want one of %s)", c.Quick, strings.Join(QuickFilters, ", "))
	}
	return nil
}

// Apply returns the calls matching every criterion, keeping their order.
func Apply(calls []*model.Call, c Criteria, now time.Time) []*model.Call {
	out := make([]*model.Call, 0, len(calls))
	for _, call := range calls {
		if Match(call, c, now) {
			out = append(out, call)
		}
	}
	return out
}

func Match(call *model.Call, c Criteria, now time.Time) bool {
	return matchSearch(call, c.Search) &&
		matchDateRange(call, c.DateRange, now) &&
		(c.Status == "" || call.Status == c.Status) &&
		(c.Priority == "" || call.Priority == c.Priority) &&
		matchQuick(call, c.Quick, now)
}

// matchSearch looks at caller name, caller number and note, ignoring case.
func matchSearch(call *model.Call, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(call.CallerName), term) {
		return true
	}
	if strings.Contains(strings.ToLower(call.CallerNumber), term) {
		return true
	}
	return call.Note != nil && strings.Contains(strings.ToLower(*call.Note), term)
}

func matchDateRange(call *model.Call, dateRange string, now time.Time) bool {
	created := call.CreatedAt.In(now.Location())

	switch dateRange {
	case "", RangeAllTime:
		return true
	case RangeToday:
		return sameDay(created, now)
	case RangeThisWeek:
		// Rolling seven days, not the calendar week
		return !created.Before(now.Add(-7 * 24 * time.Hour))
	case RangeThisMonth:
		return created.Year() == now.Year() && created.Month() == now.Month()
	}
	return false
}

func matchQuick(call *model.Call, quick string, now time.Time) bool {
	switch quick {
	case "":
		return true
	case QuickToday:
		return sameDay(call.CreatedAt.In(now.Location()), now)
	case QuickUrgent:
		return call.Priority == model.PriorityUrgent
	case QuickOverdue:
		return IsOverdue(call, now)
	}
	return false
}

// IsOverdue reports a follow-up date in the past on a call that is not Completed.
func IsOverdue(call *model.Call, now time.Time) bool {
	return call.FollowUpDate != nil &&
		call.FollowUpDate.Before(now) &&
		call.Status != model.CallStatusCompleted
}

// Counts tallies calls per status the way the server's stats endpoint does.
func Counts(calls []*model.Call) model.CallStats {
	stats := model.CallStats{TotalCalls: int64(len(calls))}
	for _, call := range calls {
		switch call.Status {
		case model.CallStatusActive:
			stats.ActiveCalls++
		case model.CallStatusPending:
			stats.PendingCalls++
		case model.CallStatusFollowedUp:
			stats.FollowedUpCalls++
		case model.CallStatusNotReceived:
			stats.NotReceivedCalls++
		case model.CallStatusCompleted:
			stats.CompletedCalls++
		}
	}
	return stats
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
