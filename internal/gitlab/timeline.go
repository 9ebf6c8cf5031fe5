package gitlab

import (
	"sort"

	"reviewdeck-backend/internal/types"
)

// Timeline assembly: four independent streams (code-review discussions,
// project activity, label changes, milestone changes) plus the synthetic
// pending node are merged into one chronologically ordered list.

// Activity actions that are already represented through discussions and
// would duplicate if kept in the timeline.
var excludedActivityActions = map[string]bool{
	"commented on": true,
	"pushed to":    true,
}

func discussionItems(discussions []glDiscussion) []types.TimelineItem {
	out := make([]types.TimelineItem, 0, len(discussions))
	for _, d := range discussions {
		split := splitDiscussion(d)
		if len(split.Notes) == 0 {
			continue
		}
		out = append(out, types.TimelineItem{
			Type:       "discussion",
			CreatedAt:  split.CreatedAt,
			Discussion: split,
		})
	}
	return out
}

func activityItems(events []glActivityEvent, iid int) []types.TimelineItem {
	var out []types.TimelineItem
	for _, e := range events {
		if excludedActivityActions[e.ActionName] {
			continue
		}
		if e.TargetIID != 0 && e.TargetIID != iid {
			continue
		}
		out = append(out, types.TimelineItem{
			Type:      "merge-request",
			CreatedAt: e.CreatedAt,
			Event: &types.Event{
				Action:    e.ActionName,
				CreatedAt: e.CreatedAt,
				User:      convertRestUser(e.Author),
			},
		})
	}
	return out
}

func labelItems(events []glResourceEvent) []types.TimelineItem {
	out := make([]types.TimelineItem, 0, len(events))
	for _, e := range events {
		item := types.TimelineItem{
			Type:      "label",
			CreatedAt: e.CreatedAt,
			Event: &types.Event{
				Action:    e.Action,
				CreatedAt: e.CreatedAt,
				User:      convertRestUser(e.User),
			},
		}
		if e.Label != nil {
			item.Event.Label = &types.Label{ID: e.Label.ID, Name: e.Label.Name, Color: e.Label.Color}
		}
		out = append(out, item)
	}
	return out
}

func milestoneItems(events []glResourceEvent) []types.TimelineItem {
	out := make([]types.TimelineItem, 0, len(events))
	for _, e := range events {
		item := types.TimelineItem{
			Type:      "milestone",
			CreatedAt: e.CreatedAt,
			Event: &types.Event{
				Action:    e.Action,
				CreatedAt: e.CreatedAt,
				User:      convertRestUser(e.User),
			},
		}
		if e.Milestone != nil {
			item.Event.Milestone = e.Milestone.Title
		}
		out = append(out, item)
	}
	return out
}

// assembleTimeline concatenates the streams and sorts ascending by the
// createdAt string. GitLab emits zero-padded UTC ISO-8601 timestamps, so
// lexical comparison matches chronological order. The pending discussion,
// when present, is appended after the sort so it always renders last.
func assembleTimeline(streams [][]types.TimelineItem, pending *types.Discussion) []types.TimelineItem {
	var all []types.TimelineItem
	for _, s := range streams {
		all = append(all, s...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt < all[j].CreatedAt
	})
	if pending != nil {
		all = append(all, types.TimelineItem{Type: "discussion", Discussion: pending})
	}
	return all
}
