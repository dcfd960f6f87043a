package operators

import (
	"strings"

	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/status"
)

func statusPath(row datatable.Row) string {
	return "/operators/" + row.ID() + "/status"
}

func statusIs(categories ...status.Category) func(datatable.Row) bool {
	return func(row datatable.Row) bool {
		c := status.Classify(row.Value("status"))
		for _, want := range categories {
			if c == want {
				return true
			}
		}
		return false
	}
}

// Actions are the status changes offered for an operator, shown on the list
// and detail pages.
var Actions = []datatable.Action{
	{Label: "Approve", Path: statusPath, Name: "status", Value: "approved", Visible: statusIs(status.Pending)},
	{Label: "Reject", Path: statusPath, Name: "status", Value: "rejected", Confirm: "Reject this operator?", Visible: statusIs(status.Pending)},
	{Label: "Block", Path: statusPath, Name: "status", Value: "blocked", Confirm: "Block this operator? Their listings go offline.", Visible: statusIs(status.Positive)},
	{Label: "Reinstate", Path: statusPath, Name: "status", Value: "approved", Visible: func(row datatable.Row) bool {
		return strings.EqualFold(strings.TrimSpace(row.Value("status")), "blocked")
	}},
}

// Table is the operators list definition.
var Table = datatable.Table{
	ID:       "operators",
	Title:    "Operators",
	BasePath: "/operators",
	Columns: []datatable.Column{
		{Key: "name", Header: "Name"},
		{Key: "kind", Header: "Type"},
		{Key: "contact", Header: "Contact"},
		{Key: "city", Header: "City"},
		{Key: "fleet", Header: "Capacity"},
		{Key: "rating", Header: "Rating"},
		datatable.StatusColumn("status", "Status"),
		{Key: "joined", Header: "Joined"},
	},
	Filters: []datatable.Filter{
		{Key: "kind", Label: "Type", Options: []datatable.Option{
			{Label: "Bus", Value: "bus"},
			{Label: "Taxi", Value: "taxi"},
			{Label: "Bike", Value: "bike"},
			{Label: "Hotel", Value: "hotel"},
		}},
		{Key: "status", Label: "Status", Options: []datatable.Option{
			{Label: "Pending", Value: "pending"},
			{Label: "Approved", Value: "approved"},
			{Label: "Rejected", Value: "rejected"},
			{Label: "Blocked", Value: "blocked"},
		}},
	},
	RowLink: func(row datatable.Row) string { return "/operators/" + row.ID() },
	Actions: Actions,
}
