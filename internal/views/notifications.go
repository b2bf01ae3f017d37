package views

import (
	"github.com/a-h/templ"

	"github.com/royalton/portal/internal/shipping"
)

// Notifications lists the user's notifications, newest first.
func Notifications(list []shipping.Notification) templ.Component {
	unread := shipping.Unread(list)
	return E("div", ID("notifications"),
		E("h1", "Notifications"),
		E("div", Class("filters"),
			E("span", Class("muted"), Textf("%d unread", unread)),
			If(unread > 0, E("button", Class("btn btn-small btn-primary"),
				Hx("post", "/notifications/read-all"), Hx("target", "#notifications"), Hx("swap", "outerHTML"),
				"Mark all as read")),
		),
		If(len(list) == 0, Empty("No notifications yet.")),
		Map(list, notificationCard),
	)
}

func notificationCard(n shipping.Notification) templ.Component {
	class := "card notification"
	if !n.IsRead {
		class += " unread"
	}
	return E("article", ID("notification-"+n.ID), Class(class),
		E("h3", n.Title),
		E("p", n.Message),
		If(n.Link != "", E("p", E("a", Href(n.Link), "Open"))),
		E("p", Class("muted"), formatDateTime(n.CreatedAt)),
		If(!n.IsRead, E("button", Class("btn btn-small btn-link"),
			Hx("post", "/notifications/"+n.ID+"/read"), Hx("target", "#notification-"+n.ID), Hx("swap", "outerHTML"),
			"Mark as read")),
	)
}

// NotificationCard renders one notification, for swapping after it changes.
func NotificationCard(n shipping.Notification) templ.Component {
	return notificationCard(n)
}
