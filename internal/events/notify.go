package events

import (
	"fmt"

	"github.com/igrejaunida/backend/internal/models"
	"github.com/igrejaunida/backend/pkg/queue"
)

// CancellationEmails builds one email payload per opted-in recipient for a
// cancelled event. Pending members and members without the notification flag
// are skipped.
func CancellationEmails(event *models.Event, org *models.Organization, recipients []*models.ApplicationUser) []queue.EmailPayload {
	subject := fmt.Sprintf("Event cancelled: %s", event.Title)
	when := event.StartDate.Format("Monday, 2 Jan 2006 15:04")

	var out []queue.EmailPayload
	for _, u := range recipients {
		if u.Pending || !u.ReceiveCancelEventNotification {
			continue
		}
		out = append(out, queue.EmailPayload{
			Kind:           queue.EmailKindEventCancelled,
			OrganizationID: org.ID,
			Recipient:      u.Email,
			Subject:        subject,
			BodyHTML: fmt.Sprintf(
				"<p>Hello %s,</p><p>The event <b>%s</b> scheduled for %s at %s has been cancelled.</p>",
				u.Name, event.Title, when, org.Name),
		})
	}
	return out
}
