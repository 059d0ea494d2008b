package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/igrejaunida/backend/internal/models"
	"github.com/igrejaunida/backend/pkg/queue"
)

func TestCancellationEmails(t *testing.T) {
	event := &models.Event{
		ID:        1,
		Title:     "Sunday Service",
		StartDate: time.Date(2026, 9, 6, 10, 0, 0, 0, time.UTC),
		Status:    models.EventCancelled,
	}
	org := &models.Organization{ID: 3, Name: "Igreja Central"}
	recipients := []*models.ApplicationUser{
		{ID: 1, Email: "a@church.org", Name: "Ana", ReceiveCancelEventNotification: true},
		{ID: 2, Email: "b@church.org", Name: "Bruno", ReceiveCancelEventNotification: false},
		{ID: 3, Email: "c@church.org", Name: "Clara", ReceiveCancelEventNotification: true, Pending: true},
		{ID: 4, Email: "d@church.org", Name: "Davi", ReceiveCancelEventNotification: true},
	}

	emails := CancellationEmails(event, org, recipients)
	require.Len(t, emails, 2)

	require.Equal(t, "a@church.org", emails[0].Recipient)
	require.Equal(t, "d@church.org", emails[1].Recipient)
	for _, e := range emails {
		require.Equal(t, queue.EmailKindEventCancelled, e.Kind)
		require.Equal(t, int64(3), e.OrganizationID)
		require.Contains(t, e.Subject, "Sunday Service")
		require.Contains(t, e.BodyHTML, "Igreja Central")
	}
}

func TestCancellationEmailsNoRecipients(t *testing.T) {
	event := &models.Event{Title: "Rehearsal", StartDate: time.Now()}
	org := &models.Organization{ID: 1, Name: "Igreja Central"}

	require.Empty(t, CancellationEmails(event, org, nil))
	require.Empty(t, CancellationEmails(event, org, []*models.ApplicationUser{
		{Email: "a@church.org", ReceiveCancelEventNotification: false},
	}))
}
