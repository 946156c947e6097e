package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func listingSubmission(t *testing.T, address ItemStatus, menu ItemStatus, reservation ItemStatus, video ItemStatus) Submission {
	t.Helper()
	item, err := NewSubmission(Submission{
		ID:         "S1",
		EntityType: EntityTypeLocation,
		Title:      "Harbor Noodle Bar",
		Fields: []ReviewableField{
			{Key: FieldKeyAddress, Value: Value{Text: "place-123", Display: "12 Harbor St"}, Status: address, Required: true},
			{Key: FieldKeyMenu, Value: TextValue("https://example.com/menu.pdf"), Status: menu, Required: true},
			{Key: FieldKeyReservation, Value: TextValue("https://book.example.com"), Status: reservation, Required: true},
		},
		Videos: []VideoItem{
			{ID: "v1", URL: "https://cdn.example.com/v1.mp4", Tags: []string{"food"}, Status: video},
		},
		SubmittedBy: "owner-1",
		SubmittedAt: testNow.Add(-time.Hour),
	})
	require.NoError(t, err)
	return item
}
