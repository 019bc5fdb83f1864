package metadata

import (
	"fmt"
	"time"

	"ms-nft-ticketing/internal/models"
)

const earlyBirdWindow = 2 * time.Hour

// Build derives marketplace-convention metadata from an attendance
// record and its event. Pure function: identical inputs always yield an
// identical attribute list.
func Build(event *models.Event, attendance *models.AttendanceRecord, attendeeDisplayName string) models.NFTMetadata {
	checkedIn := attendance.CheckedInAt

	return models.NFTMetadata{
		Name:        fmt.Sprintf("%s - Attendance", event.Title),
		Description: fmt.Sprintf("Proof of attendance for %s on %s.", event.Title, event.Date.Format("January 2, 2006")),
		Image:       event.ImageURL,
		Attributes: []models.NFTAttribute{
			{TraitType: "Event", Value: event.Title},
			{TraitType: "Date", Value: event.Date.Format(time.RFC3339)},
			{TraitType: "Location", Value: event.Location},
			{TraitType: "Check-in Location", Value: attendance.CheckInLocation},
			{TraitType: "Check-in Time", Value: TimeOfDay(checkedIn)},
			{TraitType: "Attendee Type", Value: AttendeeType(checkedIn, event.Date)},
			{TraitType: "Attendee", Value: attendeeDisplayName},
		},
	}
}

// AttendeeType is EarlyBird only for check-ins strictly more than two
// hours before the event start.
func AttendeeType(checkedInAt, eventDate time.Time) string {
	if checkedInAt.Before(eventDate.Add(-earlyBirdWindow)) {
		return "EarlyBird"
	}
	return "Regular"
}

// TimeOfDay buckets the check-in timestamp by its local hour.
func TimeOfDay(checkedInAt time.Time) string {
	switch hour := checkedInAt.Local().Hour(); {
	case hour < 12:
		return "Morning"
	case hour < 18:
		return "Afternoon"
	default:
		return "Evening"
	}
}
