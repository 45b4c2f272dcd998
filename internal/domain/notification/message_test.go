package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/waitlist"
)

func TestMessage_Text(t *testing.T) {
	start := time.Date(2025, 3, 14, 19, 0, 0, 0, time.UTC)
	res := reservation.NewReservation("rest-1", "table-1", "Alice", "+15550001", 4, start, start.Add(2*time.Hour))
	res.ID = "res-1"
	entry := waitlist.NewEntry("rest-1", "Bob", "+15550002", 6, start)

	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "確定通知",
			msg:  NewConfirmation(res, "Trattoria"),
			want: "[RESERVATION CONFIRMED] Hi Alice, your reservation (ID: res-1) at Trattoria for 4 people is confirmed at 2025-03-14T19:00:00.000Z. Contact: +15550001",
		},
		{
			name: "キャンセル通知",
			msg:  NewCancellation(res, "Trattoria"),
			want: "[RESERVATION CANCELLED] Hi Alice, your reservation (ID: res-1) at Trattoria has been cancelled. Contact: +15550001",
		},
		{
			name: "ウェイティング通知",
			msg:  NewWaitlisted(entry, "Trattoria"),
			want: "[WAITLIST] Hi Bob, you've been added to the waitlist at Trattoria for 6 people on 2025-03-14. We'll contact you if a table becomes available. Contact: +15550002",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.Text())
		})
	}
}
