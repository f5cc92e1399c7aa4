package handler

import (
	"fmt"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/sajilopatro/patro-data/internal/calendar"
	"github.com/sajilopatro/patro-data/internal/holiday"
)

// UpcomingICS serves the forward window as an iCalendar feed, one all-day
// VEVENT per notifiable day. Lets users subscribe from any calendar app
// instead of (or alongside) push reminders.
// GET /api/v1/upcoming.ics
func (h *Handler) UpcomingICS(w http.ResponseWriter, r *http.Request) {
	days, ok := h.windowDays(w, r)
	if !ok {
		return
	}

	events := holiday.FindUpcoming(r.Context(), h.provider, days, time.Now().In(h.loc))

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//sajilopatro//patro-data//EN")
	cal.SetXWRCalName("Upcoming Nepali Holidays")

	now := time.Now().UTC()
	for _, ev := range events {
		uid := fmt.Sprintf("%s-%s@patro-data", ev.Date.Format("20060102"), ev.BS)
		vev := cal.AddEvent(uid)
		vev.SetDtStampTime(now)
		vev.SetAllDayStartAt(ev.Date)
		vev.SetAllDayEndAt(ev.Date.AddDate(0, 0, 1))
		vev.SetSummary(ev.Name)
		desc := "Rest day (" + ev.BS.String() + " BS)"
		if ev.IsHoliday {
			desc = "Public holiday (" + ev.BS.String() + " BS)"
		}
		if ev.LunarDay == calendar.TithiPurnima {
			desc += ", full moon"
		}
		vev.SetDescription(desc)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="upcoming.ics"`)
	w.WriteHeader(http.StatusOK)
	_ = cal.SerializeTo(w)
}
