// Package dashboard serves the figures shown in the dashboard shell and the
// admin view. The numbers are fixed demo data until call ingestion exists.
package dashboard

import "fmt"

// Overview is the dashboard's headline card set.
type Overview struct {
	CallsToday  int          `json:"calls_today"`
	Answered    int          `json:"answered"`
	Missed      int          `json:"missed"`
	Bookings    int          `json:"bookings"`
	Score       int          `json:"score"`
	Transcripts []Transcript `json:"transcripts"`
}

// Transcript is one line from a recent call.
type Transcript struct {
	Caller  string `json:"caller"`
	Excerpt string `json:"excerpt"`
}

// CallStatus is the outcome of a call.
type CallStatus string

const (
	CallAnswered  CallStatus = "answered"
	CallMissed    CallStatus = "missed"
	CallEscalated CallStatus = "escalated"
)

// Call is one row of the call log.
type Call struct {
	ID       int        `json:"id"`
	Name     string     `json:"name,omitempty"`
	Number   string     `json:"number"`
	Time     string     `json:"time"`
	Duration string     `json:"duration"`
	Status   CallStatus `json:"status"`
}

// DisplayName is the caller name or "Unknown".
func (c Call) DisplayName() string {
	if c.Name == "" {
		return "Unknown"
	}
	return c.Name
}

// CalendarDay is one cell of the booking calendar.
type CalendarDay struct {
	Day      int      `json:"day"`
	Today    bool     `json:"today,omitempty"`
	Bookings []string `json:"bookings"`
}

// AdminCard is a headline figure in the admin view.
type AdminCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Client is a customer account listed in the admin view.
type Client struct {
	Name          string `json:"name"`
	Plan          string `json:"plan"`
	CallsPerMonth int    `json:"calls_per_month"`
	Notes         string `json:"notes"`
}

// AdminOverview is the payload for the admin page.
type AdminOverview struct {
	Cards   []AdminCard `json:"cards"`
	Clients []Client    `json:"clients"`
}

const (
	// DefaultCalendarDays fills a five-week grid.
	DefaultCalendarDays = 35
	// MaxCalendarDays caps a six-week grid.
	MaxCalendarDays = 42

	clientCount = 6
)

func demoOverview() Overview {
	return Overview{
		CallsToday: 128,
		Answered:   117,
		Missed:     11,
		Bookings:   23,
		Score:      92,
		Transcripts: []Transcript{
			{Caller: "Jane Doe", Excerpt: "Hi, I need to reschedule my appointment for Friday..."},
			{Caller: "+1 555-123-4567", Excerpt: "Do you have availability for next Tuesday afternoon?"},
			{Caller: "Tom R.", Excerpt: "How much is the initial consultation fee?"},
		},
	}
}

func demoCalls() []Call {
	return []Call{
		{ID: 1, Name: "Jane Doe", Number: "+1 555-123-9876", Time: "09:14", Duration: "03:12", Status: CallAnswered},
		{ID: 2, Number: "+1 555-221-4455", Time: "10:02", Duration: "00:00", Status: CallMissed},
		{ID: 3, Name: "Tom R.", Number: "+1 555-111-8899", Time: "11:27", Duration: "07:45", Status: CallAnswered},
		{ID: 4, Name: "Clinic", Number: "+1 555-990-3344", Time: "12:08", Duration: "02:04", Status: CallEscalated},
	}
}

// calendar builds n cells; today is the day of month to flag, or 0.
func calendar(n, today int) []CalendarDay {
	days := make([]CalendarDay, n)
	for i := range days {
		day := CalendarDay{Day: i + 1, Today: i+1 == today, Bookings: []string{}}
		if i%7 == 1 {
			day.Bookings = append(day.Bookings, "Dental checkup · 2:00p")
		}
		if i%9 == 2 {
			day.Bookings = append(day.Bookings, "Repair consult · 11:30a")
		}
		days[i] = day
	}
	return days
}

func demoAdminOverview() AdminOverview {
	clients := make([]Client, clientCount)
	for i := range clients {
		clients[i] = Client{
			Name:          fmt.Sprintf("Acme Co. #%d", i+1),
			Plan:          "Pro",
			CallsPerMonth: 1000 + i*42,
			Notes:         "Custom AI prompt active, setup fee paid.",
		}
	}
	return AdminOverview{
		Cards: []AdminCard{
			{Label: "Active clients", Value: "42"},
			{Label: "Total calls (30d)", Value: "58,201"},
			{Label: "Bookings (30d)", Value: "4,392"},
			{Label: "MRR", Value: "$28,450"},
		},
		Clients: clients,
	}
}
