package internships

import "strings"

// Keyword lists deciding whether an announcement lands on the board.
var (
	internshipKeywords = []string{"internship", "intern", "co-op", "summer program", "hiring"}
	eventKeywords      = []string{"event", "workshop", "meetup", "info session", "career fair", "presentation"}
)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// parseInternship classifies a feed message as an internship posting.
// Announcements often carry "Company:", "Position:" and "Location:"
// lines; those override the defaults. The full message text becomes the
// description.
func parseInternship(msg Message) (Internship, bool) {
	if !containsAny(strings.ToLower(msg.Text), internshipKeywords) {
		return Internship{}, false
	}

	post := Internship{
		ID:          msg.ID,
		Title:       "Internship Opportunity",
		Company:     "Unknown",
		Location:    "Remote/On-site",
		Description: msg.Text,
		PostedAt:    msg.CreatedAt,
		Source:      msg.Source,
	}
	for _, line := range strings.Split(msg.Text, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "company:"):
			post.Company = afterColon(line)
		case strings.Contains(lower, "position:"), strings.Contains(lower, "title:"):
			post.Title = afterColon(line)
		case strings.Contains(lower, "location:"):
			post.Location = afterColon(line)
		}
	}
	return post, true
}

// parseEvent classifies a feed message as a campus event. The post date
// is the announcement time; feeds do not carry structured schedules.
func parseEvent(msg Message) (Event, bool) {
	if !containsAny(strings.ToLower(msg.Text), eventKeywords) {
		return Event{}, false
	}
	return Event{
		ID:          msg.ID,
		Title:       "Upcoming Event",
		Description: msg.Text,
		Date:        msg.CreatedAt,
		Organizer:   "Morgan CS Department",
		Tags:        []string{"event"},
	}, true
}

func afterColon(line string) string {
	_, rest, ok := strings.Cut(line, ":")
	if !ok {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(rest)
}
