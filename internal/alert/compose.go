package alert

import (
	"fmt"
	"time"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

const dateLayout = "2006-01-02"

// Audience selects the wording of an alert.
type Audience string

const (
	// AudienceStaff is used for admins and technicians.
	AudienceStaff Audience = "staff"
	// AudienceClient is used for users of the client owning the asset.
	AudienceClient Audience = "client"
)

// AudienceOf returns the audience of a role.
func AudienceOf(r models.Role) Audience {
	if r.IsStaff() {
		return AudienceStaff
	}

	return AudienceClient
}

// Subject describes the asset date an alert is about.
type Subject struct {
	Milestone models.Milestone
	Name      string
	Serial    string
	Date      time.Time
	Days      int
}

// Message is the rendered title and body of a notification.
type Message struct {
	Title string
	Body  string
}

type templateKey struct {
	milestone models.Milestone
	audience  Audience
}

type template func(s Subject) Message

// Composer renders alert messages keyed by milestone and audience.
type Composer struct {
	templates map[templateKey]template
}

// NewComposer returns a Composer with the built-in wording.
func NewComposer() Composer {
	return Composer{templates: map[templateKey]template{
		{models.MilestoneExpiry, AudienceStaff}: func(s Subject) Message {
			return Message{
				Title: fmt.Sprintf("License expiring in %s: %s", inDays(s.Days), s.Name),
				Body: fmt.Sprintf("The license %q expires on %s. Renew it or plan its replacement.",
					s.Name, s.Date.Format(dateLayout)),
			}
		},
		{models.MilestoneExpiry, AudienceClient}: func(s Subject) Message {
			return Message{
				Title: fmt.Sprintf("License expiring in %s: %s", inDays(s.Days), s.Name),
				Body: fmt.Sprintf("Your license %q expires on %s. Contact your administrator to renew it.",
					s.Name, s.Date.Format(dateLayout)),
			}
		},
		{models.MilestoneObsolescence, AudienceStaff}: func(s Subject) Message {
			return Message{
				Title: fmt.Sprintf("Equipment obsolete in %s: %s", inDays(s.Days), s.Name),
				Body: fmt.Sprintf("%s reaches its estimated obsolescence date on %s. Plan its replacement.",
					unit(s), s.Date.Format(dateLayout)),
			}
		},
		{models.MilestoneObsolescence, AudienceClient}: func(s Subject) Message {
			return Message{
				Title: fmt.Sprintf("Equipment obsolete in %s: %s", inDays(s.Days), s.Name),
				Body: fmt.Sprintf("Your equipment %s reaches its estimated obsolescence date on %s. "+
					"Contact your administrator to plan its replacement.",
					unit(s), s.Date.Format(dateLayout)),
			}
		},
		{models.MilestoneEndOfSale, AudienceStaff}: func(s Subject) Message {
			return Message{
				Title: fmt.Sprintf("Equipment end of sale in %s: %s", inDays(s.Days), s.Name),
				Body: fmt.Sprintf("%s is no longer sold after %s. Order replacements or spare units before that date.",
					unit(s), s.Date.Format(dateLayout)),
			}
		},
		{models.MilestoneEndOfSale, AudienceClient}: func(s Subject) Message {
			return Message{
				Title: fmt.Sprintf("Equipment end of sale in %s: %s", inDays(s.Days), s.Name),
				Body: fmt.Sprintf("Your equipment %s is no longer sold after %s. "+
					"Contact your administrator about a replacement.",
					unit(s), s.Date.Format(dateLayout)),
			}
		},
	}}
}

// Compose renders the message for subject and audience.
// Unknown combinations fall back to a generic wording.
func (c Composer) Compose(audience Audience, s Subject) Message {
	if t, ok := c.templates[templateKey{s.Milestone, audience}]; ok {
		return t(s)
	}

	return Message{
		Title: fmt.Sprintf("Upcoming date in %s: %s", inDays(s.Days), s.Name),
		Body:  fmt.Sprintf("%s has a date on %s.", unit(s), s.Date.Format(dateLayout)),
	}
}

func inDays(n int) string {
	if n == 1 {
		return "1 day"
	}

	return fmt.Sprintf("%d days", n)
}

func unit(s Subject) string {
	if s.Serial == "" {
		return fmt.Sprintf("%q", s.Name)
	}

	return fmt.Sprintf("%q (serial %s)", s.Name, s.Serial)
}
