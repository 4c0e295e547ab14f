package onboarding

import (
	"net/mail"
	"strings"
)

// Step describes one wizard screen: display copy plus routing.
type Step struct {
	Index    int    `json:"index"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Route    string `json:"route"`
	Next     string `json:"next"`
}

const (
	ContactStepIndex   = 3
	JobBoardsStepIndex = 4
)

// ExitRoute is where save-and-exit lands, regardless of form validity.
const ExitRoute = "/dashboard"

// Steps is the ordered wizard. A step's successful submit advances
// stepCompleted to index+1; stepCompleted never decreases.
var Steps = []Step{
	{Index: 0, Slug: "welcome", Title: "Welcome", Subtitle: "Let's get your coaching set up", Route: "/onboarding/welcome", Next: "/onboarding/about-you"},
	{Index: 1, Slug: "about-you", Title: "About you", Subtitle: "Tell us a little about yourself", Route: "/onboarding/about-you", Next: "/onboarding/career-goals"},
	{Index: 2, Slug: "career-goals", Title: "Career goals", Subtitle: "Where do you want to go next?", Route: "/onboarding/career-goals", Next: "/onboarding/contact"},
	{Index: 3, Slug: "contact", Title: "How can we reach you?", Subtitle: "We'll only use this to keep your search moving", Route: "/onboarding/contact", Next: "/onboarding/job-boards"},
	{Index: 4, Slug: "job-boards", Title: "Your job boards", Subtitle: "Tell us where you're already searching", Route: "/onboarding/job-boards", Next: "/onboarding/review"},
	{Index: 5, Slug: "review", Title: "Review", Subtitle: "One last look before we get started", Route: "/onboarding/review", Next: "/dashboard"},
}

func StepAt(index int) (Step, bool) {
	if index < 0 || index >= len(Steps) {
		return Step{}, false
	}
	return Steps[index], true
}

func StepBySlug(slug string) (Step, bool) {
	for _, step := range Steps {
		if step.Slug == slug {
			return step, true
		}
	}
	return Step{}, false
}

// ResumeRoute maps recorded progress to the screen a returning user lands on.
func ResumeRoute(stepCompleted int) string {
	if stepCompleted < 0 {
		stepCompleted = 0
	}
	if stepCompleted >= len(Steps) {
		return Steps[len(Steps)-1].Next
	}
	return Steps[stepCompleted].Route
}

// MajorJobBoards is always visible; AdditionalJobBoards sits behind an
// expandable section that opens when any of its entries is preselected.
var (
	MajorJobBoards      = []string{"LinkedIn", "Indeed", "Glassdoor", "ZipRecruiter", "Monster"}
	AdditionalJobBoards = []string{"Wellfound", "Dice", "SimplyHired", "CareerBuilder", "FlexJobs", OtherJobBoard}
)

const OtherJobBoard = "Other"

func KnownJobBoard(name string) bool {
	return containsBoard(MajorJobBoards, name) || containsBoard(AdditionalJobBoards, name)
}

func IsAdditionalJobBoard(name string) bool {
	return containsBoard(AdditionalJobBoards, name)
}

func containsBoard(boards []string, name string) bool {
	for _, board := range boards {
		if board == name {
			return true
		}
	}
	return false
}

const maxFieldLength = 254

// FieldErrors maps field names to human-readable problems; rendered by the
// client as inline error state.
type FieldErrors map[string]string

// ValidEmail checks the structural email rule shared by the contact step.
func ValidEmail(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxFieldLength {
		return false
	}
	address, err := mail.ParseAddress(value)
	return err == nil && address.Address == value
}
