package onboarding

import (
	"context"
	"strings"
	"sync"

	"onboarding-service/models"
	"onboarding-service/store"
)

// JobBoardsController drives the job-boards step: board selection over the
// fixed major and additional lists, the conditional "Other" free text, and
// three consent gates. Unlike the contact step it has no autosave — only an
// explicit submit persists.
type JobBoardsController struct {
	mu       sync.Mutex
	uid      string
	profiles store.ProfileStore

	boards             []string
	other              string
	jobBoardsConsent   bool
	gmailConsent       bool
	aiTrackingConsent  bool
	additionalExpanded bool
	stepCompleted      int
}

type JobBoardsState struct {
	Boards             []string `json:"jobBoards"`
	Other              string   `json:"jobBoardsOther"`
	JobBoardsConsent   bool     `json:"jobBoardsConsent"`
	GmailConsent       bool     `json:"gmailConsent"`
	AITrackingConsent  bool     `json:"aiTrackingConsent"`
	AdditionalExpanded bool     `json:"additionalExpanded"`
	StepCompleted      int      `json:"stepCompleted"`
	Step               Step     `json:"step"`
}

func NewJobBoardsController(profiles store.ProfileStore, ident models.Identity) *JobBoardsController {
	return &JobBoardsController{uid: ident.UID, profiles: profiles}
}

// Load prefills selections and consents from the stored record. The
// additional section starts expanded when any preselected board lives there.
func (c *JobBoardsController) Load(ctx context.Context) error {
	record, found, err := c.profiles.GetProfile(ctx, c.uid)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.boards = append([]string(nil), record.JobBoards...)
	if record.JobBoardsOther != nil {
		c.other = *record.JobBoardsOther
	}
	c.jobBoardsConsent = record.JobBoardsConsent
	c.gmailConsent = record.GmailConsent
	c.aiTrackingConsent = record.AITrackingConsent
	c.stepCompleted = record.StepCompleted
	for _, board := range c.boards {
		if IsAdditionalJobBoard(board) {
			c.additionalExpanded = true
			break
		}
	}
	return nil
}

// ToggleBoard flips a board's membership in the selection. Names outside the
// fixed lists are ignored.
func (c *JobBoardsController) ToggleBoard(name string) {
	if !KnownJobBoard(name) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for index, board := range c.boards {
		if board == name {
			c.boards = append(c.boards[:index], c.boards[index+1:]...)
			return
		}
	}
	c.boards = append(c.boards, name)
	if IsAdditionalJobBoard(name) {
		c.additionalExpanded = true
	}
}

func (c *JobBoardsController) SetOther(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.other = strings.TrimSpace(text)
}

func (c *JobBoardsController) SetConsents(jobBoards, gmail, aiTracking bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobBoardsConsent = jobBoards
	c.gmailConsent = gmail
	c.aiTrackingConsent = aiTracking
}

// Submit gates on all three consents, a non-empty selection, and the "Other"
// free text when that board is selected, then persists and advances.
func (c *JobBoardsController) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	fields := c.validateLocked()
	if len(fields) > 0 {
		c.mu.Unlock()
		return "", &ValidationError{Fields: fields}
	}

	update := map[string]interface{}{
		"jobBoards":         append([]string(nil), c.boards...),
		"jobBoardsConsent":  c.jobBoardsConsent,
		"gmailConsent":      c.gmailConsent,
		"aiTrackingConsent": c.aiTrackingConsent,
	}
	if c.hasBoardLocked(OtherJobBoard) {
		update["jobBoardsOther"] = c.other
	} else {
		update["jobBoardsOther"] = nil
	}
	c.stepCompleted = maxInt(c.stepCompleted, JobBoardsStepIndex+1)
	update["stepCompleted"] = c.stepCompleted
	c.mu.Unlock()

	if err := c.profiles.UpdateProfile(ctx, c.uid, update); err != nil {
		return "", err
	}
	return Steps[JobBoardsStepIndex].Next, nil
}

func (c *JobBoardsController) State() JobBoardsState {
	c.mu.Lock()
	defer c.mu.Unlock()
	step, _ := StepAt(JobBoardsStepIndex)
	return JobBoardsState{
		Boards:             append([]string(nil), c.boards...),
		Other:              c.other,
		JobBoardsConsent:   c.jobBoardsConsent,
		GmailConsent:       c.gmailConsent,
		AITrackingConsent:  c.aiTrackingConsent,
		AdditionalExpanded: c.additionalExpanded,
		StepCompleted:      c.stepCompleted,
		Step:               step,
	}
}

func (c *JobBoardsController) validateLocked() FieldErrors {
	fields := FieldErrors{}
	if len(c.boards) == 0 {
		fields["jobBoards"] = "Select at least one job board"
	}
	if c.hasBoardLocked(OtherJobBoard) && c.other == "" {
		fields["jobBoardsOther"] = "Tell us which other board you use"
	}
	if len(c.other) > maxFieldLength {
		fields["jobBoardsOther"] = "That name is too long"
	}
	if !c.jobBoardsConsent {
		fields["jobBoardsConsent"] = "This consent is required"
	}
	if !c.gmailConsent {
		fields["gmailConsent"] = "This consent is required"
	}
	if !c.aiTrackingConsent {
		fields["aiTrackingConsent"] = "This consent is required"
	}
	return fields
}

func (c *JobBoardsController) hasBoardLocked(name string) bool {
	for _, board := range c.boards {
		if board == name {
			return true
		}
	}
	return false
}
