package onboarding

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"onboarding-service/models"
	"onboarding-service/phone"
	"onboarding-service/store"
)

// ContactController drives the contact step for one user: prefill from the
// stored record, field edits with debounced autosave, the country-code
// mismatch confirmation flow, and submit/save-and-exit.
type ContactController struct {
	mu       sync.Mutex
	uid      string
	email    string // identity-provider email, the preferredEmail default
	profiles store.ProfileStore
	autosave *Debouncer

	country           string
	preferredEmail    string
	allowPhoneContact bool
	countryCode       string
	phoneDigits       string
	formattedPhone    string
	mismatchConfirmed bool
	stepCompleted     int
	loaded            bool
}

// ContactState is the snapshot handlers render from.
type ContactState struct {
	PreferredEmail    string        `json:"preferredEmail"`
	AllowPhoneContact bool          `json:"allowPhoneContact"`
	CountryCode       string        `json:"countryCode"`
	PhoneDigits       string        `json:"phoneDigits"`
	FormattedPhone    string        `json:"formattedPhone"`
	PhoneVerdict      phone.Verdict `json:"phoneVerdict"`
	Country           string        `json:"country"`
	MismatchConfirmed bool          `json:"mismatchConfirmed"`
	StepCompleted     int           `json:"stepCompleted"`
	Step              Step          `json:"step"`
}

func NewContactController(profiles store.ProfileStore, ident models.Identity, autosaveDelay time.Duration) *ContactController {
	c := &ContactController{
		uid:         ident.UID,
		email:       ident.Email,
		profiles:    profiles,
		countryCode: phone.DefaultDialCode,
	}
	c.autosave = NewDebouncer(autosaveDelay, c.autosaveNow)
	return c
}

// Load fetches the stored record and prefills the form. Missing records get
// the identity email and empty phone fields; present records reconstruct the
// dial code and digit body from the stored phone number.
func (c *ContactController) Load(ctx context.Context) error {
	record, found, err := c.profiles.GetProfile(ctx, c.uid)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !found {
		c.preferredEmail = c.email
		c.countryCode = phone.DialCode(c.country)
		c.loaded = true
		return nil
	}

	c.country = record.Country
	c.preferredEmail = record.PreferredEmail
	if c.preferredEmail == "" {
		c.preferredEmail = c.email
	}
	c.allowPhoneContact = record.AllowPhoneContact
	c.mismatchConfirmed = record.PhoneNumberMismatchConfirmed
	c.stepCompleted = record.StepCompleted

	if record.PhoneNumber != nil && *record.PhoneNumber != "" {
		c.countryCode, c.phoneDigits = phone.SplitNumber(*record.PhoneNumber, c.country)
	} else {
		c.countryCode = phone.DialCode(c.country)
		c.phoneDigits = ""
	}
	c.reformatLocked()
	c.loaded = true
	return nil
}

// SetPreferredEmail records the edit and schedules an autosave.
func (c *ContactController) SetPreferredEmail(value string) {
	c.mu.Lock()
	c.preferredEmail = strings.TrimSpace(value)
	c.mu.Unlock()
	c.autosave.Trigger()
}

func (c *ContactController) SetAllowPhoneContact(allowed bool) {
	c.mu.Lock()
	c.allowPhoneContact = allowed
	c.mu.Unlock()
	c.autosave.Trigger()
}

// SetCountryCode normalizes the dial-code field: a forced leading '+', stray
// '+' runes collapsed, at most three digits.
func (c *ContactController) SetCountryCode(value string) {
	digits := phone.RestrictToNumbers(value)
	if len(digits) > 3 {
		digits = digits[:3]
	}
	c.mu.Lock()
	c.countryCode = "+" + digits
	c.reformatLocked()
	c.mu.Unlock()
	c.autosave.Trigger()
}

// SetPhoneDigits strips non-digits and applies the edit unless it would push
// the digit count past the country format's expected length; over-length
// edits are rejected outright, leaving the previous value in place.
func (c *ContactController) SetPhoneDigits(value string) {
	digits := phone.RestrictToNumbers(value)

	c.mu.Lock()
	format := phone.GetPhoneFormat(c.country)
	if len(digits) > format.Length {
		c.mu.Unlock()
		return
	}
	c.phoneDigits = digits
	c.reformatLocked()
	c.mu.Unlock()
	c.autosave.Trigger()
}

// Submit validates the step, runs the mismatch gate, persists, and returns
// the next route. A *MismatchError means persistence was not attempted and
// the caller must surface the confirmation prompt.
func (c *ContactController) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	fields := c.validateLocked()
	if len(fields) > 0 {
		c.mu.Unlock()
		return "", &ValidationError{Fields: fields}
	}

	if c.allowPhoneContact && c.phoneDigits != "" {
		expected := phone.DialCode(c.country)
		if c.countryCode != expected && !c.mismatchConfirmed {
			entered := c.countryCode
			c.mu.Unlock()
			return "", &MismatchError{Expected: expected, Entered: entered}
		}
	}

	update := c.persistFieldsLocked()
	c.stepCompleted = maxInt(c.stepCompleted, ContactStepIndex+1)
	update["stepCompleted"] = c.stepCompleted
	c.mu.Unlock()

	c.autosave.Cancel()
	if err := c.profiles.UpdateProfile(ctx, c.uid, update); err != nil {
		return "", err
	}
	return Steps[ContactStepIndex].Next, nil
}

// ConfirmMismatch records that the dial-code difference is intentional, then
// retries the submit. The flag is re-read under the lock inside Submit, so
// the retry always observes it and cannot hit the gate again.
func (c *ContactController) ConfirmMismatch(ctx context.Context) (string, error) {
	c.mu.Lock()
	c.mismatchConfirmed = true
	c.mu.Unlock()

	if err := c.profiles.UpdateProfile(ctx, c.uid, map[string]interface{}{
		"phoneNumberMismatchConfirmed": true,
	}); err != nil {
		return "", err
	}
	return c.Submit(ctx)
}

// FixMismatch resets the dial code to the country default and clears the
// digit body. Nothing is persisted and the confirmed flag is left alone.
func (c *ContactController) FixMismatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.countryCode = phone.DialCode(c.country)
	c.phoneDigits = ""
	c.formattedPhone = ""
}

// SaveAndExit persists current values as-is, with no validation gate and no
// step advancement, and returns the exit route.
func (c *ContactController) SaveAndExit(ctx context.Context) (string, error) {
	c.autosave.Cancel()

	c.mu.Lock()
	update := c.persistFieldsLocked()
	c.mu.Unlock()

	if err := c.profiles.UpdateProfile(ctx, c.uid, update); err != nil {
		return "", err
	}
	return ExitRoute, nil
}

// Close cancels any pending autosave. An autosave already writing is not
// chased; last write wins.
func (c *ContactController) Close() {
	c.autosave.Cancel()
}

func (c *ContactController) State() ContactState {
	c.mu.Lock()
	defer c.mu.Unlock()
	format := phone.GetPhoneFormat(c.country)
	step, _ := StepAt(ContactStepIndex)
	return ContactState{
		PreferredEmail:    c.preferredEmail,
		AllowPhoneContact: c.allowPhoneContact,
		CountryCode:       c.countryCode,
		PhoneDigits:       c.phoneDigits,
		FormattedPhone:    c.formattedPhone,
		PhoneVerdict:      phone.ValidateLength(c.phoneDigits, format.Length),
		Country:           c.country,
		MismatchConfirmed: c.mismatchConfirmed,
		StepCompleted:     c.stepCompleted,
		Step:              step,
	}
}

// autosaveNow snapshots the contact field group and writes it. Autosave never
// touches stepCompleted; failures are logged and swallowed (best-effort).
func (c *ContactController) autosaveNow() {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return
	}
	update := c.persistFieldsLocked()
	uid := c.uid
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.profiles.UpdateProfile(ctx, uid, update); err != nil {
		log.Printf("contact autosave failed: uid=%s err=%v", uid, err)
	}
}

func (c *ContactController) persistFieldsLocked() map[string]interface{} {
	update := map[string]interface{}{
		"preferredEmail":    c.preferredEmail,
		"allowPhoneContact": c.allowPhoneContact,
	}
	if c.allowPhoneContact && c.phoneDigits != "" {
		update["phoneNumber"] = c.countryCode + c.phoneDigits
	} else {
		update["phoneNumber"] = nil
	}
	return update
}

func (c *ContactController) validateLocked() FieldErrors {
	fields := FieldErrors{}
	if !ValidEmail(c.preferredEmail) {
		fields["preferredEmail"] = "Enter a valid email address"
	}
	if c.allowPhoneContact && c.phoneDigits != "" {
		format := phone.GetPhoneFormat(c.country)
		if verdict := phone.ValidateLength(c.phoneDigits, format.Length); !verdict.IsValid {
			fields["phoneNumber"] = verdict.Message
		}
	}
	return fields
}

func (c *ContactController) reformatLocked() {
	format := phone.GetPhoneFormat(c.country)
	c.formattedPhone = phone.FormatNumber(c.phoneDigits, format.Pattern)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
