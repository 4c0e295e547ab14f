package onboarding_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"onboarding-service/models"
	"onboarding-service/onboarding"
	"onboarding-service/store"

	"github.com/stretchr/testify/assert"
)

type stubProfileStore struct {
	mu        sync.Mutex
	record    *models.UserProfileRecord
	getErr    error
	updateErr error
	updates   []map[string]interface{}
}

func (s *stubProfileStore) GetProfile(_ context.Context, _ string) (*models.UserProfileRecord, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	if s.record == nil {
		return nil, false, nil
	}
	copied := *s.record
	return &copied, true, nil
}

func (s *stubProfileStore) UpdateProfile(_ context.Context, _ string, fields map[string]interface{}) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, fields)
	return nil
}

func (s *stubProfileStore) ListProfiles(_ context.Context, _ store.ClientFilter) ([]store.ProfileRow, error) {
	return nil, nil
}

func (s *stubProfileStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func (s *stubProfileStore) lastUpdate() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.updates) == 0 {
		return nil
	}
	return s.updates[len(s.updates)-1]
}

func strPtr(value string) *string { return &value }

func testIdentity() models.Identity {
	return models.Identity{UID: "uid-1", Email: "user@example.com"}
}

func newContact(profiles *stubProfileStore) *onboarding.ContactController {
	// Long delay so autosave never fires unless a test waits for it.
	return onboarding.NewContactController(profiles, testIdentity(), time.Hour)
}

func loadContact(t *testing.T, profiles *stubProfileStore) *onboarding.ContactController {
	t.Helper()
	controller := newContact(profiles)
	assert.NoError(t, controller.Load(context.Background()))
	t.Cleanup(controller.Close)
	return controller
}

func TestContactLoadDefaultsWhenRecordMissing(t *testing.T) {
	controller := loadContact(t, &stubProfileStore{})

	state := controller.State()
	assert.Equal(t, "user@example.com", state.PreferredEmail)
	assert.Equal(t, "+1", state.CountryCode)
	assert.Empty(t, state.PhoneDigits)
	assert.Empty(t, state.FormattedPhone)
	assert.False(t, state.MismatchConfirmed)
}

func TestContactLoadPrefillsFromRecord(t *testing.T) {
	profiles := &stubProfileStore{record: &models.UserProfileRecord{
		PreferredEmail:               "stored@example.com",
		AllowPhoneContact:            true,
		PhoneNumber:                  strPtr("+447911123456"),
		PhoneNumberMismatchConfirmed: true,
		Country:                      "United Kingdom",
		StepCompleted:                3,
	}}
	controller := loadContact(t, profiles)

	state := controller.State()
	assert.Equal(t, "stored@example.com", state.PreferredEmail)
	assert.True(t, state.AllowPhoneContact)
	assert.Equal(t, "+44", state.CountryCode)
	assert.Equal(t, "7911123456", state.PhoneDigits)
	assert.Equal(t, "7911 123 456", state.FormattedPhone)
	assert.True(t, state.MismatchConfirmed)
	assert.True(t, state.PhoneVerdict.IsValid)
}

func TestContactLoadStoredNumberWithoutPrefix(t *testing.T) {
	profiles := &stubProfileStore{record: &models.UserProfileRecord{
		PreferredEmail:    "stored@example.com",
		AllowPhoneContact: true,
		PhoneNumber:       strPtr("(415) 555-1234"),
		Country:           "Canada",
	}}
	controller := loadContact(t, profiles)

	state := controller.State()
	assert.Equal(t, "+1", state.CountryCode)
	assert.Equal(t, "4155551234", state.PhoneDigits)
}

func TestContactCountryCodeNormalization(t *testing.T) {
	controller := loadContact(t, &stubProfileStore{})

	controller.SetCountryCode("44")
	assert.Equal(t, "+44", controller.State().CountryCode)

	// Stray '+' runes collapse and digits cap at three.
	controller.SetCountryCode("++9+7+1+2345")
	assert.Equal(t, "+971", controller.State().CountryCode)

	controller.SetCountryCode("")
	assert.Equal(t, "+", controller.State().CountryCode)
}

func TestContactPhoneDigitsStripAndFormat(t *testing.T) {
	profiles := &stubProfileStore{record: &models.UserProfileRecord{Country: "Canada"}}
	controller := loadContact(t, profiles)

	controller.SetPhoneDigits("(415) 555-12")
	state := controller.State()
	assert.Equal(t, "41555512", state.PhoneDigits)
	assert.Equal(t, "415 555 12", state.FormattedPhone)
	assert.True(t, state.PhoneVerdict.IsTooShort)
}

func TestContactOverLengthEditRejected(t *testing.T) {
	profiles := &stubProfileStore{record: &models.UserProfileRecord{Country: "Canada"}}
	controller := loadContact(t, profiles)

	controller.SetPhoneDigits("4155551234")
	before := controller.State()
	assert.True(t, before.PhoneVerdict.IsValid)

	// An edit pushing past the expected length is a no-op, not a truncation.
	controller.SetPhoneDigits("41555512349")
	after := controller.State()
	assert.Equal(t, before.PhoneDigits, after.PhoneDigits)
	assert.Equal(t, before.FormattedPhone, after.FormattedPhone)
}

func TestContactAutosaveDebounced(t *testing.T) {
	profiles := &stubProfileStore{record: &models.UserProfileRecord{Country: "Canada"}}
	controller := onboarding.NewContactController(profiles, testIdentity(), 20*time.Millisecond)
	assert.NoError(t, controller.Load(context.Background()))
	defer controller.Close()

	controller.SetAllowPhoneContact(true)
	controller.SetPhoneDigits("415555")
	controller.SetPhoneDigits("4155551234")
	controller.SetPreferredEmail("edited@example.com")

	assert.Eventually(t, func() bool { return profiles.updateCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, profiles.updateCount(), "rapid edits collapse into one write")

	update := profiles.lastUpdate()
	assert.Equal(t, "edited@example.com", update["preferredEmail"])
	assert.Equal(t, "+14155551234", update["phoneNumber"])
	_, hasStep := update["stepCompleted"]
	assert.False(t, hasStep, "autosave never advances stepCompleted")
}

func TestContactAutosaveFailureIsSilent(t *testing.T) {
	profiles := &stubProfileStore{updateErr: errors.New("store down")}
	controller := onboarding.NewContactController(profiles, testIdentity(), 10*time.Millisecond)
	assert.NoError(t, controller.Load(context.Background()))
	defer controller.Close()

	controller.SetPreferredEmail("edited@example.com")
	time.Sleep(50 * time.Millisecond)
	// Nothing to assert beyond not panicking and not surfacing; state is intact.
	assert.Equal(t, "edited@example.com", controller.State().PreferredEmail)
}

func TestContactSubmitMismatchGate(t *testing.T) {
	profiles := &stubProfileStore{record: &models.UserProfileRecord{
		PreferredEmail: "user@example.com",
		Country:        "Canada",
	}}
	controller := loadContact(t, profiles)
	controller.SetAllowPhoneContact(true)
	controller.SetCountryCode("+44")
	controller.SetPhoneDigits("4155551234")

	next, err := controller.Submit(context.Background())
	assert.Empty(t, next)

	var mismatch *onboarding.MismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "+1", mismatch.Expected)
	assert.Equal(t, "+44", mismatch.Entered)
	assert.Equal(t, 0, profiles.updateCount(), "mismatch gate must not persist")
}

func TestContactConfirmMismatchThenSubmit(t *testing.T) {
	profiles := &stubProfileStore{record: &models.UserProfileRecord{
		PreferredEmail: "user@example.com",
		Country:        "Canada",
		StepCompleted:  3,
	}}
	controller := loadContact(t, profiles)
	controller.SetAllowPhoneContact(true)
	controller.SetCountryCode("+44")
	controller.SetPhoneDigits("4155551234")

	_, err := controller.Submit(context.Background())
	var mismatch *onboarding.MismatchError
	assert.ErrorAs(t, err, &mismatch)

	// Confirming must make the retry succeed unconditionally.
	next, err := controller.ConfirmMismatch(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "/onboarding/job-boards", next)

	assert.Equal(t, 2, profiles.updateCount())
	assert.Equal(t, true, profiles.updates[0]["phoneNumberMismatchConfirmed"])

	final := profiles.lastUpdate()
	assert.Equal(t, "+444155551234", final["phoneNumber"])
	assert.Equal(t, 4, final["stepCompleted"])
}

func TestContactFixMismatchResetsPhone(t *testing.T) {
	profiles := &stubProfileStore{record: &models.UserProfileRecord{
		PreferredEmail: "user@example.com",
		Country:        "Canada",
	}}
	controller := loadContact(t, profiles)
	controller.SetAllowPhoneContact(true)
	controller.SetCountryCode("+44")
	controller.SetPhoneDigits("4155551234")

	controller.FixMismatch()

	state := controller.State()
	assert.Equal(t, "+1", state.CountryCode)
	assert.Empty(t, state.PhoneDigits)
	assert.Empty(t, state.FormattedPhone)
	assert.Equal(t, 0, profiles.updateCount(), "fix path persists nothing")
}

func TestContactSubmitRejectsInvalidEmail(t *testing.T) {
	controller := loadContact(t, &stubProfileStore{})
	controller.SetPreferredEmail("not-an-email")

	_, err := controller.Submit(context.Background())
	var validation *onboarding.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "preferredEmail")
}

func TestContactSubmitRejectsShortPhone(t *testing.T) {
	profiles := &stubProfileStore{record: &models.UserProfileRecord{
		PreferredEmail: "user@example.com",
		Country:        "Canada",
	}}
	controller := loadContact(t, profiles)
	controller.SetAllowPhoneContact(true)
	controller.SetPhoneDigits("415")

	_, err := controller.Submit(context.Background())
	var validation *onboarding.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields["phoneNumber"], "too short")
	assert.Equal(t, 0, profiles.updateCount())
}

func TestContactSubmitWithoutPhonePersistsNull(t *testing.T) {
	profiles := &stubProfileStore{record: &models.UserProfileRecord{
		PreferredEmail: "user@example.com",
		Country:        "Canada",
	}}
	controller := loadContact(t, profiles)

	next, err := controller.Submit(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "/onboarding/job-boards", next)

	update := profiles.lastUpdate()
	assert.Nil(t, update["phoneNumber"])
	assert.Equal(t, false, update["allowPhoneContact"])
	assert.Equal(t, 4, update["stepCompleted"])
}

func TestContactSubmitNeverLowersStepCompleted(t *testing.T) {
	profiles := &stubProfileStore{record: &models.UserProfileRecord{
		PreferredEmail: "user@example.com",
		Country:        "Canada",
		StepCompleted:  6,
	}}
	controller := loadContact(t, profiles)

	_, err := controller.Submit(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 6, profiles.lastUpdate()["stepCompleted"])
}

func TestContactSaveAndExitSkipsValidation(t *testing.T) {
	profiles := &stubProfileStore{record: &models.UserProfileRecord{
		Country: "Canada",
	}}
	controller := loadContact(t, profiles)
	controller.SetPreferredEmail("not-an-email")

	route, err := controller.SaveAndExit(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "/dashboard", route)

	update := profiles.lastUpdate()
	assert.Equal(t, "not-an-email", update["preferredEmail"])
	_, hasStep := update["stepCompleted"]
	assert.False(t, hasStep)
}

func TestContactSubmitSurfacesPersistenceError(t *testing.T) {
	profiles := &stubProfileStore{
		record:    &models.UserProfileRecord{PreferredEmail: "user@example.com", Country: "Canada"},
		updateErr: errors.New("store down"),
	}
	controller := loadContact(t, profiles)

	_, err := controller.Submit(context.Background())
	assert.Error(t, err)
	var validation *onboarding.ValidationError
	assert.False(t, errors.As(err, &validation))
}
