package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"onboarding-service/config"
	"onboarding-service/middleware"
	"onboarding-service/models"
	"onboarding-service/onboarding"
	"onboarding-service/store"
)

type JSONResponse map[string]interface{}

// OnboardingHandler exposes the wizard over HTTP: state, field edits feeding
// the per-user controllers, submits, and the mismatch resolution actions.
type OnboardingHandler struct {
	cfg      config.Config
	resume   store.ResumeStore
	sessions *onboarding.Manager
}

func NewOnboardingHandler(cfg config.Config, resume store.ResumeStore, sessions *onboarding.Manager) *OnboardingHandler {
	return &OnboardingHandler{cfg: cfg, resume: resume, sessions: sessions}
}

func (h *OnboardingHandler) session(r *http.Request) (*onboarding.Session, error) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return nil, middleware.NewAppError(http.StatusUnauthorized, "Not signed in", nil)
	}
	session := h.sessions.Session(ident)
	if err := session.Load(r.Context()); err != nil {
		log.Printf("Error loading onboarding session: %v", err)
		return nil, middleware.NewAppError(http.StatusInternalServerError, "Could not load your onboarding record", err)
	}
	return session, nil
}

// StateHandler returns both step snapshots plus the route a returning client
// should resume at. The resume cache is best-effort; a cache miss or error
// falls back to recorded step progress.
func (h *OnboardingHandler) StateHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	session, err := h.session(r)
	if err != nil {
		return err
	}

	contact := session.Contact.State()
	resumeStep := contact.StepCompleted
	if h.resume != nil {
		if step, found, err := h.resume.GetResume(r.Context(), session.Identity.UID); err != nil {
			log.Printf("Resume lookup failed: uid=%s err=%v", session.Identity.UID, err)
		} else if found && step > resumeStep {
			resumeStep = step
		}
	}

	return json.NewEncoder(w).Encode(JSONResponse{
		"contact":     contact,
		"jobBoards":   session.JobBoards.State(),
		"resumeRoute": onboarding.ResumeRoute(resumeStep),
	})
}

type contactFieldsRequest struct {
	PreferredEmail    *string `json:"preferredEmail"`
	AllowPhoneContact *bool   `json:"allowPhoneContact"`
	CountryCode       *string `json:"countryCode"`
	PhoneDigits       *string `json:"phoneDigits"`
}

// ContactFieldsHandler applies form edits. Each accepted edit restarts the
// controller's autosave debounce; the response is the fresh snapshot so the
// client can render rejected edits (over-length digits) correctly.
func (h *OnboardingHandler) ContactFieldsHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	session, err := h.session(r)
	if err != nil {
		return err
	}

	var request contactFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
	}

	if request.PreferredEmail != nil {
		session.Contact.SetPreferredEmail(*request.PreferredEmail)
	}
	if request.AllowPhoneContact != nil {
		session.Contact.SetAllowPhoneContact(*request.AllowPhoneContact)
	}
	if request.CountryCode != nil {
		session.Contact.SetCountryCode(*request.CountryCode)
	}
	if request.PhoneDigits != nil {
		session.Contact.SetPhoneDigits(*request.PhoneDigits)
	}

	return json.NewEncoder(w).Encode(session.Contact.State())
}

func (h *OnboardingHandler) ContactSubmitHandler(w http.ResponseWriter, r *http.Request) error {
	session, err := h.session(r)
	if err != nil {
		return err
	}
	next, err := session.Contact.Submit(r.Context())
	return h.finishSubmit(w, r, session, onboarding.ContactStepIndex+1, next, err)
}

// ContactConfirmHandler resolves the mismatch prompt with "it's intentional":
// the flag is persisted and the submit retried, which cannot hit the gate
// again.
func (h *OnboardingHandler) ContactConfirmHandler(w http.ResponseWriter, r *http.Request) error {
	session, err := h.session(r)
	if err != nil {
		return err
	}
	next, err := session.Contact.ConfirmMismatch(r.Context())
	return h.finishSubmit(w, r, session, onboarding.ContactStepIndex+1, next, err)
}

// ContactFixHandler resolves the mismatch prompt with "let me fix it": the
// dial code resets to the country default and the digits clear, without
// persisting.
func (h *OnboardingHandler) ContactFixHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	session, err := h.session(r)
	if err != nil {
		return err
	}
	session.Contact.FixMismatch()
	return json.NewEncoder(w).Encode(session.Contact.State())
}

// ContactExitHandler is save-and-exit: current values persist as-is with no
// validation gate or step advancement.
func (h *OnboardingHandler) ContactExitHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	session, err := h.session(r)
	if err != nil {
		return err
	}

	route, err := session.Contact.SaveAndExit(r.Context())
	if err != nil {
		log.Printf("Error saving on exit: %v", err)
		return middleware.NewAppError(http.StatusInternalServerError, "Could not save your details", err)
	}
	return json.NewEncoder(w).Encode(JSONResponse{"message": "Progress saved", "next": route})
}

type jobBoardsFieldsRequest struct {
	ToggleBoard       *string `json:"toggleBoard"`
	JobBoardsOther    *string `json:"jobBoardsOther"`
	JobBoardsConsent  *bool   `json:"jobBoardsConsent"`
	GmailConsent      *bool   `json:"gmailConsent"`
	AITrackingConsent *bool   `json:"aiTrackingConsent"`
}

// JobBoardsFieldsHandler applies edits to the job-boards step. This step has
// no autosave: nothing persists until the explicit submit.
func (h *OnboardingHandler) JobBoardsFieldsHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	session, err := h.session(r)
	if err != nil {
		return err
	}

	var request jobBoardsFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
	}

	if request.ToggleBoard != nil {
		session.JobBoards.ToggleBoard(*request.ToggleBoard)
	}
	if request.JobBoardsOther != nil {
		session.JobBoards.SetOther(*request.JobBoardsOther)
	}
	if request.JobBoardsConsent != nil || request.GmailConsent != nil || request.AITrackingConsent != nil {
		current := session.JobBoards.State()
		jobBoards := current.JobBoardsConsent
		gmail := current.GmailConsent
		aiTracking := current.AITrackingConsent
		if request.JobBoardsConsent != nil {
			jobBoards = *request.JobBoardsConsent
		}
		if request.GmailConsent != nil {
			gmail = *request.GmailConsent
		}
		if request.AITrackingConsent != nil {
			aiTracking = *request.AITrackingConsent
		}
		session.JobBoards.SetConsents(jobBoards, gmail, aiTracking)
	}

	return json.NewEncoder(w).Encode(session.JobBoards.State())
}

func (h *OnboardingHandler) JobBoardsSubmitHandler(w http.ResponseWriter, r *http.Request) error {
	session, err := h.session(r)
	if err != nil {
		return err
	}
	next, err := session.JobBoards.Submit(r.Context())
	return h.finishSubmit(w, r, session, onboarding.JobBoardsStepIndex+1, next, err)
}

// finishSubmit maps controller outcomes onto the HTTP surface: the mismatch
// gate is a 409 confirmation prompt, validation failures are 422 with field
// detail, persistence failures are a blocking 500.
func (h *OnboardingHandler) finishSubmit(w http.ResponseWriter, r *http.Request, session *onboarding.Session, step int, next string, err error) error {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		var mismatch *onboarding.MismatchError
		if errors.As(err, &mismatch) {
			w.WriteHeader(http.StatusConflict)
			return json.NewEncoder(w).Encode(JSONResponse{
				"error":                "Your phone country code doesn't match your country",
				"expectedCode":         mismatch.Expected,
				"enteredCode":          mismatch.Entered,
				"confirmationRequired": true,
			})
		}

		var validation *onboarding.ValidationError
		if errors.As(err, &validation) {
			return middleware.NewValidationError("Please fix the highlighted fields", validation.Fields)
		}

		log.Printf("Error submitting step: uid=%s err=%v", session.Identity.UID, err)
		return middleware.NewAppError(http.StatusInternalServerError, "Could not save your details", err)
	}

	h.recordResume(r, session.Identity, step)
	return json.NewEncoder(w).Encode(JSONResponse{"message": "Step completed", "next": next})
}

func (h *OnboardingHandler) recordResume(r *http.Request, ident models.Identity, step int) {
	if h.resume == nil {
		return
	}
	if err := h.resume.SaveResume(r.Context(), ident.UID, step, h.cfg.Onboarding.ResumeTTL); err != nil {
		log.Printf("Resume save failed: uid=%s err=%v", ident.UID, err)
	}
}
