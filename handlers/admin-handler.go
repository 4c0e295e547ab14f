package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"onboarding-service/config"
	"onboarding-service/middleware"
	"onboarding-service/models"
	"onboarding-service/phone"
	"onboarding-service/store"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

var compareHashAndPassword = bcrypt.CompareHashAndPassword

// AdminHandler is the read-side client viewer: it reconstructs onboarding
// state from stored records for staff review.
type AdminHandler struct {
	cfg      config.Config
	profiles store.ProfileStore
}

func NewAdminHandler(cfg config.Config, profiles store.ProfileStore) *AdminHandler {
	return &AdminHandler{cfg: cfg, profiles: profiles}
}

func (h *AdminHandler) requireKey(r *http.Request) error {
	if h.cfg.Admin.KeyHash == "" {
		return middleware.NewAppError(http.StatusForbidden, "Admin access is not configured", nil)
	}
	key := r.Header.Get("X-Admin-Key")
	if key == "" {
		return middleware.NewAppError(http.StatusUnauthorized, "Admin key is required", nil)
	}
	if err := compareHashAndPassword([]byte(h.cfg.Admin.KeyHash), []byte(key)); err != nil {
		return middleware.NewAppError(http.StatusForbidden, "Invalid admin key", err)
	}
	return nil
}

func (h *AdminHandler) ListClientsHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	if err := h.requireKey(r); err != nil {
		return err
	}

	filter := store.ClientFilter{Country: r.URL.Query().Get("country")}
	if raw := r.URL.Query().Get("minStep"); raw != "" {
		minStep, err := strconv.Atoi(raw)
		if err != nil {
			return middleware.NewAppError(http.StatusBadRequest, "Invalid minStep", err)
		}
		filter.MinStep = minStep
	}

	rows, err := h.profiles.ListProfiles(r.Context(), filter)
	if err != nil {
		log.Printf("Error listing clients: %v", err)
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	views := make([]models.ClientView, 0, len(rows))
	for _, row := range rows {
		views = append(views, clientView(row.UID, row.Record))
	}
	return json.NewEncoder(w).Encode(JSONResponse{"clients": views})
}

func (h *AdminHandler) GetClientHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	if err := h.requireKey(r); err != nil {
		return err
	}

	uid := mux.Vars(r)["uid"]
	record, found, err := h.profiles.GetProfile(r.Context(), uid)
	if err != nil {
		log.Printf("Error loading client %s: %v", uid, err)
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
	if !found {
		return middleware.NewAppError(http.StatusNotFound, "Client not found", nil)
	}

	return json.NewEncoder(w).Encode(clientView(uid, *record))
}

// clientView splits the stored phone number with the same reconstruction rule
// the contact step uses, so staff see exactly what the client entered.
func clientView(uid string, record models.UserProfileRecord) models.ClientView {
	view := models.ClientView{
		UID:               uid,
		PreferredEmail:    record.PreferredEmail,
		Country:           record.Country,
		AllowPhoneContact: record.AllowPhoneContact,
		MismatchConfirmed: record.PhoneNumberMismatchConfirmed,
		JobBoards:         record.JobBoards,
		StepCompleted:     record.StepCompleted,
		UpdatedAt:         record.UpdatedAt,
	}
	if record.JobBoardsOther != nil {
		view.JobBoardsOther = *record.JobBoardsOther
	}
	if record.PhoneNumber != nil && *record.PhoneNumber != "" {
		code, digits := phone.SplitNumber(*record.PhoneNumber, record.Country)
		view.CountryCode = code
		view.PhoneDigits = digits
		view.FormattedPhone = phone.FormatNumber(digits, phone.GetPhoneFormat(record.Country).Pattern)
	}
	return view
}
