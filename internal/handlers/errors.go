package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/services"
	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/utils"
)

// respondServiceError maps service errors onto HTTP statuses. Anything not
// carrying a known kind is a 500 and gets logged; the client only ever sees
// the generic message.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrValidation):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("❌ Internal error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
