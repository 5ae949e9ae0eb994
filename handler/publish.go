package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/model"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/service"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/vocab"
)

type PublishHandler struct {
	publisher  *service.Publisher
	dictionary *vocab.Dictionary
}

func NewPublishHandler(publisher *service.Publisher, dictionary *vocab.Dictionary) *PublishHandler {
	return &PublishHandler{
		publisher:  publisher,
		dictionary: dictionary,
	}
}

// PublishData handles POST /api/publish-data. The request is rejected
// here, before any side effect, when the payload is missing or lacks a
// required field; after that the publish pipeline runs exactly once.
func (h *PublishHandler) PublishData(c *gin.Context) {
	var raw model.RawReport
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Brak wymaganych danych zgłoszenia: " + err.Error(),
		})
		return
	}

	normalized := h.dictionary.Normalize(raw)

	record, files, err := h.publisher.Publish(c.Request.Context(), normalized)
	if err != nil {
		var partial *service.PartialPublishError
		if errors.As(err, &partial) {
			// The ledger row exists without its artifacts. Surface it
			// explicitly so the registry can be reconciled by hand.
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"error":     "Zgłoszenie zapisano w rejestrze, ale nie udało się wygenerować wszystkich plików.",
				"report_id": partial.ReportID,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Błąd zapisu zgłoszenia.",
		})
		return
	}

	c.JSON(http.StatusOK, model.PublishResponse{
		Success: true,
		ID:      record.ID,
		Files:   *files,
	})
}
