package handler

import (
	"encoding/xml"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/model"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/service"
)

// maxImportXMLBytes caps uploaded report documents.
const maxImportXMLBytes = 1 << 20

type ImportXMLHandler struct {
	artifacts *service.Artifacts
	publicQR  func(file string) string
}

// NewImportXMLHandler builds the handler for uploaded report XML
// files. publicQR maps a QR filename to its public URL.
func NewImportXMLHandler(artifacts *service.Artifacts, publicQR func(file string) string) *ImportXMLHandler {
	return &ImportXMLHandler{
		artifacts: artifacts,
		publicQR:  publicQR,
	}
}

// Import handles POST /api/import-xml: a ZgloszenieZguby document is
// uploaded, its unique identifier extracted, and the QR artifact for
// that identity (re)generated. Nothing of the upload is kept.
func (h *ImportXMLHandler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("dataFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Brak pliku do wgrania."})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportXMLBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nie udało się odczytać pliku."})
		return
	}

	var doc model.Metadata
	if err := xml.Unmarshal(data, &doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Błąd: Plik nie jest poprawnym dokumentem XML zgłoszenia.",
		})
		return
	}

	id := doc.Naglowek.IdentyfikatorUnikalny
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Błąd: Plik XML nie zawiera unikalnego identyfikatora w Naglowku.",
		})
		return
	}

	qrFile, err := h.artifacts.WriteQR(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Wystąpił błąd serwera podczas generowania kodu QR.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Sukces! Kod QR wygenerowany na podstawie Identyfikatora Unikalnego.",
		"unikalnyId":  id,
		"qrLink":      h.artifacts.ViewerURL(id),
		"qrPublicUrl": h.publicQR(qrFile),
	})
}
