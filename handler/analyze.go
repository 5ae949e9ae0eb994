package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/model"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/vocab"
)

// maxImageBytes caps uploaded photos; the vision model does not need
// more than a few megabytes to classify an item.
const maxImageBytes = 8 << 20

// ImageAnalyzer is what the handler needs from the vision service.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, imageData []byte, mediaType string) (*model.RawReport, error)
}

type AnalyzeHandler struct {
	vision     ImageAnalyzer
	dictionary *vocab.Dictionary
}

func NewAnalyzeHandler(vision ImageAnalyzer, dictionary *vocab.Dictionary) *AnalyzeHandler {
	return &AnalyzeHandler{
		vision:     vision,
		dictionary: dictionary,
	}
}

// AnalyzeImage handles POST /api/analyze-image: a photo is uploaded,
// the vision model fills the report XML, and the normalized candidate
// is returned for the form to pre-fill. Nothing is published here.
func (h *AnalyzeHandler) AnalyzeImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Brak zdjęcia do analizy."})
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Zdjęcie jest zbyt duże."})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nie udało się odczytać zdjęcia."})
		return
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mediaType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Przesłany plik nie jest obrazem."})
		return
	}

	raw, err := h.vision.AnalyzeImage(c.Request.Context(), data, mediaType)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Analiza obrazu nie powiodła się."})
		return
	}

	// The model is prompted to stay inside the dictionary, but its
	// output is normalized like any other intake before it reaches
	// the form.
	normalized := h.dictionary.Normalize(*raw)

	c.JSON(http.StatusOK, gin.H{
		"kategoria":    normalized.Kategoria,
		"podkategoria": normalized.Podkategoria,
		"nazwa":        normalized.Nazwa,
		"opis":         normalized.Opis,
		"cechy": gin.H{
			"kolor": normalized.Cechy.Kolor,
			"marka": normalized.Cechy.Marka,
			"stan":  normalized.Cechy.Stan,
		},
	})
}
