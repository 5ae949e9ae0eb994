package service

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/config"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/model"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/vocab"
)

// AnthropicMessager is the slice of the Anthropic client the vision
// service needs; tests substitute a stub.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Vision turns a photo of a found item into a RawReport by asking the
// vision model to fill the Zgloszenie XML, constrained to the
// controlled vocabulary. The model is told not to invent values, but
// its output is still free text until the normalizer has resolved it.
type Vision struct {
	messages   AnthropicMessager
	model      string
	dictionary *vocab.Dictionary
}

func NewVision(cfg *config.Vision, dictionary *vocab.Dictionary) *Vision {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Vision{
		messages:   &client.Messages,
		model:      cfg.Model,
		dictionary: dictionary,
	}
}

// AnalyzeImage sends the image to the model and parses the returned
// XML into a raw report candidate.
func (v *Vision) AnalyzeImage(ctx context.Context, imageData []byte, mediaType string) (*model.RawReport, error) {
	resp, err := v.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(v.model),
		MaxTokens: 1024,
		System:    []anthropic.TextBlockParam{{Text: v.systemPrompt()}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(imageData)),
				anthropic.NewTextBlock("Dopasuj ten przedmiot do słownika i wypełnij XML."),
			),
		},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}

	return ParseZgloszenieXML(sb.String())
}

// ParseZgloszenieXML decodes a model response into a raw report,
// tolerating markdown code fences around the document.
func ParseZgloszenieXML(raw string) (*model.RawReport, error) {
	clean := stripCodeFences(raw)
	if clean == "" {
		return nil, fmt.Errorf("empty vision response")
	}

	var doc model.Zgloszenie
	if err := xml.Unmarshal([]byte(clean), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse vision XML: %w", err)
	}

	p := doc.Przedmiot
	return &model.RawReport{
		Kategoria:    strings.TrimSpace(p.Kategoria),
		Podkategoria: strings.TrimSpace(p.Podkategoria),
		Nazwa:        strings.TrimSpace(p.Nazwa),
		Opis:         strings.TrimSpace(p.Opis),
		Cechy: model.Cechy{
			Kolor: strings.TrimSpace(p.Cechy.Kolor),
			Marka: strings.TrimSpace(p.Cechy.Marka),
			Stan:  strings.TrimSpace(p.Cechy.Stan),
		},
	}, nil
}

// systemPrompt builds the strict dictionary prompt. Values outside the
// listed categories and conditions break the downstream form, so the
// model is instructed to pick from the lists verbatim.
func (v *Vision) systemPrompt() string {
	var dict strings.Builder
	for _, kat := range v.dictionary.Categories() {
		subs := v.dictionary.Subcategories(kat)
		quoted := make([]string, len(subs))
		for i, s := range subs {
			quoted[i] = `"` + s + `"`
		}
		fmt.Fprintf(&dict, "KATEGORIA: %q -> PODKATEGORIE: [%s]\n", kat, strings.Join(quoted, ", "))
	}

	stany := make([]string, 0, len(v.dictionary.Conditions()))
	for _, s := range v.dictionary.Conditions() {
		stany = append(stany, `"`+s+`"`)
	}

	return fmt.Sprintf(`Jesteś robotem indeksującym. Analizujesz zdjęcie i zwracasz dane w XML.

ZASADY KRYTYCZNE:
1. Wybieraj wartości TYLKO I WYŁĄCZNIE z podanych list.
2. NIE UŻYWAJ SYNONIMÓW (np. jeśli widzisz "Smartfon", a na liście jest "Telefon" -> wpisz "Telefon").
3. Zachowaj WIELKOŚĆ LITER z list.

DOSTĘPNE KATEGORIE I PODKATEGORIE:
%s
Jeśli przedmiot nie pasuje do żadnej podkategorii, wybierz "Inne".

DOSTĘPNE STANY:
[%s]

ZASADY OPISU:
- Ignoruj tło, ekrany laptopów/telefonów. Opisuj tylko fizyczny przedmiot.

ZWROĆ TYLKO CZYSTY KOD XML WEDŁUG WZORCA:
<Zgloszenie>
  <Przedmiot>
    <Kategoria>NAZWA KATEGORII Z LISTY</Kategoria>
    <Podkategoria>NAZWA PODKATEGORII Z LISTY</Podkategoria>
    <Nazwa>Krótka nazwa</Nazwa>
    <Opis>Opis fizyczny</Opis>
    <Cechy>
      <Kolor>np. czarny</Kolor>
      <Marka>np. Samsung</Marka>
      <Stan>Jeden ze stanów z listy</Stan>
    </Cechy>
  </Przedmiot>
</Zgloszenie>`, dict.String(), strings.Join(stany, ", "))
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "xml")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
