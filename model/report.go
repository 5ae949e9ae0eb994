package model

import (
	"time"
)

// Cechy groups the physical attributes of a reported item.
type Cechy struct {
	Kolor string `json:"kolor"`
	Marka string `json:"marka"`
	Stan  string `json:"stan"`
}

// RawReport is the unvalidated intake payload, produced either by the
// citizen-facing form or by parsing a vision-model response. Categorical
// fields are free text until the normalizer has resolved them.
type RawReport struct {
	Kategoria    string `json:"kategoria" binding:"required"`
	Podkategoria string `json:"podkategoria"`
	Nazwa        string `json:"nazwa" binding:"required"`
	Opis         string `json:"opis"`
	Cechy        Cechy  `json:"cechy"`
	Data         string `json:"data" binding:"required,founddate"`
	Miejsce      string `json:"miejsce"`
	Lat          string `json:"lat,omitempty" binding:"omitempty,coordinate"`
	Lng          string `json:"lng,omitempty" binding:"omitempty,coordinate"`
}

// NormalizedReport is a RawReport whose categorical fields have been
// resolved against the controlled vocabulary. Kategoria is always a
// vocabulary key or the catch-all; Stan is a vocabulary condition or
// empty. Podkategoria may still carry unresolved free text.
type NormalizedReport struct {
	Kategoria    string `json:"kategoria"`
	Podkategoria string `json:"podkategoria"`
	Nazwa        string `json:"nazwa"`
	Opis         string `json:"opis"`
	Cechy        Cechy  `json:"cechy"`
	Data         string `json:"data"`
	Miejsce      string `json:"miejsce"`
	Lat          string `json:"lat,omitempty"`
	Lng          string `json:"lng,omitempty"`
}

// PublishedRecord is a normalized report together with its assigned
// identity. Immutable once the ledger row is written; there is no
// update or delete path.
type PublishedRecord struct {
	ID        string           `json:"id"`
	Office    string           `json:"office"`
	CreatedAt time.Time        `json:"created_at"`
	Report    NormalizedReport `json:"report"`
}

// PublishFiles carries the durable public links returned after a
// successful publish.
type PublishFiles struct {
	CSV      string `json:"csv"`
	XML      string `json:"xml"`
	QR       string `json:"qr"`
	ItemLink string `json:"itemLink"`
}

// PublishResponse is the success body of POST /api/publish-data.
type PublishResponse struct {
	Success bool         `json:"success"`
	ID      string       `json:"id"`
	Files   PublishFiles `json:"files"`
}
