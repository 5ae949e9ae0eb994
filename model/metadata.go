package model

import "encoding/xml"

// Metadata is the per-item XML record published next to the ledger.
// External consumers (the open-data catalog) fetch it independently of
// the CSV, so it embeds the full normalized field set plus a pointer
// back to the ledger file that holds the authoritative row.
type Metadata struct {
	XMLName   xml.Name  `xml:"ZgloszenieZguby"`
	Naglowek  Naglowek  `xml:"Naglowek"`
	Przedmiot Przedmiot `xml:"Przedmiot"`
}

// Naglowek is the metadata header block.
type Naglowek struct {
	IdentyfikatorUnikalny string `xml:"IdentyfikatorUnikalny"`
	NazwaUrzedu           string `xml:"NazwaUrzedu"`
	DataUtworzenia        string `xml:"DataUtworzenia"`
	RejestrCSV            string `xml:"RejestrCSV"`
}

// Przedmiot describes the item itself. The same block is produced by
// the vision model inside its <Zgloszenie> response, so it is shared
// between the metadata artifact and AI-response parsing.
type Przedmiot struct {
	Kategoria       string   `xml:"Kategoria"`
	Podkategoria    string   `xml:"Podkategoria"`
	Nazwa           string   `xml:"Nazwa"`
	Opis            string   `xml:"Opis"`
	Cechy           CechyXML `xml:"Cechy"`
	DataZnalezienia string   `xml:"DataZnalezienia,omitempty"`
	Miejsce         string   `xml:"Miejsce,omitempty"`
	Lat             string   `xml:"Lat,omitempty"`
	Lon             string   `xml:"Lon,omitempty"`
}

// CechyXML mirrors Cechy for the XML documents.
type CechyXML struct {
	Kolor string `xml:"Kolor"`
	Marka string `xml:"Marka"`
	Stan  string `xml:"Stan"`
}

// Zgloszenie is the envelope the vision model is instructed to return.
type Zgloszenie struct {
	XMLName   xml.Name  `xml:"Zgloszenie"`
	Przedmiot Przedmiot `xml:"Przedmiot"`
}
