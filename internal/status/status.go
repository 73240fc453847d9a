// Package status renders the user-facing status lines of the event finder.
//
// Texts are German and numbers use German formatting (1.234, 2,5), matching
// the web widget the listing is shown in.
package status

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Fixed status texts
const (
	Loading        = "Events werden geladen …"
	Searching      = "Suche wird ausgeführt …"
	SearchingNear  = "Suche in der Nähe …"
	AskingLocation = "Frage nach deinem Standort …"
	LocationFailed = "Standort konnte nicht ermittelt werden. Du kannst stattdessen eine Stadt/PLZ eingeben."
	NoGeolocation  = "Geolocation wird nicht unterstützt."
	CityNotFound   = "Konnte keine Koordinaten für die angegebene Stadt/PLZ finden. Probiere eine andere Eingabe."
	NoEvents       = "Keine Events gefunden."
	NoTicket       = "Keine Ticket-URL vorhanden."
	Initial        = "Zeige Beispiel-Events. Nutze die Suche oder „In meiner Nähe suchen“."
)

var lang = language.German

func printer() *message.Printer {
	return message.NewPrinter(lang)
}

// Loaded reports the size of a freshly loaded listing
func Loaded(count int) string {
	return printer().Sprintf("Geladen: %d Events.", count)
}

// LoadFailed prefixes the load error for display
func LoadFailed(err error) string {
	if err == nil {
		return "Konnte Events nicht laden."
	}
	return "Konnte Events nicht laden. " + err.Error()
}

// Nearby reports the result count of a proximity search
func Nearby(count int, radiusKm float64) string {
	return printer().Sprintf("%d Ereignis(se) innerhalb von %v km gefunden.", count, radiusKm)
}

// Global reports the result count of a text-only search after location failed
func Global(count int) string {
	return printer().Sprintf("%d Ergebnisse (globale Suche).", count)
}

// Local reports the result count of a text-only search without any location support
func Local(count int) string {
	return printer().Sprintf("%d Ergebnisse (lokale Suche).", count)
}

// UsingCity announces the city whose coordinate replaces the device location
func UsingCity(city string) string {
	return "Verwende Position von " + city
}

// Distance renders a distance rounded to whole kilometers
func Distance(km float64) string {
	return printer().Sprintf("%d km", int64(math.Round(km)))
}
