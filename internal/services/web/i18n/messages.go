package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys used by the page templates. Keys are the English copy, so
// English needs no catalog entries.
const (
	KeyPickScene          = "Pick a scene"
	KeyCustomURL          = "Your own video URL"
	KeyPreview            = "Preview"
	KeyUploadFace         = "Your face photo"
	KeyCreate             = "Create Face-Swap"
	KeyProcessing         = "Processing..."
	KeyResult             = "Your scene"
	KeyDownload           = "Download"
	KeyMissingScene       = "Pick a scene or enter a video URL"
	KeyMissingFace        = "Upload a face photo"
	KeyAPIError           = "API error"
	KeyUnexpectedResponse = "Unexpected server response: %s"
	KeyErrorTitle         = "Something went wrong"
	KeyErrorServer        = "Error %d on the server side"
	KeyErrorClient        = "Client-side error"
	KeyErrorHome          = "Back to scenes"
	KeyErrorNotFound      = "Page not found"
	KeyShare              = "Share"
	KeyShareText          = "Check out the iconic movie scene I starred in!"
	KeyShareCopied        = "Link to the website has been copied to your clipboard!"
	KeyShareFailed        = "Could not copy link to clipboard."
	KeyLanguage           = "Language"
)

var keys = []string{
	KeyPickScene, KeyCustomURL, KeyPreview, KeyUploadFace, KeyCreate, KeyProcessing,
	KeyResult, KeyDownload, KeyMissingScene, KeyMissingFace, KeyAPIError,
	KeyUnexpectedResponse, KeyErrorTitle, KeyErrorServer, KeyErrorClient, KeyErrorHome,
	KeyErrorNotFound, KeyShare, KeyShareText, KeyShareCopied, KeyShareFailed, KeyLanguage,
}

var translations = map[language.Tag]map[string]string{
	language.Polish: {
		KeyPickScene:          "Wybierz scenę",
		KeyCustomURL:          "Własny URL wideo",
		KeyPreview:            "Podgląd",
		KeyUploadFace:         "Zdjęcie twarzy",
		KeyCreate:             "Stwórz Face-Swap",
		KeyProcessing:         "Przetwarzanie...",
		KeyResult:             "Twoja scena",
		KeyDownload:           "Pobierz",
		KeyMissingScene:       "Wybierz scenę lub podaj URL wideo",
		KeyMissingFace:        "Wgraj zdjęcie twarzy",
		KeyAPIError:           "Błąd z API",
		KeyUnexpectedResponse: "Nieoczekiwana odpowiedź serwera: %s",
		KeyErrorTitle:         "Coś poszło nie tak",
		KeyErrorServer:        "Błąd %d po stronie serwera",
		KeyErrorClient:        "Błąd po stronie klienta",
		KeyErrorHome:          "Wróć do scen",
		KeyErrorNotFound:      "Nie znaleziono strony",
		KeyShare:              "Udostępnij",
		KeyShareText:          "Zobacz kultową scenę filmową, w której zagrałem!",
		KeyShareCopied:        "Link do strony został skopiowany do schowka!",
		KeyShareFailed:        "Nie udało się skopiować linku do schowka.",
		KeyLanguage:           "Język",
	},
}

func registerMessages() {
	for tag, messages := range translations {
		for key, msg := range messages {
			// SetString only fails for malformed tags.
			_ = message.SetString(tag, key, msg)
		}
	}
}
