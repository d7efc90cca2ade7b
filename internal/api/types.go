package api

import "encoding/json"

// Wire types shared by the clients and the reference backend. JSON field
// names are snake_case, matching the extension's payloads.

// TranslateRequest is the body of POST /translate. UserID is null for guests.
type TranslateRequest struct {
	Text   string  `json:"text"`
	UserID *string `json:"user_id"`
}

// Translation is the success body of POST /translate.
type Translation struct {
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	TranslatedText string `json:"translated_text"`
}

// HighlightRequest is the body of POST /highlight.
type HighlightRequest struct {
	Highlight string `json:"highlight"`
	UserID    string `json:"user_id"`
}

// UserData summarizes the user's record after a highlight was stored.
type UserData struct {
	SourceLanguage   string   `json:"source_language"`
	TargetLanguage   string   `json:"target_language"`
	HighlightedWords []string `json:"highlighted_words"`
}

// Receipt is the success body of POST /highlight.
type Receipt struct {
	// Acknowledged is set by the client on any 2xx answer.
	Acknowledged  bool            `json:"-"`
	UserData      *UserData       `json:"user_data,omitempty"`
	LettaResponse json.RawMessage `json:"letta_response,omitempty"`
}

// ErrorBody is the JSON body of a non-2xx answer from the reference backend.
type ErrorBody struct {
	Detail string `json:"detail"`
}
