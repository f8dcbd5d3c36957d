package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin/binding"
)

// ErrInvalidEvent wraps every decoding or validation failure of a choice event.
var ErrInvalidEvent = errors.New("invalid event")

// Text is a JSON scalar (string, number or bool) kept in its textual form.
// Clients send timestamp and round either as numbers or strings.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		return errors.New("empty value")
	case bytes.Equal(b, []byte("null")):
		*t = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case b[0] == '{' || b[0] == '[':
		return errors.New("must be a string or number")
	}
	*t = Text(b)
	return nil
}

// ChoiceEventRequest is the POST payload: one scenario choice.
// The option texts arrive as optionX_textDE from the web client; the plain
// optionX_text names are accepted too.
type ChoiceEventRequest struct {
	Timestamp        Text   `json:"timestamp" binding:"required"`
	Date             string `json:"date" binding:"required"`
	SessionID        string `json:"sessionId" binding:"required"`
	Round            Text   `json:"round" binding:"required"`
	OptionAID        string `json:"optionA_id" binding:"required"`
	OptionATextDE    string `json:"optionA_textDE,omitempty"`
	OptionAText      string `json:"optionA_text,omitempty"`
	OptionBID        string `json:"optionB_id" binding:"required"`
	OptionBTextDE    string `json:"optionB_textDE,omitempty"`
	OptionBText      string `json:"optionB_text,omitempty"`
	Chosen           string `json:"chosen" binding:"required"`
	ChosenScenarioID string `json:"chosenScenarioId" binding:"required"`
	Language         string `json:"language" binding:"required"`
}

// TextA returns the text of option A, preferring the optionA_textDE field.
func (r *ChoiceEventRequest) TextA() string {
	if r.OptionATextDE != "" {
		return r.OptionATextDE
	}
	return r.OptionAText
}

// TextB returns the text of option B, preferring the optionB_textDE field.
func (r *ChoiceEventRequest) TextB() string {
	if r.OptionBTextDE != "" {
		return r.OptionBTextDE
	}
	return r.OptionBText
}

// DecodeChoiceEvent reads exactly one JSON object from body, rejecting unknown
// fields, trailing data and missing required fields.
func DecodeChoiceEvent(body io.Reader) (ChoiceEventRequest, error) {
	var req ChoiceEventRequest

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return ChoiceEventRequest{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ChoiceEventRequest{}, fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidEvent)
	}

	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return ChoiceEventRequest{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return req, nil
}

// IngestResponse is returned by the POST endpoint.
type IngestResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// StatusResponse is the default GET payload.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the failure payload of either endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ScenarioCount is one entry of the top-scenarios list.
type ScenarioCount struct {
	ScenarioID string `json:"scenarioId"`
	Count      int    `json:"count"`
}

// TopScenariosResponse is returned by GET ?action=getTop.
type TopScenariosResponse struct {
	Success         bool            `json:"success"`
	Date            string          `json:"date"`
	TotalSelections int             `json:"totalSelections"`
	TopScenarios    []ScenarioCount `json:"topScenarios"`
}

// DailyStatsResponse maps each raw date value to its row count.
type DailyStatsResponse struct {
	Success    bool           `json:"success"`
	DailyStats map[string]int `json:"dailyStats"`
}
