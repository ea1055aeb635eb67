package scihub

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// APIError is an invalid response from the catalog: a non-2xx status or a
// 2xx body that does not parse as JSON. Code is the catalog's error code
// when the body carried an error envelope, otherwise empty.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	sep := " "
	if strings.Contains(e.Message, "\n") {
		sep = "\n"
	}
	code := e.Code
	if code == "" {
		code = "none"
	}
	return fmt.Sprintf("(HTTP status: %d, code: %s)%s%s", e.StatusCode, code, sep, e.Message)
}

// SchemaError reports a response that was otherwise successful but lacks an
// expected key or structure. It is never retried.
type SchemaError struct {
	Key string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("catalog response missing expected key %q", e.Key)
}

// errorEnvelope is the error body shape the catalog emits when it reports a
// failure in JSON: {"error":{"code":...,"message":{"value":...}}}.
type errorEnvelope struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message struct {
			Value string `json:"value"`
		} `json:"message"`
	} `json:"error"`
}

// ResponseError validates a catalog response. A 2xx status with a
// well-formed JSON body is valid and yields nil. Anything else produces an
// *APIError via an ordered pipeline: try the JSON error envelope first; if
// the body is not JSON-shaped at all, fall back to stripping markup from
// an HTML body.
func ResponseError(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 && json.Valid(body) {
		return nil
	}

	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    "API response not valid. JSON decoding failed.",
		Body:       body,
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message.Value != "" {
		apiErr.Message = envelope.Error.Message.Value
		if code := strings.Trim(string(envelope.Error.Code), `"`); code != "null" {
			apiErr.Code = code
		}
		return apiErr
	}

	if !strings.HasPrefix(strings.TrimSpace(string(body)), "{") {
		if text := htmlToText(body); text != "" {
			apiErr.Message = text
		}
	}
	return apiErr
}

// htmlToText strips markup from an HTML body, keeping only its visible
// text. Script and style content is dropped. Returns "" when no text
// remains.
func htmlToText(body []byte) string {
	tokenizer := html.NewTokenizer(strings.NewReader(string(body)))
	var (
		parts []string
		skip  int
	)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(parts, "\n")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				if skip > 0 {
					skip--
				}
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
				parts = append(parts, text)
			}
		}
	}
}
