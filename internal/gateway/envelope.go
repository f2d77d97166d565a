package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// envelope is the {success, data, message} wrapper every API endpoint uses.
type envelope struct {
	Success              bool            `json:"success"`
	Data                 json.RawMessage `json:"data"`
	Message              string          `json:"message"`
	RequiresVerification bool            `json:"requiresVerification"`
}

// Schemas for the envelope. A successful response must carry "success";
// a failed one only needs to be an object.
const (
	envelopeSchema = `{
		"type": "object",
		"required": ["success"],
		"properties": {
			"success": {"type": "boolean"},
			"message": {"type": "string"},
			"requiresVerification": {"type": "boolean"}
		}
	}`
	errorSchema = `{
		"type": "object",
		"properties": {
			"success": {"type": "boolean"},
			"message": {"type": "string"},
			"requiresVerification": {"type": "boolean"}
		}
	}`
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

func compiledSchema(name, def string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(def), &parsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}

// Decode maps the response to out (the envelope's data) or to a typed error.
// out may be nil when only success matters.
func (r *Response) Decode(out any) error {
	_, err := r.decode(out)
	return err
}

func (r *Response) decode(out any) (*envelope, error) {
	if r.Status == http.StatusUnauthorized && r.authenticated {
		return nil, ErrAuthExpired
	}

	if r.Status >= 400 {
		env := r.lenientEnvelope()
		se := &ServerError{Status: r.Status, Message: env.Message}
		if se.Message == "" {
			se.Message = http.StatusText(r.Status)
		}
		if env.RequiresVerification {
			se.Err = ErrVerificationRequired
		}
		return &env, se
	}

	env, err := r.strictEnvelope()
	if err != nil {
		return nil, &ServerError{Status: r.Status, Message: "unexpected response from server", Err: err}
	}
	if !env.Success {
		se := &ServerError{Status: r.Status, Message: env.Message}
		if se.Message == "" {
			se.Message = "Request failed"
		}
		if env.RequiresVerification {
			se.Err = ErrVerificationRequired
		}
		return env, se
	}

	if out != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, &ServerError{
				Status:  r.Status,
				Message: "unexpected response from server",
				Err:     fmt.Errorf("%w: data: %v", ErrMalformedResponse, err),
			}
		}
	}
	return env, nil
}

func (r *Response) strictEnvelope() (*envelope, error) {
	var parsed any
	if err := json.Unmarshal(r.Body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedResponse, err)
	}

	compiled, err := compiledSchema("envelope", envelopeSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var env envelope
	if err := json.Unmarshal(r.Body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &env, nil
}

// lenientEnvelope extracts whatever it can from an error body.
func (r *Response) lenientEnvelope() envelope {
	var env envelope
	var parsed any
	if err := json.Unmarshal(r.Body, &parsed); err != nil {
		return env
	}
	compiled, err := compiledSchema("error", errorSchema)
	if err != nil || compiled.Validate(parsed) != nil {
		return env
	}
	_ = json.Unmarshal(r.Body, &env)
	return env
}
