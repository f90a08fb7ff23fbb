// Package bridge implements the uniform named-call contract against the POS
// backend: Call(name, args) -> JSON. All transport detail stays here — callers
// see typed results and the apierror taxonomy, nothing else.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"restopos/internal/apierror"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Caller is the abstract bridge every API layer depends on.
type Caller interface {
	// Call invokes the named backend operation. args is marshalled as the
	// JSON body; on success the response body is unmarshalled into out
	// (out may be nil when the caller only cares about the ack).
	Call(ctx context.Context, name string, args interface{}, out interface{}) error
}

// errBody is the error envelope the backend wraps rejections in.
type errBody struct {
	Detail string `json:"detail"`
}

// HTTPBridge speaks the contract over HTTP: POST {base}/invoke/{name}.
type HTTPBridge struct {
	base   string
	client *http.Client
}

func NewHTTP(baseURL string, timeout time.Duration) *HTTPBridge {
	return &HTTPBridge{
		base:   baseURL,
		client: &http.Client{Timeout: timeout},
	}
}

func (b *HTTPBridge) Call(ctx context.Context, name string, args interface{}, out interface{}) error {
	requestID := uuid.NewString()
	start := time.Now()

	body, err := json.Marshal(args)
	if err != nil {
		return apierror.Transport(fmt.Sprintf("no se pudo codificar la llamada %s: %v", name, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base+"/invoke/"+name, bytes.NewReader(body))
	if err != nil {
		return apierror.Transport(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := b.client.Do(req)
	if err != nil {
		log.Error().Str("request_id", requestID).Str("call", name).Err(err).Msg("bridge transport error")
		return apierror.Transport("Error de conexión con el servidor")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierror.Transport("Error leyendo la respuesta del servidor")
	}

	log.Debug().
		Str("request_id", requestID).
		Str("call", name).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("bridge call")

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apierror.Transport(fmt.Sprintf("respuesta inválida de %s: %v", name, err))
	}
	return nil
}

// classifyStatus folds an HTTP failure into the error taxonomy. The detail
// text is whatever the backend sent, verbatim.
func classifyStatus(status int, raw []byte) *apierror.APIError {
	var eb errBody
	detail := ""
	if json.Unmarshal(raw, &eb) == nil && eb.Detail != "" {
		detail = eb.Detail
	} else if len(raw) > 0 {
		detail = string(raw)
	}

	switch {
	case status == http.StatusUnauthorized:
		if detail == "" {
			detail = "Sesión inválida o expirada"
		}
		return apierror.SessionInvalid(detail)
	case status >= 400 && status < 500:
		if detail == "" {
			detail = fmt.Sprintf("Solicitud rechazada (%d)", status)
		}
		return apierror.Classify(detail)
	default:
		return apierror.Transport("Error interno del servidor")
	}
}
