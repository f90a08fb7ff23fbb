package apierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindRejected, KindOf(Rejected("Ya existe una caja abierta")))
	assert.Equal(t, KindSessionInvalid, KindOf(SessionInvalid("Sesión inválida o expirada")))
	assert.Equal(t, KindValidation, KindOf(Validation("amount", map[string]string{"amount": "gt"})))

	// Anything outside the taxonomy counts as transport.
	assert.Equal(t, KindTransport, KindOf(errors.New("dial tcp: refused")))
	assert.Equal(t, KindTransport, KindOf(nil))
}

func TestClassifyDetectsSessionMessages(t *testing.T) {
	cases := []string{
		"Sesión inválida o expirada",
		"sesion invalida",
		"SESIÓN EXPIRADA: vuelva a ingresar",
		"Invalid session token",
	}
	for _, msg := range cases {
		err := Classify(msg)
		assert.Equal(t, KindSessionInvalid, err.Kind, msg)
		assert.Equal(t, msg, err.Detail, "message travels verbatim")
	}
}

func TestClassifyDefaultsToRejected(t *testing.T) {
	err := Classify("Ya existe una caja abierta")
	assert.Equal(t, KindRejected, err.Kind)
	assert.Equal(t, "Ya existe una caja abierta", err.Error())
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("refreshing shift: %w", Rejected("Caja no encontrada o ya cerrada"))
	assert.True(t, IsRejected(wrapped))
	assert.False(t, IsSessionInvalid(wrapped))
}
