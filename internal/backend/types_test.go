package backend

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitdesk/console/internal/shared"
)

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	var got []struct {
		ID ID `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"op-1"},{"id":42},{"id":null}]`), &got))
	require.Len(t, got, 3)
	assert.Equal(t, ID("op-1"), got[0].ID)
	assert.Equal(t, "42", got[1].ID.String())
	assert.Empty(t, got[2].ID)

	var bad ID
	assert.Error(t, json.Unmarshal([]byte(`{"nested":true}`), &bad))
}

func TestPublicErrorMessagePassesThrough(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &shared.PublicError{Message: "Coupon code already exists"})
	assert.Equal(t, "Coupon code already exists", Message(err))
}
