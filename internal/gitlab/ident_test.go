package gitlab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierRoundTrip(t *testing.T) {
	token := EncodeID(4217, "group/subgroup/app!42")

	ref, err := DecodeID(token)
	require.NoError(t, err)
	assert.Equal(t, 4217, ref.NumericID)
	assert.Equal(t, "group/subgroup/app", ref.ProjectPath)
	assert.Equal(t, 42, ref.IID)
	assert.Equal(t, "group/subgroup/app!42", ref.FullReference())
}

func TestDecodeIDRejectsMalformedTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"not json", "group/app!42"},
		{"missing bang", `{"id":1,"full":"group/app42"}`},
		{"empty project", `{"id":1,"full":"!42"}`},
		{"non numeric iid", `{"id":1,"full":"group/app!abc"}`},
		{"empty token", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeID(tt.token)
			assert.Error(t, err)
		})
	}
}
