package bankaccount

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/avro"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/serde"
)

func TestBindings(t *testing.T) {
	// Act
	bindings, err := Bindings()

	// Assert
	require.NoError(t, err)
	require.Len(t, bindings, 3)

	names := []string{bindings[0].Name, bindings[1].Name, bindings[2].Name}
	assert.Contains(t, names, "eventsourcing.bankaccount.BankAccountCreated")
	assert.Contains(t, names, "eventsourcing.bankaccount.MoneyDeposited")
	assert.Contains(t, names, "eventsourcing.bankaccount.MoneyWithdrawn")
}

func TestAccountEvents_EnvelopeRoundtrip(t *testing.T) {
	// Arrange
	bindings, err := Bindings()
	require.NoError(t, err)
	serializer, err := avro.New(avro.WithBindings(bindings...))
	require.NoError(t, err)

	testCases := []struct {
		name  string
		event any
	}{
		{
			name:  "created",
			event: BankAccountCreated{AccountID: "acc-1", InitialBalance: 500},
		},
		{
			name:  "deposited",
			event: MoneyDeposited{AccountID: "acc-1", Amount: 120},
		},
		{
			name:  "withdrawn",
			event: MoneyWithdrawn{AccountID: "acc-1", Amount: 80},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			obj, err := serializer.Serialize(context.Background(), tc.event, serde.Envelope)
			require.NoError(t, err)

			out, err := serializer.Deserialize(context.Background(), obj)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tc.event, out)
		})
	}
}
