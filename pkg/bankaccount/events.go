// Package bankaccount is a small event-sourced sample domain used to
// exercise the serialization engine end to end: account events with their
// Avro schemas and type bindings, plus a current-balance projection.
package bankaccount

import (
	"fmt"

	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/typemap"
)

// Avro schemas for the account events.
const (
	BankAccountCreatedSchema = `{
	"type": "record",
	"name": "BankAccountCreated",
	"namespace": "eventsourcing.bankaccount",
	"fields": [
		{"name": "accountId", "type": "string"},
		{"name": "initialBalance", "type": "long"}
	]
}`

	MoneyDepositedSchema = `{
	"type": "record",
	"name": "MoneyDeposited",
	"namespace": "eventsourcing.bankaccount",
	"fields": [
		{"name": "accountId", "type": "string"},
		{"name": "amount", "type": "long"}
	]
}`

	MoneyWithdrawnSchema = `{
	"type": "record",
	"name": "MoneyWithdrawn",
	"namespace": "eventsourcing.bankaccount",
	"fields": [
		{"name": "accountId", "type": "string"},
		{"name": "amount", "type": "long"}
	]
}`
)

type BankAccountCreated struct {
	AccountID      string `avro:"accountId"`
	InitialBalance int64  `avro:"initialBalance"`
}

type MoneyDeposited struct {
	AccountID string `avro:"accountId"`
	Amount    int64  `avro:"amount"`
}

type MoneyWithdrawn struct {
	AccountID string `avro:"accountId"`
	Amount    int64  `avro:"amount"`
}

// Bindings returns the typemap bindings for every account event.
func Bindings() ([]typemap.Binding, error) {
	specs := []struct {
		schema  string
		factory func() any
	}{
		{BankAccountCreatedSchema, func() any { return &BankAccountCreated{} }},
		{MoneyDepositedSchema, func() any { return &MoneyDeposited{} }},
		{MoneyWithdrawnSchema, func() any { return &MoneyWithdrawn{} }},
	}

	bindings := make([]typemap.Binding, 0, len(specs))
	for _, spec := range specs {
		binding, err := typemap.NewBinding(spec.schema, spec.factory)
		if err != nil {
			return nil, fmt.Errorf("failed to build account event binding: %w", err)
		}
		bindings = append(bindings, binding)
	}
	return bindings, nil
}
