package bankaccount

import (
	"go.uber.org/fx"

	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/typemap"
)

// NewBankAccountModule contributes the account event bindings to the shared
// type registry and provides the balance projection.
func NewBankAccountModule() fx.Option {
	return fx.Module("bankaccount",
		fx.Provide(NewCurrentBalanceProjection),
		fx.Invoke(registerBindings),
	)
}

func registerBindings(registry *typemap.Registry) error {
	bindings, err := Bindings()
	if err != nil {
		return err
	}
	for _, binding := range bindings {
		if err := registry.Register(binding); err != nil {
			return err
		}
	}
	return nil
}
