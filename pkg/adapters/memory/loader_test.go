package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/pushdown/internal/testutils"
	"github.com/aretw0/pushdown/pkg/adapters/memory"
	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/aretw0/pushdown/pkg/ports"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	parens := testutils.BalancedParens()
	zero := testutils.ZeroNOneN(domain.AcceptByEmptyStack)

	loader, err := memory.NewLoader(parens, zero)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	ports.RunDefinitionLoaderContract(t, loader, map[string]domain.Definition{
		parens.Name: parens,
		zero.Name:   zero,
	})
}

func TestInMemoryLoader_Isolation(t *testing.T) {
	loader, err := memory.NewLoader(testutils.BalancedParens())
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	def, _ := loader.Get(context.Background(), "parens")
	def.Transitions.Set("q0", ")", "Z", domain.Move{To: "q0"})

	again, _ := loader.Get(context.Background(), "parens")
	if _, ok := again.Transitions["q0"][")"]; ok {
		t.Error("mutating a returned definition must not change the loader")
	}

	if _, err := memory.NewLoader(domain.Definition{}); err == nil {
		t.Error("expected error for unnamed definition")
	}
}
