package permission

import (
	"errors"
	"sync"
	"testing"
)

func TestResolverServesActiveTable(t *testing.T) {
	table, err := NewTable(defaultRoles())
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	r := NewResolver(table)

	if !r.Check("editor", "doc.read") {
		t.Error("resolver should delegate to the active table")
	}
	if !r.CheckAll("manager", []string{"doc.read", "doc.publish"}) {
		t.Error("CheckAll should delegate to the active table")
	}
	if r.Table() != table {
		t.Error("Table() should return the installed table")
	}
}

func TestResolverSwap(t *testing.T) {
	table, err := NewTable(defaultRoles())
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	r := NewResolver(table)

	if err := r.Swap([]Role{
		{Name: "viewer", Permissions: []string{"doc.read", "doc.comment"}},
	}); err != nil {
		t.Fatalf("Swap failed: %v", err)
	}

	if !r.Check("viewer", "doc.comment") {
		t.Error("swap should install the new table")
	}
	if r.Check("editor", "doc.write") {
		t.Error("roles absent from the new table must stop resolving")
	}
}

func TestResolverSwapKeepsOldTableOnError(t *testing.T) {
	table, err := NewTable(defaultRoles())
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	r := NewResolver(table)

	swapErr := r.Swap([]Role{
		{Name: "a", Inherits: "b"},
		{Name: "b", Inherits: "a"},
	})
	if !errors.Is(swapErr, ErrCycle) {
		t.Fatalf("expected ErrCycle from Swap, got %v", swapErr)
	}

	if !r.Check("editor", "doc.write") {
		t.Error("failed swap must leave the previous table serving")
	}
	if r.Table() != table {
		t.Error("failed swap must not move the table pointer")
	}
}

func TestResolverConcurrentCheckAndSwap(t *testing.T) {
	table, err := NewTable(defaultRoles())
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	r := NewResolver(table)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				// viewer keeps doc.read across every installed table,
				// so concurrent readers must always see it granted.
				if !r.Check("viewer", "doc.read") {
					t.Error("viewer lost doc.read during swap")
					return
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		roles := defaultRoles()
		if i%2 == 0 {
			roles = append(roles, Role{Name: "auditor", Permissions: []string{"audit.read"}, Inherits: "viewer"})
		}
		if err := r.Swap(roles); err != nil {
			t.Fatalf("Swap failed: %v", err)
		}
	}
	close(stop)
	wg.Wait()
}
