package repo

import (
	"testing"
)

func newTestSQLiteRepo(t *testing.T) *SQLiteTodoRepo {
	t.Helper()

	r, err := OpenSQLiteTodoRepo(":memory:")
	if err != nil {
		t.Fatalf("opening sqlite repo: %v", err)
	}
	t.Cleanup(func() {
		if err := r.Close(); err != nil {
			t.Errorf("closing sqlite repo: %v", err)
		}
	})
	return r
}

func TestSQLiteTodoRepo(t *testing.T) {
	runTodoRepoContract(t, newTestSQLiteRepo(t))
}
