package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"videoserver/internal/domain"
	"videoserver/internal/sqlinline"
)

func TestUpdateMeta_WritesValuesVerbatim(t *testing.T) {
	exec := &fakeExecutor{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repo := NewProjectRepository(exec, NewTaskRepository(exec))

	if err := repo.UpdateMeta(context.Background(), "p1", "user-1", "Launch teaser", ""); err != nil {
		t.Fatalf("UpdateMeta: %v", err)
	}
	if exec.lastQuery != sqlinline.QUpdateProjectMeta {
		t.Fatalf("unexpected query: %s", exec.lastQuery)
	}
	if len(exec.lastArgs) != 4 || exec.lastArgs[3] != "" {
		t.Fatalf("empty description not passed through: %#v", exec.lastArgs)
	}
	// The statement must not map '' back to the stored description.
	if strings.Contains(sqlinline.QUpdateProjectMeta, "NULLIF") {
		t.Fatalf("update statement second-guesses its inputs:\n%s", sqlinline.QUpdateProjectMeta)
	}
}

func TestUpdateMeta_UnknownProject(t *testing.T) {
	exec := &fakeExecutor{execTag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewProjectRepository(exec, NewTaskRepository(exec))

	err := repo.UpdateMeta(context.Background(), "missing", "user-1", "Name", "desc")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
