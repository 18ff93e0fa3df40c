package main

import (
	"testing"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/system/poll"
	"github.com/dalemusser/enrolldesk/internal/domain/models"
)

func payment(id, status string) models.Payment {
	return models.Payment{ID: models.ID(id), Status: status}
}

func TestPrintChanges_TracksStatuses(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := printChanges(nil, poll.Snapshot[[]models.Payment]{
		Value: []models.Payment{payment("a", "pending"), payment("b", "")},
		At:    at,
	})
	if first["a"] != models.PaymentPending || first["b"] != models.PaymentPending {
		t.Fatalf("first = %v", first)
	}

	second := printChanges(first, poll.Snapshot[[]models.Payment]{
		Value: []models.Payment{payment("a", "completed"), payment("b", "pending"), payment("c", "pending")},
		At:    at.Add(20 * time.Second),
	})
	want := map[string]string{"a": "completed", "b": "pending", "c": "pending"}
	for id, st := range want {
		if second[id] != st {
			t.Errorf("status[%s] = %q, want %q", id, second[id], st)
		}
	}
	if len(second) != len(want) {
		t.Errorf("len = %d, want %d", len(second), len(want))
	}
}
