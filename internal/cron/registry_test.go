package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrder(t *testing.T) {
	fines := &stubJob{name: "overdue-fines"}
	reminders := &stubJob{name: "borrow-reminders"}
	registry := NewRegistry(fines, nil, reminders)

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Same(t, fines, jobs[0])
	assert.Same(t, reminders, jobs[1])
	assert.Equal(t, []string{"overdue-fines", "borrow-reminders"}, registry.Names())

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0], "internal slice leaked")
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "overdue-fines"})
	assert.Error(t, registry.Register(&stubJob{name: "overdue-fines"}))
	assert.Error(t, registry.Register(nil))
	assert.NoError(t, registry.Register(&stubJob{name: "borrow-reminders"}))
	assert.Len(t, registry.Jobs(), 2)

	deduped := NewRegistry(&stubJob{name: "a"}, &stubJob{name: "a"})
	assert.Len(t, deduped.Jobs(), 1)
}
