package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/events"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/testutil"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/queue"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/util"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.TestSetup) {
	t.Helper()
	setup := testutil.NewTestContext(t)
	t.Cleanup(setup.Cleanup)

	logger := util.DiscardLogger()
	return NewHandler(logger, badges.NewService(setup.DB, logger), events.NewService(setup.DB, logger)), setup
}

func TestNewBadgeEvaluateTask(t *testing.T) {
	id := uuid.New()
	task, err := NewBadgeEvaluateTask(BadgeEvaluatePayload{ProfileID: id, Trigger: badges.TriggerHoursLogged})
	require.NoError(t, err)
	assert.Equal(t, TypeBadgeEvaluate, task.Type())

	var payload BadgeEvaluatePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, id, payload.ProfileID)
	assert.Equal(t, badges.TriggerHoursLogged, payload.Trigger)
}

func TestHandleBadgeEvaluate_InvalidPayload(t *testing.T) {
	handler, _ := newTestHandler(t)

	err := handler.HandleBadgeEvaluate(context.Background(), asynq.NewTask(TypeBadgeEvaluate, []byte("invalid json")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal payload")
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleBadgeEvaluate_UnknownTrigger(t *testing.T) {
	handler, setup := newTestHandler(t)

	data, _ := json.Marshal(BadgeEvaluatePayload{ProfileID: setup.VolunteerProfileID(), Trigger: "DANCED"})
	err := handler.HandleBadgeEvaluate(context.Background(), asynq.NewTask(TypeBadgeEvaluate, data))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleBadgeEvaluate_Awards(t *testing.T) {
	handler, setup := newTestHandler(t)
	vol := setup.VolunteerProfileID()

	require.NoError(t, setup.DB.Model(&models.VolunteerDetails{}).
		Where("profile_id = ?", vol).
		Updates(map[string]interface{}{"total_volunteer_hours": 12, "events_attended": 1}).Error)

	task, err := NewBadgeEvaluateTask(BadgeEvaluatePayload{ProfileID: vol, Trigger: badges.TriggerEventAttended})
	require.NoError(t, err)
	require.NoError(t, handler.HandleBadgeEvaluate(testutil.TestContext(t), task))

	var earned []models.ProfileBadge
	require.NoError(t, setup.DB.Where("profile_id = ? AND earned_at IS NOT NULL", vol).Order("badge_type").Find(&earned).Error)
	require.Len(t, earned, 2)
	assert.Equal(t, "FIRST_EVENT", earned[0].BadgeType)
	assert.Equal(t, "HOURS_10", earned[1].BadgeType)
}

func TestHandleEventsCloseout(t *testing.T) {
	handler, setup := newTestHandler(t)
	org := setup.OrganizationProfileID()

	past := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)
	ended := testutil.CreateTestEvent(t, setup.DB, org, func(e *models.Event) {
		e.StartsAt = past
		e.EndsAt = past.Add(4 * time.Hour)
	})
	upcoming := testutil.CreateTestEvent(t, setup.DB, org)

	require.NoError(t, handler.HandleEventsCloseout(testutil.TestContext(t), NewEventsCloseoutTask()))

	var got models.Event
	require.NoError(t, setup.DB.First(&got, "id = ?", ended.ID).Error)
	assert.Equal(t, models.EventCompleted, got.Status)
	require.NoError(t, setup.DB.First(&got, "id = ?", upcoming.ID).Error)
	assert.Equal(t, models.EventPublished, got.Status)

	var details models.OrganizationDetails
	require.NoError(t, setup.DB.First(&details, "profile_id = ?", org).Error)
	assert.Equal(t, 1, details.EventsHosted)
}

type fakeEnqueuer struct {
	err   error
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "1", Queue: queue.QueueBadges, Type: task.Type()}, nil
}

type countingDispatcher struct{ calls int }

func (c *countingDispatcher) Dispatch(context.Context, uuid.UUID, badges.Trigger) error {
	c.calls++
	return nil
}

func TestQueueDispatcher_Enqueues(t *testing.T) {
	client := &fakeEnqueuer{}
	fallback := &countingDispatcher{}
	d := NewQueueDispatcher(client, fallback, util.DiscardLogger())

	require.NoError(t, d.Dispatch(context.Background(), uuid.New(), badges.TriggerSkillAdded))
	require.Len(t, client.tasks, 1)
	assert.Equal(t, TypeBadgeEvaluate, client.tasks[0].Type())
	assert.Zero(t, fallback.calls)
}

func TestQueueDispatcher_FallsBackInline(t *testing.T) {
	client := &fakeEnqueuer{err: errors.New("redis: connection refused")}
	fallback := &countingDispatcher{}
	d := NewQueueDispatcher(client, fallback, util.DiscardLogger())

	require.NoError(t, d.Dispatch(context.Background(), uuid.New(), badges.TriggerSkillAdded))
	assert.Equal(t, 1, fallback.calls)

	d = NewQueueDispatcher(client, nil, util.DiscardLogger())
	assert.Error(t, d.Dispatch(context.Background(), uuid.New(), badges.TriggerSkillAdded))
}

type fakeRegistrar struct {
	specs []string
	types []string
}

func (f *fakeRegistrar) Register(spec string, task *asynq.Task, _ ...asynq.Option) (string, error) {
	f.specs = append(f.specs, spec)
	f.types = append(f.types, task.Type())
	return "entry-1", nil
}

func TestRegisterSchedule(t *testing.T) {
	r := &fakeRegistrar{}
	id, err := RegisterSchedule(r, "*/15 * * * *")
	require.NoError(t, err)
	assert.Equal(t, "entry-1", id)
	assert.Equal(t, []string{"*/15 * * * *"}, r.specs)
	assert.Equal(t, []string{TypeEventsCloseout}, r.types)

	_, err = RegisterSchedule(r, "every now and then")
	assert.Error(t, err)
	assert.Len(t, r.specs, 1)
}
