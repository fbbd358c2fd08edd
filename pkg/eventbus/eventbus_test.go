package eventbus

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/pdnportal/portal/modules/joborder/domain/aggregates/joborder"
)

func quietLogger(out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(logrus.WarnLevel)
	return log
}

func TestEventPublisher_DeliversToMatchingHandler(t *testing.T) {
	bus := NewEventPublisher(quietLogger(io.Discard))

	var received *joborder.SubmittedEvent
	bus.Subscribe(func(e *joborder.SubmittedEvent) {
		received = e
	})

	request := &joborder.JobRequest{ID: 7, ControlNumber: "G-0007"}
	bus.Publish(&joborder.SubmittedEvent{Request: request})

	require.NotNil(t, received)
	require.Equal(t, "G-0007", received.Request.ControlNumber)
}

func TestEventPublisher_SkipsHandlersOfOtherEvents(t *testing.T) {
	out := &bytes.Buffer{}
	bus := NewEventPublisher(quietLogger(out))

	bus.Subscribe(func(e *joborder.AdvancedEvent) {
		t.Error("advance handler must not receive a rejection")
	})

	bus.Publish(&joborder.RejectedEvent{Request: &joborder.JobRequest{ID: 7}})

	require.Contains(t, out.String(), "no subscriber")
	require.Contains(t, out.String(), "RejectedEvent")
}

func TestEventPublisher_FansOutToEverySubscriber(t *testing.T) {
	bus := NewEventPublisher(quietLogger(io.Discard))

	calls := 0
	bus.Subscribe(func(e *joborder.ClosedEvent) { calls++ })
	bus.Subscribe(func(e *joborder.ClosedEvent) { calls++ })
	bus.Subscribe(func(e *joborder.CancelledEvent) { calls += 100 })

	bus.Publish(&joborder.ClosedEvent{Request: &joborder.JobRequest{ID: 1}})

	require.Equal(t, 2, calls)
	require.Equal(t, 3, bus.SubscribersCount())
}

func TestEventPublisher_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	out := &bytes.Buffer{}
	bus := NewEventPublisher(quietLogger(out))

	delivered := false
	bus.Subscribe(func(e *joborder.CompletedEvent) {
		panic("notification sink down")
	})
	bus.Subscribe(func(e *joborder.CompletedEvent) {
		delivered = true
	})

	require.NotPanics(t, func() {
		bus.Publish(&joborder.CompletedEvent{Request: &joborder.JobRequest{ID: 3}})
	})
	require.True(t, delivered)
	require.Contains(t, out.String(), "panicked")
}

func TestEventPublisher_SubscribeRejectsNonFunction(t *testing.T) {
	bus := NewEventPublisher(quietLogger(io.Discard))
	require.Panics(t, func() {
		bus.Subscribe("not a handler")
	})
}
