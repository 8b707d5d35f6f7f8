package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

func info(elapsed time.Duration) domain.TimerInfo {
	i := domain.IdleTimerInfo()
	i.State = domain.TimerRunning
	i.Elapsed = elapsed
	return i
}

func TestStateFeed_ReplaysLastValue(t *testing.T) {
	feed := NewStateFeed(domain.IdleTimerInfo())
	feed.Publish(info(time.Second))

	ch, cancel := feed.Subscribe()
	defer cancel()

	got := <-ch
	assert.Equal(t, time.Second, got.Elapsed)
}

func TestStateFeed_SlowSubscriberGetsNewest(t *testing.T) {
	feed := NewStateFeed(domain.IdleTimerInfo())
	ch, cancel := feed.Subscribe()
	defer cancel()
	<-ch

	for i := 1; i <= 5; i++ {
		feed.Publish(info(time.Duration(i) * time.Second))
	}

	assert.Equal(t, 5*time.Second, (<-ch).Elapsed)
	assert.Empty(t, ch)
}

func TestStateFeed_OrderedDelivery(t *testing.T) {
	feed := NewStateFeed(domain.IdleTimerInfo())
	ch, cancel := feed.Subscribe()
	defer cancel()
	<-ch

	var seen []time.Duration
	for i := 1; i <= 3; i++ {
		feed.Publish(info(time.Duration(i) * time.Second))
		seen = append(seen, (<-ch).Elapsed)
	}

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, seen)
}

func TestStateFeed_Update(t *testing.T) {
	feed := NewStateFeed(info(time.Minute))

	feed.Update(func(i domain.TimerInfo) domain.TimerInfo {
		i.Sync = domain.SyncFailed
		return i
	})

	got := feed.Current()
	assert.Equal(t, domain.SyncFailed, got.Sync)
	assert.Equal(t, time.Minute, got.Elapsed)
}

func TestStateFeed_CancelAndClose(t *testing.T) {
	feed := NewStateFeed(domain.IdleTimerInfo())
	a, cancelA := feed.Subscribe()
	b, _ := feed.Subscribe()
	<-a
	<-b

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)

	feed.Close()
	_, open = <-b
	assert.False(t, open)

	late, _ := feed.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestMotivationProvider(t *testing.T) {
	p := NewMotivationProvider()

	first := p.MessageFor(domain.SessionKindFocus)
	second := p.MessageFor(domain.SessionKindFocus)
	brk := p.MessageFor(domain.SessionKindBreak)

	assert.NotEqual(t, first, second)
	assert.Equal(t, breakMessages[0], brk)
	for i := 0; i < len(focusMessages)-2; i++ {
		p.MessageFor(domain.SessionKindFocus)
	}
	assert.Equal(t, first, p.MessageFor(domain.SessionKindFocus), "messages rotate")
}
