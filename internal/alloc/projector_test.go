package alloc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func approved(seq int64, t EventType, machineID string, at time.Time) Event {
	return Event{
		ID:        string(t) + "-" + at.Format("0102T1504"),
		Seq:       seq,
		Type:      t,
		MachineID: machineID,
		EventDate: at,
		Status:    StatusApproved,
	}
}

func TestProjectFullLifecycle(t *testing.T) {
	due := base.Add(30 * 24 * time.Hour)
	start := approved(1, EventStartAllocation, "m1", base)
	start.SiteID = "siteA"
	start.SiteTitle = "Obra A"
	start.EndDate = &due

	dtStart := approved(2, EventDowntimeStart, "m1", base.Add(24*time.Hour))
	dtStart.DowntimeReason = "manutenção preventiva"

	dtEnd := approved(3, EventDowntimeEnd, "m1", base.Add(48*time.Hour))
	dtEnd.CorrectsEventID = dtStart.ID

	end := approved(4, EventEndAllocation, "m1", base.Add(72*time.Hour))

	t.Run("allocated with open downtime", func(t *testing.T) {
		p := Project("m1", []Event{start, dtStart})
		require.NotNil(t, p.ActiveAllocation)
		assert.Equal(t, "siteA", p.ActiveAllocation.SiteID)
		assert.Equal(t, "Obra A", p.ActiveAllocation.SiteTitle)
		assert.True(t, p.ActiveAllocation.InDowntime)
		require.NotNil(t, p.ActiveDowntime)
		assert.Equal(t, dtStart.ID, p.ActiveDowntime.EventID)
		assert.Equal(t, "manutenção preventiva", p.ActiveDowntime.Reason)
		assert.Empty(t, p.Warnings)
	})

	t.Run("between downtime end and allocation end", func(t *testing.T) {
		p := Project("m1", []Event{start, dtStart, dtEnd})
		require.NotNil(t, p.ActiveAllocation)
		assert.Equal(t, "siteA", p.ActiveAllocation.SiteID)
		assert.False(t, p.ActiveAllocation.InDowntime)
		assert.Nil(t, p.ActiveDowntime)
	})

	t.Run("after allocation end", func(t *testing.T) {
		p := Project("m1", []Event{start, dtStart, dtEnd, end})
		assert.Nil(t, p.ActiveAllocation)
		assert.Nil(t, p.ActiveDowntime)
	})

	t.Run("idempotent over the same history", func(t *testing.T) {
		history := []Event{start, dtStart, dtEnd, end}
		assert.Equal(t, Project("m1", history), Project("m1", history))
	})
}

func TestProjectIgnoresOtherMachinesAndUnapproved(t *testing.T) {
	other := approved(1, EventStartAllocation, "m2", base)
	pending := approved(2, EventStartAllocation, "m1", base)
	pending.Status = StatusPending
	rejected := approved(3, EventStartAllocation, "m1", base.Add(time.Hour))
	rejected.Status = StatusRejected

	p := Project("m1", []Event{other, pending, rejected})
	assert.Nil(t, p.ActiveAllocation)
	assert.Nil(t, p.ActiveDowntime)
}

func TestProjectTransportSemantics(t *testing.T) {
	start := approved(1, EventStartAllocation, "m1", base)
	start.SiteID = "siteA"
	depart := approved(2, EventTransportStart, "m1", base.Add(24*time.Hour))
	arrive := approved(3, EventTransportArrival, "m1", base.Add(26*time.Hour))
	arrive.SiteID = "siteB"
	arrive.SiteTitle = "Obra B"

	t.Run("transport_start closes the allocation", func(t *testing.T) {
		p := Project("m1", []Event{start, depart})
		assert.Nil(t, p.ActiveAllocation)
	})

	t.Run("transport_arrival opens at the new site", func(t *testing.T) {
		p := Project("m1", []Event{start, depart, arrive})
		require.NotNil(t, p.ActiveAllocation)
		assert.Equal(t, "siteB", p.ActiveAllocation.SiteID)
		assert.Equal(t, arrive.ID, p.ActiveAllocation.EventID)
	})
}

func TestProjectTieBreakOnEqualEventDate(t *testing.T) {
	// Same event_date: the most recently created event (higher seq) wins.
	end := approved(5, EventEndAllocation, "m1", base)
	start := approved(6, EventStartAllocation, "m1", base)
	start.SiteID = "siteA"

	p := Project("m1", []Event{start, end})
	require.NotNil(t, p.ActiveAllocation, "higher-seq start_allocation should win the tie")
	assert.Equal(t, start.ID, p.ActiveAllocation.EventID)

	// Reversed creation order: the end_allocation is newer and closes it.
	end.Seq = 7
	p = Project("m1", []Event{start, end})
	assert.Nil(t, p.ActiveAllocation)
}

func TestProjectDanglingDowntimeEnd(t *testing.T) {
	start := approved(1, EventStartAllocation, "m1", base)
	start.SiteID = "siteA"
	dtStart := approved(2, EventDowntimeStart, "m1", base.Add(time.Hour))
	dtStart.DowntimeReason = "quebra"
	dangling := approved(3, EventDowntimeEnd, "m1", base.Add(2*time.Hour))
	dangling.CorrectsEventID = "no-such-event"

	p := Project("m1", []Event{start, dtStart, dangling})
	require.NotNil(t, p.ActiveDowntime, "dangling downtime_end must not close anything")
	assert.Equal(t, dtStart.ID, p.ActiveDowntime.EventID)
	require.Len(t, p.Warnings, 1)
	assert.Equal(t, dangling.ID, p.Warnings[0].EventID)
}

func TestProjectDoubleDowntimeStart(t *testing.T) {
	start := approved(1, EventStartAllocation, "m1", base)
	start.SiteID = "siteA"
	first := approved(2, EventDowntimeStart, "m1", base.Add(time.Hour))
	first.DowntimeReason = "quebra"
	second := approved(3, EventDowntimeStart, "m1", base.Add(2*time.Hour))
	second.DowntimeReason = "falta de operador"

	p := Project("m1", []Event{start, first, second})
	require.NotNil(t, p.ActiveDowntime)
	assert.Equal(t, second.ID, p.ActiveDowntime.EventID, "most recent open downtime wins")
	require.Len(t, p.Warnings, 1)
	assert.Equal(t, first.ID, p.Warnings[0].EventID)
}

func TestProjectReattachSupersedesDowntime(t *testing.T) {
	// Reattaching an extension (or relocating a machine via transport_arrival)
	// replaces its open allocation; a downtime opened under the superseded
	// allocation does not carry over.
	attachA := approved(1, EventExtensionAttach, "fork1", base)
	attachA.SiteID = "siteA"
	dtStart := approved(2, EventDowntimeStart, "fork1", base.Add(time.Hour))
	dtStart.DowntimeReason = "dente quebrado"
	attachB := approved(3, EventExtensionAttach, "fork1", base.Add(2*time.Hour))
	attachB.SiteID = "siteB"

	p := Project("fork1", []Event{attachA, dtStart, attachB})
	require.NotNil(t, p.ActiveAllocation)
	assert.Equal(t, attachB.ID, p.ActiveAllocation.EventID)
	assert.Equal(t, "siteB", p.ActiveAllocation.SiteID)
	assert.False(t, p.ActiveAllocation.InDowntime)
	assert.Nil(t, p.ActiveDowntime)
	assert.Empty(t, p.Warnings)
}

func TestProjectDowntimeWithoutAllocation(t *testing.T) {
	// A lone downtime_start with no allocation is an integrity problem, not an
	// active downtime: downtime can only exist inside an allocation.
	dtStart := approved(1, EventDowntimeStart, "m1", base)
	dtStart.DowntimeReason = "quebra"

	p := Project("m1", []Event{dtStart})
	assert.Nil(t, p.ActiveAllocation)
	assert.Nil(t, p.ActiveDowntime)
	require.Len(t, p.Warnings, 1)
	assert.Contains(t, p.Warnings[0].Message, "without an active allocation")
}

func TestProjectDowntimeImpliesAllocation(t *testing.T) {
	histories := [][]Event{
		{},
		{approved(1, EventStartAllocation, "m1", base)},
		{approved(1, EventDowntimeStart, "m1", base)},
		{
			approved(1, EventStartAllocation, "m1", base),
			approved(2, EventDowntimeStart, "m1", base.Add(time.Hour)),
		},
		{
			approved(1, EventStartAllocation, "m1", base),
			approved(2, EventDowntimeStart, "m1", base.Add(time.Hour)),
			approved(3, EventEndAllocation, "m1", base.Add(2*time.Hour)),
		},
	}
	for _, h := range histories {
		p := Project("m1", h)
		if p.ActiveDowntime != nil {
			assert.NotNil(t, p.ActiveAllocation, "active downtime requires an active allocation")
		}
	}
}
