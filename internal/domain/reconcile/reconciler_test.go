package reconcile_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/looplink/internal/domain/model"
	"github.com/okian/looplink/internal/domain/reconcile"
	"github.com/okian/looplink/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// fakePublisher records every publication, in order, so tests can assert
// both the per-entry writes and the final value.
type fakePublisher struct {
	overrides []*string
	targets   []*string
}

func (f *fakePublisher) SetActiveOverride(_ context.Context, note *string) {
	f.overrides = append(f.overrides, note)
}

func (f *fakePublisher) SetTempTarget(_ context.Context, note *string) {
	f.targets = append(f.targets, note)
}

func (f *fakePublisher) lastOverride() *string {
	if len(f.overrides) == 0 {
		return nil
	}
	return f.overrides[len(f.overrides)-1]
}

func (f *fakePublisher) lastTarget() *string {
	if len(f.targets) == 0 {
		return nil
	}
	return f.targets[len(f.targets)-1]
}

func minutes(m float64) *float64 { return &m }

func overrideEntry(ts time.Time, durationMinutes *float64, notes string) model.TreatmentEntry {
	return model.TreatmentEntry{
		EventType: model.EventTempOverride,
		Timestamp: ts.Format(time.RFC3339),
		Duration:  durationMinutes,
		EnteredBy: "caregiver",
		Notes:     notes,
	}
}

func TestReconcile(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a reconciler over a recording publisher", t, func() {
		pub := &fakePublisher{}
		rec := reconcile.NewReconciler(pub)

		Convey("When a recent entry is still inside its declared window", func() {
			entries := []model.TreatmentEntry{
				overrideEntry(now.Add(-10*time.Minute), minutes(30), "Exercise"),
			}
			note := rec.Reconcile(ctx, entries, now)

			Convey("Then its note is published as active", func() {
				So(note, ShouldNotBeNil)
				So(*note, ShouldEqual, "Exercise")
				So(pub.lastOverride(), ShouldNotBeNil)
				So(*pub.lastOverride(), ShouldEqual, "Exercise")
			})

			Convey("And a second pass over the same input agrees", func() {
				again := rec.Reconcile(ctx, entries, now)
				So(again, ShouldNotBeNil)
				So(*again, ShouldEqual, "Exercise")
			})
		})

		Convey("When the only entry has already expired", func() {
			entries := []model.TreatmentEntry{
				overrideEntry(now.Add(-2*time.Hour), minutes(30), "Lunch"),
			}
			note := rec.Reconcile(ctx, entries, now)

			Convey("Then nil is published", func() {
				So(note, ShouldBeNil)
				So(len(pub.overrides), ShouldEqual, 1)
				So(pub.overrides[0], ShouldBeNil)
			})
		})

		Convey("When the most recent entry carries the open-ended marker", func() {
			entries := []model.TreatmentEntry{
				{
					EventType:    model.EventTempOverride,
					Timestamp:    now.Add(-2 * time.Hour).Format(time.RFC3339),
					DurationType: "indefinite",
					Notes:        "Sick Day",
				},
			}
			note := rec.Reconcile(ctx, entries, now)

			Convey("Then it stays active despite its age", func() {
				So(note, ShouldNotBeNil)
				So(*note, ShouldEqual, "Sick Day")
			})
		})

		Convey("When an open-ended marker sits on an older entry", func() {
			entries := []model.TreatmentEntry{
				overrideEntry(now.Add(-10*time.Minute), minutes(30), "Current"),
				{
					EventType:    model.EventTempOverride,
					Timestamp:    now.Add(-2 * time.Hour).Format(time.RFC3339),
					DurationType: "indefinite",
					Notes:        "Stale",
				},
			}
			note := rec.Reconcile(ctx, entries, now)

			Convey("Then the marker is ignored and only the recent entry is active", func() {
				So(note, ShouldNotBeNil)
				So(*note, ShouldEqual, "Current")
			})
		})

		Convey("When an entry declares a sub-five-minute duration", func() {
			entries := []model.TreatmentEntry{
				overrideEntry(now.Add(-time.Minute), minutes(4), "Blip"),
			}
			note := rec.Reconcile(ctx, entries, now)

			Convey("Then it is treated as noise", func() {
				So(note, ShouldBeNil)
			})
		})

		Convey("When an entry runs ten hours from a start just inside the window", func() {
			start := now.Add(-2*time.Hour - 59*time.Minute)
			entries := []model.TreatmentEntry{
				overrideEntry(start, minutes(600), "Marathon"),
			}
			note := rec.Reconcile(ctx, entries, now)

			Convey("Then the cap does not falsely end it before the boundary", func() {
				So(note, ShouldNotBeNil)
				So(*note, ShouldEqual, "Marathon")
			})
		})

		Convey("When an entry is dated in the future", func() {
			entries := []model.TreatmentEntry{
				overrideEntry(now.Add(4*time.Hour), minutes(600), "Later"),
			}
			note := rec.Reconcile(ctx, entries, now)

			Convey("Then it never registers as active", func() {
				So(note, ShouldBeNil)
			})
		})

		Convey("When two qualifying entries overlap", func() {
			entries := []model.TreatmentEntry{
				overrideEntry(now.Add(-5*time.Minute), minutes(60), "Newer"),
				overrideEntry(now.Add(-20*time.Minute), minutes(60), "Older"),
			}
			note := rec.Reconcile(ctx, entries, now)

			Convey("Then both are published in chronological order and the latest wins", func() {
				So(len(pub.overrides), ShouldEqual, 2)
				So(*pub.overrides[0], ShouldEqual, "Older")
				So(*pub.overrides[1], ShouldEqual, "Newer")
				So(note, ShouldNotBeNil)
				So(*note, ShouldEqual, "Newer")
			})
		})

		Convey("When the feed mixes a temp target with an override", func() {
			entries := []model.TreatmentEntry{
				overrideEntry(now.Add(-5*time.Minute), minutes(60), "Exercise"),
				{
					EventType: model.EventTempTarget,
					Timestamp: now.Add(-15 * time.Minute).Format(time.RFC3339),
					Duration:  minutes(60),
					Reason:    "Eating Soon",
				},
			}
			note := rec.Reconcile(ctx, entries, now)

			Convey("Then each kind lands in its own slot", func() {
				So(note, ShouldNotBeNil)
				So(*note, ShouldEqual, "Exercise")
				So(pub.lastTarget(), ShouldNotBeNil)
				So(*pub.lastTarget(), ShouldEqual, "Eating Soon")
			})
		})

		Convey("When only a temp target qualifies", func() {
			entries := []model.TreatmentEntry{
				{
					EventType: model.EventTempTarget,
					Timestamp: now.Add(-15 * time.Minute).Format(time.RFC3339),
					Duration:  minutes(60),
					Reason:    "Eating Soon",
				},
			}
			note := rec.Reconcile(ctx, entries, now)

			Convey("Then the override slot is cleared", func() {
				So(note, ShouldBeNil)
				So(pub.lastOverride(), ShouldBeNil)
				So(pub.lastTarget(), ShouldNotBeNil)
			})
		})

		Convey("When a malformed entry sits amid valid ones", func() {
			entries := []model.TreatmentEntry{
				overrideEntry(now.Add(-5*time.Minute), minutes(60), "Valid"),
				{EventType: model.EventTempOverride, Timestamp: "not-a-time", Notes: "Broken"},
			}
			note := rec.Reconcile(ctx, entries, now)

			Convey("Then the pass survives and resolves the valid entry", func() {
				So(note, ShouldNotBeNil)
				So(*note, ShouldEqual, "Valid")
			})
		})

		Convey("When the feed is empty", func() {
			note := rec.Reconcile(ctx, nil, now)

			Convey("Then both slots are cleared", func() {
				So(note, ShouldBeNil)
				So(len(pub.overrides), ShouldEqual, 1)
				So(pub.overrides[0], ShouldBeNil)
				So(len(pub.targets), ShouldEqual, 1)
				So(pub.targets[0], ShouldBeNil)
			})
		})
	})
}
