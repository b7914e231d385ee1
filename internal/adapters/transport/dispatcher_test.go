package transport_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/okian/looplink/internal/adapters/transport"
	"github.com/okian/looplink/internal/domain/model"
	"github.com/okian/looplink/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeLauncher struct {
	err      error
	messages []string
}

func (f *fakeLauncher) Launch(_ context.Context, message string) error {
	f.messages = append(f.messages, message)
	return f.err
}

type fakePush struct {
	err  error
	reqs []transport.Request
}

func (f *fakePush) Push(_ context.Context, req transport.Request) error {
	f.reqs = append(f.reqs, req)
	return f.err
}

type fakeSMS struct {
	err    error
	bodies []string
}

func (f *fakeSMS) SendText(_ context.Context, body string) error {
	f.bodies = append(f.bodies, body)
	return f.err
}

type fakeAuth struct {
	ok    bool
	err   error
	calls int
}

func (f *fakeAuth) Authenticate(_ context.Context) (bool, error) {
	f.calls++
	return f.ok, f.err
}

type fakeSlots struct {
	overrideWrites  []*string
	indicatorWrites []*float64
}

func (f *fakeSlots) SetActiveOverride(_ context.Context, note *string) {
	f.overrideWrites = append(f.overrideWrites, note)
}

func (f *fakeSlots) SetOverrideIndicator(_ context.Context, pct *float64) {
	f.indicatorWrites = append(f.indicatorWrites, pct)
}

func exercise() model.RemoteOverride {
	return model.RemoteOverride{Name: "Exercise", Percentage: 0.6, DurationMinutes: 90}
}

func TestCompose(t *testing.T) {
	Convey("Given a composer with caregiver and secret", t, func() {
		composer := transport.NewComposer("Jamie", "s3cret")

		Convey("When an activation is composed", func() {
			msg := composer.Compose(transport.Request{
				Action:   transport.ActionActivate,
				Override: exercise(),
			})

			Convey("Then the message is byte-exact", func() {
				So(msg, ShouldEqual, "Remote Override\nExercise\nEntered By: Jamie\nSecret Code: s3cret")
			})
		})

		Convey("When a cancellation is composed", func() {
			msg := composer.Compose(transport.Request{Action: transport.ActionCancel})

			Convey("Then the marker replaces the override name", func() {
				So(msg, ShouldEqual, "Remote Override\nCancel Remote Override\nEntered By: Jamie\nSecret Code: s3cret")
			})
		})
	})
}

func TestParseKind(t *testing.T) {
	Convey("Given configuration transport values", t, func() {
		Convey("Then known values map onto their kinds", func() {
			So(transport.ParseKind("shortcut"), ShouldEqual, transport.KindShortcut)
			So(transport.ParseKind("push"), ShouldEqual, transport.KindPush)
			So(transport.ParseKind("sms"), ShouldEqual, transport.KindSMS)
		})

		Convey("And unknown values fall back to shortcut", func() {
			So(transport.ParseKind("carrier-pigeon"), ShouldEqual, transport.KindShortcut)
			So(transport.ParseKind(""), ShouldEqual, transport.KindShortcut)
		})
	})
}

type recordingOpener struct {
	err   error
	links []string
}

func (r *recordingOpener) Open(_ context.Context, link string) error {
	r.links = append(r.links, link)
	return r.err
}

func TestShortcutSender(t *testing.T) {
	ctx := context.Background()

	Convey("Given a shortcut sender over a recording opener", t, func() {
		opener := &recordingOpener{}
		sender := transport.NewShortcutSender("Trio Remote", opener)

		Convey("When a message is launched", func() {
			err := sender.Launch(ctx, "Remote Override\nExercise")

			Convey("Then the deep link carries the message as a query value", func() {
				So(err, ShouldBeNil)
				So(len(opener.links), ShouldEqual, 1)

				u, parseErr := url.Parse(opener.links[0])
				So(parseErr, ShouldBeNil)
				So(u.Scheme, ShouldEqual, "shortcuts")
				So(u.Host, ShouldEqual, "run-shortcut")
				So(u.Query().Get("name"), ShouldEqual, "Trio Remote")
				So(u.Query().Get("input"), ShouldEqual, "text")
				So(u.Query().Get("text"), ShouldEqual, "Remote Override\nExercise")
			})
		})

		Convey("When the platform refuses the link", func() {
			opener.err = errors.New("no handler")
			err := sender.Launch(ctx, "whatever")

			Convey("Then the failure is an invalid-url outcome", func() {
				So(err, ShouldWrap, transport.ErrInvalidURL)
			})
		})
	})
}

func TestGate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a gate over biometric and passcode authenticators", t, func() {
		Convey("When biometrics succeed", func() {
			bio := &fakeAuth{ok: true}
			pass := &fakeAuth{ok: true}
			gate := transport.NewGate(bio, pass)

			Convey("Then authorization passes without touching the passcode", func() {
				So(gate.Authorize(ctx), ShouldBeNil)
				So(pass.calls, ShouldEqual, 0)
			})
		})

		Convey("When biometrics are unavailable and the passcode succeeds", func() {
			bio := &fakeAuth{err: transport.ErrAuthenticatorUnavailable}
			pass := &fakeAuth{ok: true}
			gate := transport.NewGate(bio, pass)

			Convey("Then the fallback authorizes", func() {
				So(gate.Authorize(ctx), ShouldBeNil)
				So(pass.calls, ShouldEqual, 1)
			})
		})

		Convey("When biometrics are unavailable and the passcode denies", func() {
			bio := &fakeAuth{err: transport.ErrAuthenticatorUnavailable}
			pass := &fakeAuth{ok: false}
			gate := transport.NewGate(bio, pass)

			Convey("Then authorization fails", func() {
				So(gate.Authorize(ctx), ShouldWrap, transport.ErrAuthenticationFailure)
			})
		})

		Convey("When biometrics explicitly deny", func() {
			bio := &fakeAuth{ok: false}
			pass := &fakeAuth{ok: true}
			gate := transport.NewGate(bio, pass)

			Convey("Then there is no fallback", func() {
				So(gate.Authorize(ctx), ShouldWrap, transport.ErrAuthenticationFailure)
				So(pass.calls, ShouldEqual, 0)
			})
		})

		Convey("When biometrics fail for any other reason", func() {
			bio := &fakeAuth{err: errors.New("user cancelled")}
			pass := &fakeAuth{ok: true}
			gate := transport.NewGate(bio, pass)

			Convey("Then the deny is hard even though the passcode would pass", func() {
				So(gate.Authorize(ctx), ShouldWrap, transport.ErrAuthenticationFailure)
				So(pass.calls, ShouldEqual, 0)
			})
		})
	})
}

func TestDispatcher(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	ctx := context.Background()
	composer := transport.NewComposer("Jamie", "s3cret")

	Convey("Given a dispatcher on the shortcut transport", t, func() {
		launcher := &fakeLauncher{}
		slots := &fakeSlots{}
		d := transport.NewDispatcher(transport.KindShortcut, composer, slots,
			transport.WithShortcut(launcher),
		)

		Convey("When an activation succeeds", func() {
			err := d.Activate(ctx, exercise())

			Convey("Then the composed text went out and the indicator is scaled", func() {
				So(err, ShouldBeNil)
				So(len(launcher.messages), ShouldEqual, 1)
				So(launcher.messages[0], ShouldContainSubstring, "Exercise")
				So(len(slots.indicatorWrites), ShouldEqual, 1)
				So(*slots.indicatorWrites[0], ShouldEqual, 60.0)
			})
		})

		Convey("When a cancellation succeeds", func() {
			err := d.Cancel(ctx)

			Convey("Then the shared override slot is cleared", func() {
				So(err, ShouldBeNil)
				So(len(slots.overrideWrites), ShouldEqual, 1)
				So(slots.overrideWrites[0], ShouldBeNil)
				So(len(slots.indicatorWrites), ShouldEqual, 1)
				So(slots.indicatorWrites[0], ShouldBeNil)
			})
		})

		Convey("When the transport fails", func() {
			launcher.err = errors.New("no handler")
			err := d.Activate(ctx, exercise())

			Convey("Then the failure surfaces and no slot is touched", func() {
				So(err, ShouldNotBeNil)
				So(slots.overrideWrites, ShouldBeEmpty)
				So(slots.indicatorWrites, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a dispatcher on the push transport", t, func() {
		push := &fakePush{}
		slots := &fakeSlots{}
		d := transport.NewDispatcher(transport.KindPush, composer, slots,
			transport.WithPush(push),
		)

		Convey("When an activation is dispatched", func() {
			err := d.Activate(ctx, exercise())

			Convey("Then the structured request reaches the push capability", func() {
				So(err, ShouldBeNil)
				So(len(push.reqs), ShouldEqual, 1)
				So(push.reqs[0].Action, ShouldEqual, transport.ActionActivate)
				So(push.reqs[0].Override.Name, ShouldEqual, "Exercise")
				So(push.reqs[0].ID, ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given a dispatcher on the SMS transport", t, func() {
		sms := &fakeSMS{}
		slots := &fakeSlots{}

		Convey("When the gate authorizes", func() {
			gate := transport.NewGate(&fakeAuth{ok: true}, &fakeAuth{})
			d := transport.NewDispatcher(transport.KindSMS, composer, slots,
				transport.WithSMS(sms, gate),
			)
			err := d.Activate(ctx, exercise())

			Convey("Then the composed text is sent", func() {
				So(err, ShouldBeNil)
				So(len(sms.bodies), ShouldEqual, 1)
				So(sms.bodies[0], ShouldStartWith, "Remote Override\n")
			})
		})

		Convey("When the gate denies", func() {
			gate := transport.NewGate(&fakeAuth{ok: false}, &fakeAuth{})
			d := transport.NewDispatcher(transport.KindSMS, composer, slots,
				transport.WithSMS(sms, gate),
			)
			err := d.Activate(ctx, exercise())

			Convey("Then nothing is sent and the dispatch aborts", func() {
				So(err, ShouldWrap, transport.ErrAuthenticationFailure)
				So(sms.bodies, ShouldBeEmpty)
				So(slots.indicatorWrites, ShouldBeEmpty)
			})
		})
	})
}
